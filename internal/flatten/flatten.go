// Package flatten collapses a Solidity project into a single text blob for
// submission to the analysis service.
package flatten

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// ErrNoContracts is returned when the root holds no Solidity sources.
var ErrNoContracts = errors.New("flatten: no solidity contracts found")

// Result is a flattened project.
type Result struct {
	Content     string
	ProjectName string
	Files       []SourceFile
}

// Summary describes the result for progress output.
// e.g., "12 files, 48 kB"
func (r Result) Summary() string {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return fmt.Sprintf("%d files, %s", len(r.Files), humanize.Bytes(uint64(total)))
}

// Flatten concatenates every contract under root, each preceded by a
// "// File: <rel>" header, in path order. The project name is the base
// name of the absolute root.
func Flatten(root string) (Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("project root %s is not a directory", abs)
	}

	files, err := ScanDir(abs)
	if err != nil {
		return Result{}, fmt.Errorf("scanning %s: %w", abs, err)
	}
	if len(files) == 0 {
		return Result{}, fmt.Errorf("%w in %s", ErrNoContracts, abs)
	}

	contents, err := readAll(files)
	if err != nil {
		return Result{}, err
	}

	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("// File: ")
		b.WriteString(f.Rel)
		b.WriteString("\n")
		b.WriteString(contents[i])
		if !strings.HasSuffix(contents[i], "\n") {
			b.WriteString("\n")
		}
	}

	return Result{
		Content:     b.String(),
		ProjectName: filepath.Base(abs),
		Files:       files,
	}, nil
}

// readAll reads files with a bounded worker pool. Results keep the input
// order; the first read error (by index) wins.
func readAll(files []SourceFile) ([]string, error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	contents := make([]string, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				data, err := os.ReadFile(files[idx].Path)
				if err != nil {
					errs[idx] = fmt.Errorf("reading %s: %w", files[idx].Rel, err)
					continue
				}
				contents[idx] = string(data)
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return contents, nil
}

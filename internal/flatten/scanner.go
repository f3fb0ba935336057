package flatten

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are dependency, build and VCS directories that never hold the
// project's own contracts.
var skipDirs = map[string]bool{
	"node_modules": true,
	"lib":          true,
	"out":          true,
	"cache":        true,
	"artifacts":    true,
	"broadcast":    true,
	"typechain":    true,
	".git":         true,
}

// SourceFile is a contract file discovered under the project root.
type SourceFile struct {
	Path string // absolute path
	Rel  string // slash-separated path relative to the root
	Size int64
}

// ScanDir walks root and returns the Solidity sources in sorted order.
// Test contracts (*.t.sol, *.s.sol) are skipped.
func ScanDir(root string) ([]SourceFile, error) {
	var files []SourceFile

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if filepath.Ext(name) != ".sol" {
			return nil
		}
		if strings.HasSuffix(name, ".t.sol") || strings.HasSuffix(name, ".s.sol") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // vanished between readdir and stat
		}

		rel, _ := filepath.Rel(root, path)
		files = append(files, SourceFile{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].Rel < files[j].Rel
	})
	return files, err
}

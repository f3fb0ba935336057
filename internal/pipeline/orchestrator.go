// Package pipeline runs a single cost-aware analysis: flatten the project,
// resolve credentials, show the projected cost, call the analyzer and
// persist the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/config"
	"github.com/theirongolddev/gemaudit/internal/flatten"
	"github.com/theirongolddev/gemaudit/internal/log"
	"github.com/theirongolddev/gemaudit/internal/prompt"
)

// DefaultOutput is the report file name used when none is given.
const DefaultOutput = "gemini_analysis.md"

// Deps are the collaborators a run calls out to.
type Deps struct {
	Flatten     func(root string) (flatten.Result, error)
	Credentials func() (prompt.Credentials, error)
	Analyze     func(ctx context.Context, code, projectName string, creds prompt.Credentials) (string, error)

	// WriteFile persists a report. Defaults to WriteReport.
	WriteFile func(path string, data []byte) error
	Now       func() time.Time
}

// Options configure a run.
type Options struct {
	Root   string
	Output string
	Config config.ServiceConfig

	// Out receives progress and, on a persist failure, the report itself.
	// Err receives errors and warnings.
	Out io.Writer
	Err io.Writer

	// Quiet drops progress lines. The fallback report is still written.
	Quiet bool
}

// Result summarizes a run for display and history.
type Result struct {
	ProjectName     string
	Root            string
	Model           string
	ContentLength   int
	EstimatedTokens int
	EstimatedCost   float64
	OverBudget      bool
	OutputPath      string
	ArchivePath     string
	Stage           Stage // last stage reached
	Status          Status
	Err             error
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Orchestrator sequences the stages of one run.
type Orchestrator struct {
	opts Options
	deps Deps
}

// New returns an orchestrator. Missing writers default to stdout/stderr.
func New(opts Options, deps Deps) *Orchestrator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if deps.WriteFile == nil {
		deps.WriteFile = WriteReport
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{opts: opts, deps: deps}
}

func (o *Orchestrator) progress() io.Writer {
	if o.opts.Quiet {
		return io.Discard
	}
	return o.opts.Out
}

// run carries values from one stage to the next.
type run struct {
	res     Result
	content string
	creds   prompt.Credentials
	report  string
}

// step is one entry in the ordered stage list. degrade handles a failure
// of a stage that does not fail fast.
type step struct {
	stage   Stage
	exec    func(ctx context.Context, r *run) error
	degrade func(r *run, err error)
}

func (o *Orchestrator) steps() []step {
	return []step{
		{stage: StageFlatten, exec: o.flatten},
		{stage: StageCredentials, exec: o.credentials},
		{stage: StageEstimate, exec: o.estimate},
		{stage: StageAnalyze, exec: o.analyze},
		{stage: StagePersist, exec: o.persist, degrade: o.fallbackToStdout},
	}
}

// Run executes the stages in order. A fail-fast stage error stops the run
// and is returned as a *StageError. A persist failure is reported on Err,
// the report is printed to Out and Run returns a nil error with
// StatusDegraded.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	r := &run{res: Result{
		Root:      o.opts.Root,
		StartedAt: o.deps.Now(),
		Status:    StatusOK,
	}}

	fmt.Fprintln(o.progress(), "Starting Gemini AI Analysis...")
	fmt.Fprintln(o.progress(), strings.Repeat("=", 31))

	for _, st := range o.steps() {
		r.res.Stage = st.stage
		began := o.deps.Now()

		err := st.exec(ctx, r)
		log.Debug().
			Str("stage", st.stage.String()).
			Dur("elapsed", o.deps.Now().Sub(began)).
			Err(err).
			Msg("stage finished")
		if err == nil {
			continue
		}

		stageErr := &StageError{Stage: st.stage, Err: err}
		r.res.Err = stageErr
		fmt.Fprintln(o.opts.Err, cli.Error("Error "+stageErr.Error()))

		if st.stage.FailFast() || st.degrade == nil {
			r.res.Status = StatusFailed
			r.res.FinishedAt = o.deps.Now()
			return r.res, stageErr
		}

		st.degrade(r, err)
		r.res.Status = StatusDegraded
	}

	r.res.FinishedAt = o.deps.Now()
	return r.res, nil
}

func (o *Orchestrator) flatten(_ context.Context, r *run) error {
	fmt.Fprintf(o.progress(), "Flattening contracts from: %s\n", o.opts.Root)

	res, err := o.deps.Flatten(o.opts.Root)
	if err != nil {
		return err
	}

	r.content = res.Content
	r.res.ProjectName = res.ProjectName
	r.res.ContentLength = len(res.Content)

	fmt.Fprintf(o.progress(), "Found and flattened contracts for project: %s\n", res.ProjectName)
	if len(res.Files) > 0 {
		fmt.Fprintf(o.progress(), "Contracts: %s\n", res.Summary())
	}
	fmt.Fprintf(o.progress(), "Total code size: %s characters\n", cli.FormatNumber(int64(len(res.Content))))
	return nil
}

func (o *Orchestrator) credentials(_ context.Context, r *run) error {
	creds, err := o.deps.Credentials()
	if err != nil {
		return err
	}
	r.creds = creds
	r.res.Model = creds.Model
	return nil
}

// estimate prints the projected cost. It is advisory and never fails: a
// cost above MaxCostPerAnalysis only produces a warning.
func (o *Orchestrator) estimate(_ context.Context, r *run) error {
	model := r.creds.Model
	r.res.EstimatedTokens = config.EstimateTokens(r.res.ContentLength)
	r.res.EstimatedCost = config.EstimateCost(r.res.ContentLength, model)

	fmt.Fprintf(o.progress(), "\nEstimated cost: %s (~%s tokens with %s)\n",
		cli.FormatCostEstimate(r.res.EstimatedCost),
		cli.FormatTokens(int64(r.res.EstimatedTokens)),
		model,
	)
	if _, known := config.PricePerKTokens(model); !known {
		fmt.Fprintln(o.progress(), cli.Muted("  (unknown model, using the default rate)"))
	}

	limit := o.opts.Config.MaxCostPerAnalysis
	if limit > 0 && r.res.EstimatedCost > limit {
		r.res.OverBudget = true
		fmt.Fprintln(o.opts.Err, cli.Warn(fmt.Sprintf(
			"Warning: estimate exceeds max_cost_per_analysis ($%.2f); continuing", limit)))
	}
	return nil
}

func (o *Orchestrator) analyze(ctx context.Context, r *run) error {
	fmt.Fprintln(o.progress(), "\nSending code to Gemini AI for analysis...")
	fmt.Fprintln(o.progress(), "This may take a few moments...")

	report, err := o.deps.Analyze(ctx, r.content, r.res.ProjectName, r.creds)
	if err != nil {
		return err
	}
	if strings.TrimSpace(report) == "" {
		return errors.New("analyzer returned an empty report")
	}
	r.report = report
	return nil
}

// persist writes the report to the output path, then archives a copy when
// auto-save is on. Only the primary write can fail the stage.
func (o *Orchestrator) persist(_ context.Context, r *run) error {
	writeErr := o.deps.WriteFile(o.opts.Output, []byte(r.report))
	o.archive(r)
	if writeErr != nil {
		return writeErr
	}

	r.res.OutputPath = o.opts.Output
	fmt.Fprintln(o.progress(), cli.OK("Analysis complete in "+cli.FormatDuration(o.deps.Now().Sub(r.res.StartedAt))))
	fmt.Fprintf(o.progress(), "Report saved to: %s\n", o.opts.Output)
	if r.res.ArchivePath != "" {
		fmt.Fprintf(o.progress(), "Archived copy: %s\n", r.res.ArchivePath)
	}
	fmt.Fprintln(o.progress(), "Open the file to view detailed AI analysis results")
	return nil
}

func (o *Orchestrator) archive(r *run) {
	cfg := o.opts.Config
	if !cfg.AutoSaveReports || cfg.ReportDirectory == "" {
		return
	}

	path := ArchivePath(cfg.ReportDirectory, r.res.ProjectName, r.res.StartedAt)
	if err := o.deps.WriteFile(path, []byte(r.report)); err != nil {
		fmt.Fprintln(o.opts.Err, cli.Warn(fmt.Sprintf("Warning: could not archive report: %v", err)))
		return
	}
	r.res.ArchivePath = path
}

// fallbackToStdout prints the report so a failed write never loses it.
func (o *Orchestrator) fallbackToStdout(r *run, _ error) {
	if r.res.ArchivePath != "" {
		fmt.Fprintf(o.opts.Err, "A copy was archived to: %s\n", r.res.ArchivePath)
	}
	fmt.Fprintln(o.opts.Err, "Analysis content:")
	fmt.Fprintln(o.opts.Out, r.report)
}

// ArchivePath names an archived report: <dir>/<project>-<YYYYMMDD-HHMMSS>.md.
func ArchivePath(dir, projectName string, at time.Time) string {
	name := sanitizeName(projectName)
	if name == "" {
		name = "report"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.md", name, at.Format("20060102-150405")))
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// WriteReport writes data to path, creating missing parent directories.
func WriteReport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // reports are meant to be shared
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/flatten"
	"github.com/theirongolddev/gemaudit/internal/gemini"
	"github.com/theirongolddev/gemaudit/internal/log"
	"github.com/theirongolddev/gemaudit/internal/pipeline"
	"github.com/theirongolddev/gemaudit/internal/prompt"
	"github.com/theirongolddev/gemaudit/internal/store"
)

var (
	flagOutput   string
	flagModel    string
	flagNoPrompt bool
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [root]",
	Aliases: []string{"gemini"},
	Short:   "Flatten a project and run a Gemini security analysis",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&flagOutput, "output", "o", pipeline.DefaultOutput, "Report file")
	analyzeCmd.Flags().StringVarP(&flagModel, "model", "m", "", "Gemini model (overrides default_model)")
	analyzeCmd.Flags().BoolVar(&flagNoPrompt, "no-prompt", false, "Never prompt; use env and config only")
	rootCmd.AddCommand(analyzeCmd)
}

func rootArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig().Config

	prompter := &prompt.Prompter{
		Config:      cfg,
		Model:       flagModel,
		Interactive: !flagNoPrompt && isTerminal(os.Stdin),
	}

	orch := pipeline.New(pipeline.Options{
		Root:   rootArg(args),
		Output: flagOutput,
		Config: cfg,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Quiet:  flagQuiet,
	}, pipeline.Deps{
		Flatten:     flatten.Flatten,
		Credentials: prompter.Credentials,
		Analyze:     analyzeWithGemini,
	})

	res, err := orch.Run(cmd.Context())
	recordRun(res)

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		// Already reported by the orchestrator.
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
	}
	return err
}

func analyzeWithGemini(ctx context.Context, code, projectName string, creds prompt.Credentials) (string, error) {
	client := gemini.NewClient(creds.APIKey, creds.Model)
	if client == nil {
		return "", prompt.ErrNoAPIKey
	}

	if !isTerminal(os.Stdout) || flagQuiet {
		return client.Analyze(ctx, code, projectName)
	}

	spin := func(ctx context.Context, action func()) error {
		return spinner.New().
			Title(fmt.Sprintf("Waiting for %s...", client.Model())).
			Context(ctx).
			Action(action).
			Run()
	}
	return awaitAnalysis(ctx, spin, func(ctx context.Context) (string, error) {
		return client.Analyze(ctx, code, projectName)
	})
}

type analysisResult struct {
	report string
	err    error
}

// awaitAnalysis runs analyze under spin. An interrupted spin cancels the
// request and discards its result.
func awaitAnalysis(
	ctx context.Context,
	spin func(ctx context.Context, action func()) error,
	analyze func(ctx context.Context) (string, error),
) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan analysisResult, 1)
	if err := spin(ctx, func() {
		report, err := analyze(ctx)
		done <- analysisResult{report: report, err: err}
	}); err != nil {
		return "", err
	}

	select {
	case res := <-done:
		return res.report, res.err
	default:
		return "", errors.New("analysis did not complete")
	}
}

// recordRun appends the run to the history database. History is best
// effort: a failure never changes the exit status.
func recordRun(res pipeline.Result) {
	if res.ProjectName == "" {
		return
	}

	h, err := store.Open(store.DefaultPath())
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable")
		return
	}
	defer h.Close()

	run := store.Run{
		Project:         res.ProjectName,
		Root:            absOrSelf(res.Root),
		Model:           res.Model,
		ContentChars:    int64(res.ContentLength),
		EstimatedTokens: int64(res.EstimatedTokens),
		EstimatedCost:   res.EstimatedCost,
		OverBudget:      res.OverBudget,
		OutputPath:      res.OutputPath,
		ArchivePath:     res.ArchivePath,
		Stage:           res.Stage.String(),
		Status:          string(res.Status),
		StartedAt:       res.StartedAt,
		FinishedAt:      res.FinishedAt,
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}

	id, err := h.Record(run)
	if err != nil {
		log.Warn().Err(err).Msg("recording run")
		return
	}
	log.Debug().Str("run_id", id).Msg("run recorded")
	if res.Status == pipeline.StatusOK && !flagQuiet {
		fmt.Println(cli.Muted("Run " + id[:8] + " recorded; see `gemaudit history`"))
	}
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

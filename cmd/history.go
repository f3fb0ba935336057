package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/store"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	h, err := store.Open(store.DefaultPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer h.Close()

	runs, err := h.Recent(flagLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("\n  No analysis runs recorded yet.")
		fmt.Println("  Run `gemaudit analyze` first, then come back!")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := r.Status
		if r.Status == "failed" {
			status = "failed@" + r.Stage
		}
		took := "-"
		if !r.FinishedAt.IsZero() {
			took = cli.FormatDuration(r.FinishedAt.Sub(r.StartedAt))
		}
		report := r.OutputPath
		if report == "" {
			report = "-"
		}
		rows = append(rows, []string{
			humanize.Time(r.StartedAt),
			r.Project,
			r.Model,
			humanize.Comma(r.ContentChars),
			cli.FormatCostEstimate(r.EstimatedCost),
			status,
			took,
			report,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("ANALYSIS HISTORY"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"When", "Project", "Model", "Chars", "Estimate", "Status", "Took", "Report"},
		Rows:     rows,
		TextCols: 3,
	}))

	since := time.Now().AddDate(0, 0, -30)
	if total, err := h.TotalEstimatedCost(since); err == nil {
		fmt.Printf("\n  Estimated spend, last 30 days: $%.2f\n", total)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/config"
	"github.com/theirongolddev/gemaudit/internal/flatten"
)

var flagEstimateModel string

var estimateCmd = &cobra.Command{
	Use:   "estimate [root]",
	Short: "Estimate the analysis cost without calling the API",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&flagEstimateModel, "model", "m", "", "Only estimate for this model")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(_ *cobra.Command, args []string) error {
	res, err := flatten.Flatten(rootArg(args))
	if err != nil {
		return fmt.Errorf("flattening contracts: %w", err)
	}
	cfg := loadConfig().Config
	n := len(res.Content)

	models := []string{flagEstimateModel}
	if flagEstimateModel == "" {
		models = models[:0]
		for _, m := range config.KnownModels() {
			models = append(models, m.Model)
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("COST ESTIMATE  " + res.ProjectName))
	fmt.Println()
	fmt.Printf("  %s\n", res.Summary())
	fmt.Printf("  %s characters, ~%s tokens\n\n",
		cli.FormatNumber(int64(n)),
		cli.FormatTokens(int64(config.EstimateTokens(n))),
	)

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		price, known := config.PricePerKTokens(m)
		rate := cli.FormatPrice(price)
		if !known {
			rate += " (default)"
		}
		cost := config.EstimateCost(n, m)
		note := ""
		if cfg.MaxCostPerAnalysis > 0 && cost > cfg.MaxCostPerAnalysis {
			note = "over cap"
		}
		if m == config.Model(cfg) {
			m += " *"
		}
		rows = append(rows, []string{m, rate, cli.FormatCostEstimate(cost), note})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "$/1K tokens", "Estimate", ""},
		Rows:    rows,
	}))
	fmt.Println(cli.Muted("  * default model"))
	return nil
}

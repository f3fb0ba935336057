package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known Gemini models and their prices",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	current := config.Model(loadConfig().Config)

	rows := make([][]string, 0, 4)
	for _, m := range config.KnownModels() {
		name := m.Model
		if name == current {
			name += " *"
		}
		rows = append(rows, []string{
			name,
			m.Description,
			cli.FormatPrice(m.PricePerKToken),
			cli.FormatCostEstimate(m.PricePerKToken * 1000),
		})
	}
	if price, known := config.PricePerKTokens(current); !known {
		rows = append(rows,
			[]string{"---"},
			[]string{current + " *", "custom (default rate)", cli.FormatPrice(price), cli.FormatCostEstimate(price * 1000)},
		)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("GEMINI MODELS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Model", "Description", "$/1K tokens", "$/1M tokens"},
		Rows:     rows,
		TextCols: 2,
	}))
	fmt.Println(cli.Muted("  * default model. Estimates assume ~4 characters per token."))
	return nil
}

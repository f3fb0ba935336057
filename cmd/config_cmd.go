package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	res := loadConfig()
	cfg := res.Config

	fmt.Printf("  Config file: %s\n", res.Path)
	switch {
	case !res.Defaulted():
		fmt.Println("  Status: loaded")
	case res.Missing():
		fmt.Println("  Status: using defaults (no config file)")
	default:
		fmt.Println(cli.Warn(fmt.Sprintf("  Status: using defaults (%v)", res.Err)))
	}
	fmt.Println()

	fmt.Println("  [Gemini]")
	key := config.APIKey(cfg)
	switch {
	case key == "":
		fmt.Println("    API key:       not configured")
	case key != cfg.APIKey:
		fmt.Printf("    API key:       %s (from GEMINI_API_KEY)\n", cli.MaskAPIKey(key))
	default:
		fmt.Printf("    API key:       %s\n", cli.MaskAPIKey(key))
	}
	model := config.Model(cfg)
	if _, known := config.PricePerKTokens(model); known {
		fmt.Printf("    Default model: %s\n", model)
	} else {
		fmt.Printf("    Default model: %s (unknown, default rate)\n", model)
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	if cfg.MaxCostPerAnalysis > 0 {
		fmt.Printf("    Max cost per analysis: $%.2f (advisory)\n", cfg.MaxCostPerAnalysis)
	} else {
		fmt.Println("    Max cost per analysis: not set")
	}
	fmt.Println()

	fmt.Println("  [Reports]")
	fmt.Printf("    Auto-save:        %v\n", cfg.AutoSaveReports)
	fmt.Printf("    Report directory: %s\n", cfg.ReportDirectory)
	fmt.Println()

	if !res.Defaulted() {
		unknown, err := config.UnknownKeys(res.Path)
		if err == nil && len(unknown) > 0 {
			fmt.Println(cli.Warn("  Ignored unknown keys: " + strings.Join(unknown, ", ")))
			fmt.Println()
		}
	}

	fmt.Println("  Run `gemaudit setup` to reconfigure.")
	return nil
}

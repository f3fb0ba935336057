package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/config"
	"github.com/theirongolddev/gemaudit/internal/prompt"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := config.LoadOrDefault(flagConfig)

	var apiKey string
	model := config.Model(cfg)
	maxCost := strconv.FormatFloat(cfg.MaxCostPerAnalysis, 'f', -1, 64)
	autoSave := cfg.AutoSaveReports
	reportDir := cfg.ReportDirectory

	keyDesc := "Get one at aistudio.google.com/app/apikey"
	if cfg.APIKey != "" {
		keyDesc = fmt.Sprintf("Current: %s (leave blank to keep)", cli.MaskAPIKey(cfg.APIKey))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to gemaudit!").
				Description("Settings are saved to "+flagConfig),
			huh.NewInput().
				Title("Gemini API key").
				Description(keyDesc).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			prompt.ModelSelect(&model),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Max cost per analysis (USD)").
				Description("Runs above this estimate print a warning. 0 disables it.").
				Validate(validateCost).
				Value(&maxCost),
			huh.NewConfirm().
				Title("Archive a copy of every report?").
				Value(&autoSave),
			huh.NewInput().
				Title("Report directory").
				Value(&reportDir),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if k := strings.TrimSpace(apiKey); k != "" {
		cfg.APIKey = k
	}
	cfg.DefaultModel = model
	cfg.MaxCostPerAnalysis, _ = strconv.ParseFloat(strings.TrimSpace(maxCost), 64)
	cfg.AutoSaveReports = autoSave
	cfg.ReportDirectory = strings.TrimSpace(reportDir)

	if err := config.SaveToFile(cfg, flagConfig); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfig)
	fmt.Println("  Run `gemaudit setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func validateCost(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number, e.g. 1.50")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("enter a finite amount")
	}
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

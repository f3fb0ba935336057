// Package cmd implements the gemaudit CLI commands.
package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemaudit/internal/config"
	"github.com/theirongolddev/gemaudit/internal/log"
)

var (
	flagConfig string
	flagQuiet  bool
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "gemaudit",
	Short: "AI-assisted Solidity contract analysis",
	Long:  "Flatten a Solidity project, estimate the cost and send it to Gemini for a security review.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagDebug {
			log.SetLevel("debug")
		}
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.Path(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log diagnostics to stderr")
}

// loadConfig resolves the config file, logging why defaults were used.
func loadConfig() config.Resolution {
	res := config.Resolve(flagConfig)
	if res.Defaulted() {
		log.Debug().Str("path", res.Path).Err(res.Err).Msg("using default config")
	}
	return res
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

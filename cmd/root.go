// Package cmd holds the goanalyzer command line.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/goanalyzer/internal/app"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgconfig"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "goanalyzer",
	Short: "Browser-based CSV and JSON dataset explorer",
	Long: `goanalyzer serves a dashboard where a CSV or JSON file can be uploaded, previewed,
summarized, cleaned, filtered, aggregated and charted. Every successful upload is
logged to a small SQLite history.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute is the entry point called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default ./config/config.yaml when LOCAL=true, else /config/config.yaml)")

	rootCmd.AddCommand(serveCmd, historyCmd, initDBCmd)
}

// loadConfig reads the config file. Commands other than serve may run
// without one, in which case defaults and GOANALYZER_* variables apply.
func loadConfig() (pkgconfig.Config, error) {
	path := app.ConfigPath(cfgFile)

	if _, err := os.Stat(path); cfgFile == "" && errors.Is(err, fs.ErrNotExist) {
		return pkgconfig.NewDefault(), nil
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

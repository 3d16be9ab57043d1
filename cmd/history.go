package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/store"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the most recent uploads",
	Example: `  goanalyzer history
  goanalyzer history --limit 3 --output yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		limit := historyLimit
		if limit < 1 {
			limit = int(cfg.GetInt("history.limit"))
		}

		records, err := store.NewHistoryStore(cfg.GetString("history.dsn")).Recent(ctxOf(cmd), limit)
		if err != nil {
			if errors.Is(err, store.ErrRead) && strings.Contains(err.Error(), "no such table") {
				return fmt.Errorf("%w (run `goanalyzer init-db` first)", err)
			}
			return err
		}

		return writeHistory(cmd.OutOrStdout(), historyOutput, records)
	},
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the upload history table if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dsn := cfg.GetString("history.dsn")
		if err := store.NewHistoryStore(dsn).Initialize(ctxOf(cmd)); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "upload history ready at %s\n", dsn)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "number of uploads to show (default history.limit)")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table", "output format: table|json|yaml")
}

type historyRow struct {
	Filename    string    `json:"filename" yaml:"filename"`
	UploadedAt  time.Time `json:"uploaded_at" yaml:"uploaded_at"`
	RowCount    int       `json:"row_count" yaml:"row_count"`
	ColumnCount int       `json:"column_count" yaml:"column_count"`
}

func writeHistory(w io.Writer, format string, records []entity.UploadRecord) error {
	rows := make([]historyRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, historyRow{
			Filename:    r.Filename,
			UploadedAt:  r.UploadedAt,
			RowCount:    r.RowCount,
			ColumnCount: r.ColumnCount,
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "No upload history yet.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILENAME\tUPLOADED AT\tROWS\tCOLUMNS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Filename, r.UploadedAt.Format("2006-01-02 15:04:05"), r.RowCount, r.ColumnCount)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported --output: %s (use table|json|yaml)", format)
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

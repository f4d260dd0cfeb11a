package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/analysis"
	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	runOutput  string
	runSummary bool
)

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run a measurement script",
	Long: `Run a YAML script of calibration, scale region and measurement steps and print
the resulting records. Example script:

  unit: ft
  calibration:
    points: [{x: 0, y: 0}, {x: 0, y: 192}]
    distance: "2'"
  regions:
    - name: Detail A
      min: {x: 1000, y: 1000}
      max: {x: 2000, y: 2000}
      calibration: {preset: "1:20", dpi: 96}
  measurements:
    - type: area
      points: [{x: 0, y: 0}, {x: 960, y: 0}, {x: 960, y: 960}, {x: 0, y: 960}]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScript(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOutput, "output", "o", "table", "output format: table, json or yaml")
	runCmd.Flags().BoolVar(&runSummary, "summary", false, "print per-type totals after the records")
}

// runScript runs the script at path in a fresh session and writes the records to w
func runScript(w io.Writer, path string) error {
	sc, err := session.LoadScript(path)
	if err != nil {
		return err
	}

	s := session.New(cfg.Display.Unit)
	records, runErr := s.Run(sc, cfg.Measure.DPI)
	if err := writeRecords(w, s, records); err != nil {
		return err
	}
	return runErr
}

func writeRecords(w io.Writer, s *session.Session, records []record.Record) error {
	decimals := cfg.Display.Decimals

	switch runOutput {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		rows := make([]map[string]string, len(records))
		for i, r := range records {
			row := r.Row(decimals)
			rows[i] = make(map[string]string, len(row))
			for j, col := range record.Columns {
				rows[i][col] = row[j]
			}
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rows)
	case "table":
	default:
		return fmt.Errorf("unknown output format %q", runOutput)
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Row(decimals)
	}
	printTable(w, record.Columns, rows)

	if runSummary {
		summary, err := analysis.Summarize(records, s.Unit())
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		printSummary(w, summary, decimals)
	}
	return nil
}

func printSummary(w io.Writer, s *analysis.Summary, decimals int) {
	rows := make([][]string, 0, len(s.Types))
	for _, t := range s.Types {
		total := format.Measurement(t.Total, decimals)
		if t.Type == record.TypeCount {
			total = "-"
		}
		rows = append(rows, []string{
			string(t.Type),
			fmt.Sprintf("%d", t.Count),
			total,
			format.Measurement(t.Min, decimals),
			format.Measurement(t.Max, decimals),
			format.Measurement(t.Avg, decimals),
			t.Label,
		})
	}
	printTable(w, []string{"Type", "Count", "Total", "Min", "Max", "Avg", "Unit"}, rows)
}

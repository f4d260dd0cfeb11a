package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/spf13/cobra"
)

var (
	calibrateFlags calibrationFlags
	calibrateUnit  string
	calibrateOut   string
	calibrateJSON  bool
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate [x1,y1 x2,y2]",
	Short: "Derive a calibration and optionally save it",
	Long: `Derive a calibration from a reference line, a known pixels-per-unit value or
a drawing scale. With two points the reference line runs between them and
--ref-distance gives its real length:

  gomeasure calibrate 100,100 100,292 --ref-distance "2'"
  gomeasure calibrate --preset 1:100 --dpi 150 --unit m
  gomeasure calibrate --ppu 96 --out plan.cal

The file written by --out can be passed to 'measure --calibration'.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no points or two points, got %d", len(args))
		}
		return nil
	},
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateFlags.register(calibrateCmd)
	calibrateCmd.Flags().StringVarP(&calibrateUnit, "unit", "u", "", "calibration unit (default from config)")
	calibrateCmd.Flags().StringVarP(&calibrateOut, "out", "o", "", "write the calibration metadata to this file")
	calibrateCmd.Flags().BoolVar(&calibrateJSON, "json", false, "print the calibration metadata as JSON")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	unit, err := displayUnit(calibrateUnit)
	if err != nil {
		return err
	}

	flags := calibrateFlags
	if len(args) == 2 {
		points, err := parsePoints(args)
		if err != nil {
			return err
		}
		flags.pixels = points[0].Distance(points[1])
	}

	cal, err := flags.build(unit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if calibrateJSON {
		data, err := json.MarshalIndent(cal.Metadata(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintf(out, "Calibration: %s\n", cal)
		if px, actual := cal.Reference(); px > 0 {
			fmt.Fprintf(out, "  Reference: %.2f px = %s %s\n", px, format.Measurement(actual, cfg.Display.Decimals), cal.Unit())
		}
	}

	if calibrateOut != "" {
		data, err := cal.MarshalMetadata()
		if err != nil {
			return err
		}
		if err := os.WriteFile(calibrateOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write calibration: %w", err)
		}
		fmt.Fprintf(out, "Saved to %s\n", calibrateOut)
	}
	return nil
}

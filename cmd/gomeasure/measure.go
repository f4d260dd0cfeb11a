package main

import (
	"fmt"
	"strings"

	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/spf13/cobra"
)

var (
	measureFlags      calibrationFlags
	measureUnit       string
	measureHoles      []string
	measureHeight     string
	measureHeightUnit string
)

var measureCmd = &cobra.Command{
	Use:   "measure <type> <x,y>...",
	Short: "Measure pixel geometry on a calibrated drawing",
	Long: `Measure pixel geometry with a calibration given by flags. Types:

  linear    two points
  polyline  two or more points
  area      three or more points
  cutout    outline points, holes with --hole
  volume    base points with --height
  angle     arm, vertex, arm
  circle    three points on the circumference, or center and one rim point
  slope     two points
  count     one point

Example:

  gomeasure measure area 0,0 960,0 960,960 0,960 --ppu 96`,
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: typeNames(),
	RunE:      runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureFlags.register(measureCmd)
	measureCmd.Flags().StringVarP(&measureUnit, "unit", "u", "", "calibration unit (default from config)")
	measureCmd.Flags().StringArrayVar(&measureHoles, "hole", nil, `cutout hole points, e.g. "10,10 20,10 20,20" (repeatable)`)
	measureCmd.Flags().StringVar(&measureHeight, "height", "", "volume height, feet-inches allowed for feet")
	measureCmd.Flags().StringVar(&measureHeightUnit, "height-unit", "", "unit of --height (default calibration unit)")
}

func typeNames() []string {
	types := record.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func runMeasure(cmd *cobra.Command, args []string) error {
	t, err := record.ParseType(args[0])
	if err != nil {
		return fmt.Errorf("%w (one of %s)", err, strings.Join(typeNames(), ", "))
	}

	unit, err := displayUnit(measureUnit)
	if err != nil {
		return err
	}
	points, err := parsePoints(args[1:])
	if err != nil {
		return err
	}
	g := session.Geometry{Points: points}

	for _, h := range measureHoles {
		hole, err := parsePoints([]string{h})
		if err != nil {
			return err
		}
		g.Holes = append(g.Holes, hole)
	}

	if measureHeight != "" {
		heightUnit := unit
		if measureHeightUnit != "" {
			if heightUnit, err = units.ParseUnit(measureHeightUnit); err != nil {
				return err
			}
		}
		height, err := parseLength(measureHeight, heightUnit)
		if err != nil {
			return err
		}
		g.Height = height
		g.HeightUnit = heightUnit
	}

	s := session.New(unit)
	if t != record.TypeAngle && t != record.TypeCount {
		cal, err := measureFlags.build(unit)
		if err != nil {
			return err
		}
		if err := s.SetCalibration(cal); err != nil {
			return err
		}
	}

	r, err := s.Measure(t, g)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printRecord(out, r, cfg.Display.Decimals, cfg.Display.FeetInches)
	if (t == record.TypeLinear || t == record.TypeSlope) && len(points) == 2 {
		fmt.Fprintf(out, "  Orientation: %s\n", geometry.OrientationOf(points[0], points[1], cfg.Measure.OrientationThreshold))
	}
	return nil
}

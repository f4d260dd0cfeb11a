package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/spf13/cobra"
)

// parsePoint parses "x,y"
func parsePoint(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("invalid point %q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return geometry.Point{X: x, Y: y}, nil
}

// parsePoints parses every argument as a point. Arguments may also hold several
// space or semicolon separated points, e.g. "0,0 10,0;10,10".
func parsePoints(args []string) ([]geometry.Point, error) {
	var points []geometry.Point
	for _, arg := range args {
		fields := strings.FieldsFunc(arg, func(r rune) bool { return r == ' ' || r == ';' })
		for _, f := range fields {
			p, err := parsePoint(f)
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
	}
	return points, nil
}

// displayUnit returns the unit flag value or the configured display unit
func displayUnit(flag string) (units.Unit, error) {
	if flag == "" {
		return cfg.Display.Unit, nil
	}
	return units.ParseUnit(flag)
}

// parseLength parses a typed length in unit, accepting feet-inches for feet
func parseLength(input string, unit units.Unit) (float64, error) {
	v, ok := format.ParseDistance(input, unit)
	if !ok {
		return 0, fmt.Errorf("invalid length %q", input)
	}
	return v, nil
}

// calibrationFlags describe a calibration on the command line
type calibrationFlags struct {
	ppu      float64
	pixels   float64
	distance string
	preset   string
	dpi      float64
	file     string
}

func (f *calibrationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.ppu, "ppu", 0, "pixels per unit")
	cmd.Flags().Float64Var(&f.pixels, "ref-pixels", 0, "pixel length of a reference line")
	cmd.Flags().StringVar(&f.distance, "ref-distance", "", `real length of the reference line, e.g. 10'6" for feet`)
	cmd.Flags().StringVar(&f.preset, "preset", "", `drawing scale, e.g. 1/8" = 1' or 1:100`)
	cmd.Flags().Float64Var(&f.dpi, "dpi", 0, "image resolution for --preset (default from config)")
	cmd.Flags().StringVar(&f.file, "calibration", "", "calibration metadata file written by 'calibrate --out'")
}

func (f *calibrationFlags) build(unit units.Unit) (calibration.Calibration, error) {
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return calibration.Calibration{}, fmt.Errorf("failed to read calibration: %w", err)
		}
		return calibration.UnmarshalMetadata(data)
	}

	spec := session.CalibrationSpec{
		PixelsPerUnit: f.ppu,
		PixelDistance: f.pixels,
		Distance:      f.distance,
		Preset:        f.preset,
		DPI:           f.dpi,
	}
	return spec.Build(unit, cfg.Measure.DPI)
}

// valueLabel renders the headline of r the way it is labelled on a drawing
func valueLabel(r record.Record, decimals int, feetInches bool) string {
	switch r.Type {
	case record.TypeAngle:
		return format.AngleLabel(r.Value, decimals)
	case record.TypeSlope:
		return format.Measurement(r.Value, decimals) + "%"
	case record.TypeCount:
		return fmt.Sprintf("#%d", int(r.Value))
	}
	switch r.Type.Dimension() {
	case 2:
		return format.AreaLabel(r.Value, r.Unit, decimals)
	case 3:
		return format.VolumeLabel(r.Value, r.Unit, decimals)
	}
	return format.Label(r.Value, r.Unit, decimals, feetInches)
}

// printRecord writes a record with its details and unit conversions
func printRecord(w io.Writer, r record.Record, decimals int, feetInches bool) {
	fmt.Fprintf(w, "%s: %s\n", r.Type, valueLabel(r, decimals, feetInches))
	if summary := r.Summary(decimals); summary != "" {
		fmt.Fprintf(w, "  %s\n", summary)
	}
	if r.Calibration != nil {
		if cal, err := calibration.FromMetadata(*r.Calibration); err == nil {
			fmt.Fprintf(w, "  Scale: %s\n", cal)
		}
	}
	if len(r.Conversions) > 0 {
		fmt.Fprintln(w, "  Conversions:")
		for _, line := range format.Conversions(r.Conversions, decimals) {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

// printTable writes rows under columns with left aligned, padded cells
func printTable(w io.Writer, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			pad := 0
			if i < len(widths) {
				pad = widths[i] - utf8.RuneCountInString(cell)
			}
			parts[i] = cell + strings.Repeat(" ", pad)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(columns)
	sep := make([]string, len(columns))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

package calibration

import (
	"fmt"
	"strings"

	"github.com/philipparndt/gomeasure/pkg/units"
)

// Preset is a drawing scale such as 1/8" = 1'.
// Ratio is real length divided by paper length.
type Preset struct {
	Name  string
	Ratio float64
}

var presets = []Preset{
	// Architectural
	{Name: `1/16" = 1'`, Ratio: 192},
	{Name: `3/32" = 1'`, Ratio: 128},
	{Name: `1/8" = 1'`, Ratio: 96},
	{Name: `3/16" = 1'`, Ratio: 64},
	{Name: `1/4" = 1'`, Ratio: 48},
	{Name: `3/8" = 1'`, Ratio: 32},
	{Name: `1/2" = 1'`, Ratio: 24},
	{Name: `3/4" = 1'`, Ratio: 16},
	{Name: `1" = 1'`, Ratio: 12},
	{Name: `1 1/2" = 1'`, Ratio: 8},
	{Name: `3" = 1'`, Ratio: 4},
	// Engineering
	{Name: `1" = 10'`, Ratio: 120},
	{Name: `1" = 20'`, Ratio: 240},
	{Name: `1" = 30'`, Ratio: 360},
	{Name: `1" = 40'`, Ratio: 480},
	{Name: `1" = 50'`, Ratio: 600},
	{Name: `1" = 100'`, Ratio: 1200},
	// Metric
	{Name: "1:1", Ratio: 1},
	{Name: "1:10", Ratio: 10},
	{Name: "1:20", Ratio: 20},
	{Name: "1:50", Ratio: 50},
	{Name: "1:100", Ratio: 100},
	{Name: "1:200", Ratio: 200},
	{Name: "1:500", Ratio: 500},
	{Name: "1:1000", Ratio: 1000},
}

// Presets returns the known drawing scales
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a preset by name, ignoring surrounding and inner spaces
func LookupPreset(name string) (Preset, bool) {
	key := strings.ReplaceAll(strings.TrimSpace(name), " ", "")
	for _, p := range presets {
		if strings.ReplaceAll(p.Name, " ", "") == key {
			return p, true
		}
	}
	return Preset{}, false
}

// FromPreset derives a calibration from a reference line and tags it with the preset
// the user selected. The scale still comes from the reference line.
func FromPreset(p Preset, pixelDistance, actualDistance float64, unit units.Unit) (Calibration, error) {
	if !positive(p.Ratio) {
		return Calibration{}, fmt.Errorf("%w: preset %q has no ratio", ErrInvalidCalibration, p.Name)
	}
	c, err := FromReference(pixelDistance, actualDistance, unit)
	if err != nil {
		return Calibration{}, err
	}
	c.ratio = p.Ratio
	c.scaleName = p.Name
	return c, nil
}

// FromPresetDPI derives a calibration from a preset for a drawing rendered at a known
// resolution, without a reference line. 1/8" = 1' at 768 dpi is 96 px/ft.
func FromPresetDPI(p Preset, dpi float64, unit units.Unit) (Calibration, error) {
	if !positive(p.Ratio) {
		return Calibration{}, fmt.Errorf("%w: preset %q has no ratio", ErrInvalidCalibration, p.Name)
	}
	if !positive(dpi) {
		return Calibration{}, fmt.Errorf("%w: dpi must be positive, got %v", ErrInvalidCalibration, dpi)
	}
	// Paper inches covering one real unit
	paperInches, err := units.Convert(1, unit, units.Inch)
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: %w", ErrInvalidCalibration, err)
	}
	c, err := FromPixelsPerUnit(dpi*paperInches/p.Ratio, unit)
	if err != nil {
		return Calibration{}, err
	}
	c.ratio = p.Ratio
	c.scaleName = p.Name
	return c, nil
}

package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned for scripts that cannot be run
var ErrInvalidScript = errors.New("invalid script")

// Script is a batch of calibration, region and measurement steps, usually read from YAML:
//
//	unit: ft
//	calibration:
//	  points: [{x: 0, y: 0}, {x: 192, y: 0}]
//	  distance: "2'"
//	regions:
//	  - name: Detail A
//	    min: {x: 500, y: 500}
//	    max: {x: 900, y: 800}
//	    calibration: {preset: '1/4" = 1''', dpi: 96}
//	measurements:
//	  - type: area
//	    points: [{x: 0, y: 0}, {x: 960, y: 0}, {x: 960, y: 960}, {x: 0, y: 960}]
type Script struct {
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	Unit         units.Unit        `json:"unit,omitempty" yaml:"unit,omitempty"`
	Calibration  *CalibrationSpec  `json:"calibration,omitempty" yaml:"calibration,omitempty"`
	Regions      []RegionSpec      `json:"regions,omitempty" yaml:"regions,omitempty"`
	Measurements []MeasurementSpec `json:"measurements,omitempty" yaml:"measurements,omitempty"`
}

// CalibrationSpec describes a calibration in one of four ways: a reference line
// (points or pixelDistance plus distance), a known pixelsPerUnit, a preset with dpi,
// or per-axis references.
type CalibrationSpec struct {
	Points        []geometry.Point `json:"points,omitempty" yaml:"points,omitempty"`
	PixelDistance float64          `json:"pixelDistance,omitempty" yaml:"pixelDistance,omitempty"`
	Distance      string           `json:"distance,omitempty" yaml:"distance,omitempty"` // feet-inches allowed for ft
	Unit          units.Unit       `json:"unit,omitempty" yaml:"unit,omitempty"`
	PixelsPerUnit float64          `json:"pixelsPerUnit,omitempty" yaml:"pixelsPerUnit,omitempty"`
	Preset        string           `json:"preset,omitempty" yaml:"preset,omitempty"`
	DPI           float64          `json:"dpi,omitempty" yaml:"dpi,omitempty"`
	Dual          *DualAxisSpec    `json:"dual,omitempty" yaml:"dual,omitempty"`
}

// DualAxisSpec holds independent horizontal and vertical references
type DualAxisSpec struct {
	PixelsX   float64 `json:"pixelsX" yaml:"pixelsX"`
	DistanceX float64 `json:"distanceX" yaml:"distanceX"`
	PixelsY   float64 `json:"pixelsY" yaml:"pixelsY"`
	DistanceY float64 `json:"distanceY" yaml:"distanceY"`
}

// RegionSpec describes a scale region by polygon points or by min/max bounds
type RegionSpec struct {
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	Points      []geometry.Point `json:"points,omitempty" yaml:"points,omitempty"`
	Min         *geometry.Point  `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *geometry.Point  `json:"max,omitempty" yaml:"max,omitempty"`
	Calibration CalibrationSpec  `json:"calibration" yaml:"calibration"`
}

// MeasurementSpec is one measurement step
type MeasurementSpec struct {
	Type     record.Type `json:"type" yaml:"type"`
	Geometry `yaml:",inline"`
}

// ParseScript decodes a YAML script
func ParseScript(r io.Reader) (*Script, error) {
	var sc Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return &sc, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	return &sc, nil
}

// LoadScript reads a YAML script file
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return ParseScript(f)
}

// Build creates the calibration described by c. unit and dpi are used when c
// does not set them.
func (c CalibrationSpec) Build(unit units.Unit, dpi float64) (calibration.Calibration, error) {
	if c.Unit != "" {
		u, err := units.ParseUnit(string(c.Unit))
		if err != nil {
			return calibration.Calibration{}, fmt.Errorf("%w: %w", calibration.ErrInvalidCalibration, err)
		}
		unit = u
	}
	if c.DPI > 0 {
		dpi = c.DPI
	}

	switch {
	case c.Dual != nil:
		d := c.Dual
		return calibration.DualAxis(d.PixelsX, d.DistanceX, d.PixelsY, d.DistanceY, unit)

	case c.PixelsPerUnit != 0:
		return calibration.FromPixelsPerUnit(c.PixelsPerUnit, unit)

	case c.Distance != "":
		actual, ok := format.ParseDistance(c.Distance, unit)
		if !ok {
			return calibration.Calibration{}, fmt.Errorf("%w: cannot parse distance %q", calibration.ErrInvalidCalibration, c.Distance)
		}
		pixels := c.PixelDistance
		if len(c.Points) == 2 {
			pixels = c.Points[0].Distance(c.Points[1])
		}
		if c.Preset != "" {
			p, err := lookupPreset(c.Preset)
			if err != nil {
				return calibration.Calibration{}, err
			}
			return calibration.FromPreset(p, pixels, actual, unit)
		}
		return calibration.FromReference(pixels, actual, unit)

	case c.Preset != "":
		p, err := lookupPreset(c.Preset)
		if err != nil {
			return calibration.Calibration{}, err
		}
		return calibration.FromPresetDPI(p, dpi, unit)
	}
	return calibration.Calibration{}, fmt.Errorf("%w: no reference, scale or preset given", calibration.ErrInvalidCalibration)
}

func lookupPreset(name string) (calibration.Preset, error) {
	p, ok := calibration.LookupPreset(name)
	if !ok {
		return calibration.Preset{}, fmt.Errorf("%w: unknown preset %q", calibration.ErrInvalidCalibration, name)
	}
	return p, nil
}

// Run executes the script against s and returns the records it created.
// dpi is the resolution used by preset calibrations without their own.
// Run stops at the first failing step.
func (s *Session) Run(sc *Script, dpi float64) ([]record.Record, error) {
	if sc.Unit != "" {
		u, err := units.ParseUnit(string(sc.Unit))
		if err != nil {
			return nil, fmt.Errorf("%w: unit: %w", ErrInvalidScript, err)
		}
		if err := s.SetUnit(u); err != nil {
			return nil, err
		}
	}
	unit := s.Unit()

	if sc.Calibration != nil {
		c, err := sc.Calibration.Build(unit, dpi)
		if err != nil {
			return nil, fmt.Errorf("calibration: %w", err)
		}
		if err := s.SetCalibration(c); err != nil {
			return nil, fmt.Errorf("calibration: %w", err)
		}
	}

	for i, spec := range sc.Regions {
		c, err := spec.Calibration.Build(unit, dpi)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i+1, err)
		}
		switch {
		case spec.Min != nil && spec.Max != nil:
			_, err = s.AddRegionBounds(*spec.Min, *spec.Max, c, spec.Name)
		default:
			_, err = s.AddRegion(spec.Points, c, spec.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i+1, err)
		}
	}

	out := make([]record.Record, 0, len(sc.Measurements))
	for i, spec := range sc.Measurements {
		t, err := record.ParseType(string(spec.Type))
		if err != nil {
			return out, fmt.Errorf("measurement %d: %w", i+1, err)
		}
		r, err := s.Measure(t, spec.Geometry)
		if err != nil {
			return out, fmt.Errorf("measurement %d (%s): %w", i+1, t, err)
		}
		out = append(out, r)
	}
	return out, nil
}

package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floorPlan = `
name: floor plan
unit: ft
calibration:
  points: [{x: 0, y: 0}, {x: 0, y: 192}]
  distance: "2'"
regions:
  - name: Detail A
    min: {x: 1000, y: 1000}
    max: {x: 2000, y: 2000}
    calibration:
      pixelsPerUnit: 48
measurements:
  - type: linear
    points: [{x: 0, y: 0}, {x: 192, y: 0}]
  - type: cutout
    points: [{x: 0, y: 0}, {x: 960, y: 0}, {x: 960, y: 960}, {x: 0, y: 960}]
    holes:
      - [{x: 96, y: 96}, {x: 288, y: 96}, {x: 288, y: 288}, {x: 96, y: 288}]
  - type: linear
    points: [{x: 1000, y: 1000}, {x: 1096, y: 1000}]
  - type: volume
    points: [{x: 0, y: 0}, {x: 96, y: 0}, {x: 96, y: 96}, {x: 0, y: 96}]
    height: 6
    heightUnit: in
`

func TestRunScript(t *testing.T) {
	sc, err := ParseScript(strings.NewReader(floorPlan))
	require.NoError(t, err)
	assert.Equal(t, "floor plan", sc.Name)
	require.Len(t, sc.Measurements, 4)

	s := New(units.Meter)
	records, err := s.Run(sc, 96)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, units.Foot, s.Unit())
	assert.Equal(t, 2.0, records[0].Value)

	assert.Equal(t, record.TypeCutout, records[1].Type)
	assert.InDelta(t, 96, records[1].Value, 1e-10)

	assert.Equal(t, 2.0, records[2].Value, "measured with the region scale")

	assert.InDelta(t, 0.5, records[3].Value, 1e-10)
	assert.Len(t, s.Regions(), 1)
	assert.Equal(t, "detail-a", s.Regions()[0].Slug)
}

func TestRunScriptStopsAtFailure(t *testing.T) {
	sc, err := ParseScript(strings.NewReader(`
calibration:
  pixelsPerUnit: 10
measurements:
  - type: linear
    points: [{x: 0, y: 0}, {x: 10, y: 0}]
  - type: area
    points: [{x: 0, y: 0}, {x: 10, y: 0}]
`))
	require.NoError(t, err)

	s := New(units.Foot)
	records, err := s.Run(sc, 96)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "measurement 2 (area)")
	assert.Len(t, records, 1)
}

func TestRunScriptUncalibrated(t *testing.T) {
	sc, err := ParseScript(strings.NewReader(`
measurements:
  - type: linear
    points: [{x: 0, y: 0}, {x: 10, y: 0}]
`))
	require.NoError(t, err)

	_, err = New(units.Foot).Run(sc, 96)
	assert.ErrorIs(t, err, ErrUncalibrated)
}

func TestParseScriptInvalid(t *testing.T) {
	_, err := ParseScript(strings.NewReader("measurements:\n  - type: linear\n    colour: red\n"))
	assert.ErrorIs(t, err, ErrInvalidScript, "unknown fields are rejected")

	sc, err := ParseScript(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, sc.Measurements)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(floorPlan), 0644))

	sc, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, sc.Regions, 1)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCalibrationSpecBuild(t *testing.T) {
	tests := []struct {
		name string
		spec CalibrationSpec
		ppu  float64
	}{
		{"pixels per unit", CalibrationSpec{PixelsPerUnit: 96}, 96},
		{"pixel distance", CalibrationSpec{PixelDistance: 126, Distance: `10'6"`}, 12},
		{"preset with dpi", CalibrationSpec{Preset: `1/8" = 1'`, DPI: 768}, 96},
		{"preset with reference", CalibrationSpec{Preset: "1:100", PixelDistance: 500, Distance: "5", Unit: units.Meter}, 100},
		{"dual axis", CalibrationSpec{Dual: &DualAxisSpec{PixelsX: 100, DistanceX: 10, PixelsY: 400, DistanceY: 10}}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.spec.Build(units.Foot, 96)
			require.NoError(t, err)
			assert.InDelta(t, tt.ppu, c.PixelsPerUnit(), 1e-9)
		})
	}
}

func TestCalibrationSpecBuildInvalid(t *testing.T) {
	tests := []struct {
		name string
		spec CalibrationSpec
	}{
		{"empty", CalibrationSpec{}},
		{"unknown preset", CalibrationSpec{Preset: "1:3"}},
		{"bad distance", CalibrationSpec{PixelDistance: 100, Distance: "far"}},
		{"zero distance", CalibrationSpec{PixelDistance: 100, Distance: "0"}},
		{"bad unit", CalibrationSpec{PixelsPerUnit: 10, Unit: "cubit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Build(units.Foot, 96)
			assert.ErrorIs(t, err, calibration.ErrInvalidCalibration)
		})
	}
}

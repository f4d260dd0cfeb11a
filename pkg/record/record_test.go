package record

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinear(t *testing.T) {
	r, err := New(Linear{Distance: 2}, units.Foot)
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, TypeLinear, r.Type)
	assert.Equal(t, 2.0, r.Headline())
	assert.Equal(t, units.Foot, r.Unit)
	assert.False(t, r.Timestamp.IsZero())

	require.Len(t, r.Conversions, len(units.All()))
	assert.Equal(t, 2.0, r.Conversions[units.Foot])
	assert.InDelta(t, 24.0, r.Conversions[units.Inch], 1e-9)
	assert.InDelta(t, 0.6096, r.Conversions[units.Meter], 1e-12)
}

func TestNewAreaUsesSquaredFactors(t *testing.T) {
	r, err := New(Area{Area: 100, Perimeter: 40}, units.Foot)
	require.NoError(t, err)

	assert.InDelta(t, 9.290304, r.Conversions[units.Meter], 1e-9)
	assert.InDelta(t, 14400, r.Conversions[units.Inch], 1e-6)
	assert.Equal(t, "ft²", r.UnitLabel())
}

func TestNewVolumeUsesCubedFactors(t *testing.T) {
	r, err := New(Volume{BaseArea: 10, Height: 0.1, Volume: 1}, units.Yard)
	require.NoError(t, err)

	assert.InDelta(t, 27.0, r.Conversions[units.Foot], 1e-9)
	assert.Equal(t, "yd³", r.UnitLabel())
}

func TestNewDimensionless(t *testing.T) {
	angle, err := New(Angle{Angle: 90}, "")
	require.NoError(t, err)
	assert.Nil(t, angle.Conversions)
	assert.Equal(t, "°", angle.UnitLabel())

	count, err := New(Count{Number: 3}, "")
	require.NoError(t, err)
	assert.Equal(t, 3.0, count.Headline())
	assert.Equal(t, "", count.UnitLabel())
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Linear{Distance: 1}, "furlong")
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.ErrorIs(t, err, units.ErrInvalidUnit)

	_, err = New(Angle{Angle: 45}, "cubit")
	assert.ErrorIs(t, err, units.ErrInvalidUnit)

	_, err = New(nil, units.Foot)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestNewRejectsNonFiniteValues(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		unit    units.Unit
	}{
		{"infinite headline", Linear{Distance: math.Inf(1)}, units.Foot},
		{"NaN angle", Angle{Angle: math.NaN()}, ""},
		{"infinite secondary value", Circle{Radius: 1, Diameter: 2, Circumference: 6.28, Area: math.Inf(1)}, units.Foot},
		{"NaN segment", Polyline{TotalLength: 1, Segments: []float64{1, math.NaN()}}, units.Foot},
		{"conversion overflows", Area{Area: 1e300, Perimeter: 1}, units.Mile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.payload, tt.unit)
			assert.ErrorIs(t, err, ErrNotFinite)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestNewCopiesSegments(t *testing.T) {
	segments := []float64{1, 2}
	r, err := New(Polyline{TotalLength: 3, Segments: segments}, units.Foot)
	require.NoError(t, err)

	segments[0] = 999
	assert.Equal(t, []float64{1, 2}, r.Payload.(Polyline).Segments)
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r, err := New(Count{Number: i}, "")
		require.NoError(t, err)
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{"cutout", Cutout{GrossArea: 100, CutoutArea: 4, NetArea: 96}, "gross 100.00, cutout 4.00"},
		{"area", Area{Area: 100, Perimeter: 40}, "perimeter 40.00 ft"},
		{"polyline", Polyline{TotalLength: 3, Segments: []float64{1, 2}}, "2 segments: 1.00, 2.00"},
		{"volume", Volume{BaseArea: 10, Height: 2, Volume: 20}, "base 10.00 ft², height 2.00 ft"},
		{"slope", Slope{Rise: 2.5, Run: 10, RiseRunRatio: "1:4", SlopePercentage: 25, SlopeDegrees: 14.036}, "rise 2.50 ft, run 10.00 ft, 1:4, 14.04°"},
		{"linear", Linear{Distance: 2}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.payload, units.Foot)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Summary(2))
		})
	}
}

func TestRow(t *testing.T) {
	h := NewHistory()
	r, err := New(Cutout{GrossArea: 100, CutoutArea: 4, NetArea: 96}, units.Foot)
	require.NoError(t, err)
	r, err = h.Append(r)
	require.NoError(t, err)

	row := r.Row(2)
	require.Len(t, row, len(Columns))
	assert.Equal(t, []string{"1", "cutout", "96.00", "ft²", "gross 100.00, cutout 4.00"}, row[:5])
	assert.NotEmpty(t, row[5])

	c, err := New(Count{Number: 7}, "")
	require.NoError(t, err)
	assert.Equal(t, "7", c.Row(2)[2])
}

func TestWithCalibration(t *testing.T) {
	cal, err := calibration.FromPixelsPerUnit(96, units.Foot)
	require.NoError(t, err)

	r, err := New(Linear{Distance: 2}, units.Foot)
	require.NoError(t, err)
	withCal := r.WithCalibration(cal)

	assert.Nil(t, r.Calibration)
	require.NotNil(t, withCal.Calibration)
	assert.Equal(t, 96.0, withCal.Calibration.PixelsPerUnit)
	assert.Equal(t, r.ID, withCal.ID)
}

func TestRecordJSON(t *testing.T) {
	r, err := New(Slope{Rise: 2.5, Run: 10, RiseRunRatio: "1:4", SlopePercentage: 25, SlopeDegrees: 14.036}, units.Foot)
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "slope", decoded["type"])
	assert.Equal(t, 25.0, decoded["value"])
	payload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1:4", payload["riseRunRatio"])
	assert.Equal(t, 25.0, payload["slopePercentage"])
}

func TestParseType(t *testing.T) {
	for _, typ := range Types() {
		got, err := ParseType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := ParseType("hexagon")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestDimension(t *testing.T) {
	assert.Equal(t, 1, TypeLinear.Dimension())
	assert.Equal(t, 1, TypeCircle.Dimension())
	assert.Equal(t, 2, TypeCutout.Dimension())
	assert.Equal(t, 3, TypeVolume.Dimension())
	assert.Equal(t, 0, TypeSlope.Dimension())
	assert.Equal(t, 0, TypeCount.Dimension())
}

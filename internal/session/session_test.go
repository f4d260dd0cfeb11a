package session

import (
	"math"
	"testing"

	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/regions"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) geometry.Point {
	return geometry.NewPoint(x, y)
}

func square(x, y, size float64) []geometry.Point {
	return []geometry.Point{pt(x, y), pt(x+size, y), pt(x+size, y+size), pt(x, y+size)}
}

func calibrated(t *testing.T, ppu float64) *Session {
	t.Helper()
	s := New(units.Foot)
	c, err := calibration.FromPixelsPerUnit(ppu, units.Foot)
	require.NoError(t, err)
	require.NoError(t, s.SetCalibration(c))
	return s
}

func TestCalibrate(t *testing.T) {
	s := New(units.Foot)
	_, ok := s.Calibration()
	assert.False(t, ok)

	c, err := s.Calibrate(pt(0, 0), pt(0, 192), 2, "")
	require.NoError(t, err)
	assert.Equal(t, 96.0, c.PixelsPerUnit())
	assert.Equal(t, units.Foot, c.Unit())

	_, err = s.Calibrate(pt(0, 0), pt(0, 192), 0, units.Foot)
	assert.ErrorIs(t, err, calibration.ErrInvalidCalibration)

	current, ok := s.Calibration()
	require.True(t, ok)
	assert.Equal(t, 96.0, current.PixelsPerUnit(), "a failed recalibration keeps the previous scale")

	assert.ErrorIs(t, s.SetCalibration(calibration.Calibration{}), calibration.ErrInvalidCalibration)
}

func TestMeasureDistance(t *testing.T) {
	s := calibrated(t, 96)

	r, err := s.MeasureDistance(pt(0, 0), pt(192, 0))
	require.NoError(t, err)
	assert.Equal(t, record.TypeLinear, r.Type)
	assert.Equal(t, 2.0, r.Value)
	assert.Equal(t, units.Foot, r.Unit)
	assert.Equal(t, uint64(1), r.Seq)
	require.NotNil(t, r.Calibration)
	assert.Equal(t, 96.0, r.Calibration.PixelsPerUnit)
	assert.InDelta(t, 0.6096, r.Conversions[units.Meter], 1e-12)
}

func TestMeasureUncalibrated(t *testing.T) {
	s := New(units.Foot)

	_, err := s.MeasureDistance(pt(0, 0), pt(10, 0))
	assert.ErrorIs(t, err, ErrUncalibrated)
	_, err = s.MeasureArea(square(0, 0, 10))
	assert.ErrorIs(t, err, ErrUncalibrated)
	assert.Equal(t, 0, s.History().Len())

	// angles and counts need no scale
	_, err = s.MeasureAngle(pt(10, 0), pt(0, 0), pt(0, 10))
	assert.NoError(t, err)
	_, err = s.Count(pt(1, 1))
	assert.NoError(t, err)
}

func TestMeasureCutout(t *testing.T) {
	s := calibrated(t, 10)

	r, err := s.MeasureCutout(square(0, 0, 100), [][]geometry.Point{square(10, 10, 20)})
	require.NoError(t, err)

	payload, ok := r.Payload.(record.Cutout)
	require.True(t, ok)
	assert.InDelta(t, 100, payload.GrossArea, 1e-10)
	assert.InDelta(t, 4, payload.CutoutArea, 1e-10)
	assert.InDelta(t, 96, payload.NetArea, 1e-10)
	assert.Equal(t, "ft²", r.UnitLabel())
	assert.InDelta(t, 96*0.3048*0.3048, r.Conversions[units.Meter], 1e-9)
}

func TestMeasureAreaUsesRegionAtCentroid(t *testing.T) {
	s := calibrated(t, 10)
	c, err := calibration.FromPixelsPerUnit(20, units.Foot)
	require.NoError(t, err)
	_, err = s.AddRegion(square(0, 0, 200), c, "detail")
	require.NoError(t, err)

	inside, err := s.MeasureArea(square(0, 0, 100))
	require.NoError(t, err)
	assert.InDelta(t, 25, inside.Value, 1e-10)

	outside, err := s.MeasureArea(square(300, 0, 100))
	require.NoError(t, err)
	assert.InDelta(t, 100, outside.Value, 1e-10)
}

func TestRemoveRegionKeepsRecords(t *testing.T) {
	s := calibrated(t, 10)
	c, err := calibration.FromPixelsPerUnit(20, units.Foot)
	require.NoError(t, err)
	region, err := s.AddRegion(square(0, 0, 200), c, "detail")
	require.NoError(t, err)

	r, err := s.MeasureDistance(pt(0, 0), pt(40, 0))
	require.NoError(t, err)
	assert.Equal(t, 2.0, r.Value)

	require.NoError(t, s.RemoveRegion(region.ID))
	assert.ErrorIs(t, s.RemoveRegion(region.ID), regions.ErrRegionNotFound)

	stored, ok := s.History().Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, 2.0, stored.Value)

	after, err := s.MeasureDistance(pt(0, 0), pt(40, 0))
	require.NoError(t, err)
	assert.Equal(t, 4.0, after.Value)
}

func TestMeasureSlope(t *testing.T) {
	s := calibrated(t, 12)

	r, err := s.MeasureSlope(pt(0, 0), pt(120, 30))
	require.NoError(t, err)

	p, ok := r.Payload.(record.Slope)
	require.True(t, ok)
	assert.InDelta(t, 10, p.Run, 1e-10)
	assert.InDelta(t, 2.5, p.Rise, 1e-10)
	assert.InDelta(t, 25, p.SlopePercentage, 1e-10)
	assert.InDelta(t, 14.036, p.SlopeDegrees, 1e-3)
	assert.Equal(t, "1:4", p.RiseRunRatio)
	assert.Nil(t, r.Conversions)
}

func TestMeasureAngle(t *testing.T) {
	s := New(units.Foot)

	r, err := s.MeasureAngle(pt(10, 0), pt(0, 0), pt(0, 10))
	require.NoError(t, err)
	assert.InDelta(t, 90, r.Value, 1e-6)

	_, err = s.MeasureAngle(pt(0, 0), pt(0, 0), pt(0, 10))
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestMeasureCircle(t *testing.T) {
	s := calibrated(t, 10)

	fit, err := s.MeasureCircle([]geometry.Point{pt(10, 0), pt(0, 10), pt(-10, 0)})
	require.NoError(t, err)
	p := fit.Payload.(record.Circle)
	assert.InDelta(t, 1, p.Radius, 1e-10)
	assert.InDelta(t, 2, fit.Value, 1e-10)

	rim, err := s.MeasureCircle([]geometry.Point{pt(0, 0), pt(30, 40)})
	require.NoError(t, err)
	assert.InDelta(t, 10, rim.Value, 1e-10)

	_, err = s.MeasureCircle([]geometry.Point{pt(0, 0), pt(1, 1), pt(2, 2)})
	assert.ErrorIs(t, err, geometry.ErrCollinear)

	bounds, err := s.MeasureCircleBounds(pt(0, 0), 40, 60)
	require.NoError(t, err)
	assert.InDelta(t, 4, bounds.Value, 1e-10)
}

func TestMeasureVolume(t *testing.T) {
	s := calibrated(t, 96)

	r, err := s.MeasureVolume(square(0, 0, 96), 12, units.Inch)
	require.NoError(t, err)

	p := r.Payload.(record.Volume)
	assert.InDelta(t, 1, p.BaseArea, 1e-10)
	assert.InDelta(t, 1, p.Height, 1e-10)
	assert.InDelta(t, 1, r.Value, 1e-10)
	assert.InDelta(t, 1728, r.Conversions[units.Inch], 1e-6)

	_, err = s.MeasureVolume(square(0, 0, 96), 0, units.Foot)
	assert.ErrorIs(t, err, geometry.ErrInvalidDimension)
}

func TestMeasureInsufficientPoints(t *testing.T) {
	s := calibrated(t, 10)

	_, err := s.MeasurePolyline([]geometry.Point{pt(0, 0)})
	assert.ErrorIs(t, err, geometry.ErrInsufficientPoints)
	_, err = s.MeasureArea(square(0, 0, 10)[:2])
	assert.ErrorIs(t, err, geometry.ErrInsufficientPoints)
	_, err = s.Measure(record.TypeLinear, Geometry{})
	assert.ErrorIs(t, err, geometry.ErrInsufficientPoints)
	_, err = s.Measure("hexagon", Geometry{Points: square(0, 0, 10)})
	assert.ErrorIs(t, err, record.ErrInvalidType)
}

func TestMeasureTooManyPoints(t *testing.T) {
	s := calibrated(t, 10)

	_, err := s.Measure(record.TypeLinear, Geometry{Points: square(0, 0, 10)})
	assert.ErrorIs(t, err, ErrTooManyPoints)
	assert.NotErrorIs(t, err, geometry.ErrInsufficientPoints)
	_, err = s.Measure(record.TypeCount, Geometry{Points: square(0, 0, 10)[:2]})
	assert.ErrorIs(t, err, ErrTooManyPoints)
	_, err = s.MeasureCircle(square(0, 0, 10))
	assert.ErrorIs(t, err, ErrTooManyPoints)
	assert.Equal(t, 0, s.History().Len())
}

func TestMeasureOverflowIsNotRecorded(t *testing.T) {
	s := calibrated(t, 10)

	_, err := s.MeasureArea(square(0, 0, 1e200))
	assert.ErrorIs(t, err, geometry.ErrInvalidDimension)
	_, err = s.MeasureDistance(pt(-1e308, -1e308), pt(1e308, 1e308))
	assert.ErrorIs(t, err, geometry.ErrInvalidDimension)

	hole := square(20, 20, 10)
	hole[2] = pt(math.NaN(), 30)
	_, err = s.MeasureCutout(square(0, 0, 100), [][]geometry.Point{hole})
	assert.ErrorIs(t, err, geometry.ErrInvalidDimension)

	assert.Equal(t, 0, s.History().Len())

	r, err := s.MeasureDistance(pt(0, 0), pt(30, 40))
	require.NoError(t, err)
	assert.Equal(t, 5.0, r.Value)
}

func TestCountNumbers(t *testing.T) {
	s := New(units.Foot)
	for i := 1; i <= 3; i++ {
		r, err := s.Count(pt(float64(i), 0))
		require.NoError(t, err)
		assert.Equal(t, float64(i), r.Value)
	}
}

func TestRemeasure(t *testing.T) {
	s := calibrated(t, 96)
	old, err := s.MeasureDistance(pt(0, 0), pt(96, 0))
	require.NoError(t, err)

	updated, err := s.Remeasure(old.ID, Geometry{Points: []geometry.Point{pt(0, 0), pt(288, 0)}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Value)
	assert.Equal(t, old.ID, updated.Supersedes)

	assert.Equal(t, 2, s.History().Len())
	active := s.History().Active()
	require.Len(t, active, 1)
	assert.Equal(t, updated.ID, active[0].ID)

	_, err = s.Remeasure("missing", Geometry{})
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestRemeasureKeepsCountAndHeight(t *testing.T) {
	s := calibrated(t, 96)
	_, err := s.Count(pt(0, 0))
	require.NoError(t, err)
	second, err := s.Count(pt(5, 5))
	require.NoError(t, err)

	moved, err := s.Remeasure(second.ID, Geometry{Points: []geometry.Point{pt(50, 50)}})
	require.NoError(t, err)
	assert.Equal(t, 2.0, moved.Value)

	vol, err := s.MeasureVolume(square(0, 0, 96), 2, units.Foot)
	require.NoError(t, err)
	bigger, err := s.Remeasure(vol.ID, Geometry{Points: square(0, 0, 192)})
	require.NoError(t, err)
	assert.InDelta(t, 8, bigger.Value, 1e-10)
}

func TestInteractiveCalibrationAndMeasure(t *testing.T) {
	s := New(units.Foot)

	require.NoError(t, s.Start(measurement.ToolCalibrate))
	res, err := s.Click(pt(0, 0))
	require.NoError(t, err)
	assert.Nil(t, res.Request)

	res, err = s.Click(pt(0, 192))
	require.NoError(t, err)
	require.NotNil(t, res.Request)
	assert.Equal(t, measurement.RequestCalibrationDistance, res.Request.Kind)

	state, _ := s.ToolState()
	assert.Equal(t, measurement.CalibrationPending, state)

	res, err = s.ProvideText(`2'`, "")
	require.NoError(t, err)
	require.NotNil(t, res.Calibration)
	assert.Equal(t, 96.0, res.Calibration.PixelsPerUnit())

	require.NoError(t, s.Start(measurement.ToolLinear))
	_, err = s.Click(pt(0, 0))
	require.NoError(t, err)
	res, err = s.Click(pt(0, 96))
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, 1.0, res.Record.Value)

	state, tool := s.ToolState()
	assert.Equal(t, measurement.Idle, state)
	assert.Equal(t, measurement.Tool(""), tool)
}

func TestInteractiveCancelCreatesNoRecord(t *testing.T) {
	s := calibrated(t, 10)

	require.NoError(t, s.Start(measurement.ToolArea))
	for _, p := range square(0, 0, 10) {
		_, err := s.Click(p)
		require.NoError(t, err)
	}
	assert.True(t, s.Cancel())
	assert.Equal(t, 0, s.History().Len())

	_, err := s.Finish()
	assert.ErrorIs(t, err, measurement.ErrNoActiveTool)
}

func TestInteractiveVolume(t *testing.T) {
	s := calibrated(t, 96)

	require.NoError(t, s.Start(measurement.ToolVolume))
	for _, p := range square(0, 0, 96) {
		_, err := s.Click(p)
		require.NoError(t, err)
	}
	res, err := s.Finish()
	require.NoError(t, err)
	require.NotNil(t, res.Request)

	res, err = s.Provide(measurement.Response{Value: 3})
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.InDelta(t, 3, res.Record.Value, 1e-10)
}

func TestInteractiveCutout(t *testing.T) {
	s := calibrated(t, 10)

	require.NoError(t, s.Start(measurement.ToolCutout))
	for _, p := range square(0, 0, 100) {
		_, err := s.Click(p)
		require.NoError(t, err)
	}
	_, err := s.Finish()
	require.NoError(t, err)
	for _, p := range square(10, 10, 20) {
		_, err := s.Click(p)
		require.NoError(t, err)
	}
	res, err := s.Finish()
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.InDelta(t, 96, res.Record.Value, 1e-10)
}

func TestApplyUnknownTool(t *testing.T) {
	s := calibrated(t, 10)
	_, err := s.Apply(measurement.Commit{Tool: "lasso", Points: square(0, 0, 10)})
	assert.ErrorIs(t, err, measurement.ErrUnknownTool)
}

func TestSetUnit(t *testing.T) {
	s := New("")
	assert.Equal(t, units.Foot, s.Unit())
	require.NoError(t, s.SetUnit(units.Meter))
	assert.Equal(t, units.Meter, s.Unit())
	assert.ErrorIs(t, s.SetUnit("cubit"), units.ErrInvalidUnit)
}

package regions

import (
	"testing"

	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func scale(t *testing.T, ppu float64) calibration.Calibration {
	t.Helper()
	c, err := calibration.FromPixelsPerUnit(ppu, units.Foot)
	require.NoError(t, err)
	return c
}

func square(x, y, size float64) []geometry.Point {
	return []geometry.Point{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	}
}

func TestAddRegion(t *testing.T) {
	idx := NewIndex()

	r, err := idx.AddRegion(square(0, 0, 100), scale(t, 10), "Floor Plan A")
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Floor Plan A", r.Name)
	assert.Equal(t, "floor-plan-a", r.Slug)
	assert.Equal(t, uint64(1), r.Seq)
	assert.False(t, r.Rectangular)
	assert.Equal(t, r2.Vec{X: 100, Y: 100}, r.Bounds.Max)
	assert.Equal(t, 1, idx.Len())
}

func TestAddRegionDefaultName(t *testing.T) {
	idx := NewIndex()
	_, err := idx.AddRegion(square(0, 0, 10), scale(t, 1), "")
	require.NoError(t, err)
	r, err := idx.AddRegion(square(20, 0, 10), scale(t, 1), "")
	require.NoError(t, err)

	assert.Equal(t, "Region 2", r.Name)
	assert.Equal(t, "region-2", r.Slug)
}

func TestAddRegionDuplicateNamesGetUniqueSlugs(t *testing.T) {
	idx := NewIndex()
	first, err := idx.AddRegion(square(0, 0, 10), scale(t, 1), "Detail A")
	require.NoError(t, err)
	second, err := idx.AddRegion(square(0, 0, 10), scale(t, 2), "Detail A")
	require.NoError(t, err)
	third, err := idx.AddRegion(square(0, 0, 10), scale(t, 3), "Detail A")
	require.NoError(t, err)

	assert.Equal(t, "detail-a", first.Slug)
	assert.Equal(t, "detail-a-2", second.Slug)
	assert.Equal(t, "detail-a-3", third.Slug)

	got, ok := idx.Get("detail-a-2")
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)

	require.NoError(t, idx.Remove("detail-a"))
	_, ok = idx.Get(first.ID)
	assert.False(t, ok)
	_, ok = idx.Get(second.ID)
	assert.True(t, ok)

	fourth, err := idx.AddRegion(square(0, 0, 10), scale(t, 4), "Detail A")
	require.NoError(t, err)
	assert.Equal(t, "detail-a", fourth.Slug, "a freed slug is reused")
}

func TestAddRegionInvalid(t *testing.T) {
	idx := NewIndex()
	valid := scale(t, 10)

	tests := []struct {
		name   string
		points []geometry.Point
		cal    calibration.Calibration
	}{
		{"two points", square(0, 0, 10)[:2], valid},
		{"collinear", []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, valid},
		{"uncalibrated", square(0, 0, 10), calibration.Calibration{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idx.AddRegion(tt.points, tt.cal, "bad")
			assert.ErrorIs(t, err, ErrInvalidRegion)
		})
	}
	assert.Equal(t, 0, idx.Len())
}

func TestAddRegionCopiesPoints(t *testing.T) {
	idx := NewIndex()
	pts := square(0, 0, 10)
	r, err := idx.AddRegion(pts, scale(t, 1), "copy")
	require.NoError(t, err)

	pts[0] = geometry.Point{X: 500, Y: 500}
	r.Points[1] = geometry.Point{X: 500, Y: 500}

	stored, ok := idx.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, square(0, 0, 10), stored.Points)
}

func TestAddBounds(t *testing.T) {
	idx := NewIndex()

	r, err := idx.AddBounds(r2.Box{Min: r2.Vec{X: 50, Y: 40}, Max: r2.Vec{X: 10, Y: 0}}, scale(t, 2), "Detail")
	require.NoError(t, err)
	assert.True(t, r.Rectangular)
	assert.Len(t, r.Points, 4)
	assert.Equal(t, r2.Vec{X: 10, Y: 0}, r.Bounds.Min)
	assert.Equal(t, r2.Vec{X: 50, Y: 40}, r.Bounds.Max)

	_, err = idx.AddBounds(r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 0, Y: 10}}, scale(t, 2), "flat")
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestResolve(t *testing.T) {
	idx := NewIndex()
	global := scale(t, 10)
	detail := scale(t, 40)

	_, err := idx.AddRegion(square(0, 0, 100), detail, "detail")
	require.NoError(t, err)

	cal, ok := idx.Resolve(geometry.Point{X: 50, Y: 50}, global)
	assert.True(t, ok)
	assert.Equal(t, 40.0, cal.PixelsPerUnit())

	cal, ok = idx.Resolve(geometry.Point{X: 150, Y: 50}, global)
	assert.True(t, ok)
	assert.Equal(t, 10.0, cal.PixelsPerUnit())
}

func TestResolveUncalibrated(t *testing.T) {
	idx := NewIndex()
	_, err := idx.AddRegion(square(0, 0, 100), scale(t, 40), "detail")
	require.NoError(t, err)

	_, ok := idx.Resolve(geometry.Point{X: 150, Y: 50}, calibration.Calibration{})
	assert.False(t, ok)

	cal, ok := idx.Resolve(geometry.Point{X: 50, Y: 50}, calibration.Calibration{})
	assert.True(t, ok)
	assert.Equal(t, 40.0, cal.PixelsPerUnit())
}

func TestResolveMostRecentWins(t *testing.T) {
	idx := NewIndex()
	_, err := idx.AddRegion(square(0, 0, 100), scale(t, 10), "outer")
	require.NoError(t, err)
	inner, err := idx.AddRegion(square(25, 25, 50), scale(t, 20), "inner")
	require.NoError(t, err)

	r, ok := idx.ResolveRegion(geometry.Point{X: 50, Y: 50})
	require.True(t, ok)
	assert.Equal(t, inner.ID, r.ID)

	// a later region covering the earlier one takes over
	_, err = idx.AddRegion(square(0, 0, 100), scale(t, 30), "overlay")
	require.NoError(t, err)

	cal, ok := idx.Resolve(geometry.Point{X: 50, Y: 50}, calibration.Calibration{})
	require.True(t, ok)
	assert.Equal(t, 30.0, cal.PixelsPerUnit())
}

func TestResolveBoundary(t *testing.T) {
	idx := NewIndex()
	global := scale(t, 1)
	_, err := idx.AddBounds(r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 10, Y: 10}}, scale(t, 5), "left")
	require.NoError(t, err)
	_, err = idx.AddBounds(r2.Box{Min: r2.Vec{X: 10, Y: 0}, Max: r2.Vec{X: 20, Y: 10}}, scale(t, 7), "right")
	require.NoError(t, err)

	cal, _ := idx.Resolve(geometry.Point{X: 0, Y: 5}, global)
	assert.Equal(t, 5.0, cal.PixelsPerUnit(), "min edge belongs to the region")

	cal, _ = idx.Resolve(geometry.Point{X: 10, Y: 5}, global)
	assert.Equal(t, 7.0, cal.PixelsPerUnit(), "shared edge belongs to the right region")

	cal, _ = idx.Resolve(geometry.Point{X: 20, Y: 5}, global)
	assert.Equal(t, 1.0, cal.PixelsPerUnit(), "max edge falls back to global")
}

func TestRemove(t *testing.T) {
	idx := NewIndex()
	a, err := idx.AddRegion(square(0, 0, 100), scale(t, 10), "First")
	require.NoError(t, err)
	_, err = idx.AddRegion(square(200, 0, 100), scale(t, 20), "Second")
	require.NoError(t, err)

	require.NoError(t, idx.Remove(a.ID))
	require.NoError(t, idx.Remove("second"))
	assert.Equal(t, 0, idx.Len())

	err = idx.Remove(a.ID)
	assert.ErrorIs(t, err, ErrRegionNotFound)

	_, ok := idx.ResolveRegion(geometry.Point{X: 50, Y: 50})
	assert.False(t, ok)
}

func TestRegionsSnapshot(t *testing.T) {
	idx := NewIndex()
	for i := 0; i < 3; i++ {
		_, err := idx.AddRegion(square(float64(i)*20, 0, 10), scale(t, 1), "")
		require.NoError(t, err)
	}

	all := idx.Regions()
	require.Len(t, all, 3)
	for i, r := range all {
		assert.Equal(t, uint64(i+1), r.Seq)
	}

	idx.Clear()
	assert.Equal(t, 0, idx.Len())
	assert.Len(t, all, 3)
}

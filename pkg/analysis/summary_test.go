package analysis

import (
	"testing"

	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecord(t *testing.T, p record.Payload, unit units.Unit) record.Record {
	t.Helper()
	r, err := record.New(p, unit)
	require.NoError(t, err)
	return r
}

func sample(t *testing.T) []record.Record {
	return []record.Record{
		mustRecord(t, record.Linear{Distance: 1}, units.Foot),
		mustRecord(t, record.Linear{Distance: 24}, units.Inch),
		mustRecord(t, record.Area{Area: 100, Perimeter: 40}, units.Foot),
		mustRecord(t, record.Angle{Angle: 90}, ""),
		mustRecord(t, record.Angle{Angle: 30}, ""),
		mustRecord(t, record.Count{Number: 1}, ""),
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(sample(t), units.Foot)
	require.NoError(t, err)

	assert.Equal(t, 6, s.RecordCount)
	require.Len(t, s.Types, 4)

	linear := s.Types[0]
	assert.Equal(t, record.TypeLinear, linear.Type)
	assert.Equal(t, "ft", linear.Label)
	assert.Equal(t, 2, linear.Count)
	assert.InDelta(t, 3, linear.Total, 1e-9, "24 in is 2 ft")
	assert.InDelta(t, 1, linear.Min, 1e-9)
	assert.InDelta(t, 2, linear.Max, 1e-9)
	assert.InDelta(t, 1.5, linear.Avg, 1e-9)

	area := s.Types[1]
	assert.Equal(t, record.TypeArea, area.Type)
	assert.Equal(t, "ft²", area.Label)
	assert.InDelta(t, 100, area.Total, 1e-9)

	angle := s.Types[2]
	assert.Equal(t, "°", angle.Label)
	assert.Equal(t, 30.0, angle.Min)
	assert.Equal(t, 60.0, angle.Avg)

	assert.Equal(t, record.TypeCount, s.Types[3].Type)
	assert.Equal(t, 1, s.Types[3].Count)
}

func TestSummarizeEmptyAndInvalid(t *testing.T) {
	s, err := Summarize(nil, units.Meter)
	require.NoError(t, err)
	assert.Empty(t, s.Types)

	_, err = Summarize(nil, "cubit")
	assert.ErrorIs(t, err, units.ErrInvalidUnit)
}

func TestValueIn(t *testing.T) {
	r := mustRecord(t, record.Area{Area: 1}, units.Yard)
	v, err := ValueIn(r, units.Foot)
	require.NoError(t, err)
	assert.InDelta(t, 9, v, 1e-9)

	r.Conversions = nil
	v, err = ValueIn(r, units.Foot)
	require.NoError(t, err)
	assert.InDelta(t, 9, v, 1e-9, "falls back to converting the headline")
}

func TestFindLargestAndSmallest(t *testing.T) {
	records := sample(t)

	largest, err := FindLargest(records, record.TypeLinear, 1)
	require.NoError(t, err)
	require.Len(t, largest, 1)
	assert.Equal(t, 24.0, largest[0].Value, "24 in beats 1 ft")

	smallest, err := FindSmallest(records, record.TypeLinear, 5)
	require.NoError(t, err)
	require.Len(t, smallest, 2)
	assert.Equal(t, units.Foot, smallest[0].Unit)

	none, err := FindLargest(records, record.TypeVolume, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindInRange(t *testing.T) {
	found, err := FindInRange(sample(t), record.TypeLinear, units.Inch, 20, 30)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 24.0, found[0].Value)
}

package analysis

import (
	"fmt"
	"sort"

	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
	"gonum.org/v1/gonum/floats"
)

// TypeSummary holds statistics over the records of one measurement type.
// Lengths, areas and volumes are expressed in the summary unit, angles in
// degrees, slopes in percent and counts as marker numbers.
type TypeSummary struct {
	Type  record.Type `json:"type"`
	Label string      `json:"label"` // unit label of the values, e.g. "ft²"
	Count int         `json:"count"`
	Total float64     `json:"total"`
	Min   float64     `json:"min"`
	Max   float64     `json:"max"`
	Avg   float64     `json:"avg"`
}

// Summary contains statistics over a set of records
type Summary struct {
	Unit        units.Unit    `json:"unit"`
	RecordCount int           `json:"recordCount"`
	Types       []TypeSummary `json:"types"` // in record.Types order, empty types omitted
}

// Summarize computes per-type statistics over records with lengths converted to unit
func Summarize(records []record.Record, unit units.Unit) (*Summary, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %q", units.ErrInvalidUnit, unit)
	}

	values := make(map[record.Type][]float64)
	for _, r := range records {
		v, err := ValueIn(r, unit)
		if err != nil {
			return nil, err
		}
		values[r.Type] = append(values[r.Type], v)
	}

	result := &Summary{Unit: unit, RecordCount: len(records)}
	for _, t := range record.Types() {
		vs := values[t]
		if len(vs) == 0 {
			continue
		}
		total := floats.Sum(vs)
		result.Types = append(result.Types, TypeSummary{
			Type:  t,
			Label: label(t, unit),
			Count: len(vs),
			Total: total,
			Min:   floats.Min(vs),
			Max:   floats.Max(vs),
			Avg:   total / float64(len(vs)),
		})
	}
	return result, nil
}

// ValueIn returns the headline value of r with lengths, areas and volumes in unit
func ValueIn(r record.Record, unit units.Unit) (float64, error) {
	dim := r.Type.Dimension()
	if dim == 0 {
		return r.Value, nil
	}
	if v, ok := r.Conversions[unit]; ok {
		return v, nil
	}
	return units.ConvertPower(r.Value, r.Unit, unit, dim)
}

// FindInRange returns the records of type t whose value in unit lies within [min, max]
func FindInRange(records []record.Record, t record.Type, unit units.Unit, min, max float64) ([]record.Record, error) {
	var out []record.Record
	for _, r := range records {
		if r.Type != t {
			continue
		}
		v, err := ValueIn(r, unit)
		if err != nil {
			return nil, err
		}
		if v >= min && v <= max {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindLargest returns the count largest records of type t
func FindLargest(records []record.Record, t record.Type, count int) ([]record.Record, error) {
	return ranked(records, t, count, func(a, b float64) bool { return a > b })
}

// FindSmallest returns the count smallest records of type t
func FindSmallest(records []record.Record, t record.Type, count int) ([]record.Record, error) {
	return ranked(records, t, count, func(a, b float64) bool { return a < b })
}

func ranked(records []record.Record, t record.Type, count int, less func(a, b float64) bool) ([]record.Record, error) {
	type entry struct {
		r record.Record
		v float64
	}

	var entries []entry
	for _, r := range records {
		if r.Type != t {
			continue
		}
		// meters keep records measured in different units comparable
		v, err := ValueIn(r, units.Meter)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{r: r, v: v})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i].v, entries[j].v)
	})

	if count > len(entries) {
		count = len(entries)
	}
	out := make([]record.Record, count)
	for i := range out {
		out[i] = entries[i].r
	}
	return out, nil
}

func label(t record.Type, unit units.Unit) string {
	switch t.Dimension() {
	case 1:
		return string(unit)
	case 2:
		return string(unit) + "²"
	case 3:
		return string(unit) + "³"
	}
	switch t {
	case record.TypeAngle:
		return "°"
	case record.TypeSlope:
		return "%"
	}
	return ""
}

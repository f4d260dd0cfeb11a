package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidUnit is returned when a unit abbreviation is not in the conversion table
var ErrInvalidUnit = errors.New("invalid unit")

// Unit is a length unit abbreviation
type Unit string

const (
	Meter      Unit = "m"
	Centimeter Unit = "cm"
	Millimeter Unit = "mm"
	Kilometer  Unit = "km"
	Foot       Unit = "ft"
	Inch       Unit = "in"
	Yard       Unit = "yd"
	Mile       Unit = "mi"
)

// System is a display group of units
type System string

const (
	Imperial System = "imperial"
	Metric   System = "metric"
)

// Info holds display metadata for a unit
type Info struct {
	Unit   Unit
	Name   string // e.g. "Feet"
	Full   string // e.g. "feet"
	System System
	Meters float64 // conversion factor to meters
}

// table is ordered: metric first, then imperial
var table = []Info{
	{Unit: Meter, Name: "Meters", Full: "meters", System: Metric, Meters: 1},
	{Unit: Centimeter, Name: "Centimeters", Full: "centimeters", System: Metric, Meters: 0.01},
	{Unit: Millimeter, Name: "Millimeters", Full: "millimeters", System: Metric, Meters: 0.001},
	{Unit: Kilometer, Name: "Kilometers", Full: "kilometers", System: Metric, Meters: 1000},
	{Unit: Foot, Name: "Feet", Full: "feet", System: Imperial, Meters: 0.3048},
	{Unit: Inch, Name: "Inches", Full: "inches", System: Imperial, Meters: 0.0254},
	{Unit: Yard, Name: "Yards", Full: "yards", System: Imperial, Meters: 0.9144},
	{Unit: Mile, Name: "Miles", Full: "miles", System: Imperial, Meters: 1609.34},
}

var byUnit = func() map[Unit]Info {
	m := make(map[Unit]Info, len(table))
	for _, info := range table {
		m[info.Unit] = info
	}
	return m
}()

// All returns every known unit in table order
func All() []Unit {
	out := make([]Unit, len(table))
	for i, info := range table {
		out[i] = info.Unit
	}
	return out
}

// Valid reports whether u is a recognized unit
func (u Unit) Valid() bool {
	_, ok := byUnit[u]
	return ok
}

// Info returns the display metadata for u
func (u Unit) Info() (Info, error) {
	info, ok := byUnit[u]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidUnit, string(u))
	}
	return info, nil
}

// String returns the unit abbreviation
func (u Unit) String() string {
	return string(u)
}

// Factor returns the conversion factor from u to meters
func Factor(u Unit) (float64, error) {
	info, err := u.Info()
	if err != nil {
		return 0, err
	}
	return info.Meters, nil
}

// ParseUnit parses an abbreviation or a full/display name, case-insensitively
func ParseUnit(s string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, info := range table {
		if key == string(info.Unit) || key == info.Full || key == strings.ToLower(info.Name) {
			return info.Unit, nil
		}
	}
	switch key {
	case "foot", "'":
		return Foot, nil
	case "inch", "\"":
		return Inch, nil
	case "meter", "metre", "metres":
		return Meter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// Convert converts a length between two units using meters as the intermediate.
// Converting to the same unit returns value unchanged.
func Convert(value float64, from, to Unit) (float64, error) {
	return ConvertPower(value, from, to, 1)
}

// ConvertPower converts a quantity of dimension length^power, e.g. power 2 for areas
// and 3 for volumes.
func ConvertPower(value float64, from, to Unit, power int) (float64, error) {
	fromFactor, err := Factor(from)
	if err != nil {
		return 0, err
	}
	toFactor, err := Factor(to)
	if err != nil {
		return 0, err
	}
	if from == to {
		return value, nil
	}

	if power == 1 {
		return value * fromFactor / toFactor, nil
	}
	return value * math.Pow(fromFactor/toFactor, float64(power)), nil
}

// AllConversions expresses value (given in from) in every known unit, from included
func AllConversions(value float64, from Unit) (map[Unit]float64, error) {
	return AllConversionsPower(value, from, 1)
}

// AllConversionsPower is AllConversions for areas (power 2) and volumes (power 3)
func AllConversionsPower(value float64, from Unit, power int) (map[Unit]float64, error) {
	if !from.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUnit, string(from))
	}
	out := make(map[Unit]float64, len(table))
	for _, info := range table {
		v, err := ConvertPower(value, from, info.Unit, power)
		if err != nil {
			return nil, err
		}
		out[info.Unit] = v
	}
	return out, nil
}

// UnitsForSystem returns the units of a display group. Unknown systems fall back to imperial.
func UnitsForSystem(system System) []Info {
	if system != Metric {
		system = Imperial
	}
	var out []Info
	for _, info := range table {
		if info.System == system {
			out = append(out, info)
		}
	}
	return out
}

// DefaultUnit returns the unit a display group starts with
func DefaultUnit(system System) Unit {
	if system == Metric {
		return Meter
	}
	return Foot
}

// ParseSystem parses "imperial" or "metric"
func ParseSystem(s string) (System, error) {
	switch System(strings.ToLower(strings.TrimSpace(s))) {
	case Imperial:
		return Imperial, nil
	case Metric:
		return Metric, nil
	}
	return "", fmt.Errorf("unknown unit system: %q", s)
}

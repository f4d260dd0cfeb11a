package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/philipparndt/gomeasure/pkg/units"
)

// DefaultDecimals is the number of decimals used for display values
const DefaultDecimals = 2

// Number rounds value to the given number of decimal places.
// NaN and infinities format as 0, this is a display helper and not a validator.
func Number(value float64, decimals int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if decimals < 0 {
		decimals = 0
	}
	pow := math.Pow(10, float64(decimals))
	rounded := math.Round(value*pow) / pow
	if rounded == 0 {
		return 0 // drop negative zero
	}
	return rounded
}

// Measurement formats value with a fixed number of decimals, "0" for NaN/Inf
func Measurement(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(value, 'f', decimals, 64)
}

// FeetInches renders a value in feet as F' I" with inches rounded to the nearest
// whole inch. 12 rounded inches carry into the next foot, so both parts are always
// present: 12 renders as 12' 0" and 0.5 as 0' 6".
func FeetInches(feet float64) string {
	if math.IsNaN(feet) || math.IsInf(feet, 0) {
		return "0' 0\""
	}

	sign := ""
	if feet < 0 {
		sign = "-"
		feet = -feet
	}

	totalInches := int64(math.Round(feet * 12))
	if totalInches == 0 {
		sign = ""
	}
	return fmt.Sprintf("%s%d' %d\"", sign, totalInches/12, totalInches%12)
}

var feetInchesPattern = regexp.MustCompile(
	`^(-)?\s*(?:(\d+(?:\.\d+)?|\.\d+)\s*['′])?\s*(?:(\d+(?:\.\d+)?|\.\d+)\s*(?:"|″|'')?)?$`)

// ParseFeetInches parses F'I", F' I", F', I" or a bare decimal number of feet.
// It reports false for input it cannot parse.
func ParseFeetInches(input string) (float64, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	m := feetInchesPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	negative, feetPart, inchPart := m[1] != "", m[2], m[3]
	if feetPart == "" && inchPart == "" {
		return 0, false
	}
	// A trailing number without marks only counts as inches after a feet component
	if feetPart == "" && !hasInchMark(s) {
		return 0, false
	}

	var total float64
	if feetPart != "" {
		f, err := strconv.ParseFloat(feetPart, 64)
		if err != nil {
			return 0, false
		}
		total += f
	}
	if inchPart != "" {
		in, err := strconv.ParseFloat(inchPart, 64)
		if err != nil {
			return 0, false
		}
		total += in / 12
	}
	if negative {
		total = -total
	}
	return total, true
}

func hasInchMark(s string) bool {
	return strings.HasSuffix(s, `"`) || strings.HasSuffix(s, "″") || strings.HasSuffix(s, "''")
}

// ParseDistance parses a reference distance typed by a user in the given unit.
// Feet accept feet-inches notation, every other unit a plain decimal.
func ParseDistance(input string, unit units.Unit) (float64, bool) {
	if unit == units.Foot {
		return ParseFeetInches(input)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Label formats a length for an on-canvas label. Feet use feet-inches notation
// when feetInches is set.
func Label(value float64, unit units.Unit, decimals int, feetInches bool) string {
	if unit == units.Foot && feetInches {
		return FeetInches(value)
	}
	return fmt.Sprintf("%s %s", Measurement(value, decimals), unit)
}

// AreaLabel formats an area such as "96.00 ft²"
func AreaLabel(value float64, unit units.Unit, decimals int) string {
	return fmt.Sprintf("%s %s²", Measurement(value, decimals), unit)
}

// VolumeLabel formats a volume such as "12.00 ft³"
func VolumeLabel(value float64, unit units.Unit, decimals int) string {
	return fmt.Sprintf("%s %s³", Measurement(value, decimals), unit)
}

// AngleLabel formats an angle in degrees, "undefined" for NaN
func AngleLabel(degrees float64, decimals int) string {
	if math.IsNaN(degrees) {
		return "undefined"
	}
	return Measurement(degrees, decimals) + "°"
}

// Conversions renders an all-units map one line per unit in table order
func Conversions(values map[units.Unit]float64, decimals int) []string {
	lines := make([]string, 0, len(values))
	for _, u := range units.All() {
		v, ok := values[u]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", u, Measurement(v, decimals)))
	}
	return lines
}

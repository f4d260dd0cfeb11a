package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/units"
)

var (
	// ErrInvalidRecord is returned for records that cannot be created or appended
	ErrInvalidRecord = errors.New("invalid record")
	// ErrNotFound is returned when a record ID is unknown
	ErrNotFound = errors.New("record not found")
	// ErrInvalidType is returned when parsing an unknown measurement type
	ErrInvalidType = errors.New("invalid measurement type")
	// ErrNotFinite is returned when a measured or converted value overflowed to
	// infinity or is NaN
	ErrNotFinite = fmt.Errorf("%w: value is not finite", ErrInvalidRecord)
)

// Type is the kind of measurement a record holds
type Type string

const (
	TypeLinear   Type = "linear"
	TypePolyline Type = "polyline"
	TypeArea     Type = "area"
	TypeVolume   Type = "volume"
	TypeAngle    Type = "angle"
	TypeCircle   Type = "circle"
	TypeCutout   Type = "cutout"
	TypeSlope    Type = "slope"
	TypeCount    Type = "count"
)

var types = []Type{
	TypeLinear, TypePolyline, TypeArea, TypeVolume, TypeAngle,
	TypeCircle, TypeCutout, TypeSlope, TypeCount,
}

// Types returns all measurement types
func Types() []Type {
	out := make([]Type, len(types))
	copy(out, types)
	return out
}

// ParseType parses a measurement type name
func ParseType(s string) (Type, error) {
	for _, t := range types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// Dimension returns the power of length of the headline value:
// 1 for lengths, 2 for areas, 3 for volumes and 0 for dimensionless values.
func (t Type) Dimension() int {
	switch t {
	case TypeLinear, TypePolyline, TypeCircle:
		return 1
	case TypeArea, TypeCutout:
		return 2
	case TypeVolume:
		return 3
	default:
		return 0
	}
}

// Columns are the export column headers matching Record.Row
var Columns = []string{"#", "Type", "Value", "Unit", "Additional Info", "Timestamp"}

// Record is the immutable result of one measurement
type Record struct {
	ID          string                 `json:"id"`
	Seq         uint64                 `json:"seq"` // position in the history, set on append
	Type        Type                   `json:"type"`
	Unit        units.Unit             `json:"unit,omitempty"`
	Value       float64                `json:"value"`
	Payload     Payload                `json:"payload"`
	Conversions map[units.Unit]float64 `json:"conversions,omitempty"`
	Supersedes  string                 `json:"supersedes,omitempty"`
	Calibration *calibration.Metadata  `json:"calibration,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// New creates a record for payload measured in unit. Records with a length, area
// or volume headline carry the headline value converted into every unit.
func New(payload Payload, unit units.Unit) (Record, error) {
	if payload == nil {
		return Record{}, fmt.Errorf("%w: missing payload", ErrInvalidRecord)
	}

	payload = copyPayload(payload)
	if !finitePayload(payload) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFinite, payload.Type())
	}

	t := payload.Type()
	var conversions map[units.Unit]float64
	if dim := t.Dimension(); dim > 0 {
		var err error
		conversions, err = units.AllConversionsPower(payload.Headline(), unit, dim)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		for u, v := range conversions {
			if !finite(v) {
				return Record{}, fmt.Errorf("%w: %s in %s", ErrNotFinite, t, u)
			}
		}
	} else if unit != "" && !unit.Valid() {
		return Record{}, fmt.Errorf("%w: %w: %q", ErrInvalidRecord, units.ErrInvalidUnit, unit)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Record{}, fmt.Errorf("failed to generate record id: %w", err)
	}

	return Record{
		ID:          id.String(),
		Type:        t,
		Unit:        unit,
		Value:       payload.Headline(),
		Payload:     payload,
		Conversions: conversions,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// WithCalibration returns a copy of r carrying a snapshot of the calibration it was
// measured with
func (r Record) WithCalibration(c calibration.Calibration) Record {
	out := r.clone()
	m := c.Metadata()
	out.Calibration = &m
	return out
}

// Headline returns the primary value of the record
func (r Record) Headline() float64 {
	return r.Value
}

// UnitLabel returns the unit as displayed next to the headline value
func (r Record) UnitLabel() string {
	switch r.Type {
	case TypeAngle:
		return "°"
	case TypeSlope:
		return "%"
	case TypeCount:
		return ""
	}
	switch r.Type.Dimension() {
	case 2:
		return string(r.Unit) + "²"
	case 3:
		return string(r.Unit) + "³"
	default:
		return string(r.Unit)
	}
}

// Summary renders the values beside the headline, such as "gross 100.00, cutout 4.00"
func (r Record) Summary(decimals int) string {
	if r.Payload == nil {
		return ""
	}
	return r.Payload.Summary(r.Unit, decimals)
}

// Row returns the export column values in the order of Columns
func (r Record) Row(decimals int) []string {
	value := format.Measurement(r.Value, decimals)
	if r.Type == TypeCount {
		value = strconv.Itoa(int(r.Value))
	}
	return []string{
		strconv.FormatUint(r.Seq, 10),
		string(r.Type),
		value,
		r.UnitLabel(),
		r.Summary(decimals),
		r.Timestamp.Format(time.RFC3339),
	}
}

// String returns a one-line description like "linear 2.00 ft"
func (r Record) String() string {
	return fmt.Sprintf("%s %s %s", r.Type, format.Measurement(r.Value, format.DefaultDecimals), r.UnitLabel())
}

func (r Record) clone() Record {
	out := r
	if r.Conversions != nil {
		out.Conversions = make(map[units.Unit]float64, len(r.Conversions))
		for k, v := range r.Conversions {
			out.Conversions[k] = v
		}
	}
	if r.Calibration != nil {
		m := *r.Calibration
		out.Calibration = &m
	}
	out.Payload = copyPayload(r.Payload)
	return out
}

// copyPayload returns p without slices shared with the caller
func copyPayload(p Payload) Payload {
	switch v := p.(type) {
	case Polyline:
		v.Segments = append([]float64(nil), v.Segments...)
		return v
	}
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finitePayload reports whether every value of p is finite
func finitePayload(p Payload) bool {
	var values []float64
	switch v := p.(type) {
	case Linear:
		values = []float64{v.Distance}
	case Polyline:
		values = append([]float64{v.TotalLength}, v.Segments...)
	case Area:
		values = []float64{v.Area, v.Perimeter}
	case Volume:
		values = []float64{v.BaseArea, v.Height, v.Volume}
	case Angle:
		values = []float64{v.Angle}
	case Circle:
		values = []float64{v.Radius, v.Diameter, v.Circumference, v.Area}
	case Cutout:
		values = []float64{v.GrossArea, v.CutoutArea, v.NetArea}
	case Slope:
		values = []float64{v.Rise, v.Run, v.SlopePercentage, v.SlopeDegrees}
	default:
		values = []float64{p.Headline()}
	}
	for _, x := range values {
		if !finite(x) {
			return false
		}
	}
	return true
}

package calibration

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/philipparndt/gomeasure/pkg/units"
)

// ErrInvalidCalibration is returned when a scale cannot be derived from the given inputs
var ErrInvalidCalibration = errors.New("invalid calibration")

// Calibration is an immutable pixel-to-real-world scale.
// A single-axis calibration has one pixels-per-unit factor, a dual-axis calibration
// one per axis. Recalibrating creates a new value.
type Calibration struct {
	pixelsPerUnit  float64
	pixelsPerUnitX float64
	pixelsPerUnitY float64
	dual           bool
	unit           units.Unit

	// Reference measurement the scale was derived from (zero when unknown)
	pixelDistance  float64
	actualDistance float64

	// Architectural preset, if any
	ratio     float64
	scaleName string

	createdAt time.Time
}

func positive(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return true
}

// FromReference derives a calibration from a reference line: pixelDistance pixels
// correspond to actualDistance units.
func FromReference(pixelDistance, actualDistance float64, unit units.Unit) (Calibration, error) {
	if !unit.Valid() {
		return Calibration{}, fmt.Errorf("%w: %w", ErrInvalidCalibration, units.ErrInvalidUnit)
	}
	if !positive(pixelDistance) {
		return Calibration{}, fmt.Errorf("%w: pixel distance must be positive, got %v", ErrInvalidCalibration, pixelDistance)
	}
	if !positive(actualDistance) {
		return Calibration{}, fmt.Errorf("%w: actual distance must be positive, got %v", ErrInvalidCalibration, actualDistance)
	}

	ppu := pixelDistance / actualDistance
	if !positive(ppu) {
		return Calibration{}, fmt.Errorf("%w: scale out of range", ErrInvalidCalibration)
	}

	return Calibration{
		pixelsPerUnit:  ppu,
		unit:           unit,
		pixelDistance:  pixelDistance,
		actualDistance: actualDistance,
		createdAt:      time.Now().UTC(),
	}, nil
}

// FromPixelsPerUnit builds a calibration directly from a known scale factor
func FromPixelsPerUnit(pixelsPerUnit float64, unit units.Unit) (Calibration, error) {
	if !unit.Valid() {
		return Calibration{}, fmt.Errorf("%w: %w", ErrInvalidCalibration, units.ErrInvalidUnit)
	}
	if !positive(pixelsPerUnit) {
		return Calibration{}, fmt.Errorf("%w: pixels per unit must be positive, got %v", ErrInvalidCalibration, pixelsPerUnit)
	}
	return Calibration{
		pixelsPerUnit: pixelsPerUnit,
		unit:          unit,
		createdAt:     time.Now().UTC(),
	}, nil
}

// DualAxis derives independent horizontal and vertical scales, for drawings that were
// scanned or stretched non-uniformly.
func DualAxis(pixelDistanceX, actualDistanceX, pixelDistanceY, actualDistanceY float64, unit units.Unit) (Calibration, error) {
	x, err := FromReference(pixelDistanceX, actualDistanceX, unit)
	if err != nil {
		return Calibration{}, fmt.Errorf("x axis: %w", err)
	}
	y, err := FromReference(pixelDistanceY, actualDistanceY, unit)
	if err != nil {
		return Calibration{}, fmt.Errorf("y axis: %w", err)
	}

	return Calibration{
		pixelsPerUnit:  math.Sqrt(x.pixelsPerUnit * y.pixelsPerUnit),
		pixelsPerUnitX: x.pixelsPerUnit,
		pixelsPerUnitY: y.pixelsPerUnit,
		dual:           true,
		unit:           unit,
		createdAt:      time.Now().UTC(),
	}, nil
}

// IsValid reports whether c has finite positive scale factors and a known unit.
// The zero value is invalid.
func IsValid(c Calibration) bool {
	if !c.unit.Valid() {
		return false
	}
	if c.dual {
		return positive(c.pixelsPerUnitX, c.pixelsPerUnitY, c.pixelsPerUnit)
	}
	return positive(c.pixelsPerUnit)
}

// PixelsToReal converts a pixel length with calibration c
func PixelsToReal(pixelValue float64, c Calibration) float64 {
	return c.PixelsToReal(pixelValue)
}

// Valid is shorthand for IsValid(c)
func (c Calibration) Valid() bool {
	return IsValid(c)
}

// Unit returns the real-world unit of the scale
func (c Calibration) Unit() units.Unit {
	return c.unit
}

// PixelsPerUnit returns the scalar scale. For dual-axis calibrations this is the
// geometric mean of both axes.
func (c Calibration) PixelsPerUnit() float64 {
	return c.pixelsPerUnit
}

// PixelsPerUnitX returns the horizontal scale
func (c Calibration) PixelsPerUnitX() float64 {
	if c.dual {
		return c.pixelsPerUnitX
	}
	return c.pixelsPerUnit
}

// PixelsPerUnitY returns the vertical scale
func (c Calibration) PixelsPerUnitY() float64 {
	if c.dual {
		return c.pixelsPerUnitY
	}
	return c.pixelsPerUnit
}

// IsDualAxis reports whether the axes carry separate scales
func (c Calibration) IsDualAxis() bool {
	return c.dual
}

// Reference returns the reference measurement the scale was derived from
func (c Calibration) Reference() (pixelDistance, actualDistance float64) {
	return c.pixelDistance, c.actualDistance
}

// ScaleName returns the architectural preset name, empty when none
func (c Calibration) ScaleName() string {
	return c.scaleName
}

// Ratio returns the drawing ratio of the architectural preset, 0 when none
func (c Calibration) Ratio() float64 {
	return c.ratio
}

// CreatedAt returns when the calibration was created
func (c Calibration) CreatedAt() time.Time {
	return c.createdAt
}

// PixelsToReal converts a pixel length to real units. Dual-axis calibrations use the
// geometric mean, callers with a direction should use DistanceToReal.
func (c Calibration) PixelsToReal(pixels float64) float64 {
	return pixels / c.pixelsPerUnit
}

// DisplacementToReal converts a pixel displacement per axis
func (c Calibration) DisplacementToReal(dx, dy float64) (float64, float64) {
	return dx / c.PixelsPerUnitX(), dy / c.PixelsPerUnitY()
}

// DistanceToReal converts a pixel displacement to a real-world length
func (c Calibration) DistanceToReal(dx, dy float64) float64 {
	if !c.dual {
		return math.Hypot(dx, dy) / c.pixelsPerUnit
	}
	x, y := c.DisplacementToReal(dx, dy)
	return math.Hypot(x, y)
}

// AreaToReal converts a pixel area to real square units
func (c Calibration) AreaToReal(pixelArea float64) float64 {
	return pixelArea / (c.PixelsPerUnitX() * c.PixelsPerUnitY())
}

// InUnit re-expresses the same scale in another unit
func (c Calibration) InUnit(u units.Unit) (Calibration, error) {
	factor, err := units.Convert(1, u, c.unit) // how many c.unit per one u
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: %w", ErrInvalidCalibration, err)
	}
	out := c
	out.unit = u
	out.pixelsPerUnit = c.pixelsPerUnit * factor
	out.pixelsPerUnitX = c.pixelsPerUnitX * factor
	out.pixelsPerUnitY = c.pixelsPerUnitY * factor
	if c.actualDistance > 0 {
		out.actualDistance = c.actualDistance / factor
	}
	return out, nil
}

// String describes the scale, e.g. "1 ft = 96.00 px"
func (c Calibration) String() string {
	if !c.Valid() {
		return "uncalibrated"
	}
	var s string
	if c.dual {
		s = fmt.Sprintf("1 %s = %.2f px (x), %.2f px (y)", c.unit, c.pixelsPerUnitX, c.pixelsPerUnitY)
	} else {
		s = fmt.Sprintf("1 %s = %.2f px", c.unit, c.pixelsPerUnit)
	}
	if c.scaleName != "" {
		s += " [" + c.scaleName + "]"
	}
	return s
}

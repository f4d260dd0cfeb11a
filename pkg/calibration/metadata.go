package calibration

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/vmihailenco/msgpack/v5"
)

// Metadata is the serializable form of a Calibration. Hosts attach it to the
// artifacts they persist so a calibration never has to be recovered from label text.
type Metadata struct {
	Version        string     `json:"version" msgpack:"v"`
	Unit           units.Unit `json:"unit" msgpack:"u"`
	PixelsPerUnit  float64    `json:"pixelsPerUnit" msgpack:"p"`
	PixelsPerUnitX float64    `json:"pixelsPerUnitX,omitempty" msgpack:"px,omitempty"`
	PixelsPerUnitY float64    `json:"pixelsPerUnitY,omitempty" msgpack:"py,omitempty"`
	DualAxis       bool       `json:"dualAxis,omitempty" msgpack:"d,omitempty"`
	PixelDistance  float64    `json:"pixelDistance,omitempty" msgpack:"pd,omitempty"`
	ActualDistance float64    `json:"actualDistance,omitempty" msgpack:"ad,omitempty"`
	Ratio          float64    `json:"ratio,omitempty" msgpack:"r,omitempty"`
	ScaleName      string     `json:"scaleName,omitempty" msgpack:"s,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" msgpack:"t"`
}

const metadataVersion = "1.0"

// Metadata returns the serializable form of c
func (c Calibration) Metadata() Metadata {
	m := Metadata{
		Version:        metadataVersion,
		Unit:           c.unit,
		PixelsPerUnit:  c.pixelsPerUnit,
		DualAxis:       c.dual,
		PixelDistance:  c.pixelDistance,
		ActualDistance: c.actualDistance,
		Ratio:          c.ratio,
		ScaleName:      c.scaleName,
		CreatedAt:      c.createdAt,
	}
	if c.dual {
		m.PixelsPerUnitX = c.pixelsPerUnitX
		m.PixelsPerUnitY = c.pixelsPerUnitY
	}
	return m
}

// FromMetadata rebuilds a calibration and validates it
func FromMetadata(m Metadata) (Calibration, error) {
	c := Calibration{
		pixelsPerUnit:  m.PixelsPerUnit,
		pixelsPerUnitX: m.PixelsPerUnitX,
		pixelsPerUnitY: m.PixelsPerUnitY,
		dual:           m.DualAxis,
		unit:           m.Unit,
		pixelDistance:  m.PixelDistance,
		actualDistance: m.ActualDistance,
		ratio:          m.Ratio,
		scaleName:      m.ScaleName,
		createdAt:      m.CreatedAt,
	}
	if !IsValid(c) {
		return Calibration{}, fmt.Errorf("%w: metadata describes an unusable scale", ErrInvalidCalibration)
	}
	return c, nil
}

// MarshalMetadata encodes c as a compact msgpack blob
func (c Calibration) MarshalMetadata() ([]byte, error) {
	data, err := msgpack.Marshal(c.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to encode calibration: %w", err)
	}
	return data, nil
}

// UnmarshalMetadata decodes a blob written by MarshalMetadata
func UnmarshalMetadata(data []byte) (Calibration, error) {
	var m Metadata
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Calibration{}, fmt.Errorf("failed to decode calibration: %w", err)
	}
	return FromMetadata(m)
}

// MarshalJSON implements json.Marshaler
func (c Calibration) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Metadata())
}

// UnmarshalJSON implements json.Unmarshaler. The decoded scale is validated.
func (c *Calibration) UnmarshalJSON(data []byte) error {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	decoded, err := FromMetadata(m)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

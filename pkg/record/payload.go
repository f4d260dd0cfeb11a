package record

import (
	"fmt"
	"strings"

	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// Payload is the type-specific part of a record
type Payload interface {
	// Type is the measurement kind this payload belongs to
	Type() Type
	// Headline is the primary numeric value shown in lists and exports
	Headline() float64
	// Summary renders the remaining values for the "Additional Info" column
	Summary(unit units.Unit, decimals int) string
}

// Linear is a point-to-point distance
type Linear struct {
	Distance float64 `json:"distance"`
}

func (Linear) Type() Type          { return TypeLinear }
func (p Linear) Headline() float64 { return p.Distance }

func (p Linear) Summary(units.Unit, int) string { return "" }

// Polyline is a multi-segment path
type Polyline struct {
	TotalLength float64   `json:"totalLength"`
	Segments    []float64 `json:"segments"`
}

func (Polyline) Type() Type          { return TypePolyline }
func (p Polyline) Headline() float64 { return p.TotalLength }

func (p Polyline) Summary(_ units.Unit, decimals int) string {
	legs := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		legs[i] = format.Measurement(s, decimals)
	}
	return fmt.Sprintf("%d segments: %s", len(p.Segments), strings.Join(legs, ", "))
}

// Area is the area and perimeter of a polygon
type Area struct {
	Area      float64 `json:"area"`
	Perimeter float64 `json:"perimeter"`
}

func (Area) Type() Type          { return TypeArea }
func (p Area) Headline() float64 { return p.Area }

func (p Area) Summary(unit units.Unit, decimals int) string {
	return "perimeter " + format.Label(p.Perimeter, unit, decimals, false)
}

// Volume is a polygon base area extruded by a height
type Volume struct {
	BaseArea float64 `json:"baseArea"`
	Height   float64 `json:"height"`
	Volume   float64 `json:"volume"`
}

func (Volume) Type() Type          { return TypeVolume }
func (p Volume) Headline() float64 { return p.Volume }

func (p Volume) Summary(unit units.Unit, decimals int) string {
	return fmt.Sprintf("base %s, height %s",
		format.AreaLabel(p.BaseArea, unit, decimals),
		format.Label(p.Height, unit, decimals, false))
}

// Angle is the angle at a vertex in degrees
type Angle struct {
	Angle float64 `json:"angle"`
}

func (Angle) Type() Type          { return TypeAngle }
func (p Angle) Headline() float64 { return p.Angle }

func (p Angle) Summary(units.Unit, int) string { return "" }

// Circle holds circle metrics. The diameter is the headline value.
type Circle struct {
	Radius        float64 `json:"radius"`
	Diameter      float64 `json:"diameter"`
	Circumference float64 `json:"circumference"`
	Area          float64 `json:"area"`
}

func (Circle) Type() Type          { return TypeCircle }
func (p Circle) Headline() float64 { return p.Diameter }

func (p Circle) Summary(unit units.Unit, decimals int) string {
	return fmt.Sprintf("radius %s, circumference %s, area %s",
		format.Measurement(p.Radius, decimals),
		format.Measurement(p.Circumference, decimals),
		format.AreaLabel(p.Area, unit, decimals))
}

// Cutout is a polygon area with holes. The net area is the headline value.
type Cutout struct {
	GrossArea  float64 `json:"grossArea"`
	CutoutArea float64 `json:"cutoutArea"`
	NetArea    float64 `json:"netArea"`
}

func (Cutout) Type() Type          { return TypeCutout }
func (p Cutout) Headline() float64 { return p.NetArea }

func (p Cutout) Summary(_ units.Unit, decimals int) string {
	return fmt.Sprintf("gross %s, cutout %s",
		format.Measurement(p.GrossArea, decimals),
		format.Measurement(p.CutoutArea, decimals))
}

// Slope describes a line as rise over run. The percentage is the headline value.
type Slope struct {
	Rise            float64 `json:"rise"`
	Run             float64 `json:"run"`
	RiseRunRatio    string  `json:"riseRunRatio"`
	SlopePercentage float64 `json:"slopePercentage"`
	SlopeDegrees    float64 `json:"slopeDegrees"`
}

func (Slope) Type() Type          { return TypeSlope }
func (p Slope) Headline() float64 { return p.SlopePercentage }

func (p Slope) Summary(unit units.Unit, decimals int) string {
	return fmt.Sprintf("rise %s, run %s, %s, %s",
		format.Label(p.Rise, unit, decimals, false),
		format.Label(p.Run, unit, decimals, false),
		p.RiseRunRatio,
		format.AngleLabel(p.SlopeDegrees, decimals))
}

// Count is a numbered marker
type Count struct {
	Number int `json:"number"`
}

func (Count) Type() Type          { return TypeCount }
func (p Count) Headline() float64 { return float64(p.Number) }

func (p Count) Summary(units.Unit, int) string { return "" }

package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/philipparndt/gomeasure/pkg/calibration"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidDimension is returned for negative or non-finite shape dimensions
var ErrInvalidDimension = errors.New("invalid dimension")

// PathLength is the real-world length of a multi-segment path
type PathLength struct {
	Total    float64   `json:"total"`
	Segments []float64 `json:"segments"` // per-leg lengths in input order
}

// AreaResult is the real-world area and perimeter of a polygon
type AreaResult struct {
	Area      float64 `json:"area"`
	Perimeter float64 `json:"perimeter"`
}

// CutoutResult is the area of a polygon with holes
type CutoutResult struct {
	Gross  float64 `json:"gross"`
	Cutout float64 `json:"cutout"` // sum of all hole areas
	Net    float64 `json:"net"`    // gross - cutout, not clamped
}

// CircleResult holds real-world circle metrics
type CircleResult struct {
	Radius        float64 `json:"radius"`
	Diameter      float64 `json:"diameter"`
	Circumference float64 `json:"circumference"`
	Area          float64 `json:"area"`
}

// SlopeResult describes the slope of a line between two points
type SlopeResult struct {
	Rise       float64 `json:"rise"`
	Run        float64 `json:"run"`
	Ratio      float64 `json:"ratio"` // rise/run, 0 when run is 0
	Percentage float64 `json:"percentage"`
	Degrees    float64 `json:"degrees"`
	RiseRun    string  `json:"riseRunRatio"`
	Vertical   bool    `json:"vertical"` // run is 0 while rise is not
}

// Distance returns the real-world distance between two pixel points
func Distance(p1, p2 Point, cal calibration.Calibration) float64 {
	d := p2.Sub(p1)
	return cal.DistanceToReal(d.X, d.Y)
}

// PolylineLength sums the real-world lengths of consecutive segments
func PolylineLength(points []Point, cal calibration.Calibration) (PathLength, error) {
	if err := requirePoints(points, 2, "polyline"); err != nil {
		return PathLength{}, err
	}

	segments := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		segments = append(segments, Distance(points[i-1], points[i], cal))
	}

	return PathLength{
		Total:    floats.Sum(segments),
		Segments: segments,
	}, nil
}

// Area returns the real-world area and perimeter of a closed polygon
func Area(points []Point, cal calibration.Calibration) (AreaResult, error) {
	pixelArea, err := PolygonArea(points)
	if err != nil {
		return AreaResult{}, err
	}

	edges := make([]float64, len(points))
	for i := range points {
		edges[i] = Distance(points[i], points[(i+1)%len(points)], cal)
	}

	return AreaResult{
		Area:      cal.AreaToReal(pixelArea),
		Perimeter: floats.Sum(edges),
	}, nil
}

// AreaWithCutouts returns gross, cutout and net area of a polygon with holes.
// Areas scale with the square of the linear scale. A net area below zero means the
// holes are larger than the outline and is returned as is.
func AreaWithCutouts(main []Point, holes [][]Point, cal calibration.Calibration) (CutoutResult, error) {
	gross, err := PolygonArea(main)
	if err != nil {
		return CutoutResult{}, fmt.Errorf("outline: %w", err)
	}

	holeAreas := make([]float64, len(holes))
	for i, hole := range holes {
		a, err := PolygonArea(hole)
		if err != nil {
			return CutoutResult{}, fmt.Errorf("cutout %d: %w", i+1, err)
		}
		holeAreas[i] = a
	}
	cutout := floats.Sum(holeAreas)

	return CutoutResult{
		Gross:  cal.AreaToReal(gross),
		Cutout: cal.AreaToReal(cutout),
		Net:    cal.AreaToReal(gross - cutout),
	}, nil
}

// CircleMetrics converts a pixel radius into real-world circle metrics
func CircleMetrics(radiusPixels float64, cal calibration.Calibration) (CircleResult, error) {
	if math.IsNaN(radiusPixels) || math.IsInf(radiusPixels, 0) || radiusPixels < 0 {
		return CircleResult{}, fmt.Errorf("%w: radius %v", ErrInvalidDimension, radiusPixels)
	}
	r := cal.PixelsToReal(radiusPixels)
	return CircleResult{
		Radius:        r,
		Diameter:      2 * r,
		Circumference: 2 * math.Pi * r,
		Area:          math.Pi * r * r,
	}, nil
}

// CircleFromBounds measures a circle shape from its pixel width and height.
// Non-square bounds use the smaller side.
func CircleFromBounds(width, height float64, cal calibration.Calibration) (CircleResult, error) {
	return CircleMetrics(math.Min(width, height)/2, cal)
}

// AngleAtVertex returns the angle in degrees [0, 180] between the rays from vertex to
// p1 and from vertex to p2. The result is NaN when p1 or p2 coincides with vertex.
func AngleAtVertex(p1, vertex, p2 Point) float64 {
	v1 := p1.Sub(vertex)
	v2 := p2.Sub(vertex)
	mag := v1.Length() * v2.Length()
	if mag == 0 {
		return math.NaN()
	}
	cos := math.Max(-1, math.Min(1, v1.Dot(v2)/mag))
	return math.Acos(cos) * 180 / math.Pi
}

// LineAngle returns the direction of the line p1→p2 in radians
func LineAngle(p1, p2 Point) float64 {
	return math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
}

// Orientation classifies a line as horizontal, vertical or diagonal
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
	Diagonal   Orientation = "diagonal"
)

// DefaultOrientationThreshold is the tolerance in degrees used by OrientationOf
const DefaultOrientationThreshold = 5.0

// OrientationOf classifies the line p1→p2. Lines within thresholdDeg of an axis snap to it.
func OrientationOf(p1, p2 Point, thresholdDeg float64) Orientation {
	deg := math.Abs(LineAngle(p1, p2) * 180 / math.Pi)
	if deg > 90 {
		deg = 180 - deg
	}
	switch {
	case deg <= thresholdDeg:
		return Horizontal
	case deg >= 90-thresholdDeg:
		return Vertical
	default:
		return Diagonal
	}
}

// Slope returns rise, run and derived slope expressions for the line p1→p2.
// A vertical line has a ratio of 0 and is flagged with Vertical.
func Slope(p1, p2 Point, cal calibration.Calibration) SlopeResult {
	d := p2.Sub(p1)
	run, rise := cal.DisplacementToReal(math.Abs(d.X), math.Abs(d.Y))

	var ratio float64
	if run != 0 {
		ratio = rise / run
	}

	return SlopeResult{
		Rise:       rise,
		Run:        run,
		Ratio:      ratio,
		Percentage: ratio * 100,
		Degrees:    math.Atan(ratio) * 180 / math.Pi,
		RiseRun:    RiseRunRatio(rise, run),
		Vertical:   run == 0 && rise != 0,
	}
}

// RiseRunRatio reduces rise:run by their greatest common divisor. Both values are
// scaled by 100 and rounded first, so this is an approximation for values with more
// than two decimals.
func RiseRunRatio(rise, run float64) string {
	r := int64(math.Round(math.Abs(rise) * 100))
	n := int64(math.Round(math.Abs(run) * 100))
	if g := gcd(r, n); g > 0 {
		r /= g
		n /= g
	}
	return fmt.Sprintf("%d:%d", r, n)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Volume multiplies a real-world base area by a height in the same unit
func Volume(baseArea, height float64) float64 {
	return baseArea * height
}

package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrCollinear is returned when three points do not define a circle
var ErrCollinear = errors.New("points are collinear")

// CircleFit represents the result of fitting a circle to points
type CircleFit struct {
	Center Point   // Circle center in pixels
	Radius float64 // Circle radius in pixels
	StdDev float64 // Standard deviation of fit (quality measure)
}

// FitCircle fits a circle through a set of clicked points on its outline.
// Returns the best-fit circle parameters or an error if the fit fails.
//
// Uses the 3-point determinant formula for calculating a circle through 3 points:
//
//	D = 2(x₁(y₂-y₃) + x₂(y₃-y₁) + x₃(y₁-y₂))
//	cx = ((x₁²+y₁²)(y₂-y₃) + (x₂²+y₂²)(y₃-y₁) + (x₃²+y₃²)(y₁-y₂)) / D
//	cy = ((x₁²+y₁²)(x₃-x₂) + (x₂²+y₂²)(x₁-x₃) + (x₃²+y₃²)(x₂-x₁)) / D
func FitCircle(points []Point) (*CircleFit, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points to fit a circle, got %d", ErrInsufficientPoints, len(points))
	}

	// Use first, middle, and last points to get good coverage of the arc
	p1 := points[0]
	p2 := points[len(points)/2]
	p3 := points[len(points)-1]

	x1, y1 := p1.X, p1.Y
	x2, y2 := p2.X, p2.Y
	x3, y3 := p3.X, p3.Y

	D := 2.0 * (x1*(y2-y3) + x2*(y3-y1) + x3*(y1-y2))
	if math.Abs(D) < 1e-10 {
		return nil, ErrCollinear
	}

	x1sq := x1*x1 + y1*y1
	x2sq := x2*x2 + y2*y2
	x3sq := x3*x3 + y3*y3

	center := Point{
		X: (x1sq*(y2-y3) + x2sq*(y3-y1) + x3sq*(y1-y2)) / D,
		Y: (x1sq*(x3-x2) + x2sq*(x1-x3) + x3sq*(x2-x1)) / D,
	}
	radius := center.Distance(p1)

	// Fit quality over all points, not only the three used above
	var sumError float64
	for _, p := range points {
		d := center.Distance(p) - radius
		sumError += d * d
	}

	return &CircleFit{
		Center: center,
		Radius: radius,
		StdDev: math.Sqrt(sumError / float64(len(points))),
	}, nil
}

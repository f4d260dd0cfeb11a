package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientPoints is returned when a shape has too few points
var ErrInsufficientPoints = errors.New("insufficient points")

func requirePoints(points []Point, min int, shape string) error {
	if len(points) < min {
		return fmt.Errorf("%w: %s needs at least %d points, got %d", ErrInsufficientPoints, shape, min, len(points))
	}
	return nil
}

// SignedArea returns the shoelace sum / 2 of a closed polygon in pixels².
// Positive for counter-clockwise winding in a y-up frame.
func SignedArea(points []Point) float64 {
	var sum float64
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

// PolygonArea returns the area of a closed polygon in pixels² using the shoelace
// formula. The last point connects back to the first. Winding order does not matter.
func PolygonArea(points []Point) (float64, error) {
	if err := requirePoints(points, 3, "polygon"); err != nil {
		return 0, err
	}
	return math.Abs(SignedArea(points)), nil
}

// PolygonPerimeter returns the perimeter of a closed polygon in pixels,
// including the closing edge
func PolygonPerimeter(points []Point) (float64, error) {
	if err := requirePoints(points, 3, "polygon"); err != nil {
		return 0, err
	}
	var perimeter float64
	for i := range points {
		perimeter += points[i].Distance(points[(i+1)%len(points)])
	}
	return perimeter, nil
}

// Centroid returns the area centroid of a polygon, or the vertex average when the
// polygon has no area
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	a := SignedArea(points)
	if len(points) < 3 || math.Abs(a) < 1e-12 {
		var sum Point
		for _, p := range points {
			sum = sum.Add(p)
		}
		return sum.Mul(1 / float64(len(points)))
	}

	var cx, cy float64
	for i := range points {
		p, q := points[i], points[(i+1)%len(points)]
		cross := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// Contains reports whether p lies inside the polygon using even-odd ray casting.
// Edges are half-open: for an axis-aligned rectangle, points on the minimum-x and
// minimum-y edges are inside and points on the maximum-x and maximum-y edges are not.
// Adjacent polygons sharing an edge never both contain a point on it.
func Contains(polygon []Point, p Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	n := len(polygon)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xCross := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// Bounds returns the axis-aligned bounding box of the points
func Bounds(points []Point) (min, max Point) {
	if len(points) == 0 {
		return Point{}, Point{}
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

package session

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/regions"
	"github.com/philipparndt/gomeasure/pkg/units"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrUncalibrated is returned when no valid calibration applies at a measurement
	ErrUncalibrated = errors.New("uncalibrated")
	// ErrUndefined is returned for measurements without a defined value, such as
	// an angle whose vertex coincides with one of its arms
	ErrUndefined = errors.New("undefined measurement")
	// ErrTooManyPoints is returned when a fixed-point measurement gets extra points
	ErrTooManyPoints = errors.New("too many points")
)

// Geometry is the pixel-space input of one measurement
type Geometry struct {
	Points     []geometry.Point   `json:"points" yaml:"points"`
	Holes      [][]geometry.Point `json:"holes,omitempty" yaml:"holes,omitempty"`
	Height     float64            `json:"height,omitempty" yaml:"height,omitempty"`         // volume height
	HeightUnit units.Unit         `json:"heightUnit,omitempty" yaml:"heightUnit,omitempty"` // defaults to the calibration unit
}

// Result is the outcome of an interactive step
type Result struct {
	Record      *record.Record           `json:"record,omitempty"`
	Calibration *calibration.Calibration `json:"calibration,omitempty"`
	Request     *measurement.Request     `json:"request,omitempty"`
}

// Session is the application state of one drawing: the global calibration, scale
// regions, measurement history and the active tool. Session is safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	calibration calibration.Calibration
	unit        units.Unit // default unit for typed values
	regions     *regions.Index
	history     *record.History
	machine     *measurement.Machine
}

// New creates an uncalibrated session. unit is used for typed values that carry no unit.
func New(unit units.Unit) *Session {
	if !unit.Valid() {
		unit = units.Foot
	}
	return &Session{
		unit:    unit,
		regions: regions.NewIndex(),
		history: record.NewHistory(),
		machine: measurement.NewMachine(),
	}
}

// Unit returns the default unit
func (s *Session) Unit() units.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unit
}

// SetUnit changes the default unit
func (s *Session) SetUnit(u units.Unit) error {
	if !u.Valid() {
		return fmt.Errorf("%w: %q", units.ErrInvalidUnit, u)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unit = u
	return nil
}

// History returns the measurement history
func (s *Session) History() *record.History {
	return s.history
}

// Calibration returns the global calibration and whether it is valid
func (s *Session) Calibration() (calibration.Calibration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibration, s.calibration.Valid()
}

// SetCalibration replaces the global calibration
func (s *Session) SetCalibration(c calibration.Calibration) error {
	if !c.Valid() {
		return calibration.ErrInvalidCalibration
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibration = c
	return nil
}

// Calibrate derives the global calibration from a reference line p1→p2 that is
// actual units long
func (s *Session) Calibrate(p1, p2 geometry.Point, actual float64, unit units.Unit) (calibration.Calibration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibrateLocked(p1, p2, actual, unit)
}

func (s *Session) calibrateLocked(p1, p2 geometry.Point, actual float64, unit units.Unit) (calibration.Calibration, error) {
	if unit == "" {
		unit = s.unit
	}
	c, err := calibration.FromReference(p1.Distance(p2), actual, unit)
	if err != nil {
		return calibration.Calibration{}, err
	}
	s.calibration = c
	return c, nil
}

// AddRegion adds a polygonal scale region
func (s *Session) AddRegion(points []geometry.Point, c calibration.Calibration, name string) (regions.Region, error) {
	return s.regions.AddRegion(points, c, name)
}

// AddRegionBounds adds a rectangular scale region
func (s *Session) AddRegionBounds(min, max geometry.Point, c calibration.Calibration, name string) (regions.Region, error) {
	return s.regions.AddBounds(r2.Box{Min: r2.Vec{X: min.X, Y: min.Y}, Max: r2.Vec{X: max.X, Y: max.Y}}, c, name)
}

// RemoveRegion removes a scale region by ID or slug. Existing records keep their values.
func (s *Session) RemoveRegion(id string) error {
	return s.regions.Remove(id)
}

// ClearRegions removes every scale region. Existing records keep their values.
func (s *Session) ClearRegions() {
	s.regions.Clear()
}

// Regions returns all scale regions
func (s *Session) Regions() []regions.Region {
	return s.regions.Regions()
}

// CalibrationAt returns the calibration that applies at p
func (s *Session) CalibrationAt(p geometry.Point) (calibration.Calibration, bool) {
	s.mu.Lock()
	global := s.calibration
	s.mu.Unlock()
	return s.regions.Resolve(p, global)
}

// Measure computes a measurement of type t and appends it to the history
func (s *Session) Measure(t record.Type, g Geometry) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.compute(t, g, s.history.NextCount())
	if err != nil {
		return record.Record{}, err
	}
	return s.history.Append(r)
}

// Remeasure recomputes the record oldID from new geometry and supersedes it.
// Counts keep their number and volumes keep their height when g has none.
func (s *Session) Remeasure(oldID string, g Geometry) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.history.Get(oldID)
	if !ok {
		return record.Record{}, fmt.Errorf("%w: %s", record.ErrNotFound, oldID)
	}

	number := 0
	switch p := old.Payload.(type) {
	case record.Count:
		number = p.Number
	case record.Volume:
		if g.Height == 0 {
			g.Height = p.Height
			g.HeightUnit = old.Unit
		}
	}

	r, err := s.compute(old.Type, g, number)
	if err != nil {
		return record.Record{}, err
	}
	return s.history.Supersede(oldID, r)
}

// MeasureDistance measures the straight line p1→p2
func (s *Session) MeasureDistance(p1, p2 geometry.Point) (record.Record, error) {
	return s.Measure(record.TypeLinear, Geometry{Points: []geometry.Point{p1, p2}})
}

// MeasurePolyline measures a multi-segment path
func (s *Session) MeasurePolyline(points []geometry.Point) (record.Record, error) {
	return s.Measure(record.TypePolyline, Geometry{Points: points})
}

// MeasureArea measures the area and perimeter of a polygon
func (s *Session) MeasureArea(points []geometry.Point) (record.Record, error) {
	return s.Measure(record.TypeArea, Geometry{Points: points})
}

// MeasureCutout measures a polygon with holes
func (s *Session) MeasureCutout(outline []geometry.Point, holes [][]geometry.Point) (record.Record, error) {
	return s.Measure(record.TypeCutout, Geometry{Points: outline, Holes: holes})
}

// MeasureVolume measures a polygon base extruded by height
func (s *Session) MeasureVolume(base []geometry.Point, height float64, heightUnit units.Unit) (record.Record, error) {
	return s.Measure(record.TypeVolume, Geometry{Points: base, Height: height, HeightUnit: heightUnit})
}

// MeasureAngle measures the angle at vertex
func (s *Session) MeasureAngle(p1, vertex, p2 geometry.Point) (record.Record, error) {
	return s.Measure(record.TypeAngle, Geometry{Points: []geometry.Point{p1, vertex, p2}})
}

// MeasureCircle measures a circle through three points, or from a center and a
// point on the circumference when two points are given
func (s *Session) MeasureCircle(points []geometry.Point) (record.Record, error) {
	return s.Measure(record.TypeCircle, Geometry{Points: points})
}

// MeasureCircleBounds measures a circle shape from its pixel bounds
func (s *Session) MeasureCircleBounds(center geometry.Point, width, height float64) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.resolve(center)
	if err != nil {
		return record.Record{}, err
	}
	c, err := geometry.CircleFromBounds(width, height, cal)
	if err != nil {
		return record.Record{}, err
	}
	return s.appendPayload(circlePayload(c), cal)
}

// MeasureSlope measures rise over run of the line p1→p2
func (s *Session) MeasureSlope(p1, p2 geometry.Point) (record.Record, error) {
	return s.Measure(record.TypeSlope, Geometry{Points: []geometry.Point{p1, p2}})
}

// Count places the next numbered count marker at p
func (s *Session) Count(p geometry.Point) (record.Record, error) {
	return s.Measure(record.TypeCount, Geometry{Points: []geometry.Point{p}})
}

func (s *Session) appendPayload(p record.Payload, cal calibration.Calibration) (record.Record, error) {
	r, err := newRecord(p, cal.Unit())
	if err != nil {
		return record.Record{}, err
	}
	return s.history.Append(r.WithCalibration(cal))
}

// resolve returns the calibration at anchor. The caller holds s.mu.
func (s *Session) resolve(anchor geometry.Point) (calibration.Calibration, error) {
	cal, ok := s.regions.Resolve(anchor, s.calibration)
	if !ok {
		return calibration.Calibration{}, fmt.Errorf("%w at %v", ErrUncalibrated, anchor)
	}
	return cal, nil
}

// compute builds the record for t without appending it. The caller holds s.mu.
func (s *Session) compute(t record.Type, g Geometry, countNumber int) (record.Record, error) {
	for i, p := range g.Points {
		if !p.Finite() {
			return record.Record{}, fmt.Errorf("%w: point %d is not finite", geometry.ErrInvalidDimension, i)
		}
	}
	for h, hole := range g.Holes {
		for i, p := range hole {
			if !p.Finite() {
				return record.Record{}, fmt.Errorf("%w: cutout %d point %d is not finite", geometry.ErrInvalidDimension, h+1, i)
			}
		}
	}

	switch t {
	case record.TypeAngle:
		if err := exactPoints(g, 3, t); err != nil {
			return record.Record{}, err
		}
		deg := geometry.AngleAtVertex(g.Points[0], g.Points[1], g.Points[2])
		if math.IsNaN(deg) {
			return record.Record{}, fmt.Errorf("%w: angle arm has zero length", ErrUndefined)
		}
		return newRecord(record.Angle{Angle: deg}, "")
	case record.TypeCount:
		if err := exactPoints(g, 1, t); err != nil {
			return record.Record{}, err
		}
		return newRecord(record.Count{Number: countNumber}, "")
	}

	if len(g.Points) == 0 {
		return record.Record{}, fmt.Errorf("%w: %s needs points", geometry.ErrInsufficientPoints, t)
	}
	anchor := g.Points[0]
	switch t {
	case record.TypeArea, record.TypeCutout, record.TypeVolume:
		anchor = geometry.Centroid(g.Points)
	case record.TypeCircle:
		if len(g.Points) == 3 {
			if fit, err := geometry.FitCircle(g.Points); err == nil {
				anchor = fit.Center
			}
		}
	}
	cal, err := s.resolve(anchor)
	if err != nil {
		return record.Record{}, err
	}

	payload, err := s.payload(t, g, cal)
	if err != nil {
		return record.Record{}, err
	}
	r, err := newRecord(payload, cal.Unit())
	if err != nil {
		return record.Record{}, err
	}
	return r.WithCalibration(cal), nil
}

// newRecord creates a record, reporting values that overflowed as invalid geometry
func newRecord(p record.Payload, unit units.Unit) (record.Record, error) {
	r, err := record.New(p, unit)
	if errors.Is(err, record.ErrNotFinite) {
		return record.Record{}, fmt.Errorf("%w: %w", geometry.ErrInvalidDimension, err)
	}
	return r, err
}

func (s *Session) payload(t record.Type, g Geometry, cal calibration.Calibration) (record.Payload, error) {
	switch t {
	case record.TypeLinear:
		if err := exactPoints(g, 2, t); err != nil {
			return nil, err
		}
		return record.Linear{Distance: geometry.Distance(g.Points[0], g.Points[1], cal)}, nil

	case record.TypePolyline:
		path, err := geometry.PolylineLength(g.Points, cal)
		if err != nil {
			return nil, err
		}
		return record.Polyline{TotalLength: path.Total, Segments: path.Segments}, nil

	case record.TypeArea:
		a, err := geometry.Area(g.Points, cal)
		if err != nil {
			return nil, err
		}
		return record.Area{Area: a.Area, Perimeter: a.Perimeter}, nil

	case record.TypeCutout:
		c, err := geometry.AreaWithCutouts(g.Points, g.Holes, cal)
		if err != nil {
			return nil, err
		}
		return record.Cutout{GrossArea: c.Gross, CutoutArea: c.Cutout, NetArea: c.Net}, nil

	case record.TypeVolume:
		a, err := geometry.Area(g.Points, cal)
		if err != nil {
			return nil, err
		}
		height, err := s.height(g, cal.Unit())
		if err != nil {
			return nil, err
		}
		return record.Volume{BaseArea: a.Area, Height: height, Volume: geometry.Volume(a.Area, height)}, nil

	case record.TypeCircle:
		c, err := circle(g.Points, cal)
		if err != nil {
			return nil, err
		}
		return circlePayload(c), nil

	case record.TypeSlope:
		if err := exactPoints(g, 2, t); err != nil {
			return nil, err
		}
		sl := geometry.Slope(g.Points[0], g.Points[1], cal)
		return record.Slope{
			Rise:            sl.Rise,
			Run:             sl.Run,
			RiseRunRatio:    sl.RiseRun,
			SlopePercentage: sl.Percentage,
			SlopeDegrees:    sl.Degrees,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", record.ErrInvalidType, t)
}

// height converts the volume height into the calibration unit
func (s *Session) height(g Geometry, unit units.Unit) (float64, error) {
	if math.IsNaN(g.Height) || math.IsInf(g.Height, 0) || g.Height <= 0 {
		return 0, fmt.Errorf("%w: height must be positive, got %v", geometry.ErrInvalidDimension, g.Height)
	}
	from := g.HeightUnit
	if from == "" {
		from = unit
	}
	return units.Convert(g.Height, from, unit)
}

func circle(points []geometry.Point, cal calibration.Calibration) (geometry.CircleResult, error) {
	switch len(points) {
	case 2:
		return geometry.CircleMetrics(points[0].Distance(points[1]), cal)
	case 3:
		fit, err := geometry.FitCircle(points)
		if err != nil {
			return geometry.CircleResult{}, err
		}
		return geometry.CircleMetrics(fit.Radius, cal)
	}
	if len(points) > 3 {
		return geometry.CircleResult{}, fmt.Errorf("%w: circle takes 2 or 3 points, got %d", ErrTooManyPoints, len(points))
	}
	return geometry.CircleResult{}, fmt.Errorf("%w: circle needs 2 or 3 points, got %d", geometry.ErrInsufficientPoints, len(points))
}

func circlePayload(c geometry.CircleResult) record.Circle {
	return record.Circle{
		Radius:        c.Radius,
		Diameter:      c.Diameter,
		Circumference: c.Circumference,
		Area:          c.Area,
	}
}

func exactPoints(g Geometry, n int, t record.Type) error {
	switch {
	case len(g.Points) < n:
		return fmt.Errorf("%w: %s needs exactly %d points, got %d", geometry.ErrInsufficientPoints, t, n, len(g.Points))
	case len(g.Points) > n:
		return fmt.Errorf("%w: %s takes exactly %d points, got %d", ErrTooManyPoints, t, n, len(g.Points))
	}
	return nil
}

package measurement

import (
	"fmt"
	"math"

	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// Machine is the modal state machine shared by all interactive tools.
// Only one tool is active at a time. Cancelling discards the collected points
// without producing a Commit. A Machine is not safe for concurrent use.
type Machine struct {
	state   State
	tool    Tool
	spec    Spec
	points  []geometry.Point   // current ring
	outline []geometry.Point   // cutout outline once closed
	holes   [][]geometry.Point // closed cutout rings
	pending *Request
}

// NewMachine returns an idle machine
func NewMachine() *Machine {
	return &Machine{}
}

// State returns the current mode
func (m *Machine) State() State {
	return m.state
}

// Tool returns the active tool, empty when idle
func (m *Machine) Tool() Tool {
	return m.tool
}

// Points returns a copy of the points of the ring being collected
func (m *Machine) Points() []geometry.Point {
	out := make([]geometry.Point, len(m.points))
	copy(out, m.points)
	return out
}

// Pending returns the outstanding input request, if any
func (m *Machine) Pending() (Request, bool) {
	if m.pending == nil {
		return Request{}, false
	}
	return *m.pending, true
}

// Start activates tool t. Any active tool is torn down first.
func (m *Machine) Start(t Tool) error {
	spec, err := SpecFor(t)
	if err != nil {
		return err
	}
	m.reset()
	m.tool = t
	m.spec = spec
	if t == ToolCalibrate {
		m.state = Calibrating
	} else {
		m.state = Measuring
	}
	return nil
}

// Cancel returns to Idle and discards in-progress geometry.
// It reports whether a tool was active.
func (m *Machine) Cancel() bool {
	active := m.state != Idle
	m.reset()
	return active
}

// Undo removes the last collected point of the current ring
func (m *Machine) Undo() bool {
	if m.pending != nil || len(m.points) == 0 {
		return false
	}
	m.points = m.points[:len(m.points)-1]
	return true
}

// Click adds a point. Fixed-count tools complete on their last point.
func (m *Machine) Click(p geometry.Point) (Step, error) {
	if m.state == Idle {
		return Step{}, ErrNoActiveTool
	}
	if m.pending != nil {
		return Step{}, fmt.Errorf("%w: %s", ErrInputPending, m.pending.Kind)
	}
	if !p.Finite() {
		return Step{}, fmt.Errorf("%w: point %v", ErrInvalidInput, p)
	}

	m.points = append(m.points, p)
	if m.spec.OpenEnded || len(m.points) < m.spec.Points {
		return Step{}, nil
	}
	return m.complete()
}

// Finish completes an open-ended tool. For cutouts the first Finish closes the
// outline and the next one closes the last hole and completes the tool.
func (m *Machine) Finish() (Step, error) {
	if m.state == Idle {
		return Step{}, ErrNoActiveTool
	}
	if m.pending != nil {
		return Step{}, fmt.Errorf("%w: %s", ErrInputPending, m.pending.Kind)
	}
	if !m.spec.OpenEnded {
		return Step{}, fmt.Errorf("%w: %s completes after %d points", ErrInvalidInput, m.tool, m.spec.Points)
	}

	if m.tool == ToolCutout {
		if m.outline == nil {
			if err := m.closeRing(); err != nil {
				return Step{}, err
			}
			return Step{}, nil
		}
		if len(m.points) > 0 {
			if err := m.closeRing(); err != nil {
				return Step{}, err
			}
		}
		return m.complete()
	}

	if len(m.points) < m.spec.Points {
		return Step{}, m.insufficient()
	}
	return m.complete()
}

// NextRing closes the current cutout ring and starts a new hole
func (m *Machine) NextRing() error {
	if m.tool != ToolCutout {
		return fmt.Errorf("%w: only cutouts have rings", ErrInvalidInput)
	}
	return m.closeRing()
}

// Provide answers the pending request
func (m *Machine) Provide(r Response) (Step, error) {
	if m.pending == nil {
		return Step{}, ErrNoPendingInput
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) || r.Value <= 0 {
		return Step{}, fmt.Errorf("%w: value must be positive, got %v", ErrInvalidInput, r.Value)
	}
	if r.Unit != "" && !r.Unit.Valid() {
		return Step{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, units.ErrInvalidUnit, r.Unit)
	}

	c := &Commit{
		Tool:   m.tool,
		Points: m.Points(),
		Value:  r.Value,
		Unit:   r.Unit,
	}
	m.reset()
	return Step{Commit: c}, nil
}

// ProvideText parses a typed value in unit, accepting feet-inches notation for
// feet, and answers the pending request with it
func (m *Machine) ProvideText(input string, unit units.Unit) (Step, error) {
	v, ok := format.ParseDistance(input, unit)
	if !ok {
		return Step{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidInput, input)
	}
	return m.Provide(Response{Value: v, Unit: unit})
}

func (m *Machine) complete() (Step, error) {
	switch m.spec.Input {
	case RequestCalibrationDistance:
		d := m.points[0].Distance(m.points[1])
		if d == 0 {
			m.points = m.points[:1]
			return Step{}, fmt.Errorf("%w: reference points coincide", ErrInvalidInput)
		}
		m.state = CalibrationPending
		m.pending = &Request{
			Kind:          RequestCalibrationDistance,
			Prompt:        fmt.Sprintf("The reference line is %s px long. Enter its real-world length:", format.Measurement(d, 1)),
			PixelDistance: d,
		}
		return Step{Request: m.pendingCopy()}, nil
	case RequestVolumeHeight:
		m.pending = &Request{
			Kind:   RequestVolumeHeight,
			Prompt: "Enter the height of the volume:",
		}
		return Step{Request: m.pendingCopy()}, nil
	}

	c := &Commit{Tool: m.tool}
	if m.tool == ToolCutout {
		c.Points = m.outline
		c.Holes = m.holes
	} else {
		c.Points = m.Points()
	}
	m.reset()
	return Step{Commit: c}, nil
}

func (m *Machine) closeRing() error {
	if len(m.points) < 3 {
		return m.insufficient()
	}
	ring := m.Points()
	if m.outline == nil {
		m.outline = ring
	} else {
		m.holes = append(m.holes, ring)
	}
	m.points = nil
	return nil
}

func (m *Machine) insufficient() error {
	return fmt.Errorf("%w: %s needs at least %d points, got %d",
		geometry.ErrInsufficientPoints, m.tool, m.spec.Points, len(m.points))
}

func (m *Machine) pendingCopy() *Request {
	r := *m.pending
	return &r
}

func (m *Machine) reset() {
	m.state = Idle
	m.tool = ""
	m.spec = Spec{}
	m.points = nil
	m.outline = nil
	m.holes = nil
	m.pending = nil
}

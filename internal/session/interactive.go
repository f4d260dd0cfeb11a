package session

import (
	"fmt"

	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/units"
)

var toolTypes = map[measurement.Tool]record.Type{
	measurement.ToolLinear:   record.TypeLinear,
	measurement.ToolPolyline: record.TypePolyline,
	measurement.ToolArea:     record.TypeArea,
	measurement.ToolCutout:   record.TypeCutout,
	measurement.ToolVolume:   record.TypeVolume,
	measurement.ToolAngle:    record.TypeAngle,
	measurement.ToolCircle:   record.TypeCircle,
	measurement.ToolSlope:    record.TypeSlope,
	measurement.ToolCount:    record.TypeCount,
}

// Start activates an interactive tool, tearing down the active one
func (s *Session) Start(t measurement.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Start(t)
}

// Cancel abandons the active tool without creating a record
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Cancel()
}

// ToolState returns the state and active tool of the tool machine
func (s *Session) ToolState() (measurement.State, measurement.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State(), s.machine.Tool()
}

// ToolStatus is a snapshot of the interactive tool
type ToolStatus struct {
	State   string               `json:"state"`
	Tool    measurement.Tool     `json:"tool,omitempty"`
	Points  []geometry.Point     `json:"points"`
	Request *measurement.Request `json:"request,omitempty"`
}

// Status returns a snapshot of the interactive tool
func (s *Session) Status() ToolStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := ToolStatus{
		State:  s.machine.State().String(),
		Tool:   s.machine.Tool(),
		Points: s.machine.Points(),
	}
	if req, ok := s.machine.Pending(); ok {
		st.Request = &req
	}
	return st
}

// Click feeds a point to the active tool
func (s *Session) Click(p geometry.Point) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, err := s.machine.Click(p)
	if err != nil {
		return Result{}, err
	}
	return s.applyLocked(step)
}

// Finish completes an open-ended tool
func (s *Session) Finish() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, err := s.machine.Finish()
	if err != nil {
		return Result{}, err
	}
	return s.applyLocked(step)
}

// NextRing starts the next cutout hole
func (s *Session) NextRing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.NextRing()
}

// Undo removes the last point of the active tool
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Undo()
}

// Provide answers the pending input request. A value without unit uses the session unit.
func (s *Session) Provide(r measurement.Response) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Unit == "" {
		r.Unit = s.unit
	}
	step, err := s.machine.Provide(r)
	if err != nil {
		return Result{}, err
	}
	return s.applyLocked(step)
}

// ProvideText answers the pending input request with typed text such as 10'6"
func (s *Session) ProvideText(input string, unit units.Unit) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unit == "" {
		unit = s.unit
	}
	step, err := s.machine.ProvideText(input, unit)
	if err != nil {
		return Result{}, err
	}
	return s.applyLocked(step)
}

// Apply turns a completed tool commit into a calibration or a record
func (s *Session) Apply(c measurement.Commit) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(c)
}

func (s *Session) applyLocked(step measurement.Step) (Result, error) {
	if step.Request != nil {
		return Result{Request: step.Request}, nil
	}
	if step.Commit == nil {
		return Result{}, nil
	}
	return s.commitLocked(*step.Commit)
}

func (s *Session) commitLocked(c measurement.Commit) (Result, error) {
	if c.Tool == measurement.ToolCalibrate {
		if len(c.Points) != 2 {
			return Result{}, fmt.Errorf("%w: calibration needs 2 points, got %d", geometry.ErrInsufficientPoints, len(c.Points))
		}
		cal, err := s.calibrateLocked(c.Points[0], c.Points[1], c.Value, c.Unit)
		if err != nil {
			return Result{}, err
		}
		return Result{Calibration: &cal}, nil
	}

	t, ok := toolTypes[c.Tool]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", measurement.ErrUnknownTool, c.Tool)
	}
	g := Geometry{Points: c.Points, Holes: c.Holes}
	if c.Tool == measurement.ToolVolume {
		g.Height = c.Value
		g.HeightUnit = c.Unit
	}

	r, err := s.compute(t, g, s.history.NextCount())
	if err != nil {
		return Result{}, err
	}
	added, err := s.history.Append(r)
	if err != nil {
		return Result{}, err
	}
	return Result{Record: &added}, nil
}

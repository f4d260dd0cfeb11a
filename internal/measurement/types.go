package measurement

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/units"
)

var (
	// ErrNoActiveTool is returned for input while the machine is idle
	ErrNoActiveTool = errors.New("no active tool")
	// ErrUnknownTool is returned when starting a tool that does not exist
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInputPending is returned for clicks while a value is requested from the user
	ErrInputPending = errors.New("waiting for input")
	// ErrNoPendingInput is returned when a value is provided but none was requested
	ErrNoPendingInput = errors.New("no input requested")
	// ErrInvalidInput is returned for unusable points or values
	ErrInvalidInput = errors.New("invalid input")
)

// State is the mode of the tool state machine
type State int

const (
	Idle State = iota
	Calibrating
	CalibrationPending
	Measuring
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Calibrating:
		return "calibrating"
	case CalibrationPending:
		return "calibration-pending"
	case Measuring:
		return "measuring"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tool is an interactive tool that collects points
type Tool string

const (
	ToolCalibrate Tool = "calibrate"
	ToolLinear    Tool = "linear"
	ToolPolyline  Tool = "polyline"
	ToolArea      Tool = "area"
	ToolCutout    Tool = "cutout"
	ToolVolume    Tool = "volume"
	ToolAngle     Tool = "angle"
	ToolCircle    Tool = "circle"
	ToolSlope     Tool = "slope"
	ToolCount     Tool = "count"
)

// Spec describes how many points a tool collects.
// Fixed tools complete on their last click, open-ended tools complete on Finish.
type Spec struct {
	Points    int // exact count for fixed tools, minimum for open-ended tools
	OpenEnded bool
	Input     RequestKind // value requested once the points are collected, if any
}

var specs = map[Tool]Spec{
	ToolCalibrate: {Points: 2, Input: RequestCalibrationDistance},
	ToolLinear:    {Points: 2},
	ToolSlope:     {Points: 2},
	ToolAngle:     {Points: 3},
	ToolCircle:    {Points: 3},
	ToolCount:     {Points: 1},
	ToolPolyline:  {Points: 2, OpenEnded: true},
	ToolArea:      {Points: 3, OpenEnded: true},
	ToolCutout:    {Points: 3, OpenEnded: true},
	ToolVolume:    {Points: 3, OpenEnded: true, Input: RequestVolumeHeight},
}

// SpecFor returns the point requirements of a tool
func SpecFor(t Tool) (Spec, error) {
	s, ok := specs[t]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownTool, string(t))
	}
	return s, nil
}

// Tools returns every tool in a stable order
func Tools() []Tool {
	return []Tool{
		ToolCalibrate, ToolLinear, ToolPolyline, ToolArea, ToolCutout,
		ToolVolume, ToolAngle, ToolCircle, ToolSlope, ToolCount,
	}
}

// RequestKind identifies the value a tool asks the host for
type RequestKind string

const (
	RequestCalibrationDistance RequestKind = "calibration-distance"
	RequestVolumeHeight        RequestKind = "volume-height"
)

// Request asks the host for a value. The host shows Prompt however it likes and
// answers with Machine.Provide.
type Request struct {
	Kind   RequestKind `json:"kind"`
	Prompt string      `json:"prompt"`
	// PixelDistance is the length of the reference line for calibration requests
	PixelDistance float64 `json:"pixelDistance,omitempty"`
}

// Response is the host's answer to a Request
type Response struct {
	Value float64
	Unit  units.Unit
}

// Commit is the geometry of a completed tool. It is turned into a record or a
// calibration by the session.
type Commit struct {
	Tool   Tool               `json:"tool"`
	Points []geometry.Point   `json:"points"`
	Holes  [][]geometry.Point `json:"holes,omitempty"` // cutout rings
	Value  float64            `json:"value,omitempty"` // calibration distance or volume height
	Unit   units.Unit         `json:"unit,omitempty"`
}

// Step is the outcome of one input. At most one of Commit and Request is set.
type Step struct {
	Commit  *Commit
	Request *Request
}

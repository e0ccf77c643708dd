package dynamo

import (
	"fmt"
	"math"
)

// Sample is one row of a closed-loop run: the joint state at Time together
// with the torque that was held over the step leading up to it.
type Sample struct {
	Time            float64 `json:"time"`
	Angle           float64 `json:"angle"`
	AngularVelocity float64 `json:"angular_velocity"`
	Control         float64 `json:"control"`
}

func (s Sample) IsValid() bool {
	for _, v := range []float64{s.Time, s.Angle, s.AngularVelocity, s.Control} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Record is the ordered sample sequence of a single run.
type Record []Sample

func (r Record) Len() int { return len(r) }

func (r Record) Times() []float64 {
	out := make([]float64, len(r))
	for i, s := range r {
		out[i] = s.Time
	}
	return out
}

func (r Record) Angles() []float64 {
	out := make([]float64, len(r))
	for i, s := range r {
		out[i] = s.Angle
	}
	return out
}

func (r Record) Velocities() []float64 {
	out := make([]float64, len(r))
	for i, s := range r {
		out[i] = s.AngularVelocity
	}
	return out
}

func (r Record) Controls() []float64 {
	out := make([]float64, len(r))
	for i, s := range r {
		out[i] = s.Control
	}
	return out
}

func (r Record) Last() (Sample, bool) {
	if len(r) == 0 {
		return Sample{}, false
	}
	return r[len(r)-1], true
}

type PlantParams struct {
	Inertia float64 `json:"inertia"`
	Damping float64 `json:"damping"`
}

// ControllerParams carries PID gains and optional output bounds. A nil bound
// leaves that side of the output unbounded.
type ControllerParams struct {
	Kp        float64  `json:"kp"`
	Ki        float64  `json:"ki"`
	Kd        float64  `json:"kd"`
	OutputMin *float64 `json:"output_min,omitempty"`
	OutputMax *float64 `json:"output_max,omitempty"`
}

type Config struct {
	Target     float64          `json:"target"`
	Duration   float64          `json:"duration"`
	Dt         float64          `json:"dt"`
	Plant      PlantParams      `json:"plant"`
	Controller ControllerParams `json:"controller"`
}

// MaxSteps bounds the number of control updates of one run.
const MaxSteps = 100_000_000

// Steps is the number of control updates a run performs, floor(duration/dt).
// An absolute offset of 1e-9 is added to the ratio so that values such as
// 0.3/0.1 do not lose a step to representation error. Non-finite ratios and
// ratios above MaxSteps give 0; Validate rejects them.
func (c Config) Steps() int {
	if c.Dt <= 0 || c.Duration <= 0 {
		return 0
	}
	n := math.Floor(c.Duration/c.Dt + 1e-9)
	if math.IsNaN(n) || n > MaxSteps {
		return 0
	}
	return int(n)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (c Config) Validate() error {
	if !finite(c.Target) {
		return &ParamError{Name: "target", Value: c.Target, Reason: "must be finite"}
	}
	if c.Dt <= 0 || !finite(c.Dt) {
		return &ParamError{Name: "dt", Value: c.Dt, Reason: "must be positive and finite"}
	}
	if c.Duration <= 0 || !finite(c.Duration) {
		return &ParamError{Name: "duration", Value: c.Duration, Reason: "must be positive and finite"}
	}
	if r := c.Duration / c.Dt; r > MaxSteps {
		return &ParamError{Name: "duration", Value: c.Duration, Reason: fmt.Sprintf("needs %.3g steps at dt=%g, limit is %d", r, c.Dt, MaxSteps)}
	}
	if c.Plant.Inertia <= 0 || !finite(c.Plant.Inertia) {
		return &ParamError{Name: "inertia", Value: c.Plant.Inertia, Reason: "must be positive and finite"}
	}
	if c.Plant.Damping < 0 || !finite(c.Plant.Damping) {
		return &ParamError{Name: "damping", Value: c.Plant.Damping, Reason: "must be non-negative and finite"}
	}
	gains := []struct {
		name string
		v    float64
	}{{"kp", c.Controller.Kp}, {"ki", c.Controller.Ki}, {"kd", c.Controller.Kd}}
	for _, g := range gains {
		if !finite(g.v) {
			return &ParamError{Name: g.name, Value: g.v, Reason: "must be finite"}
		}
	}
	lo, hi := c.Controller.OutputMin, c.Controller.OutputMax
	if lo != nil && math.IsNaN(*lo) {
		return &ParamError{Name: "output_min", Value: *lo, Reason: "must be a number"}
	}
	if hi != nil && math.IsNaN(*hi) {
		return &ParamError{Name: "output_max", Value: *hi, Reason: "must be a number"}
	}
	if lo != nil && hi != nil && *lo > *hi {
		return &ParamError{Name: "output_min", Value: *lo, Reason: fmt.Sprintf("exceeds output_max %g", *hi)}
	}
	return nil
}

// Result is what a run hands to metrics and presentation.
type Result struct {
	Record Record  `json:"record"`
	Target float64 `json:"target"`
	Config Config  `json:"config"`
}

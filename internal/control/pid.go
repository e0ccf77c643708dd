package control

import (
	"math"

	"github.com/san-kum/jointsim/internal/dynamo"
)

// Terms are the contributions of the last Step, before saturation.
type Terms struct {
	Error float64
	P     float64
	I     float64
	D     float64
	Raw   float64
	Out   float64
}

// Saturated reports whether the output was clamped.
func (t Terms) Saturated() bool { return t.Raw != t.Out }

type PID struct {
	kp, ki, kd float64

	outMin, outMax       float64
	hasOutMin, hasOutMax bool

	integral float64
	prevErr  float64
	first    bool
	last     Terms
}

type Option func(*PID)

// WithOutputMin bounds the output from below.
func WithOutputMin(v float64) Option {
	return func(p *PID) { p.outMin, p.hasOutMin = v, true }
}

// WithOutputMax bounds the output from above.
func WithOutputMax(v float64) Option {
	return func(p *PID) { p.outMax, p.hasOutMax = v, true }
}

// WithOutputLimits bounds the output to [lo, hi].
func WithOutputLimits(lo, hi float64) Option {
	return func(p *PID) {
		WithOutputMin(lo)(p)
		WithOutputMax(hi)(p)
	}
}

// NewPID returns a controller with zeroed memory. Without limit options the
// output is unbounded.
func NewPID(kp, ki, kd float64, opts ...Option) (*PID, error) {
	p := &PID{kp: kp, ki: ki, kd: kd, first: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.hasOutMin && p.hasOutMax && p.outMin > p.outMax {
		return nil, &dynamo.ParamError{Name: "output_min", Value: p.outMin, Reason: "exceeds output_max"}
	}
	return p, nil
}

// FromParams builds a controller from its configuration form.
func FromParams(cp dynamo.ControllerParams) (*PID, error) {
	var opts []Option
	if cp.OutputMin != nil {
		opts = append(opts, WithOutputMin(*cp.OutputMin))
	}
	if cp.OutputMax != nil {
		opts = append(opts, WithOutputMax(*cp.OutputMax))
	}
	return NewPID(cp.Kp, cp.Ki, cp.Kd, opts...)
}

// Step maps the current error to a command. The integral accumulates on
// every call, saturated or not. The derivative term is zero on the first
// call after construction or Reset.
func (p *PID) Step(err, dt float64) (float64, error) {
	if dt <= 0 || math.IsNaN(dt) {
		return 0, &dynamo.ParamError{Name: "dt", Value: dt, Reason: "must be positive"}
	}

	pTerm := p.kp * err

	p.integral += err * dt
	iTerm := p.ki * p.integral

	dTerm := 0.0
	if p.first {
		p.first = false
	} else {
		dTerm = p.kd * ((err - p.prevErr) / dt)
	}
	p.prevErr = err

	raw := pTerm + iTerm + dTerm
	u := raw
	if p.hasOutMin {
		u = math.Max(p.outMin, u)
	}
	if p.hasOutMax {
		u = math.Min(p.outMax, u)
	}

	p.last = Terms{Error: err, P: pTerm, I: iTerm, D: dTerm, Raw: raw, Out: u}
	return u, nil
}

// Reset clears integral and derivative memory. Gains and limits are kept.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
	p.last = Terms{}
}

// Terms returns the breakdown of the most recent Step.
func (p *PID) Terms() Terms { return p.last }

func (p *PID) Integral() float64 { return p.integral }

// Limits returns the configured bounds; ok flags report which are set.
func (p *PID) Limits() (lo float64, hasLo bool, hi float64, hasHi bool) {
	return p.outMin, p.hasOutMin, p.outMax, p.hasOutMax
}

// GetParams returns gains and any configured bounds.
func (p *PID) GetParams() map[string]float64 {
	params := map[string]float64{
		"Kp": p.kp,
		"Ki": p.ki,
		"Kd": p.kd,
	}
	if p.hasOutMin {
		params["OutputMin"] = p.outMin
	}
	if p.hasOutMax {
		params["OutputMax"] = p.outMax
	}
	return params
}

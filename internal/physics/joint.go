package physics

import (
	"math"

	"github.com/san-kum/jointsim/internal/dynamo"
)

// JointState is the angle (rad) and angular velocity (rad/s) of the joint.
type JointState struct {
	Angle           float64
	AngularVelocity float64
}

// Joint is a single rotational joint obeying J*θ̈ + b*θ̇ = u.
type Joint struct {
	inertia float64
	damping float64
	state   JointState
}

// NewJoint returns a joint at rest at zero angle. Inertia must be positive
// and damping non-negative.
func NewJoint(inertia, damping float64) (*Joint, error) {
	if inertia <= 0 || math.IsNaN(inertia) || math.IsInf(inertia, 0) {
		return nil, &dynamo.ParamError{Name: "inertia", Value: inertia, Reason: "must be positive"}
	}
	if damping < 0 || math.IsNaN(damping) || math.IsInf(damping, 0) {
		return nil, &dynamo.ParamError{Name: "damping", Value: damping, Reason: "must be non-negative"}
	}
	return &Joint{inertia: inertia, damping: damping}, nil
}

func (j *Joint) Reset(angle, angularVelocity float64) {
	j.state = JointState{Angle: angle, AngularVelocity: angularVelocity}
}

func (j *Joint) State() JointState { return j.state }

func (j *Joint) Angle() float64 { return j.state.Angle }

// Step advances the joint by dt under the applied torque using
// semi-implicit Euler: the acceleration is taken from the velocity at the
// start of the step, and the angle is advanced with the updated velocity.
func (j *Joint) Step(torque, dt float64) (JointState, error) {
	if dt <= 0 || math.IsNaN(dt) {
		return j.state, &dynamo.ParamError{Name: "dt", Value: dt, Reason: "must be positive"}
	}

	alpha := (torque - j.damping*j.state.AngularVelocity) / j.inertia
	j.state.AngularVelocity += alpha * dt
	j.state.Angle += j.state.AngularVelocity * dt

	return j.state, nil
}

// Energy returns the kinetic energy 0.5*J*ω².
func (j *Joint) Energy() float64 {
	w := j.state.AngularVelocity
	return 0.5 * j.inertia * w * w
}

func (j *Joint) GetParams() map[string]float64 {
	return map[string]float64{
		"inertia": j.inertia,
		"damping": j.damping,
	}
}

package sim

import (
	"github.com/san-kum/jointsim/internal/control"
	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/san-kum/jointsim/internal/physics"
)

// Session is one closed-loop run advanced a step at a time. It owns a fresh
// joint and controller built from the config.
type Session struct {
	cfg   dynamo.Config
	joint *physics.Joint
	pid   *control.PID
	steps int
	k     int
}

func NewSession(cfg dynamo.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	joint, err := physics.NewJoint(cfg.Plant.Inertia, cfg.Plant.Damping)
	if err != nil {
		return nil, err
	}
	pid, err := control.FromParams(cfg.Controller)
	if err != nil {
		return nil, err
	}

	return &Session{
		cfg:   cfg,
		joint: joint,
		pid:   pid,
		steps: cfg.Steps(),
	}, nil
}

// Step performs control update k: error from the current angle, PID command,
// then one plant step under that command. Sample k is stamped (k+1)*dt, the
// instant at which the returned state holds. ok is false once all steps
// have been taken.
func (s *Session) Step() (sample dynamo.Sample, ok bool, err error) {
	if s.k >= s.steps {
		return dynamo.Sample{}, false, nil
	}

	dt := s.cfg.Dt
	e := s.cfg.Target - s.joint.Angle()

	u, err := s.pid.Step(e, dt)
	if err != nil {
		return dynamo.Sample{}, false, s.fail(err)
	}
	st, err := s.joint.Step(u, dt)
	if err != nil {
		return dynamo.Sample{}, false, s.fail(err)
	}

	sample = dynamo.Sample{
		Time:            float64(s.k+1) * dt,
		Angle:           st.Angle,
		AngularVelocity: st.AngularVelocity,
		Control:         u,
	}
	s.k++
	return sample, true, nil
}

func (s *Session) fail(err error) error {
	return &dynamo.SimulationError{Step: s.k, Time: float64(s.k) * s.cfg.Dt, Wrapped: err}
}

// Reset returns the joint to rest at zero and clears controller memory.
func (s *Session) Reset() {
	s.joint.Reset(0, 0)
	s.pid.Reset()
	s.k = 0
}

func (s *Session) Done() bool { return s.k >= s.steps }

// Progress is the fraction of steps taken.
func (s *Session) Progress() float64 {
	if s.steps == 0 {
		return 1
	}
	return float64(s.k) / float64(s.steps)
}

func (s *Session) Terms() control.Terms  { return s.pid.Terms() }
func (s *Session) Config() dynamo.Config { return s.cfg }
func (s *Session) TotalSteps() int       { return s.steps }
func (s *Session) StepsTaken() int       { return s.k }

package sim

import (
	"github.com/san-kum/jointsim/internal/dynamo"
)

// Simulator runs complete fixed-step closed-loop experiments.
type Simulator struct {
	observers     []Observer
	validateState bool
}

func New() *Simulator {
	return &Simulator{
		observers:     make([]Observer, 0),
		validateState: true,
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetValidateState toggles the per-step NaN/Inf check. With it off a
// diverging run records non-finite samples instead of failing.
func (s *Simulator) SetValidateState(on bool) { s.validateState = on }

// Run builds a fresh joint and controller from cfg and performs
// cfg.Steps() control updates, recording one sample per update.
func (s *Simulator) Run(cfg dynamo.Config) (*dynamo.Result, error) {
	session, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}

	result := &dynamo.Result{
		Record: make(dynamo.Record, 0, session.TotalSteps()),
		Target: cfg.Target,
		Config: cfg,
	}

	for {
		step := session.StepsTaken()
		sample, ok, err := session.Step()
		if err != nil {
			return result, err
		}
		if !ok {
			break
		}

		if s.validateState && !sample.IsValid() {
			return result, &dynamo.SimulationError{
				Step:    step,
				Time:    sample.Time,
				Sample:  sample,
				Wrapped: dynamo.ErrInvalidState,
			}
		}

		result.Record = append(result.Record, sample)

		terms := session.Terms()
		for _, obs := range s.observers {
			obs.OnStep(step, sample, terms)
		}
	}

	return result, nil
}

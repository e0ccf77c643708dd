package metrics

import (
	"errors"
	"fmt"

	"github.com/san-kum/jointsim/internal/dynamo"
)

// Report gathers the step-response indicators of one run.
type Report struct {
	Target           float64 `json:"target"`
	Tolerance        float64 `json:"tolerance"`
	Overshoot        float64 `json:"overshoot_pct"`
	SettlingTime     float64 `json:"settling_time"`
	Settled          bool    `json:"settled"`
	RiseTime         float64 `json:"rise_time"`
	RiseReached      bool    `json:"rise_reached"`
	PeakTime         float64 `json:"peak_time"`
	SteadyStateError float64 `json:"steady_state_error"`
	ControlEffort    float64 `json:"control_effort"`
	SaturationRatio  float64 `json:"saturation_ratio"`
}

// Evaluate computes every indicator for a completed run. A response that
// never reaches 90% of target, or a zero target, leaves RiseReached false
// rather than failing.
func Evaluate(res *dynamo.Result, tol float64) (Report, error) {
	if res == nil || len(res.Record) == 0 {
		return Report{}, dynamo.ErrEmptySeries
	}

	times := res.Record.Times()
	angles := res.Record.Angles()
	controls := res.Record.Controls()
	r := Report{Target: res.Target, Tolerance: tol}

	var err error
	if r.Overshoot, err = Overshoot(angles, res.Target); err != nil {
		return r, fmt.Errorf("overshoot: %w", err)
	}
	if r.SettlingTime, r.Settled, err = SettlingTime(times, angles, res.Target, tol); err != nil {
		return r, fmt.Errorf("settling time: %w", err)
	}

	r.RiseTime, err = RiseTime(times, angles, res.Target)
	switch {
	case err == nil:
		r.RiseReached = true
	case errors.Is(err, ErrNotReached), errors.Is(err, dynamo.ErrInvalidParameter):
	default:
		return r, fmt.Errorf("rise time: %w", err)
	}

	if r.PeakTime, err = PeakTime(times, angles, res.Target); err != nil {
		return r, fmt.Errorf("peak time: %w", err)
	}
	if r.SteadyStateError, err = SteadyStateError(angles, res.Target); err != nil {
		return r, fmt.Errorf("steady-state error: %w", err)
	}
	if r.ControlEffort, err = ControlEffort(controls); err != nil {
		return r, fmt.Errorf("control effort: %w", err)
	}
	cp := res.Config.Controller
	if r.SaturationRatio, err = SaturationRatio(controls, cp.OutputMin, cp.OutputMax); err != nil {
		return r, fmt.Errorf("saturation ratio: %w", err)
	}

	return r, nil
}

// Map flattens the report for run metadata. Times that were never reached
// are left out.
func (r Report) Map() map[string]float64 {
	m := map[string]float64{
		"overshoot_pct":      r.Overshoot,
		"peak_time":          r.PeakTime,
		"steady_state_error": r.SteadyStateError,
		"control_effort":     r.ControlEffort,
		"saturation_ratio":   r.SaturationRatio,
		"tolerance":          r.Tolerance,
	}
	if r.Settled {
		m["settling_time"] = r.SettlingTime
	}
	if r.RiseReached {
		m["rise_time"] = r.RiseTime
	}
	return m
}

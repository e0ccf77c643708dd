package metrics

import (
	"errors"
	"math"

	"github.com/san-kum/jointsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// DefaultTolerance is the 2% settling band.
const DefaultTolerance = 0.02

// ErrNotReached is returned when a response never crosses a threshold the
// metric depends on.
var ErrNotReached = errors.New("metrics: threshold never reached")

// Overshoot returns how far the peak of response exceeds target, as a
// percentage of target, floored at zero. A zero target yields zero.
func Overshoot(response []float64, target float64) (float64, error) {
	if len(response) == 0 {
		return 0, dynamo.ErrEmptySeries
	}
	if target == 0 {
		return 0, nil
	}
	peak := floats.Max(response)
	return math.Max(0, (peak-target)/target*100), nil
}

// SettlingTime returns the earliest time after which every remaining sample
// lies within target*(1±tol). When even the last sample is outside the band
// the last time is returned and settled is false.
func SettlingTime(times, response []float64, target, tol float64) (t float64, settled bool, err error) {
	if err := checkPair(times, response); err != nil {
		return 0, false, err
	}
	if tol < 0 || math.IsNaN(tol) {
		return 0, false, &dynamo.ParamError{Name: "tolerance", Value: tol, Reason: "must be non-negative"}
	}

	idx, ok := settlingIndex(response, target, tol)
	if !ok {
		return times[len(times)-1], false, nil
	}
	return times[idx], true, nil
}

// settlingIndex scans from the end for the start of the in-band suffix.
func settlingIndex(response []float64, target, tol float64) (int, bool) {
	lo, hi := band(target, tol)
	idx := len(response)
	for i := len(response) - 1; i >= 0; i-- {
		if !(response[i] >= lo && response[i] <= hi) {
			break
		}
		idx = i
	}
	return idx, idx < len(response)
}

// band orders the edges so a negative target still gives lo <= hi.
func band(target, tol float64) (lo, hi float64) {
	a, b := target*(1-tol), target*(1+tol)
	return math.Min(a, b), math.Max(a, b)
}

// RiseTime is the time taken to go from 10% to 90% of target.
func RiseTime(times, response []float64, target float64) (float64, error) {
	if err := checkPair(times, response); err != nil {
		return 0, err
	}
	if target == 0 {
		return 0, &dynamo.ParamError{Name: "target", Value: target, Reason: "must be non-zero for rise time"}
	}

	start, end := -1, -1
	for i, y := range response {
		frac := y / target
		if start < 0 && frac >= 0.1 {
			start = i
		}
		if frac >= 0.9 {
			end = i
			break
		}
	}
	if start < 0 || end < 0 {
		return 0, ErrNotReached
	}
	return times[end] - times[start], nil
}

// PeakTime returns the time of the largest excursion in the direction of
// target, or of the largest magnitude when target is zero.
func PeakTime(times, response []float64, target float64) (float64, error) {
	if err := checkPair(times, response); err != nil {
		return 0, err
	}

	scaled := make([]float64, len(response))
	switch {
	case target > 0:
		copy(scaled, response)
	case target < 0:
		floats.ScaleTo(scaled, -1, response)
	default:
		for i, y := range response {
			scaled[i] = math.Abs(y)
		}
	}
	return times[floats.MaxIdx(scaled)], nil
}

// SteadyStateError is target minus the final response sample.
func SteadyStateError(response []float64, target float64) (float64, error) {
	if len(response) == 0 {
		return 0, dynamo.ErrEmptySeries
	}
	return target - response[len(response)-1], nil
}

func checkPair(times, response []float64) error {
	if len(times) != len(response) {
		return dynamo.ErrLengthMismatch
	}
	if len(response) == 0 {
		return dynamo.ErrEmptySeries
	}
	return nil
}

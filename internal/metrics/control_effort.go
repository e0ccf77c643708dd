package metrics

import (
	"github.com/san-kum/jointsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// ControlEffort is the mean absolute command.
func ControlEffort(controls []float64) (float64, error) {
	if len(controls) == 0 {
		return 0, dynamo.ErrEmptySeries
	}
	return floats.Norm(controls, 1) / float64(len(controls)), nil
}

// SaturationRatio is the fraction of commands sitting on a configured bound.
// Nil bounds never count.
func SaturationRatio(controls []float64, lo, hi *float64) (float64, error) {
	if len(controls) == 0 {
		return 0, dynamo.ErrEmptySeries
	}
	n := 0
	for _, u := range controls {
		if (lo != nil && u == *lo) || (hi != nil && u == *hi) {
			n++
		}
	}
	return float64(n) / float64(len(controls)), nil
}

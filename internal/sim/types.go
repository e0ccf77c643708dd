package sim

import (
	"github.com/san-kum/jointsim/internal/control"
	"github.com/san-kum/jointsim/internal/dynamo"
)

// Observer is notified after every recorded step, synchronously inside the
// simulation loop.
type Observer interface {
	OnStep(step int, s dynamo.Sample, terms control.Terms)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(step int, s dynamo.Sample, terms control.Terms)

func (f ObserverFunc) OnStep(step int, s dynamo.Sample, terms control.Terms) { f(step, s, terms) }

package logging

import (
	"time"

	"github.com/san-kum/jointsim/internal/control"
	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/san-kum/jointsim/internal/metrics"
	"github.com/san-kum/jointsim/internal/sim"
)

type Logger interface {
	LogRunStart(cfg dynamo.Config)
	LogStep(step int, s dynamo.Sample, terms control.Terms) // Decimated by the implementation.
	LogRunComplete(r metrics.Report, elapsed time.Duration)
	Sync() error
}

// Observer adapts l so it can be attached to a simulator.
func Observer(l Logger) sim.Observer {
	return sim.ObserverFunc(l.LogStep)
}

// noopLogger does not perform any logging.
type noopLogger struct{}

func NewNoopLogger() *noopLogger {
	return &noopLogger{}
}

func (*noopLogger) LogRunStart(dynamo.Config) {}

func (*noopLogger) LogStep(int, dynamo.Sample, control.Terms) {}

func (*noopLogger) LogRunComplete(metrics.Report, time.Duration) {}

func (*noopLogger) Sync() error { return nil }

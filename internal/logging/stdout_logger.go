package logging

import (
	"os"
	"time"

	"github.com/san-kum/jointsim/internal/control"
	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/san-kum/jointsim/internal/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stdoutLogger writes run events as structured zap entries. Steps are
// logged every `every` control updates, starting with the first.
type stdoutLogger struct {
	log   *zap.Logger
	every int
}

func NewStdoutLogger(every int) *stdoutLogger {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return newZapLogger(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stdout), every)
}

func newZapLogger(enc zapcore.Encoder, out zapcore.WriteSyncer, every int) *stdoutLogger {
	if every < 1 {
		every = 1
	}
	core := zapcore.NewCore(enc, out, zap.InfoLevel)
	return &stdoutLogger{log: zap.New(core).Named("jointsim"), every: every}
}

func (l *stdoutLogger) LogRunStart(cfg dynamo.Config) {
	fields := []zap.Field{
		zap.Float64("target", cfg.Target),
		zap.Float64("duration", cfg.Duration),
		zap.Float64("dt", cfg.Dt),
		zap.Int("steps", cfg.Steps()),
		zap.Float64("inertia", cfg.Plant.Inertia),
		zap.Float64("damping", cfg.Plant.Damping),
		zap.Float64("kp", cfg.Controller.Kp),
		zap.Float64("ki", cfg.Controller.Ki),
		zap.Float64("kd", cfg.Controller.Kd),
	}
	if cfg.Controller.OutputMin != nil {
		fields = append(fields, zap.Float64("output_min", *cfg.Controller.OutputMin))
	}
	if cfg.Controller.OutputMax != nil {
		fields = append(fields, zap.Float64("output_max", *cfg.Controller.OutputMax))
	}
	l.log.Info("run start", fields...)
}

func (l *stdoutLogger) LogStep(step int, s dynamo.Sample, terms control.Terms) {
	if step%l.every != 0 {
		return
	}
	l.log.Info("step",
		zap.Int("step", step),
		zap.Float64("t", s.Time),
		zap.Float64("angle", s.Angle),
		zap.Float64("omega", s.AngularVelocity),
		zap.Float64("error", terms.Error),
		zap.Float64("p", terms.P),
		zap.Float64("i", terms.I),
		zap.Float64("d", terms.D),
		zap.Float64("u", terms.Out),
		zap.Bool("saturated", terms.Saturated()),
	)
}

func (l *stdoutLogger) LogRunComplete(r metrics.Report, elapsed time.Duration) {
	l.log.Info("run complete",
		zap.Duration("elapsed", elapsed),
		zap.Float64("overshoot_pct", r.Overshoot),
		zap.Float64("settling_time", r.SettlingTime),
		zap.Bool("settled", r.Settled),
		zap.Float64("control_effort", r.ControlEffort),
	)
}

func (l *stdoutLogger) Sync() error { return l.log.Sync() }

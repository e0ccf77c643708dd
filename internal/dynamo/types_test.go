package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestSample_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		valid  bool
	}{
		{"zeros", Sample{}, true},
		{"normal", Sample{Time: 0.1, Angle: 0.5, AngularVelocity: -1, Control: 3}, true},
		{"with NaN", Sample{Angle: math.NaN()}, false},
		{"with +Inf", Sample{AngularVelocity: math.Inf(1)}, false},
		{"with -Inf", Sample{Control: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sample.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestRecord_Channels(t *testing.T) {
	r := Record{
		{Time: 0.1, Angle: 1, AngularVelocity: 10, Control: -1},
		{Time: 0.2, Angle: 2, AngularVelocity: 20, Control: -2},
	}

	if got := r.Times(); got[0] != 0.1 || got[1] != 0.2 {
		t.Errorf("Times() = %v", got)
	}
	if got := r.Angles(); got[0] != 1 || got[1] != 2 {
		t.Errorf("Angles() = %v", got)
	}
	if got := r.Velocities(); got[0] != 10 || got[1] != 20 {
		t.Errorf("Velocities() = %v", got)
	}
	if got := r.Controls(); got[0] != -1 || got[1] != -2 {
		t.Errorf("Controls() = %v", got)
	}

	last, ok := r.Last()
	if !ok || last.Time != 0.2 {
		t.Errorf("Last() = %v, %v", last, ok)
	}
	if _, ok := (Record{}).Last(); ok {
		t.Error("Last() on empty record should report false")
	}
}

func TestConfig_Steps(t *testing.T) {
	tests := []struct {
		duration, dt float64
		expected     int
	}{
		{4.0, 0.001, 4000},
		{1.0, 0.1, 10},
		{0.3, 0.1, 3},
		{1.05, 0.1, 10},
		{0.05, 0.1, 0},
		{1.0, 0, 0},
		{math.Inf(1), 0.001, 0},
		{1e12, 1e-6, 0},
	}

	for _, tt := range tests {
		cfg := Config{Duration: tt.duration, Dt: tt.dt}
		if got := cfg.Steps(); got != tt.expected {
			t.Errorf("Steps(%v/%v) = %d, want %d", tt.duration, tt.dt, got, tt.expected)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	lo, hi := -1.0, 1.0
	valid := Config{
		Duration:   1,
		Dt:         0.01,
		Plant:      PlantParams{Inertia: 0.01, Damping: 0.1},
		Controller: ControllerParams{Kp: 1, OutputMin: &lo, OutputMax: &hi},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, "dt"},
		{"negative duration", func(c *Config) { c.Duration = -1 }, "duration"},
		{"zero inertia", func(c *Config) { c.Plant.Inertia = 0 }, "inertia"},
		{"negative damping", func(c *Config) { c.Plant.Damping = -0.1 }, "damping"},
		{"infinite duration", func(c *Config) { c.Duration = math.Inf(1) }, "duration"},
		{"infinite dt", func(c *Config) { c.Dt = math.Inf(1) }, "dt"},
		{"NaN dt", func(c *Config) { c.Dt = math.NaN() }, "dt"},
		{"too many steps", func(c *Config) { c.Duration, c.Dt = 1e6, 1e-6 }, "duration"},
		{"infinite inertia", func(c *Config) { c.Plant.Inertia = math.Inf(1) }, "inertia"},
		{"infinite damping", func(c *Config) { c.Plant.Damping = math.Inf(1) }, "damping"},
		{"infinite kp", func(c *Config) { c.Controller.Kp = math.Inf(-1) }, "kp"},
		{"NaN ki", func(c *Config) { c.Controller.Ki = math.NaN() }, "ki"},
		{"infinite kd", func(c *Config) { c.Controller.Kd = math.Inf(1) }, "kd"},
		{"infinite target", func(c *Config) { c.Target = math.Inf(1) }, "target"},
		{"NaN upper limit", func(c *Config) { nan := math.NaN(); c.Controller.OutputMax = &nan }, "output_max"},
		{"inverted limits", func(c *Config) { c.Controller.OutputMin, c.Controller.OutputMax = &hi, &lo }, "output_min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Name != tt.param {
				t.Errorf("expected param %q, got %v", tt.param, err)
			}
		})
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Wrapped: ErrInvalidState}
	expected := "step 150 (t=1.5000): dynamo: invalid state (NaN or Inf detected)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimulationError should unwrap to the wrapped error")
	}
}

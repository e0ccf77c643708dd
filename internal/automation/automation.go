package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/jointsim/internal/config"
	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/san-kum/jointsim/internal/metrics"
	"github.com/san-kum/jointsim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a named set of runs executed together.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the defaults) and applies a partial
// config document on top of it.
type ScenarioRun struct {
	Name      string    `yaml:"name"`
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"overrides"`
	SaveAs    string    `yaml:"save_as"`
}

// Outcome is one completed run of a scenario or sweep.
type Outcome struct {
	Name   string
	Config *config.Config
	Result *dynamo.Result
	Report metrics.Report
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}

	seen := make(map[string]bool, len(scenario.Runs))
	for i, run := range scenario.Runs {
		if run.Name == "" {
			return nil, fmt.Errorf("run %d: missing name", i+1)
		}
		if seen[run.Name] {
			return nil, fmt.Errorf("run %d: duplicate name %q", i+1, run.Name)
		}
		seen[run.Name] = true
	}

	return &scenario, nil
}

// Config resolves the run's configuration and validates it.
func (r ScenarioRun) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		if cfg = config.GetPreset(r.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	}

	if r.Overrides.Kind != 0 {
		raw, err := yaml.Marshal(&r.Overrides)
		if err != nil {
			return nil, err
		}
		if err := config.Decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("overrides: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all runs of a scenario concurrently and evaluates
// each with its own tolerance. Outcomes keep the scenario order.
func RunScenario(ctx context.Context, scenario *Scenario) ([]Outcome, error) {
	cfgs := make([]*config.Config, len(scenario.Runs))
	names := make([]string, len(scenario.Runs))
	for i, run := range scenario.Runs {
		cfg, err := run.Config()
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.Name, err)
		}
		cfgs[i], names[i] = cfg, run.Name
	}
	return runAll(ctx, names, cfgs)
}

// Sweep varies one parameter linearly between Min and Max over Steps runs.
type Sweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

// Values returns the swept parameter values.
func (s Sweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	vals := make([]float64, s.Steps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	vals[len(vals)-1] = s.Max
	return vals
}

// RunSweep runs the base configuration once per swept value.
func RunSweep(ctx context.Context, sweep Sweep) ([]Outcome, error) {
	if sweep.Base == nil {
		return nil, errors.New("sweep has no base configuration")
	}
	if sweep.Steps < 1 {
		return nil, &dynamo.ParamError{Name: "steps", Value: float64(sweep.Steps), Reason: "must be at least 1"}
	}

	vals := sweep.Values()
	cfgs := make([]*config.Config, len(vals))
	names := make([]string, len(vals))
	for i, v := range vals {
		cfg := sweep.Base.Clone()
		if err := SetParam(cfg, sweep.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		cfgs[i], names[i] = cfg, fmt.Sprintf("%s=%g", sweep.Param, v)
	}
	return runAll(ctx, names, cfgs)
}

// SetParam sets one tunable field by name.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "kp":
		cfg.Controller.Kp = v
	case "ki":
		cfg.Controller.Ki = v
	case "kd":
		cfg.Controller.Kd = v
	case "inertia":
		cfg.Plant.Inertia = v
	case "damping":
		cfg.Plant.Damping = v
	case "torque_limit":
		cfg.SetTorqueLimit(v)
	case "target_deg":
		cfg.TargetDeg = &v
	case "dt":
		cfg.Dt = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return nil
}

func runAll(ctx context.Context, names []string, cfgs []*config.Config) ([]Outcome, error) {
	runCfgs := make([]dynamo.Config, len(cfgs))
	for i, cfg := range cfgs {
		runCfgs[i] = cfg.RunConfig()
	}

	results, err := sim.RunBatch(ctx, runCfgs)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(results))
	for i, res := range results {
		report, err := metrics.Evaluate(res, cfgs[i].Tolerance)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		outcomes[i] = Outcome{Name: names[i], Config: cfgs[i], Result: res, Report: report}
	}
	return outcomes, nil
}

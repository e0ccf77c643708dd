package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/jointsim/internal/config"
	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
name: damping study
description: reference gains on a lightly and a heavily damped joint
runs:
  - name: light
    overrides:
      duration: 1
      plant:
        damping: 0.05
  - name: heavy
    preset: heavy
    overrides:
      duration: 1
    save_as: heavy_short
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "damping study", sc.Name)
	require.Len(t, sc.Runs, 2)
	assert.Equal(t, "heavy_short", sc.Runs[1].SaveAs)

	light, err := sc.Runs[0].Config()
	require.NoError(t, err)
	assert.Equal(t, 0.05, light.Plant.Damping)
	assert.Equal(t, 1.0, light.Duration)
	assert.Equal(t, config.DefaultInertia, light.Plant.Inertia)

	heavy, err := sc.Runs[1].Config()
	require.NoError(t, err)
	assert.Equal(t, 0.05, heavy.Plant.Inertia)
	assert.Equal(t, 1.0, heavy.Duration)
}

func TestLoadScenarioRejects(t *testing.T) {
	cases := map[string]string{
		"no runs":   "name: empty\n",
		"no name":   "runs:\n  - preset: heavy\n",
		"duplicate": "runs:\n  - name: a\n  - name: a\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, body))
			assert.Error(t, err)
		})
	}
}

func TestScenarioRunConfigErrors(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, "runs:\n  - name: typo\n    overrides:\n      dampin: 1\n"))
	require.NoError(t, err)
	_, err = sc.Runs[0].Config()
	assert.Error(t, err)

	sc, err = LoadScenario(writeScenario(t, "runs:\n  - name: bad\n    overrides:\n      dt: -1\n"))
	require.NoError(t, err)
	_, err = sc.Runs[0].Config()
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	_, err = ScenarioRun{Name: "x", Preset: "missing"}.Config()
	assert.Error(t, err)
}

func TestScenarioOverrideTargetOverPreset(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, "runs:\n  - name: small step\n    preset: baseline\n    overrides:\n      target: 0.3\n"))
	require.NoError(t, err)

	cfg, err := sc.Runs[0].Config()
	require.NoError(t, err)
	assert.Nil(t, cfg.TargetDeg)
	assert.Equal(t, 0.3, cfg.TargetRad())
	assert.Equal(t, 0.3, cfg.RunConfig().Target)
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	outcomes, err := RunScenario(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "light", outcomes[0].Name)
	assert.Equal(t, "heavy", outcomes[1].Name)
	for _, o := range outcomes {
		assert.Len(t, o.Result.Record, 1000)
		assert.Equal(t, o.Config.Tolerance, o.Report.Tolerance)
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunScenario(ctx, sc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepValues(t *testing.T) {
	assert.Equal(t, []float64{1}, Sweep{Min: 1, Max: 5, Steps: 1}.Values())
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, Sweep{Min: 1, Max: 5, Steps: 5}.Values())
}

func TestRunSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Duration = 0.5

	outcomes, err := RunSweep(context.Background(), Sweep{Base: base, Param: "kp", Min: 10, Max: 30, Steps: 3})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "kp=10", outcomes[0].Name)
	assert.Equal(t, 30.0, outcomes[2].Config.Controller.Kp)
	assert.Equal(t, config.DefaultKp, base.Controller.Kp, "base must not be modified")

	_, err = RunSweep(context.Background(), Sweep{Base: base, Param: "mass", Min: 1, Max: 2, Steps: 2})
	assert.Error(t, err)

	_, err = RunSweep(context.Background(), Sweep{Base: base, Param: "inertia", Min: 0, Max: 1, Steps: 2})
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	_, err = RunSweep(context.Background(), Sweep{Base: base, Param: "kp", Steps: 0})
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}

func TestSetParam(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, SetParam(cfg, "torque_limit", 4))
	lo, hi := cfg.Limits()
	require.NotNil(t, lo)
	assert.Equal(t, -4.0, *lo)
	assert.Equal(t, 4.0, *hi)

	require.NoError(t, SetParam(cfg, "target_deg", 30))
	assert.InDelta(t, 0.5235987755982988, cfg.TargetRad(), 1e-12)
}

// Package automation runs groups of joint experiments: YAML scenarios of
// named runs, and linear sweeps of one parameter. Runs execute through
// sim.RunBatch and are evaluated with metrics.Evaluate.
package automation

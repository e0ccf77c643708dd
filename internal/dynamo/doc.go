// Package dynamo provides the core data types shared by the joint
// simulation packages.
//
//   - [Sample]: one time step of a closed-loop run
//   - [Record]: the ordered samples of a run, with per-channel accessors
//   - [Config]: target, horizon, step size, plant and controller parameters
//   - [Result]: a completed run as consumed by metrics and presentation
//
// Parameter violations are reported as [ParamError], which unwraps to
// [ErrInvalidParameter]:
//
//	if err := cfg.Validate(); errors.Is(err, dynamo.ErrInvalidParameter) {
//	    // reject the run
//	}
package dynamo

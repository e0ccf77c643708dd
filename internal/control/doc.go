// Package control provides the discrete PID controller that drives the joint.
//
// [PID] keeps an integral accumulator, the previous error and a first-call
// flag. Output bounds are optional and applied after the three terms are
// summed:
//
//	pid, err := control.NewPID(30, 10, 2, control.WithOutputLimits(-10, 10))
//	u, err := pid.Step(target-angle, dt)
//
// The integral keeps accumulating while the output is saturated; there is no
// anti-windup.
package control

// Package physics provides the plant model for the joint simulation.
//
// [Joint] is a single rotational degree of freedom with inertia J and
// viscous damping b, driven by a torque u:
//
//	J*θ̈ + b*θ̇ = u
//
// The state advances with fixed-step semi-implicit Euler. Velocity is
// updated first from the acceleration at the start of the step and the
// angle then uses the new velocity:
//
//	joint, _ := physics.NewJoint(0.01, 0.1)
//	s, err := joint.Step(torque, dt)
package physics

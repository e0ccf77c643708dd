// Package viz renders joint runs in the terminal.
//
// [ResponseCharts] draws angle, velocity and torque with asciigraph.
// [Summary] formats the step-response indicators. [Live] is a Bubble Tea
// model that advances a [sim.Session] frame by frame and draws the arm
// on a Braille [Canvas].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the run
//	+/-   - Steps per frame
//	Q     - Quit
package viz

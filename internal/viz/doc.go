// Package viz provides the live terminal view of a running simulation.
//
// The view is a Bubble Tea program that owns an engine and advances it
// through a dynamo.Simulator on every frame. Bodies are projected onto a
// braille [Canvas] centred on the centre of mass and auto-scaled to fit,
// with an asciigraph chart of total energy beside it.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Reset to initial state
//	+/-   - Double/halve steps per frame
//	P     - Cycle projection plane (XY, XZ, YZ)
//	T     - Toggle trails
//	Q     - Quit
package viz

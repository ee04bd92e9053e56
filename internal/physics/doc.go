// Package physics implements the gravitational N-body engine.
//
// A [System] owns its bodies by value in insertion order and exposes a
// single advance operation, [System.Step]. Each step runs in two passes:
//
//  1. every body's net acceleration is accumulated from all other bodies
//     into a scratch buffer, using a consistent snapshot of positions;
//  2. positions and velocities are integrated in insertion order and the
//     new accelerations are stored for the next step.
//
// Zero-separation pairs are handled per [Policy]; the velocity rule is
// chosen with [Scheme].
//
//	sys := physics.New(physics.WithG(physics.G))
//	sys.AddBody(physics.NewBody(10, vector.Zero, vector.Zero, vector.Zero))
//	sys.AddBody(physics.NewBody(20, vector.New(100, 0, 0), vector.Zero, vector.Zero))
//	if err := sys.Step(1); err != nil {
//	    return err
//	}
//
// The engine has no clock, performs no I/O of its own and never spawns
// goroutines; pacing and output belong to the caller.
package physics

// Package dynamo drives an N-body engine through time.
//
// The engine has no clock of its own; a [Simulator] owns the tick counter
// and simulated time, calls Step with a fixed dt, and hands each resulting
// [Frame] to registered metrics and observers:
//
//   - [Stepper]: the engine surface (Step, Snapshot)
//   - [Observer]: printers, stream hubs and anything else reacting per tick
//   - [Metric]: scalar summaries of a run (energy drift, momentum drift)
//
// # Example
//
//	sys := physics.New()
//	sim, err := dynamo.New(sys, dynamo.Config{Dt: 1, Steps: 100})
//	if err != nil {
//	    return err
//	}
//	sim.AddObserver(export.NewTextPrinter(os.Stdout))
//	result, err := sim.Run(ctx)
//
// Pacing uses a token-bucket limiter so a run can follow wall-clock time;
// with Pace set to zero ticks run back to back, which is what tests want.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Tick and Run must be called from
// a single goroutine, and observers run on that goroutine. An [Ensemble]
// runs several simulators side by side, each with its own engine.
package dynamo

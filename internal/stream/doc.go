// Package stream publishes simulation frames to websocket clients and
// exports run metrics to Prometheus.
//
// A [Hub] is a dynamo.Observer: every tick it encodes the frame once and
// offers it to each connected client without blocking. Clients that fall
// behind lose frames rather than slowing the simulation. [Metrics] is also
// an observer and records step, time, energy and momentum gauges.
//
//	reg := prometheus.NewRegistry()
//	m := stream.NewMetrics(reg, sys)
//	hub := stream.NewHub(m)
//	sim.AddObserver(m)
//	sim.AddObserver(hub)
//	srv := stream.NewServer(":8080", hub, reg)
package stream

package stream

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/vector"
)

// Diagnostics is the engine surface read after every tick.
// *physics.System satisfies it.
type Diagnostics interface {
	Energy() float64
	Momentum() vector.Vector3
}

type Metrics struct {
	steps    prometheus.Counter
	simTime  prometheus.Gauge
	energy   prometheus.Gauge
	momentum prometheus.Gauge
	bodies   prometheus.Gauge
	clients  prometheus.Gauge
	dropped  prometheus.Counter
	src      Diagnostics
}

// NewMetrics registers the gravsim collectors on reg. src may be nil, in
// which case energy and momentum are not reported.
func NewMetrics(reg prometheus.Registerer, src Diagnostics) *Metrics {
	m := &Metrics{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gravsim",
			Name:      "steps_total",
			Help:      "Total number of simulation ticks",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gravsim",
			Name:      "sim_time",
			Help:      "Simulated time of the latest tick",
		}),
		energy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gravsim",
			Name:      "energy",
			Help:      "Total mechanical energy of the system",
		}),
		momentum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gravsim",
			Name:      "momentum",
			Help:      "Magnitude of the total linear momentum",
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gravsim",
			Name:      "bodies",
			Help:      "Number of bodies in the latest frame",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gravsim",
			Name:      "stream_clients",
			Help:      "Connected websocket clients",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gravsim",
			Name:      "stream_dropped_frames_total",
			Help:      "Frames not delivered to a slow websocket client",
		}),
		src: src,
	}

	reg.MustRegister(m.steps, m.simTime, m.energy, m.momentum, m.bodies, m.clients, m.dropped)

	return m
}

func (m *Metrics) OnStep(f dynamo.Frame) error {
	m.steps.Inc()
	m.simTime.Set(f.Time)
	m.bodies.Set(float64(len(f.Bodies)))
	if m.src != nil {
		m.energy.Set(m.src.Energy())
		m.momentum.Set(m.src.Momentum().Magnitude())
	}
	return nil
}

func (m *Metrics) clientConnected() {
	if m != nil {
		m.clients.Inc()
	}
}

func (m *Metrics) clientDisconnected() {
	if m != nil {
		m.clients.Dec()
	}
}

func (m *Metrics) frameDropped() {
	if m != nil {
		m.dropped.Inc()
	}
}

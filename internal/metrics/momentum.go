package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/vector"
)

// MomentumDrift tracks the largest absolute change of total linear momentum
// relative to the first observed frame. Absolute rather than relative,
// since systems starting at rest have zero momentum.
type MomentumDrift struct {
	initial  vector.Vector3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(f dynamo.Frame) {
	var p vector.Vector3
	for _, b := range f.Bodies {
		p.Accumulate(b.Vel.Scale(b.Mass))
	}

	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Magnitude())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vector.Zero
	m.maxDrift = 0
	m.samples = 0
}

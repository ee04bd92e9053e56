package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
)

// Stability is the fraction of observed frames whose bodies are all finite.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{
		name: "stability",
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f dynamo.Frame) {
	s.samples++
	if !f.IsValid() {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Defaults returns the metrics every run records.
func Defaults(src EnergySource) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(src),
		NewMomentumDrift(),
		NewStability(),
	}
}

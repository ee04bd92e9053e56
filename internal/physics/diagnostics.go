package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/vector"
)

func (s *System) TotalMass() float64 {
	m := 0.0
	for _, b := range s.bodies {
		m += b.Mass
	}
	return m
}

// Momentum returns Σ m·v.
func (s *System) Momentum() vector.Vector3 {
	var p vector.Vector3
	for _, b := range s.bodies {
		p.Accumulate(b.Vel.Scale(b.Mass))
	}
	return p
}

// AngularMomentum returns Σ m·(pos × vel) about the origin.
func (s *System) AngularMomentum() vector.Vector3 {
	var l vector.Vector3
	for _, b := range s.bodies {
		l.Accumulate(b.Pos.Cross(b.Vel).Scale(b.Mass))
	}
	return l
}

// CenterOfMass returns the mass-weighted mean position, or the zero vector
// when the total mass is zero.
func (s *System) CenterOfMass() vector.Vector3 {
	total := s.TotalMass()
	if total == 0 {
		return vector.Zero
	}
	var c vector.Vector3
	for _, b := range s.bodies {
		c.Accumulate(b.Pos.Scale(b.Mass))
	}
	return c.Scale(1 / total)
}

func (s *System) KineticEnergy() float64 {
	ke := 0.0
	for _, b := range s.bodies {
		ke += 0.5 * b.Mass * b.Vel.MagnitudeSquared()
	}
	return ke
}

// PotentialEnergy sums -G m_i m_j / r over unordered pairs. Coincident pairs
// are skipped unless softening keeps the separation positive.
func (s *System) PotentialEnergy() float64 {
	pe := 0.0
	eps2 := 0.0
	if s.policy == Soften {
		eps2 = s.softening * s.softening
	}
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			r2 := s.bodies[j].Pos.Sub(s.bodies[i].Pos).MagnitudeSquared() + eps2
			if r2 == 0 {
				continue
			}
			pe -= s.g * s.bodies[i].Mass * s.bodies[j].Mass / math.Sqrt(r2)
		}
	}
	return pe
}

func (s *System) Energy() float64 {
	return s.KineticEnergy() + s.PotentialEnergy()
}

// Separation returns the distance between bodies i and j.
func (s *System) Separation(i, j int) float64 {
	return s.bodies[j].Pos.Sub(s.bodies[i].Pos).Magnitude()
}

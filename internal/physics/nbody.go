package physics

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/gravsim/internal/vector"
)

// G is the gravitational constant in SI units (m³ kg⁻¹ s⁻²).
const G = 6.67408e-11

// System owns an ordered collection of bodies and advances them under
// mutual Newtonian gravity. It is not safe for concurrent use.
type System struct {
	bodies      []Body
	g           float64
	policy      Policy
	scheme      Scheme
	softening   float64
	checkFinite bool
	scratch     []vector.Vector3
}

type Option func(*System)

// WithG sets the gravitational constant. Any unit system works as long as
// G, masses, distances and dt agree.
func WithG(g float64) Option {
	return func(s *System) { s.g = g }
}

func WithPolicy(p Policy) Option {
	return func(s *System) { s.policy = p }
}

func WithScheme(sc Scheme) Option {
	return func(s *System) { s.scheme = sc }
}

// WithSoftening sets the softening length used by the Soften policy.
func WithSoftening(eps float64) Option {
	return func(s *System) { s.softening = eps }
}

// WithFiniteCheck makes Step report ErrNonFinite once any body state stops
// being finite.
func WithFiniteCheck() Option {
	return func(s *System) { s.checkFinite = true }
}

func New(opts ...Option) *System {
	s := &System{
		g:      G,
		policy: SkipCoincident,
		scheme: CurrentAccel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBody appends b and returns its index.
func (s *System) AddBody(b Body) int {
	s.bodies = append(s.bodies, b)
	return len(s.bodies) - 1
}

func (s *System) Len() int { return len(s.bodies) }

func (s *System) Body(i int) Body { return s.bodies[i] }

func (s *System) Gravity() float64   { return s.g }
func (s *System) Policy() Policy     { return s.policy }
func (s *System) Scheme() Scheme     { return s.scheme }
func (s *System) Softening() float64 { return s.softening }

// Snapshot returns a copy of every body in insertion order.
func (s *System) Snapshot() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Step advances every body by dt. All accelerations are computed from the
// current positions before any body is written.
func (s *System) Step(dt float64) error {
	acc, err := s.accelerations()
	if err != nil {
		return err
	}

	dt2 := dt * dt
	for i := range s.bodies {
		b := &s.bodies[i]
		b.Pos = b.Pos.Add(b.Vel.Scale(dt)).Add(b.Acc.Scale(0.5 * dt2))

		switch s.scheme {
		case Reference:
			b.Vel = b.Acc.Scale(dt)
		case LaggedAccel:
			b.Vel = b.Vel.Add(b.Acc.Scale(dt))
		default:
			b.Vel = b.Vel.Add(acc[i].Scale(dt))
		}

		b.Acc = acc[i]
	}

	if s.checkFinite {
		for i := range s.bodies {
			if !s.bodies[i].IsFinite() {
				return fmt.Errorf("body %d: %w", i, ErrNonFinite)
			}
		}
	}
	return nil
}

// accelerations fills the scratch buffer with the net acceleration of every
// body. acc[i] = Σ G m_j r / |r|³ with r pointing from body i to body j.
func (s *System) accelerations() ([]vector.Vector3, error) {
	n := len(s.bodies)
	if cap(s.scratch) < n {
		s.scratch = make([]vector.Vector3, n)
	}
	acc := s.scratch[:n]
	eps2 := s.softening * s.softening

	for i := 0; i < n; i++ {
		var a vector.Vector3
		pi := s.bodies[i].Pos

		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			r := s.bodies[j].Pos.Sub(pi)
			r2 := r.MagnitudeSquared()

			if r2 == 0 {
				switch s.policy {
				case SkipCoincident, Soften:
					continue
				case FailCoincident:
					return nil, fmt.Errorf("bodies %d and %d: %w", i, j, ErrCoincidentBodies)
				}
			}
			if s.policy == Soften {
				r2 += eps2
			}

			f := s.g * s.bodies[j].Mass / (r2 * math.Sqrt(r2))
			a.Accumulate(r.Scale(f))
		}

		acc[i] = a
	}

	return acc, nil
}

// Print writes one line per body in insertion order.
func (s *System) Print(w io.Writer) error {
	return PrintBodies(w, s.bodies)
}

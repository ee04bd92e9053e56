package physics_test

import (
	"bytes"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/vector"
)

func binary(opts ...physics.Option) *physics.System {
	sys := physics.New(opts...)
	sys.AddBody(physics.NewBody(10, vector.Zero, vector.Zero, vector.Zero))
	sys.AddBody(physics.NewBody(20, vector.New(100, 0, 0), vector.Zero, vector.Zero))
	return sys
}

var _ = Describe("System", func() {
	Describe("Step", func() {
		It("computes the first tick of two bodies at rest", func() {
			sys := binary()
			Expect(sys.Step(1)).To(Succeed())

			b0, b1 := sys.Body(0), sys.Body(1)
			Expect(b0.Acc.X).To(BeNumerically("~", 1.334816e-13, 1e-24))
			Expect(b0.Acc.Y).To(BeZero())
			Expect(b0.Acc.Z).To(BeZero())
			Expect(b1.Acc.X).To(BeNumerically("~", -6.67408e-14, 1e-24))
			Expect(b1.Acc.Y).To(BeZero())
			Expect(b1.Acc.Z).To(BeZero())

			Expect(b0.Pos).To(Equal(vector.Zero))
			Expect(b1.Pos).To(Equal(vector.New(100, 0, 0)))
		})

		It("uses the stored acceleration for the next position update", func() {
			sys := binary()
			Expect(sys.Step(1)).To(Succeed())
			prev := sys.Body(0)
			Expect(sys.Step(1)).To(Succeed())

			want := prev.Pos.Add(prev.Vel).Add(prev.Acc.Scale(0.5))
			Expect(sys.Body(0).Pos.X).To(BeNumerically("~", want.X, 1e-28))
		})

		It("points accelerations along the connecting line with magnitude G·m/r²", func() {
			for _, r := range []float64{0.5, 1, 3, 250} {
				for _, m := range []float64{1, 7.5, 1e3} {
					sys := physics.New(physics.WithG(1))
					sys.AddBody(physics.NewBody(m, vector.New(1, 2, 3), vector.Zero, vector.Zero))
					dir := vector.New(2, -1, 2).Scale(1.0 / 3.0)
					sys.AddBody(physics.NewBody(1, vector.New(1, 2, 3).Add(dir.Scale(r)), vector.Zero, vector.Zero))
					Expect(sys.Step(0.1)).To(Succeed())

					a := sys.Body(1).Acc
					Expect(a.Magnitude()).To(BeNumerically("~", m/(r*r), 1e-9*m/(r*r)))
					unit, err := a.Normalize()
					Expect(err).NotTo(HaveOccurred())
					Expect(unit.Dot(dir)).To(BeNumerically("~", -1, 1e-12))
				}
			}
		})

		It("obeys Newton's third law on every step", func() {
			sys := physics.New(physics.WithG(1))
			sys.AddBody(physics.NewBody(3, vector.New(-1, 0, 0), vector.New(0, -0.2, 0), vector.Zero))
			sys.AddBody(physics.NewBody(5, vector.New(1, 0.5, 0), vector.New(0, 0.3, 0.1), vector.Zero))

			for i := 0; i < 200; i++ {
				Expect(sys.Step(0.01)).To(Succeed())
				f0 := sys.Body(0).Acc.Scale(sys.Body(0).Mass)
				f1 := sys.Body(1).Acc.Scale(sys.Body(1).Mass)
				Expect(f0.Add(f1).Magnitude()).To(BeNumerically("<=", 1e-12*f0.Magnitude()))
			}
		})

		It("handles empty and single-body systems", func() {
			empty := physics.New()
			Expect(empty.Step(1)).To(Succeed())
			Expect(empty.Snapshot()).To(BeEmpty())

			lone := physics.New()
			lone.AddBody(physics.NewBody(5, vector.New(1, 1, 1), vector.New(1, 0, 0), vector.New(9, 9, 9)))
			Expect(lone.Step(1)).To(Succeed())
			Expect(lone.Body(0).Acc).To(Equal(vector.Zero))
			Expect(lone.Step(1)).To(Succeed())
			Expect(lone.Body(0).Acc).To(Equal(vector.Zero))
		})

		It("is independent of insertion order", func() {
			bodies := []physics.Body{
				{Name: "a", Mass: 4, Pos: vector.New(0, 0, 0)},
				{Name: "b", Mass: 1, Pos: vector.New(3, 1, 0)},
				{Name: "c", Mass: 9, Pos: vector.New(-2, 4, 1)},
				{Name: "d", Mass: 2, Pos: vector.New(1, -3, -2)},
			}

			magnitudes := func(order []int) map[string]float64 {
				sys := physics.New(physics.WithG(1))
				for _, i := range order {
					sys.AddBody(bodies[i])
				}
				Expect(sys.Step(0.01)).To(Succeed())
				out := make(map[string]float64)
				for _, b := range sys.Snapshot() {
					out[b.Name] = b.Acc.Magnitude()
				}
				return out
			}

			base := magnitudes([]int{0, 1, 2, 3})
			for _, order := range [][]int{{3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}} {
				got := magnitudes(order)
				for name, want := range base {
					Expect(got[name]).To(BeNumerically("~", want, 1e-12*want))
				}
			}
		})

		It("conserves momentum over many small steps", func() {
			sys := physics.New(physics.WithG(1))
			sys.AddBody(physics.NewBody(1, vector.New(-1, 0, 0), vector.New(0, -0.4, 0), vector.Zero))
			sys.AddBody(physics.NewBody(2, vector.New(0.5, 0, 0), vector.New(0, 0.2, 0.05), vector.Zero))
			p0 := sys.Momentum()

			for i := 0; i < 5000; i++ {
				Expect(sys.Step(0.001)).To(Succeed())
			}
			Expect(sys.Momentum().Sub(p0).Magnitude()).To(BeNumerically("<", 1e-10))
		})
	})

	Describe("coincident bodies", func() {
		coincident := func(opts ...physics.Option) *physics.System {
			sys := physics.New(opts...)
			sys.AddBody(physics.NewBody(10, vector.New(5, 5, 5), vector.Zero, vector.Zero))
			sys.AddBody(physics.NewBody(20, vector.New(5, 5, 5), vector.Zero, vector.Zero))
			sys.AddBody(physics.NewBody(30, vector.New(105, 5, 5), vector.Zero, vector.Zero))
			return sys
		}

		It("skips the pair by default", func() {
			sys := coincident()
			Expect(sys.Step(1)).To(Succeed())
			for _, b := range sys.Snapshot() {
				Expect(b.IsFinite()).To(BeTrue())
			}
			Expect(sys.Body(0).Acc.X).To(BeNumerically("~", physics.G*30/1e4, 1e-24))
			Expect(sys.Body(0).Acc).To(Equal(sys.Body(1).Acc))
		})

		It("stays finite when softened", func() {
			sys := coincident(physics.WithPolicy(physics.Soften), physics.WithSoftening(1))
			Expect(sys.Step(1)).To(Succeed())
			for _, b := range sys.Snapshot() {
				Expect(b.IsFinite()).To(BeTrue())
			}
			Expect(sys.PotentialEnergy()).To(BeNumerically("<", 0))
		})

		It("fails without touching state", func() {
			sys := coincident(physics.WithPolicy(physics.FailCoincident))
			before := sys.Snapshot()

			err := sys.Step(1)
			Expect(err).To(MatchError(physics.ErrCoincidentBodies))
			Expect(err.Error()).To(ContainSubstring("bodies 0 and 1"))
			Expect(sys.Snapshot()).To(Equal(before))
		})

		It("propagates NaN when asked to", func() {
			sys := coincident(physics.WithPolicy(physics.Propagate))
			Expect(sys.Step(1)).To(Succeed())
			Expect(math.IsNaN(sys.Body(0).Acc.X)).To(BeTrue())
		})

		It("reports non-finite state with the finite check enabled", func() {
			sys := coincident(physics.WithPolicy(physics.Propagate), physics.WithFiniteCheck())
			Expect(sys.Step(1)).To(MatchError(physics.ErrNonFinite))
		})
	})

	Describe("schemes", func() {
		moving := func(sc physics.Scheme) *physics.System {
			sys := physics.New(physics.WithScheme(sc))
			sys.AddBody(physics.NewBody(1, vector.Zero, vector.New(2, 0, 0), vector.New(1, 0, 0)))
			return sys
		}

		DescribeTable("velocity after one tick of a lone body",
			func(sc physics.Scheme, want vector.Vector3) {
				sys := moving(sc)
				Expect(sys.Step(2)).To(Succeed())
				Expect(sys.Body(0).Pos).To(Equal(vector.New(6, 0, 0)))
				Expect(sys.Body(0).Vel).To(Equal(want))
			},
			Entry("current", physics.CurrentAccel, vector.New(2, 0, 0)),
			Entry("lagged", physics.LaggedAccel, vector.New(4, 0, 0)),
			Entry("reference", physics.Reference, vector.New(2, 0, 0)),
		)

		It("discards prior velocity under the reference scheme", func() {
			sys := physics.New(physics.WithScheme(physics.Reference))
			sys.AddBody(physics.NewBody(1, vector.Zero, vector.New(0, 7, 0), vector.Zero))
			Expect(sys.Step(1)).To(Succeed())
			Expect(sys.Body(0).Pos).To(Equal(vector.New(0, 7, 0)))
			Expect(sys.Body(0).Vel).To(Equal(vector.Zero))
		})
	})

	Describe("parsing", func() {
		DescribeTable("ParsePolicy",
			func(in string, want physics.Policy) {
				p, err := physics.ParsePolicy(in)
				Expect(err).NotTo(HaveOccurred())
				Expect(p).To(Equal(want))
				if in != "" {
					Expect(p.String()).To(Equal(in))
				}
			},
			Entry("default", "", physics.SkipCoincident),
			Entry("skip", "skip", physics.SkipCoincident),
			Entry("soften", "soften", physics.Soften),
			Entry("fail", "fail", physics.FailCoincident),
			Entry("propagate", "propagate", physics.Propagate),
		)

		It("rejects unknown names", func() {
			_, err := physics.ParsePolicy("clamp-ish")
			Expect(err).To(MatchError(physics.ErrUnknownPolicy))
			_, err = physics.ParseScheme("rk4")
			Expect(err).To(MatchError(physics.ErrUnknownScheme))
		})

		It("parses schemes", func() {
			sc, err := physics.ParseScheme("Reference")
			Expect(err).NotTo(HaveOccurred())
			Expect(sc).To(Equal(physics.Reference))
		})
	})

	It("prints one line per body", func() {
		var buf bytes.Buffer
		Expect(binary().Print(&buf)).To(Succeed())
		Expect(buf.String()).To(Equal(
			"pos: {0, 0, 0}vel: {0, 0, 0}acc: {0, 0, 0}\n" +
				"pos: {100, 0, 0}vel: {0, 0, 0}acc: {0, 0, 0}\n"))
	})
})

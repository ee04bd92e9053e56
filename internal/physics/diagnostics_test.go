package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/vector"
)

var _ = Describe("Diagnostics", func() {
	var sys *physics.System

	BeforeEach(func() {
		sys = physics.New(physics.WithG(2))
		sys.AddBody(physics.NewBody(1, vector.New(0, 0, 0), vector.New(0, 1, 0), vector.Zero))
		sys.AddBody(physics.NewBody(3, vector.New(4, 0, 0), vector.New(0, -1, 0), vector.Zero))
	})

	It("computes mass and centre of mass", func() {
		Expect(sys.TotalMass()).To(Equal(4.0))
		Expect(sys.CenterOfMass()).To(Equal(vector.New(3, 0, 0)))
		Expect(physics.New().CenterOfMass()).To(Equal(vector.Zero))
	})

	It("computes momentum and angular momentum", func() {
		Expect(sys.Momentum()).To(Equal(vector.New(0, -2, 0)))
		Expect(sys.AngularMomentum()).To(Equal(vector.New(0, 0, -12)))
	})

	It("computes energies", func() {
		Expect(sys.KineticEnergy()).To(BeNumerically("~", 2.0, 1e-12))
		Expect(sys.PotentialEnergy()).To(BeNumerically("~", -1.5, 1e-12))
		Expect(sys.Energy()).To(BeNumerically("~", 0.5, 1e-12))
		Expect(sys.Separation(0, 1)).To(BeNumerically("~", 4.0, 1e-12))
	})

	It("keeps total energy bounded on a circular orbit", func() {
		orbit := physics.New(physics.WithG(1))
		orbit.AddBody(physics.NewBody(1000, vector.Zero, vector.Zero, vector.Zero))
		orbit.AddBody(physics.NewBody(1e-6, vector.New(10, 0, 0), vector.New(0, 10, 0), vector.Zero))
		e0 := orbit.Energy()

		for i := 0; i < 2000; i++ {
			Expect(orbit.Step(1e-4)).To(Succeed())
		}
		Expect(orbit.Energy()).To(BeNumerically("~", e0, 1e-3*-e0))
	})
})

package dynamo_test

import (
	"context"
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/vector"
)

type countingStepper struct {
	calls int
	dts   []float64
	err   error
	body  physics.Body
}

func (c *countingStepper) Step(dt float64) error {
	if c.err != nil {
		return c.err
	}
	c.calls++
	c.dts = append(c.dts, dt)
	c.body.Pos = c.body.Pos.Add(vector.New(1, 0, 0))
	return nil
}

func (c *countingStepper) Snapshot() []physics.Body {
	return []physics.Body{c.body}
}

type countMetric struct {
	frames []int
}

func (m *countMetric) Name() string           { return "count" }
func (m *countMetric) Observe(f dynamo.Frame) { m.frames = append(m.frames, f.Step) }
func (m *countMetric) Value() float64         { return float64(len(m.frames)) }
func (m *countMetric) Reset()                 { m.frames = nil }

var _ = Describe("Simulator", func() {
	It("rejects invalid configs", func() {
		for _, cfg := range []dynamo.Config{
			{Dt: 0},
			{Dt: -1},
			{Dt: 1, Steps: -1},
			{Dt: 1, Pace: -time.Second},
		} {
			_, err := dynamo.New(&countingStepper{}, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		}
	})

	It("runs a bounded number of ticks", func() {
		st := &countingStepper{}
		sim, err := dynamo.New(st, dynamo.Config{Dt: 0.5, Steps: 10})
		Expect(err).NotTo(HaveOccurred())

		var seen []dynamo.Frame
		sim.AddObserver(dynamo.ObserverFunc(func(f dynamo.Frame) error {
			seen = append(seen, f)
			return nil
		}))
		metric := &countMetric{}
		sim.AddMetric(metric)

		res, err := sim.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(10))
		Expect(res.Time).To(BeNumerically("~", 5.0, 1e-12))
		Expect(st.dts).To(HaveEach(0.5))
		Expect(seen).To(HaveLen(10))
		Expect(seen[0].Step).To(Equal(1))
		Expect(seen[9].Bodies[0].Pos.X).To(Equal(10.0))
		Expect(metric.frames[0]).To(Equal(0))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 11.0))
		Expect(res.Final[0].Pos.X).To(Equal(10.0))
	})

	It("stops an unbounded run when the context is cancelled", func() {
		st := &countingStepper{}
		sim, err := dynamo.New(st, dynamo.Config{Dt: 1})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		sim.AddObserver(dynamo.ObserverFunc(func(f dynamo.Frame) error {
			if f.Step == 25 {
				cancel()
			}
			return nil
		}))

		res, err := sim.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(Equal(25))
	})

	It("paces ticks against wall-clock time", func() {
		st := &countingStepper{}
		sim, err := dynamo.New(st, dynamo.Config{Dt: 1, Steps: 5, Pace: 10 * time.Millisecond})
		Expect(err).NotTo(HaveOccurred())

		start := time.Now()
		_, err = sim.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(time.Since(start)).To(BeNumerically(">=", 35*time.Millisecond))
	})

	It("wraps engine failures with the tick", func() {
		boom := errors.New("boom")
		sim, err := dynamo.New(&countingStepper{err: boom}, dynamo.Config{Dt: 1, Steps: 3})
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.Run(context.Background())
		Expect(err).To(MatchError(boom))
		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(Equal(1))
		Expect(res.StepsTaken).To(BeZero())
	})

	It("surfaces observer failures", func() {
		sim, err := dynamo.New(&countingStepper{}, dynamo.Config{Dt: 1, Steps: 3})
		Expect(err).NotTo(HaveOccurred())
		closed := errors.New("writer closed")
		sim.AddObserver(dynamo.ObserverFunc(func(dynamo.Frame) error { return closed }))

		_, err = sim.Run(context.Background())
		Expect(err).To(MatchError(closed))
	})

	It("flags non-finite state when validation is on", func() {
		sys := physics.New(physics.WithPolicy(physics.Propagate))
		sys.AddBody(physics.NewBody(1, vector.Zero, vector.Zero, vector.Zero))
		sys.AddBody(physics.NewBody(1, vector.Zero, vector.Zero, vector.Zero))

		sim, err := dynamo.New(sys, dynamo.Config{Dt: 1, Steps: 10, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.Run(context.Background())
		Expect(err).To(MatchError(dynamo.ErrUnstable))
		Expect(res.StepsTaken).To(Equal(1))
		Expect(math.IsNaN(res.Final[0].Acc.X)).To(BeTrue())
	})

	It("drives the physics engine tick by tick", func() {
		sys := physics.New()
		sys.AddBody(physics.NewBody(10, vector.Zero, vector.Zero, vector.Zero))
		sys.AddBody(physics.NewBody(20, vector.New(100, 0, 0), vector.Zero, vector.Zero))

		sim, err := dynamo.New(sys, dynamo.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		frame, err := sim.Tick()
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Step).To(Equal(1))
		Expect(frame.Time).To(Equal(1.0))
		Expect(frame.Bodies[0].Acc.X).To(BeNumerically("~", 1.334816e-13, 1e-24))

		frame.Bodies[0].Mass = 999
		Expect(sys.Body(0).Mass).To(Equal(10.0))
	})
})

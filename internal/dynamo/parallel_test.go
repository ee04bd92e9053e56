package dynamo_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
)

var _ = Describe("Ensemble", func() {
	It("runs every member to completion", func() {
		steppers := []*countingStepper{{}, {}, {}}
		sims := make([]*dynamo.Simulator, len(steppers))
		for i, st := range steppers {
			sim, err := dynamo.New(st, dynamo.Config{Dt: 1, Steps: 10 * (i + 1)})
			Expect(err).NotTo(HaveOccurred())
			sims[i] = sim
		}

		ens := dynamo.NewEnsemble(sims...)
		Expect(ens.Len()).To(Equal(3))

		results, err := ens.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for i, res := range results {
			Expect(res.StepsTaken).To(Equal(10 * (i + 1)))
			Expect(steppers[i].calls).To(Equal(10 * (i + 1)))
		}
	})

	It("reports member failures without stopping the others", func() {
		boom := errors.New("boom")
		ok, err := dynamo.New(&countingStepper{}, dynamo.Config{Dt: 1, Steps: 5})
		Expect(err).NotTo(HaveOccurred())
		bad, err := dynamo.New(&countingStepper{err: boom}, dynamo.Config{Dt: 1, Steps: 5})
		Expect(err).NotTo(HaveOccurred())

		results, err := dynamo.NewEnsemble(ok, bad).Run(context.Background())
		Expect(err).To(MatchError(boom))
		Expect(results[0].StepsTaken).To(Equal(5))
		Expect(results[1].StepsTaken).To(Equal(0))

		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(Equal(1))
	})
})

package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/opmachine/core"
)

var _ = Describe("Core", func() {
	var engine *sim.SerialEngine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	It("should run a mapped program to its halt", func() {
		c := core.NewBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("Core")

		c.MapProgram(mustParse(bootcode))
		Expect(engine.Run()).To(Succeed())

		res, err := c.Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Done()).To(BeTrue())
		Expect(res.Status).To(Equal(core.StatusHaltedOnRepeat))
		Expect(res.Accumulator).To(Equal(5))
		Expect(float64(c.FinishTime())).To(BeNumerically(">", 0))
	})

	It("should time cores in different modes on one engine", func() {
		hang := core.NewBuilder().
			WithEngine(engine).
			Build("Hang")
		complete := core.NewBuilder().
			WithEngine(engine).
			WithMode(core.ModeComplete).
			Build("Complete")

		hang.MapProgram(mustParse(bootcode))
		complete.MapProgram(mustParse(bootcodePatched))
		Expect(engine.Run()).To(Succeed())

		res, err := complete.Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(core.StatusCompleted))
		Expect(res.Accumulator).To(Equal(8))

		Expect(hang.Done()).To(BeTrue())
		Expect(complete.Done()).To(BeTrue())
		Expect(hang.FinishTime()).To(BeNumerically(">", complete.FinishTime()))
	})

	It("should keep the run error", func() {
		c := core.NewBuilder().
			WithEngine(engine).
			WithMaxSteps(2).
			Build("Core")

		c.MapProgram(mustParse(bootcode))
		Expect(engine.Run()).To(Succeed())

		res, err := c.Result()
		Expect(err).To(MatchError(core.ErrStepLimit))
		Expect(c.Done()).To(BeTrue())
		Expect(res.Steps).To(Equal(2))
	})

	It("should report loops when configured to", func() {
		c := core.NewBuilder().
			WithEngine(engine).
			WithMode(core.ModeComplete).
			WithLoopPolicy(core.ReportLoop).
			Build("Core")

		c.MapProgram(mustParse(bootcode))
		Expect(engine.Run()).To(Succeed())

		res, err := c.Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(core.StatusLooping))
	})

	It("should refuse a negative step bound", func() {
		Expect(func() { core.NewBuilder().WithMaxSteps(-1) }).To(Panic())
	})

	It("should return an empty result before a program is mapped", func() {
		c := core.NewBuilder().WithEngine(engine).Build("Idle")
		res, err := c.Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(core.Result{}))
		Expect(c.Done()).To(BeFalse())
	})
})

var _ = Describe("Core hooks", func() {
	It("should count steps and finishes", func() {
		engine := sim.NewSerialEngine()
		c := core.NewBuilder().WithEngine(engine).Build("Core")
		counter := &core.StepCounter{}
		c.AcceptHook(counter)

		c.MapProgram(mustParse(bootcode))
		Expect(engine.Run()).To(Succeed())

		Expect(counter.Steps).To(Equal(8))
		Expect(counter.Finishes).To(Equal(1))
	})
})

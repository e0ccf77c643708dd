package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/san-kum/jointsim/internal/metrics"
	"github.com/san-kum/jointsim/internal/sim"
)

func bound(v float64) *float64 { return &v }

var _ = Describe("closed-loop step response", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.Config{
			Target:   math.Pi / 4,
			Duration: 4.0,
			Dt:       0.001,
			Plant:    dynamo.PlantParams{Inertia: 0.01, Damping: 0.1},
			Controller: dynamo.ControllerParams{
				Kp: 30, Ki: 10, Kd: 2,
				OutputMin: bound(-10), OutputMax: bound(10),
			},
		}
	})

	Context("with the reference gains", func() {
		var result *dynamo.Result

		JustBeforeEach(func() {
			var err error
			result, err = sim.New().Run(cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records one sample per control update", func() {
			Expect(result.Record).To(HaveLen(4000))
			last, ok := result.Record.Last()
			Expect(ok).To(BeTrue())
			Expect(last.Time).To(BeNumerically("~", 4.0, 1e-9))
		})

		It("ends within 2% of the target", func() {
			last, _ := result.Record.Last()
			Expect(last.Angle).To(BeNumerically("~", math.Pi/4, 0.02*math.Pi/4))
		})

		It("settles before the horizon", func() {
			ts, settled, err := metrics.SettlingTime(result.Record.Times(), result.Record.Angles(), result.Target, 0.02)
			Expect(err).NotTo(HaveOccurred())
			Expect(settled).To(BeTrue())
			Expect(ts).To(BeNumerically("<", 4.0))
			Expect(ts).To(BeNumerically("~", 0.749, 0.01))
		})

		It("overshoots by a couple of percent", func() {
			os, err := metrics.Overshoot(result.Record.Angles(), result.Target)
			Expect(err).NotTo(HaveOccurred())
			Expect(os).To(BeNumerically("~", 2.12, 0.05))
		})

		It("never leaves the torque limits", func() {
			for _, u := range result.Record.Controls() {
				Expect(u).To(And(BeNumerically(">=", -10), BeNumerically("<=", 10)))
			}
		})

		It("produces a full report", func() {
			r, err := metrics.Evaluate(result, metrics.DefaultTolerance)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Settled).To(BeTrue())
			Expect(r.RiseReached).To(BeTrue())
			Expect(r.SaturationRatio).To(BeNumerically(">", 0))
			Expect(math.Abs(r.SteadyStateError)).To(BeNumerically("<", 0.02*math.Pi/4))
		})
	})

	Context("with a negative target", func() {
		It("mirrors the positive response", func() {
			up, err := sim.New().Run(cfg)
			Expect(err).NotTo(HaveOccurred())

			cfg.Target = -cfg.Target
			down, err := sim.New().Run(cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(down.Record).To(HaveLen(len(up.Record)))
			for i := range up.Record {
				Expect(down.Record[i].Angle).To(Equal(-up.Record[i].Angle))
			}

			tsUp, _, err := metrics.SettlingTime(up.Record.Times(), up.Record.Angles(), up.Target, 0.02)
			Expect(err).NotTo(HaveOccurred())
			tsDown, settled, err := metrics.SettlingTime(down.Record.Times(), down.Record.Angles(), down.Target, 0.02)
			Expect(err).NotTo(HaveOccurred())
			Expect(settled).To(BeTrue())
			Expect(tsDown).To(Equal(tsUp))
		})
	})

	Context("without torque limits", func() {
		BeforeEach(func() {
			cfg.Controller.OutputMin = nil
			cfg.Controller.OutputMax = nil
		})

		It("commands more torque than the limited loop", func() {
			result, err := sim.New().Run(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Record[0].Control).To(BeNumerically(">", 10))
		})
	})

	DescribeTable("rejecting invalid configuration",
		func(mutate func(*dynamo.Config)) {
			mutate(&cfg)
			_, err := sim.New().Run(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		},
		Entry("zero inertia", func(c *dynamo.Config) { c.Plant.Inertia = 0 }),
		Entry("negative dt", func(c *dynamo.Config) { c.Dt = -0.001 }),
		Entry("min above max", func(c *dynamo.Config) { c.Controller.OutputMin = bound(20) }),
	)
})

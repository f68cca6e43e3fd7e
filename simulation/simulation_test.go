package simulation

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mainmem"
	"github.com/sarchlab/cachesim/tracing"
)

func runAll(s *Simulation, maxOps int) []cpu.StepResult {
	var results []cpu.StepResult

	n, err := s.Run(context.Background(), cpu.RunOptions{
		MaxOps:      maxOps,
		PromptAfter: cpu.DefaultPromptAfter,
		Continuer:   cpu.AlwaysContinue{},
		OnStep: func(res cpu.StepResult) {
			results = append(results, res)
		},
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(n).To(Equal(maxOps))

	return results
}

var _ = Describe("Simulation", func() {
	var (
		mockCtrl   *gomock.Controller
		simulation *Simulation
	)

	BeforeEach(func() {
		var err error

		mockCtrl = gomock.NewController(GinkgoT())
		simulation, err = MakeBuilder().WithSeed(7).Build()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
		Expect(simulation.Terminate(context.Background())).To(Succeed())
	})

	It("should register the components", func() {
		Expect(simulation.ID()).NotTo(BeEmpty())
		Expect(simulation.Components()).To(HaveLen(3))
		Expect(simulation.GetComponentByName("MainMemory")).
			To(BeIdenticalTo(simulation.Memory()))
		Expect(simulation.GetComponentByName("Cache")).
			To(BeIdenticalTo(simulation.Cache()))
		Expect(simulation.GetComponentByName("Core")).
			To(BeIdenticalTo(simulation.Core()))
		Expect(simulation.GetComponentByName("L2")).To(BeNil())
	})

	It("should register a component", func() {
		comp := NewMockComponent(mockCtrl)
		comp.EXPECT().Name().Return("comp").AnyTimes()

		simulation.RegisterComponent(comp)

		Expect(simulation.GetComponentByName("comp")).To(Equal(comp))
		Expect(simulation.Components()).To(HaveLen(4))
	})

	It("should panic when a name is registered twice", func() {
		comp := NewMockComponent(mockCtrl)
		comp.EXPECT().Name().Return("Cache").AnyTimes()

		Expect(func() { simulation.RegisterComponent(comp) }).To(Panic())
	})

	It("should use the default configuration", func() {
		Expect(simulation.Cache().Capacity()).To(Equal(cache.DefaultCapacity))
		Expect(simulation.Memory().Size()).
			To(Equal(len(mainmem.DefaultSeedKeys)))
		Expect(simulation.GetDataRecorder()).To(BeNil())
		Expect(simulation.GetMonitor()).To(BeNil())
		Expect(simulation.MonitorURL()).To(BeEmpty())
	})

	It("should keep the counters consistent over a run", func() {
		runAll(simulation, cpu.DefaultMaxOps)

		report := simulation.Report()
		Expect(report.Operations).To(Equal(uint64(cpu.DefaultMaxOps)))
		Expect(report.TotalAccesses).To(Equal(uint64(2 * cpu.DefaultMaxOps)))
		Expect(report.Hits + report.Misses).To(Equal(report.TotalAccesses))
		Expect(report.CacheSize).To(BeNumerically("<=", report.CacheCapacity))
		Expect(report.HitRate + report.MissRate).
			To(BeNumerically("~", 100.0, 1e-9))
	})

	It("should be reproducible with the same seed", func() {
		other, err := MakeBuilder().WithSeed(7).Build()
		Expect(err).NotTo(HaveOccurred())

		defer func() {
			Expect(other.Terminate(context.Background())).To(Succeed())
		}()

		Expect(runAll(simulation, 10)).To(Equal(runAll(other, 10)))
	})

	It("should reject an invalid capacity", func() {
		_, err := MakeBuilder().WithCapacity(0).Build()

		Expect(err).To(MatchError(cache.ErrInvalidCapacity))
	})

	It("should narrate through the logger", func() {
		buf := new(bytes.Buffer)

		logged, err := MakeBuilder().
			WithSeedKeys("A", "B").
			WithOperationSource(&cpu.FixedOperationSource{
				Ops: []cpu.Operation{cpu.Add},
			}).
			WithValueSource(mainmem.FixedValueSource(
				map[string]int{"A": 2, "B": 3},
				mainmem.HashValueSource,
			)).
			WithLogger(zerolog.New(buf).Level(zerolog.InfoLevel)).
			Build()
		Expect(err).NotTo(HaveOccurred())

		defer func() {
			Expect(logged.Terminate(context.Background())).To(Succeed())
		}()

		res := logged.Core().Step()

		Expect(res.Result).To(Equal(5))
		Expect(res.ResultKey).To(Equal("RESULT_1"))
		Expect(buf.String()).To(ContainSubstring(`"message":"miss"`))
		Expect(buf.String()).To(ContainSubstring(`"message":"ADD: 2 + 3 = 5"`))
	})

	It("should record accesses", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")

		recorded, err := MakeBuilder().
			WithSeed(1).
			WithRecording(path).
			Build()
		Expect(err).NotTo(HaveOccurred())

		runAll(recorded, 3)

		numRecords := recorded.GetAccessTracer().NumRecords()
		Expect(numRecords).To(BeNumerically(">", 0))
		Expect(recorded.Terminate(context.Background())).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())

		defer reader.Close()

		reader.MapTable(tracing.AccessTableName, tracing.AccessRecord{})
		rows, total, err := reader.Query(
			context.Background(),
			tracing.AccessTableName,
			datarecording.QueryParams{
				Where: "Kind = ?",
				Args:  []any{tracing.EventMiss},
			},
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(len(rows)))

		misses := recorded.Report().Misses
		Expect(rows).To(HaveLen(int(misses)))

		first := rows[0].(*tracing.AccessRecord)
		Expect(first.RunID).To(Equal(recorded.ID()))
		Expect(first.Component).To(Equal("Cache"))
	})

	It("should serve the monitor", func() {
		monitored, err := MakeBuilder().WithMonitoring(0).Build()
		Expect(err).NotTo(HaveOccurred())

		defer func() {
			Expect(monitored.Terminate(context.Background())).To(Succeed())
		}()

		Expect(monitored.GetMonitor()).NotTo(BeNil())
		Expect(monitored.MonitorURL()).To(HavePrefix("http://localhost:"))

		runAll(monitored, 2)

		rsp, err := http.Get(monitored.MonitorURL() + "/api/stats")
		Expect(err).NotTo(HaveOccurred())

		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})

package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mainmem"
)

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		memory *mainmem.Storage
		c      *cache.Cache
		core   *cpu.Core
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		var err error

		memory = mainmem.MakeBuilder().WithSeed(1).Build("MainMem")
		c, err = cache.MakeBuilder().
			WithCapacity(2).
			WithBacking(memory).
			Build("Cache")
		Expect(err).NotTo(HaveOccurred())

		core = cpu.MakeBuilder().
			WithCache(c).
			WithMemory(memory).
			WithOperationSource(&cpu.FixedOperationSource{
				Ops: []cpu.Operation{cpu.Add},
			}).
			Build("Core")

		m = NewMonitor()
		m.RegisterComponent(memory)
		m.RegisterComponent(c)
		m.RegisterComponent(core)
		m.RegisterLocker(core)
	})

	It("should list components", func() {
		rec := get("/api/list_components")

		var names []string
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"MainMem", "Cache", "Core"}))
	})

	It("should return 404 for unknown components", func() {
		Expect(get("/api/component/L2").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/cache/L2/entries").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should refuse to list entries of a non-cache component", func() {
		rec := get("/api/cache/MainMem/entries")

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should list cache entries from LRU to MRU", func() {
		c.Get("A")
		c.Get("B")
		c.Get("A")

		rec := get("/api/cache/Cache/entries")

		rsp := entriesRsp{}
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Capacity).To(Equal(2))
		Expect(rsp.Entries).To(HaveLen(2))
		Expect(rsp.Entries[0].Key).To(Equal("B"))
		Expect(rsp.Entries[1].Key).To(Equal("A"))
	})

	It("should be unavailable without a reporter", func() {
		Expect(get("/api/stats").Code).
			To(Equal(http.StatusServiceUnavailable))
	})

	It("should report statistics", func() {
		m.RegisterStatsSource(core)

		core.Step()
		core.Step()

		rec := get("/api/stats")

		report := cpu.Summary{}
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &report)).To(Succeed())
		Expect(report.Operations).To(Equal(uint64(2)))
		Expect(report.TotalAccesses).To(Equal(uint64(4)))
		Expect(report.Misses).To(Equal(uint64(4)))
		Expect(report.Evictions).To(Equal(uint64(4)))
		Expect(report.CacheCapacity).To(Equal(2))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Run", 20)
		bar.IncrementFinished(3)

		rec := get("/api/progress")

		var bars []progressBarRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Run"))
		Expect(bars[0].Total).To(Equal(uint64(20)))
		Expect(bars[0].Finished).To(Equal(uint64(3)))

		m.CompleteProgressBar(bar)

		rec = get("/api/progress")
		Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
	})

	It("should export metrics", func() {
		core.Step()

		body := get("/metrics").Body.String()

		Expect(body).To(ContainSubstring(
			`cachesim_cache_accesses_total{component="Cache",result="miss"} 2`))
		Expect(body).To(ContainSubstring(
			`cachesim_core_steps_total{operation="ADD"} 1`))
		Expect(body).To(ContainSubstring(
			`cachesim_memory_reads_total{component="MainMem"} 2`))
		Expect(body).To(ContainSubstring(
			`cachesim_cache_stores_total{component="Cache"} 3`))
	})

	It("should ignore low port numbers", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})

	It("should serve over HTTP", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())

		defer func() {
			Expect(m.StopServer(context.Background())).To(Succeed())
		}()

		_, err = m.StartServer()
		Expect(err).To(MatchError(ErrServerStarted))

		rsp, err := http.Get(url + "/api/list_components")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal(`["MainMem","Cache","Core"]`))
	})
})

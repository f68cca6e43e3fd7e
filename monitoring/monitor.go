// Package monitoring serves the state of a running simulation over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim"
)

const profileDuration = time.Second

// ErrServerStarted is returned when a Monitor is started twice.
var ErrServerStarted = errors.New("monitoring server already started")

// A StatsSource summarizes the simulation.
type StatsSource interface {
	Report() cpu.Summary
}

type entryLister interface {
	Entries() []cache.Block
	Capacity() int
}

// Monitor turns a simulation into a server that external tools can query.
type Monitor struct {
	// lock is held while the state of the components is read.
	lock        sync.Locker
	components  []sim.Component
	statsSource StatsSource
	portNumber  int
	log         zerolog.Logger
	idGen       sim.IDGenerator

	registry *prometheus.Registry
	metrics  *MetricsHook
	server   *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	return &Monitor{
		lock:     &sync.Mutex{},
		log:      zerolog.Nop(),
		idGen:    sim.NewSequentialIDGenerator(),
		registry: reg,
		metrics:  NewMetricsHook(reg),
	}
}

// WithPortNumber sets the port number of the monitor. Port 0 lets the system
// pick a free port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber > 0 && portNumber < 1000 {
		m.log.Warn().
			Int("port", portNumber).
			Msg("port numbers below 1000 are not allowed, using a random port")

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(logger zerolog.Logger) *Monitor {
	m.log = logger
	return m
}

// RegisterLocker sets the lock that guards the state of the components.
func (m *Monitor) RegisterLocker(l sync.Locker) {
	m.lock = l
}

// RegisterStatsSource sets where the statistics come from.
func (m *Monitor) RegisterStatsSource(s StatsSource) {
	m.statsSource = s
}

// RegisterComponent registers a component to be monitored and attaches the
// metrics hook to it.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)
	c.AcceptHook(m.metrics)
}

// Metrics returns the hook that feeds the Prometheus metrics.
func (m *Monitor) Metrics() *MetricsHook {
	return m.metrics
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list of bars in progress.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/cache/{name}/entries", m.listCacheEntries)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() (string, error) {
	if m.server != nil {
		return "", ErrServerStarted
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.portNumber))
	if err != nil {
		return "", fmt.Errorf("starting monitoring server: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("monitoring server stopped")
		}
	}()

	m.log.Info().Str("url", url).Msg("monitoring simulation")

	return url, nil
}

// StopServer shuts the server down. It does nothing if the server is not
// running.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	err := m.server.Shutdown(ctx)
	m.server = nil

	return err
}

// OpenInBrowser opens the URL with the default browser of the system.
func (m *Monitor) OpenInBrowser(url string) error {
	browser.Stdout = os.Stderr

	return browser.OpenURL(url)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	buf := bytes.NewBuffer(nil)

	m.lock.Lock()
	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(buf)
	m.lock.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	if m.statsSource == nil {
		http.Error(w, "no core registered", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, m.statsSource.Report())
}

type entriesRsp struct {
	Capacity int           `json:"capacity"`
	Entries  []cache.Block `json:"entries"`
}

func (m *Monitor) listCacheEntries(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	lister, ok := component.(entryLister)
	if !ok {
		http.Error(w, "component is not a cache", http.StatusMethodNotAllowed)
		return
	}

	m.lock.Lock()
	rsp := entriesRsp{
		Capacity: lister.Capacity(),
		Entries:  lister.Entries(),
	}
	m.lock.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "component not found", http.StatusNotFound)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

package simulation

import (
	"context"
	"errors"

	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mainmem"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/tracing"
)

// A Simulation owns the components of a cache simulation and the services
// that observe them.
type Simulation struct {
	id string

	memory *mainmem.Storage
	cache  *cache.Cache
	core   *cpu.Core

	dataRecorder datarecording.DataRecorder
	accessTracer *tracing.AccessTracer
	monitor      *monitoring.Monitor
	monitorURL   string

	components    []sim.Component
	compNameIndex map[string]int
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Memory returns the main memory.
func (s *Simulation) Memory() *mainmem.Storage {
	return s.memory
}

// Cache returns the cache.
func (s *Simulation) Cache() *cache.Cache {
	return s.cache
}

// Core returns the processor core.
func (s *Simulation) Core() *cpu.Core {
	return s.core
}

// GetDataRecorder returns the data recorder, or nil if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetAccessTracer returns the tracer that records accesses, or nil if
// recording is off.
func (s *Simulation) GetAccessTracer() *tracing.AccessTracer {
	return s.accessTracer
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server, or an empty string
// if monitoring is off.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// GetComponentByName returns the component with the given name, or nil if no
// such component is registered.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	index, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[index]
}

// Components returns all the registered components.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// Run runs the core. Progress is shown by the monitor when monitoring is on.
func (s *Simulation) Run(ctx context.Context, opts cpu.RunOptions) (int, error) {
	if s.monitor == nil {
		return s.core.Run(ctx, opts)
	}

	bar := s.monitor.CreateProgressBar("Operations", uint64(opts.MaxOps))
	defer s.monitor.CompleteProgressBar(bar)

	onStep := opts.OnStep
	opts.OnStep = func(res cpu.StepResult) {
		bar.IncrementFinished(1)

		if onStep != nil {
			onStep(res)
		}
	}

	return s.core.Run(ctx, opts)
}

// Report summarizes the simulation.
func (s *Simulation) Report() cpu.Summary {
	return s.core.Report()
}

// Terminate stops the monitor and writes out the recorded data.
func (s *Simulation) Terminate(ctx context.Context) error {
	var errs []error

	if s.monitor != nil {
		errs = append(errs, s.monitor.StopServer(ctx))
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
	}

	return errors.Join(errs...)
}

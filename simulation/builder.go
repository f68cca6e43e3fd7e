package simulation

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mainmem"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	capacity    int
	seed        int64
	seedKeys    []string
	valueSource mainmem.ValueSource
	ops         cpu.OperationSource
	idGen       sim.IDGenerator
	logger      zerolog.Logger

	recordOn       bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		capacity: cache.DefaultCapacity,
		seedKeys: mainmem.DefaultSeedKeys,
		logger:   zerolog.Nop(),
	}
}

// WithCapacity sets the number of entries the cache can hold.
func (b Builder) WithCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithSeed sets the seed of the main memory values and of the operations.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithSeedKeys sets the keys loaded into the main memory at the start.
func (b Builder) WithSeedKeys(keys ...string) Builder {
	b.seedKeys = keys
	return b
}

// WithValueSource sets how the main memory generates values.
func (b Builder) WithValueSource(valueSource mainmem.ValueSource) Builder {
	b.valueSource = valueSource
	return b
}

// WithOperationSource sets how the core picks operations. By default the
// operations are picked at random with the seed of the simulation.
func (b Builder) WithOperationSource(ops cpu.OperationSource) Builder {
	b.ops = ops
	return b
}

// WithIDGenerator sets the generator of result keys.
func (b Builder) WithIDGenerator(idGen sim.IDGenerator) Builder {
	b.idGen = idGen
	return b
}

// WithLogger sets the logger that narrates the simulation.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// WithRecording turns on recording of accesses. An empty file name lets the
// simulation pick one.
func (b Builder) WithRecording(outputFileName string) Builder {
	b.recordOn = true
	b.outputFileName = outputFileName

	return b
}

// WithMonitoring turns on the monitoring server. Port 0 picks a random port.
func (b Builder) WithMonitoring(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port

	return b
}

// Build builds the simulation. It fails if the cache capacity is invalid, if
// the recording file cannot be created, or if the monitor cannot start.
func (b Builder) Build() (*Simulation, error) {
	s := &Simulation{
		id:            xid.New().String(),
		compNameIndex: make(map[string]int),
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().
			WithLogger(b.logger).
			WithPortNumber(b.monitorPort)
	}

	err := b.buildComponents(s)
	if err != nil {
		return nil, err
	}

	logTracer := tracing.NewLogTracer(b.logger)
	for _, c := range s.components {
		c.AcceptHook(logTracer)
	}

	if b.recordOn {
		err = b.startRecording(s)
		if err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		s.monitor.RegisterLocker(s.core)
		s.monitor.RegisterStatsSource(s.core)

		s.monitorURL, err = s.monitor.StartServer()
		if err != nil {
			_ = s.Terminate(context.Background())
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) buildComponents(s *Simulation) error {
	s.memory = mainmem.MakeBuilder().
		WithSeed(b.seed).
		WithSeedKeys(b.seedKeys...).
		WithValueSource(b.valueSource).
		Build("MainMemory")

	c, err := cache.MakeBuilder().
		WithCapacity(b.capacity).
		WithBacking(s.memory).
		Build("Cache")
	if err != nil {
		return err
	}

	s.cache = c

	ops := b.ops
	if ops == nil {
		ops = cpu.NewRandomOperationSource(b.seed)
	}

	s.core = cpu.MakeBuilder().
		WithCache(s.cache).
		WithMemory(s.memory).
		WithOperationSource(ops).
		WithIDGenerator(b.idGen).
		WithLogger(b.logger).
		Build("Core")

	s.RegisterComponent(s.memory)
	s.RegisterComponent(s.cache)
	s.RegisterComponent(s.core)

	return nil
}

func (b Builder) startRecording(s *Simulation) error {
	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "cachesim_" + s.id
	}

	recorder, err := datarecording.New(outputPath)
	if err != nil {
		return fmt.Errorf("creating recorder: %w", err)
	}

	s.dataRecorder = recorder
	s.accessTracer = tracing.NewAccessTracer(recorder, s.id)

	s.memory.AcceptHook(s.accessTracer)
	s.cache.AcceptHook(s.accessTracer)

	return nil
}

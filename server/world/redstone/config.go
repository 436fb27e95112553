package redstone

import (
	"log/slog"
)

// Config holds the tunable parameters for the redstone execution system.
// The zero value is usable; sensible defaults are applied by withDefaults.
type Config struct {
	// Enabled toggles the entire subsystem on or off.
	Enabled bool
	// InboxSize controls the bounded inbox channel size for cross-chunk events.
	InboxSize int
	// BudgetPerTick caps the amount of work a chunk worker may do per world tick.
	BudgetPerTick int
	// ProcessorFactory produces per-chunk processors responsible for evaluating local graphs.
	// Left nil, a default factory is built from Push and Containers.
	ProcessorFactory ProcessorFactory
	// Push and Containers back the default graph processor's piston and
	// comparator container-reading behaviour. Unused if ProcessorFactory is set.
	Push       PushRegistry
	Containers ContainerRegistry
	// Outputs receives piston/consumer output events produced each step.
	Outputs OutputSink
}

func (c Config) withDefaults() Config {
	if !c.Enabled {
		return c
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 4096
	}
	if c.BudgetPerTick <= 0 {
		c.BudgetPerTick = 8192
	}
	if c.ProcessorFactory == nil {
		proc := NewGraphProcessor(c.Push, c.Containers)
		c.ProcessorFactory = ProcessorFactoryFunc(func(_ ChunkID) Processor { return proc })
	}
	return c
}

// NewSystem builds a System wiring a Router and Scheduler together per the
// resolved configuration. A disabled config yields a nil System, which every
// System method treats as a no-op.
func (c Config) NewSystem(log *slog.Logger) *System {
	c = c.withDefaults()
	if !c.Enabled {
		if log != nil {
			log.Info("redstone subsystem disabled")
		}
		return nil
	}
	metrics := NewMetrics()
	router := NewRouter(RouterConfig{Logger: log, Metrics: metrics})
	scheduler := NewScheduler(SchedulerConfig{
		Logger:           log,
		Router:           router,
		InboxSize:        c.InboxSize,
		BudgetPerTick:    c.BudgetPerTick,
		ProcessorFactory: c.ProcessorFactory,
		Metrics:          metrics,
		Outputs:          c.Outputs,
	})
	return &System{router: router, scheduler: scheduler, metrics: metrics}
}

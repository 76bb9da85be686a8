package reactor

import (
	"driftpursuit/reactor/internal/clock"
	"driftpursuit/reactor/internal/dispatch"
	"driftpursuit/reactor/internal/logging"
	"driftpursuit/reactor/internal/rconfig"
)

// Runtime bundles the collaborators a graph of streams needs: the
// dispatcher, clock, and default replay/timeout policy, loaded from
// process configuration (SPEC_FULL.md §2's ambient config layer).
type Runtime struct {
	Config     *rconfig.Config
	Dispatcher dispatch.Dispatcher
	Clock      clock.Clock
	Logger     *logging.Logger
}

// NewRuntime loads configuration from the environment, builds the
// default dispatcher sized per DispatchQueueDepth, and wires a
// structured logger at the configured level.
func NewRuntime() (*Runtime, error) {
	cfg, err := rconfig.Load()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, nil)

	return &Runtime{
		Config:     cfg,
		Dispatcher: dispatch.NewQueue(cfg.DispatchQueueDepth),
		Clock:      clock.Default,
		Logger:     logger,
	}, nil
}

// DefaultReplay returns the ReplayLast policy sized from configuration.
func (r *Runtime) DefaultReplay() ReplayPolicy {
	return ReplayLast(r.Config.ReplayRetention)
}

// LogDiagnostics returns a Diagnostic hook (for Stream.OnDiagnostic)
// that writes each diagnostic as a structured log line, tagged with the
// node's Kind and the diagnostic's own event/detail fields.
func (r *Runtime) LogDiagnostics(component string) func(Diagnostic) {
	return func(d Diagnostic) {
		r.Logger.Debug("stream diagnostic",
			logging.String("component", component),
			logging.String("kind", d.Kind.String()),
			logging.String("event", d.Event),
			logging.String("detail", d.Detail),
		)
	}
}

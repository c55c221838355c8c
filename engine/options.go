package engine

import (
	"log/slog"
)

// graphConfig holds the configuration for a Graph, populated by Options.
type graphConfig struct {
	// entry designates the entry step. If empty, the first registered step
	// is used.
	entry StepID

	// logger receives structured execution events. Defaults to a discard
	// logger so observability is zero-cost when unconfigured.
	logger *slog.Logger
}

func newGraphConfig() *graphConfig {
	return &graphConfig{
		logger: slog.New(slog.DiscardHandler),
	}
}

// Option is a functional option for configuring Graph behavior.
// Options are applied during Builder construction via NewBuilder.
type Option func(*graphConfig)

// WithEntry designates the entry step of the graph. By default the first
// step registered via AddStep is the entry.
func WithEntry(id StepID) Option {
	return func(config *graphConfig) {
		config.entry = id
	}
}

// WithLogger sets the structured logger that receives run and step execution
// events. A nil logger disables event logging.
//
// Example:
//
//	engine.NewBuilder(
//	    engine.WithLogger(slog.Default()),
//	)
func WithLogger(logger *slog.Logger) Option {
	return func(config *graphConfig) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		config.logger = logger
	}
}

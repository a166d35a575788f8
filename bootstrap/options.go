package bootstrap

import (
	"time"

	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	metrics         *observability.SchedulerMetrics
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the global logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithSchedulerMetrics makes every pool created by AddScheduler record to m.
func WithSchedulerMetrics(m *observability.SchedulerMetrics) Option {
	return func(o *appOptions) {
		o.metrics = m
	}
}

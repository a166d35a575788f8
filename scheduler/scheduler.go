package scheduler

import (
	"context"
	stderrors "errors"
	"runtime"
	"time"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/validation"
)

// Kind selects a pool topology.
type Kind string

const (
	KindComputation Kind = "computation"
	KindIO          Kind = "io"
	KindSingle      Kind = "single"
)

// DefaultIdleTimeout is how long an Elastic worker waits for work before exiting.
const DefaultIdleTimeout = 60 * time.Second

// Pool is a scheduler with a managed lifetime.
type Pool interface {
	component.Component
	// Execute submits task for asynchronous execution. A non-nil error
	// means the task was rejected and will never run.
	Execute(task func()) error
}

// Config describes a pool.
type Config struct {
	Kind        Kind          `yaml:"kind" mapstructure:"kind" validate:"required,oneof=computation io single"`
	Name        string        `yaml:"name" mapstructure:"name"`
	Workers     int           `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`
}

// ApplyDefaults fills in the name and the sizing of the configured kind.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = string(c.Kind)
	}
	switch c.Kind {
	case KindComputation:
		if c.Workers == 0 {
			c.Workers = runtime.NumCPU()
		}
	case KindIO:
		if c.IdleTimeout == 0 {
			c.IdleTimeout = DefaultIdleTimeout
		}
	}
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Option configures a pool.
type Option func(*options)

type options struct {
	name        string
	workers     int
	idleTimeout time.Duration
	log         *logger.Logger
	metrics     *observability.SchedulerMetrics
}

// WithName overrides the pool name used in logs, metrics and worker names.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithWorkers sets the worker count of a Computation pool.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithIdleTimeout sets how long an Elastic worker may stay idle.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) { o.idleTimeout = d }
}

// WithLogger sets the logger. Defaults to logger.Get("scheduler").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records pool activity on m. Nil disables recording.
func WithMetrics(m *observability.SchedulerMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(defaultName string, opts []Option) options {
	o := options{name: defaultName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("scheduler")
	}
	o.log = o.log.WithFields(map[string]interface{}{logger.FieldScheduler: o.name})
	return o
}

// New builds the pool described by cfg. Options given here are applied
// after the ones derived from cfg.
func New(cfg Config, opts ...Option) (Pool, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.InvalidConfig("scheduler", err)
	}

	base := []Option{WithName(cfg.Name)}
	switch cfg.Kind {
	case KindComputation:
		base = append(base, WithWorkers(cfg.Workers))
		return NewComputation(append(base, opts...)...), nil
	case KindIO:
		base = append(base, WithIdleTimeout(cfg.IdleTimeout))
		return NewElastic(append(base, opts...)...), nil
	case KindSingle:
		return NewSingle(append(base, opts...)...), nil
	default:
		return nil, errors.InvalidInput("kind", "unknown scheduler kind "+string(cfg.Kind))
	}
}

// Use starts p, calls fn, and stops p when fn returns or panics.
// Errors from fn and Stop are joined.
func Use(ctx context.Context, p Pool, fn func(Pool) error) (err error) {
	if err := p.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err = stderrors.Join(err, p.Stop(ctx))
	}()
	return fn(p)
}

package main

import (
	"time"

	"github.com/kbukum/rxkit/config"
	"github.com/kbukum/rxkit/scheduler"
	"github.com/kbukum/rxkit/validation"
)

// Config is the rxdemo configuration.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`
	Schedulers           Schedulers `yaml:"schedulers" mapstructure:"schedulers"`
	Telemetry            Telemetry  `yaml:"telemetry" mapstructure:"telemetry"`
}

// Schedulers holds one pool per kind.
type Schedulers struct {
	IO          scheduler.Config `yaml:"io" mapstructure:"io"`
	Single      scheduler.Config `yaml:"single" mapstructure:"single"`
	Computation scheduler.Config `yaml:"computation" mapstructure:"computation"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills in the base config and a kind for every pool.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Schedulers.IO.Kind == "" {
		c.Schedulers.IO.Kind = scheduler.KindIO
	}
	if c.Schedulers.Single.Kind == "" {
		c.Schedulers.Single.Kind = scheduler.KindSingle
	}
	if c.Schedulers.Computation.Kind == "" {
		c.Schedulers.Computation.Kind = scheduler.KindComputation
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
}

// Validate checks the base config and the telemetry section. Pools are
// validated when they are built.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.Validate(&c.Telemetry)
}

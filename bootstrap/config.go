package bootstrap

import (
	"github.com/kbukum/rxkit/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig satisfies it via promoted methods.
//
//	type DemoConfig struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Schedulers SchedulersConfig `mapstructure:"schedulers"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

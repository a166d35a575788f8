// Package config provides configuration loading and validation for rxkit
// applications.
//
// It uses Viper to load a YAML file and godotenv to load an optional .env
// file, binds environment variables on top, and unmarshals the result into
// the caller's struct using mapstructure tags. After unmarshalling, Load
// calls ApplyDefaults and Validate when the target implements them.
//
// # Usage
//
//	type Config struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Schedulers map[string]scheduler.Config `mapstructure:"schedulers"`
//	}
//
//	var cfg Config
//	err := config.Load("rxdemo", &cfg, config.WithEnvPrefix("RXDEMO"))
//
// With prefix RXDEMO, the variable RXDEMO_LOGGING_LEVEL=debug overrides
// logging.level.
package config

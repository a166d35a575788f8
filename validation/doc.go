// Package validation validates configuration structs using go-playground
// struct tags and reports failures as *errors.AppError values whose Details
// list every offending field.
//
//	type Config struct {
//	    Kind    string `mapstructure:"kind" validate:"required,oneof=computation io single"`
//	    Workers int    `mapstructure:"workers" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
package validation

// Package logger provides structured logging for rxkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Library packages obtain
// their logger through the named registry so applications can swap the
// global logger without touching library code.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("scheduler")
//	log.Debug("worker reclaimed", logger.Fields(logger.FieldWorker, "io-3"))
package logger

// Package errors provides the structured error type used across rxkit.
// Every fault raised by the library itself (rejected scheduling, recovered
// panics, invalid configuration) is an *AppError carrying a machine-readable
// code, so callers can branch on HasCode instead of matching strings.
package errors

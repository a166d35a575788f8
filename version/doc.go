// Package version reports the build of an rxkit program.
//
// Version and Commit are set at link time, and fall back to the module
// build info stamped by the go tool:
//
//	go build -ldflags "-X github.com/kbukum/rxkit/version.Version=1.0.0" ./cmd/rxdemo
package version

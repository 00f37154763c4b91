// Package logging provides a minimal logging interface and adapters for Ascend.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the agents and stores use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - AscendLogger with contextual helpers and domain logging methods
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	planner, err := agent.NewPlanner(backend, func(o *agent.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging

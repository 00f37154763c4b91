// Package history provides implementations of the core.HistoryStore
// interface: an in-memory store for tests and single-process deployments,
// and a SQLite-backed store (subpackage sqlite) for durable persistence.
package history

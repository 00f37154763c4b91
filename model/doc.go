// Package model defines the backend text-generation abstraction used by the
// request executor. A Model consumes role-tagged messages and returns a
// single text completion; streaming, tool use and vendor-specific features
// are deliberately outside the contract — the backend is opaque.
//
// Provider adapters live in the gemini, openai and anthropic subpackages.
// Mock is an in-memory scriptable implementation for tests.
package model

// Package core defines the shared contracts of the Ascend multi-agent
// system: the result envelope returned by every agent operation, the task
// descriptor used to select handlers, the retry policy governing backend
// calls, role-tagged prompt messages, and the Agent and HistoryStore
// interfaces implemented elsewhere.
//
// The package has no external dependencies beyond uuid and carries no
// behavior of its own apart from validation helpers; it exists so that the
// agent, model, history and facade packages can interoperate without import
// cycles.
package core

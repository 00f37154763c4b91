package core

import "context"

// Agent is the contract every Ascend agent satisfies. ProcessTask is the
// single entry point: it accepts a task descriptor plus optional caller
// context and always returns an envelope — validation failures and unknown
// task types are converted to failure envelopes, never surfaced as errors
// or panics. Construction problems (missing credentials, invalid retry
// policy) are the one case signaled as a returned error, by the agent
// constructors rather than here.
type Agent interface {
	Name() string
	Description() string
	Capabilities() []string
	ProcessTask(ctx context.Context, task Task, taskCtx map[string]any) Response
}

// Status is a point-in-time snapshot of an agent used by the coordinator's
// performance monitoring.
type Status struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
	MaxRetries  int    `json:"max_retries"`
	Timeout     string `json:"timeout"`
}

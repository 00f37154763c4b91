package core

import "time"

// Response is the uniform result envelope returned by every agent operation.
// It never carries both a payload and an error: Content is empty whenever
// Success is false, and Error is non-empty exactly when Success is false.
//
// Metadata is an open mapping used for caller-supplied context plus
// operation bookkeeping such as the agent name and the 1-based attempt
// number that produced the result. ExecutionTime, when set, spans the whole
// operation from the first attempt's start to the returned result, retry
// delays included.
type Response struct {
	Content       string         `json:"content"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time,omitempty"`
}

// NewResponse builds a success envelope. Metadata may be nil.
func NewResponse(content string, metadata map[string]any) Response {
	return Response{
		Content:  content,
		Metadata: metadata,
		Success:  true,
	}
}

// NewErrorResponse builds a failure envelope from err. Content is always
// empty on failure. A nil err is treated as an unspecified failure so the
// success/error invariant holds for every constructed envelope.
func NewErrorResponse(err error, metadata map[string]any) Response {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Response{
		Metadata: metadata,
		Success:  false,
		Error:    msg,
	}
}

// WithExecutionTime returns a copy of the response with elapsed recorded.
func (r Response) WithExecutionTime(elapsed time.Duration) Response {
	r.ExecutionTime = elapsed
	return r
}

// Valid reports whether the envelope satisfies its core invariant:
// Success if and only if Error is absent.
func (r Response) Valid() bool {
	return r.Success == (r.Error == "")
}

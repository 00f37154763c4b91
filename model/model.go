package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/ascend-ai/ascend/core"
)

// Request captures the normalized backend input produced by agents.
type Request struct {
	Messages []core.Message `json:"messages"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completion returned by a backend call.
type Response struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "gemini", "openai", "anthropic", "mock"
}

// Model is the minimal interface required to drive text generation. Complete
// must honor ctx cancellation and deadlines; the retry loop above it imposes
// the per-attempt timeout.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// mockResult is one scripted outcome for Mock.
type mockResult struct {
	content string
	err     error
}

// Mock is a scriptable in-memory Model for tests and examples. Outcomes are
// consumed in FIFO order; once the script is exhausted the last outcome
// repeats, so a single scripted error models a persistently failing backend.
// Mock is safe for concurrent use and records every request it receives.
type Mock struct {
	mu       sync.Mutex
	info     Info
	script   []mockResult
	requests []Request
	calls    int
}

// NewMock constructs a Mock with a default echo behavior.
func NewMock() *Mock {
	return &Mock{info: Info{Name: "mock-model", Provider: "mock"}}
}

// EnqueueContent scripts a successful completion.
func (m *Mock) EnqueueContent(content string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResult{content: content})
	return m
}

// EnqueueError scripts a failing call.
func (m *Mock) EnqueueError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResult{err: err})
	return m
}

// Calls returns how many times Complete was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of every request Complete received, in order.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Model. With an empty script it echoes the last user
// message, which keeps simple examples self-contained.
func (m *Mock) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)

	var result mockResult
	switch {
	case len(m.script) == 0:
		result = mockResult{content: echoContent(req)}
	case len(m.script) == 1:
		result = m.script[0]
	default:
		result = m.script[0]
		m.script = m.script[1:]
	}
	m.mu.Unlock()

	if result.err != nil {
		return nil, result.err
	}
	return &Response{Content: result.content, FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *Mock) Info() Info { return m.info }

func echoContent(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			return fmt.Sprintf("Mock response to: %s", req.Messages[i].Text)
		}
	}
	return "Mock response"
}

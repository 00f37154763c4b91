package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/logging"
	"github.com/ascend-ai/ascend/model"
)

// fastPolicy keeps retry tests quick while exercising the full loop.
func fastPolicy(maxRetries int) func(o *Options) {
	return func(o *Options) {
		o.RetryPolicy = core.RetryPolicy{
			MaxRetries: maxRetries,
			RetryDelay: 0,
			Timeout:    5 * time.Second,
		}
	}
}

func TestNewBaseAgent(t *testing.T) {
	t.Run("requires a backend", func(t *testing.T) {
		_, err := NewBaseAgent("Test", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no backend model")
	})

	t.Run("rejects an invalid retry policy", func(t *testing.T) {
		_, err := NewBaseAgent("Test", model.NewMock(), func(o *Options) {
			o.RetryPolicy = core.RetryPolicy{MaxRetries: -1, Timeout: time.Second}
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max retries")
	})

	t.Run("applies defaults", func(t *testing.T) {
		base, err := NewBaseAgent("Test", model.NewMock())
		require.NoError(t, err)
		assert.Equal(t, "Test", base.Name())
		assert.Equal(t, core.DefaultRetryPolicy(), base.Policy())
	})
}

func TestProcessMessageRecoversWithinBudget(t *testing.T) {
	// Timeouts on attempts 1 and 2, success on attempt 3, with a budget of
	// exactly three attempts.
	backend := model.NewMock().
		EnqueueError(context.DeadlineExceeded).
		EnqueueError(context.DeadlineExceeded).
		EnqueueContent("ok")

	base, err := NewBaseAgent("Test", backend, fastPolicy(2))
	require.NoError(t, err)

	resp := base.ProcessMessage(context.Background(), "hello", nil)

	assert.True(t, resp.Success)
	assert.True(t, resp.Valid())
	assert.Equal(t, "ok", resp.Content)
	assert.Empty(t, resp.Error)
	assert.Equal(t, 3, resp.Metadata["attempt"])
	assert.Equal(t, 3, backend.Calls())
}

func TestProcessMessageExhaustsAttempts(t *testing.T) {
	// A single scripted error repeats, modeling a persistently failing
	// backend. The envelope carries the last error text verbatim.
	backend := model.NewMock().EnqueueError(errors.New("boom"))

	base, err := NewBaseAgent("Test", backend, fastPolicy(2))
	require.NoError(t, err)

	resp := base.ProcessMessage(context.Background(), "hello", nil)

	assert.False(t, resp.Success)
	assert.True(t, resp.Valid())
	assert.Empty(t, resp.Content)
	assert.Equal(t, "boom", resp.Error)
	assert.Equal(t, 3, backend.Calls())
}

func TestProcessMessageZeroRetries(t *testing.T) {
	backend := model.NewMock().EnqueueError(errors.New("boom"))

	base, err := NewBaseAgent("Test", backend, fastPolicy(0))
	require.NoError(t, err)

	resp := base.ProcessMessage(context.Background(), "hello", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, 1, backend.Calls())
}

func TestProcessMessageWaitsBetweenAttempts(t *testing.T) {
	backend := model.NewMock().EnqueueError(errors.New("boom"))

	base, err := NewBaseAgent("Test", backend, func(o *Options) {
		o.RetryPolicy = core.RetryPolicy{
			MaxRetries: 2,
			RetryDelay: 20 * time.Millisecond,
			Timeout:    5 * time.Second,
		}
	})
	require.NoError(t, err)

	resp := base.ProcessMessage(context.Background(), "hello", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, 3, backend.Calls())
	// Two retries, so two full delays must have elapsed.
	assert.GreaterOrEqual(t, resp.ExecutionTime, 40*time.Millisecond)
}

func TestProcessMessageCancellationSkipsDelay(t *testing.T) {
	backend := model.NewMock().EnqueueError(errors.New("boom"))

	base, err := NewBaseAgent("Test", backend, func(o *Options) {
		o.RetryPolicy = core.RetryPolicy{
			MaxRetries: 5,
			RetryDelay: 10 * time.Second,
			Timeout:    5 * time.Second,
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	resp := base.ProcessMessage(ctx, "hello", nil)

	assert.False(t, resp.Success)
	assert.True(t, resp.Valid())
	// The pending 10s delay must be abandoned once the context expires.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProcessMessagePromptAssembly(t *testing.T) {
	backend := model.NewMock()

	base, err := NewBaseAgent("Test", backend, func(o *Options) {
		o.Description = "a test assistant"
	})
	require.NoError(t, err)

	resp := base.ProcessMessage(context.Background(), "hello", map[string]any{
		"student_id": "s-1",
		"subject":    "math",
	})
	require.True(t, resp.Success)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	messages := reqs[0].Messages
	require.Len(t, messages, 3)

	assert.Equal(t, core.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Text, "You are Test, a test assistant.")
	assert.Equal(t, core.RoleUser, messages[1].Role)
	assert.Contains(t, messages[1].Text, "Context:")
	assert.Contains(t, messages[1].Text, "student_id: s-1")
	assert.Contains(t, messages[1].Text, "subject: math")
	assert.Equal(t, core.RoleUser, messages[2].Role)
	assert.Equal(t, "hello", messages[2].Text)
}

func TestProcessMessageCustomInstruction(t *testing.T) {
	backend := model.NewMock()

	base, err := NewBaseAgent("Test", backend, func(o *Options) {
		o.Instruction = "Answer in one word."
	})
	require.NoError(t, err)

	resp := base.ProcessMessage(context.Background(), "hello", nil)
	require.True(t, resp.Success)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Answer in one word.", reqs[0].Messages[0].Text)
}

func newBufferAscendLogger(t *testing.T) (*logging.AscendLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.LogLevelDebug
	cfg.Output = buf
	cfg.AddSource = false
	return logging.NewLogger(cfg), buf
}

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	return entries
}

func findLogEntry(entries []map[string]any, msg string) (map[string]any, bool) {
	for _, e := range entries {
		if e["msg"] == msg {
			return e, true
		}
	}
	return nil, false
}

func TestRichLoggerReceivesModelCallsAndRetries(t *testing.T) {
	logger, buf := newBufferAscendLogger(t)

	backend := model.NewMock().
		EnqueueError(errors.New("boom")).
		EnqueueContent("ok")

	base, err := NewBaseAgent("Test", backend, func(o *Options) {
		fastPolicy(1)(o)
		o.Logger = logger
	})
	require.NoError(t, err)

	resp := base.ProcessMessage(context.Background(), "hello", nil)
	require.True(t, resp.Success)

	entries := decodeLogLines(t, buf)

	failed, ok := findLogEntry(entries, "Model call failed")
	require.True(t, ok)
	assert.Equal(t, float64(1), failed["attempt"])
	assert.Equal(t, "boom", failed["error"])

	retried, ok := findLogEntry(entries, "Agent retrying after error")
	require.True(t, ok)
	assert.Equal(t, "Test", retried["agent"])
	assert.Equal(t, float64(1), retried["attempt"])

	completed, ok := findLogEntry(entries, "Model call completed")
	require.True(t, ok)
	assert.Equal(t, float64(2), completed["attempt"])
	assert.Equal(t, "mock-model", completed["model"])
}

func TestRichLoggerReceivesTaskOutcomes(t *testing.T) {
	logger, buf := newBufferAscendLogger(t)

	planner, err := NewPlanner(model.NewMock(), func(o *Options) {
		fastPolicy(0)(o)
		o.Logger = logger
	})
	require.NoError(t, err)

	resp := planner.ProcessTask(context.Background(),
		core.NewTask(core.TaskAddStudySession, map[string]any{
			"student_id": "s-1",
			"session":    map[string]any{"subject": "math"},
		}), nil)
	require.True(t, resp.Success)

	failing := planner.ProcessTask(context.Background(),
		core.NewTask("bake_cake", nil), nil)
	require.False(t, failing.Success)

	entries := decodeLogLines(t, buf)

	completed, ok := findLogEntry(entries, "Task completed")
	require.True(t, ok)
	assert.Equal(t, "Planner", completed["agent"])
	assert.Equal(t, string(core.TaskAddStudySession), completed["task_type"])

	failed, ok := findLogEntry(entries, "Task failed")
	require.True(t, ok)
	assert.Equal(t, "bake_cake", failed["task_type"])
	assert.Contains(t, failed["error"], "bake_cake")
}

func TestHealthCheck(t *testing.T) {
	healthy, err := NewBaseAgent("Test", model.NewMock())
	require.NoError(t, err)
	assert.True(t, healthy.HealthCheck(context.Background()))

	broken, err := NewBaseAgent("Test",
		model.NewMock().EnqueueError(errors.New("down")), fastPolicy(0))
	require.NoError(t, err)
	assert.False(t, broken.HealthCheck(context.Background()))
}

func TestStatus(t *testing.T) {
	base, err := NewBaseAgent("Test", model.NewMock(), func(o *Options) {
		o.Description = "a test assistant"
	})
	require.NoError(t, err)

	status := base.Status()
	assert.Equal(t, "Test", status.Name)
	assert.Equal(t, "a test assistant", status.Description)
	assert.Equal(t, "mock", status.Provider)
	assert.Equal(t, 3, status.MaxRetries)
}

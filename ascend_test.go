package ascend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/model"
)

func newTestAscend(t *testing.T, backend model.Model) *Ascend {
	t.Helper()
	a, err := New(backend, func(o *Options) {
		o.RetryPolicy = core.RetryPolicy{MaxRetries: 0, Timeout: 5 * time.Second}
	})
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	t.Run("requires a backend", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no backend model")
	})

	t.Run("registers the specialized agents", func(t *testing.T) {
		a := newTestAscend(t, model.NewMock())
		for _, name := range []string{"Planner", "Notewriter", "Advisor"} {
			_, ok := a.Coordinator().Agent(name)
			assert.True(t, ok, name)
		}
	})
}

func TestProcessTaskRouting(t *testing.T) {
	backend := model.NewMock().EnqueueContent("guidance text")
	a := newTestAscend(t, backend)

	resp := a.ProcessTask(context.Background(), "Advisor",
		core.NewTask(core.TaskProvideGuidance, map[string]any{
			"student_id": "s-1",
			"challenge":  "time management",
		}), nil)

	require.True(t, resp.Success)
	assert.Equal(t, "guidance text", resp.Content)

	resp = a.ProcessTask(context.Background(), "Ghost", core.NewTask("anything", nil), nil)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, `"Ghost" not found`)
}

func TestDispatchWorkflow(t *testing.T) {
	backend := model.NewMock().EnqueueContent("done")
	a := newTestAscend(t, backend)

	resp := a.Dispatch(context.Background(),
		core.NewTask(core.TaskWorkflowExecution, map[string]any{
			"steps": []any{
				map[string]any{
					"agent": "Notewriter",
					"task": map[string]any{
						"type": string(core.TaskCreateSummary),
						"fields": map[string]any{
							"student_id": "s-1",
							"content":    "chapter text",
						},
					},
				},
			},
		}), nil)

	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Metadata["steps_executed"])
}

func TestHistoryIsShared(t *testing.T) {
	backend := model.NewMock().EnqueueContent("notes")
	a := newTestAscend(t, backend)

	resp := a.ProcessTask(context.Background(), "Notewriter",
		core.NewTask(core.TaskGenerateNotes, map[string]any{
			"student_id": "s-1",
			"content":    "chapter text",
		}), nil)
	require.True(t, resp.Success)

	records, err := a.History().List(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, core.RecordMaterial, records[0].Kind)
}

func TestHealthCheck(t *testing.T) {
	a := newTestAscend(t, model.NewMock())
	assert.True(t, a.HealthCheck(context.Background()))
}

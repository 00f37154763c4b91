package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/model"
)

func newTestCoordinator(t *testing.T, backend *model.Mock, optFns ...func(o *CoordinatorOptions)) *Coordinator {
	t.Helper()
	coordinator, err := NewCoordinator(backend, append([]func(o *CoordinatorOptions){func(o *CoordinatorOptions) {
		fastPolicy(0)(&o.Options)
	}}, optFns...)...)
	require.NoError(t, err)
	return coordinator
}

func registerPlanner(t *testing.T, coordinator *Coordinator, backend *model.Mock) *Planner {
	t.Helper()
	planner := newTestPlanner(t, backend)
	require.NoError(t, coordinator.Register(planner))
	return planner
}

func TestCoordinatorRegister(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())
	planner := newTestPlanner(t, model.NewMock())

	require.NoError(t, coordinator.Register(planner))

	got, ok := coordinator.Agent("Planner")
	require.True(t, ok)
	assert.Equal(t, "Planner", got.Name())

	// Duplicate registration is a configuration mistake.
	assert.Error(t, coordinator.Register(planner))
}

func TestCoordinatorRouteTask(t *testing.T) {
	plannerBackend := model.NewMock().EnqueueContent("schedule ready")
	coordinator := newTestCoordinator(t, model.NewMock())
	registerPlanner(t, coordinator, plannerBackend)

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskAgentCoordination, map[string]any{
			"agent": "Planner",
			"task": map[string]any{
				"type": string(core.TaskCreateSchedule),
				"fields": map[string]any{
					"student_id": "s-1",
					"subjects":   []any{"math"},
				},
			},
		}), nil)

	require.True(t, resp.Success)
	assert.Equal(t, "schedule ready", resp.Content)
	assert.Equal(t, 1, plannerBackend.Calls())
}

func TestCoordinatorRouteToUnknownAgent(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskAgentCoordination, map[string]any{
			"agent": "Ghost",
			"task":  map[string]any{"type": "anything"},
		}), nil)

	assert.False(t, resp.Success)
	assert.True(t, resp.Valid())
	assert.Contains(t, resp.Error, `"Ghost" not found`)
}

func TestCoordinatorRouteValidation(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskAgentCoordination, map[string]any{"agent": "Planner"}), nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "task")
}

func TestCoordinatorUnknownTaskType(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask("launch_rocket", nil), nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "launch_rocket")
}

func workflowTask(steps ...map[string]any) core.Task {
	raw := make([]any, 0, len(steps))
	for _, s := range steps {
		raw = append(raw, s)
	}
	return core.NewTask(core.TaskWorkflowExecution, map[string]any{
		"workflow_id": "wf-1",
		"steps":       raw,
	})
}

func plannerStep(terminateOnFailure bool) map[string]any {
	return map[string]any{
		"agent":                "Planner",
		"terminate_on_failure": terminateOnFailure,
		"task": map[string]any{
			"type": string(core.TaskCreateSchedule),
			"fields": map[string]any{
				"student_id": "s-1",
				"subjects":   []any{"math"},
			},
		},
	}
}

func TestCoordinatorWorkflowExecution(t *testing.T) {
	plannerBackend := model.NewMock().EnqueueContent("schedule ready")
	coordinator := newTestCoordinator(t, model.NewMock())
	registerPlanner(t, coordinator, plannerBackend)

	resp := coordinator.ProcessTask(context.Background(),
		workflowTask(plannerStep(false), plannerStep(false)), nil)

	require.True(t, resp.Success)
	assert.Equal(t, "wf-1", resp.Metadata["workflow_id"])
	assert.Equal(t, 2, resp.Metadata["steps_executed"])
	assert.Contains(t, resp.Content, "step 1 (Planner/create_schedule): ok")
	assert.Contains(t, resp.Content, "step 2 (Planner/create_schedule): ok")
	assert.Equal(t, 2, plannerBackend.Calls())
}

func TestCoordinatorWorkflowRequiresSteps(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskWorkflowExecution, map[string]any{"workflow_id": "wf-1"}), nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "steps")
}

func TestCoordinatorWorkflowTerminateOnFailure(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	// Step 1 targets an unregistered agent and terminates the run; step 2
	// must never execute.
	plannerBackend := model.NewMock()
	registerPlanner(t, coordinator, plannerBackend)

	badStep := map[string]any{
		"agent":                "Ghost",
		"terminate_on_failure": true,
		"task":                 map[string]any{"type": "anything"},
	}

	resp := coordinator.ProcessTask(context.Background(),
		workflowTask(badStep, plannerStep(false)), nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "completed with failures")
	assert.Equal(t, 0, resp.Metadata["steps_executed"])
	assert.Zero(t, plannerBackend.Calls())
}

func TestCoordinatorWorkflowContinuesPastFailure(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())
	plannerBackend := model.NewMock().EnqueueContent("schedule ready")
	registerPlanner(t, coordinator, plannerBackend)

	badStep := map[string]any{
		"agent": "Ghost",
		"task":  map[string]any{"type": "anything"},
	}

	resp := coordinator.ProcessTask(context.Background(),
		workflowTask(badStep, plannerStep(false)), nil)

	// The run finishes but reports failure overall.
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.Metadata["steps_executed"])
	assert.Equal(t, 1, plannerBackend.Calls())
}

func TestCoordinatorWorkflowCallLimit(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock(), func(o *CoordinatorOptions) {
		o.MaxCallsPerWorkflow = 1
	})
	plannerBackend := model.NewMock().EnqueueContent("schedule ready")
	registerPlanner(t, coordinator, plannerBackend)

	resp := coordinator.ProcessTask(context.Background(),
		workflowTask(plannerStep(false), plannerStep(false)), nil)

	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.Metadata["steps_executed"])
	assert.Equal(t, 1, plannerBackend.Calls())
	assert.Contains(t, resp.Content, "aborted")
}

func TestCoordinatorWorkflowMalformedStep(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	// Step numbering is 1-based in validation errors, matching the run
	// summary lines.
	resp := coordinator.ProcessTask(context.Background(),
		workflowTask(
			plannerStep(false),
			map[string]any{"task": map[string]any{"type": "x"}},
		), nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "step 2")
	assert.Contains(t, resp.Error, "agent")
}

func TestCoordinatorStateManagement(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskStateManagement, map[string]any{
			"workflow_id": "wf-1",
			"updates":     map[string]any{"phase": "review"},
		}), nil)

	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Metadata["keys"])

	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &state))
	assert.Equal(t, "review", state["phase"])

	// A read without updates returns the merged state.
	resp = coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskStateManagement, map[string]any{"workflow_id": "wf-1"}), nil)
	require.True(t, resp.Success)
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &state))
	assert.Equal(t, "review", state["phase"])
}

func TestCoordinatorStateManagementRequiresWorkflow(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskStateManagement, nil), nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "workflow_id")
}

func TestCoordinatorPerformanceMonitoring(t *testing.T) {
	coordinator := newTestCoordinator(t, model.NewMock())
	registerPlanner(t, coordinator, model.NewMock())

	resp := coordinator.ProcessTask(context.Background(),
		core.NewTask(core.TaskPerformanceMonitoring, nil), nil)

	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Metadata["agents"])

	var statuses []core.Status
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, "Planner", statuses[0].Name)
	assert.Equal(t, "mock", statuses[0].Provider)
}

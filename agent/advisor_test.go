package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/history"
	"github.com/ascend-ai/ascend/model"
)

func newTestAdvisor(t *testing.T, backend *model.Mock, optFns ...func(o *Options)) *Advisor {
	t.Helper()
	advisor, err := NewAdvisor(backend, append([]func(o *Options){fastPolicy(0)}, optFns...)...)
	require.NoError(t, err)
	return advisor
}

func TestAdvisorProvideGuidance(t *testing.T) {
	backend := model.NewMock().EnqueueContent("Break the problem into smaller steps.")
	advisor := newTestAdvisor(t, backend)

	resp := advisor.ProcessTask(context.Background(),
		core.NewTask(core.TaskProvideGuidance, map[string]any{
			"student_id": "s-1",
			"topic":      "calculus",
			"challenge":  "struggling with derivatives",
		}), nil)

	require.True(t, resp.Success)
	assert.Equal(t, "Break the problem into smaller steps.", resp.Content)
	assert.Equal(t, "s-1", resp.Metadata["student_id"])
	assert.Equal(t, 1, resp.Metadata["sessions"])

	sessions := advisor.Sessions("s-1")
	require.Len(t, sessions, 1)
	assert.Equal(t, core.TaskProvideGuidance, sessions[0].TaskType)
	assert.Equal(t, "calculus", sessions[0].Topic)
}

func TestAdvisorRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		task    core.Task
		missing string
	}{
		{
			name:    "guidance without student",
			task:    core.NewTask(core.TaskProvideGuidance, map[string]any{"challenge": "stuck"}),
			missing: "student_id",
		},
		{
			name:    "guidance without challenge",
			task:    core.NewTask(core.TaskProvideGuidance, map[string]any{"student_id": "s-1"}),
			missing: "challenge",
		},
		{
			name:    "strategy without challenge area",
			task:    core.NewTask(core.TaskDevelopStrategy, map[string]any{"student_id": "s-1"}),
			missing: "challenge_area",
		},
		{
			name:    "intervention without crisis type",
			task:    core.NewTask(core.TaskInterventionPlan, map[string]any{"student_id": "s-1"}),
			missing: "crisis_type",
		},
		{
			name:    "goal setting without goal area",
			task:    core.NewTask(core.TaskGoalSetting, map[string]any{"student_id": "s-1"}),
			missing: "goal_area",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := model.NewMock()
			advisor := newTestAdvisor(t, backend)

			resp := advisor.ProcessTask(context.Background(), tt.task, nil)

			assert.False(t, resp.Success)
			assert.True(t, resp.Valid())
			assert.Contains(t, resp.Error, tt.missing)
			assert.Zero(t, backend.Calls())
			assert.Empty(t, advisor.Sessions("s-1"))
		})
	}
}

func TestAdvisorMotivationNeedsOnlyStudent(t *testing.T) {
	backend := model.NewMock().EnqueueContent("You have made real progress this week.")
	advisor := newTestAdvisor(t, backend)

	resp := advisor.ProcessTask(context.Background(),
		core.NewTask(core.TaskOfferMotivation, map[string]any{"student_id": "s-1"}), nil)

	require.True(t, resp.Success)
	assert.Equal(t, 1, backend.Calls())
}

func TestAdvisorUnknownTaskType(t *testing.T) {
	backend := model.NewMock()
	advisor := newTestAdvisor(t, backend)

	resp := advisor.ProcessTask(context.Background(),
		core.NewTask("predict_future", map[string]any{"student_id": "s-1"}), nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "predict_future")
	assert.Zero(t, backend.Calls())
}

func TestAdvisorBackendFailureLeavesNoSession(t *testing.T) {
	backend := model.NewMock().EnqueueError(errors.New("provider unavailable"))
	advisor := newTestAdvisor(t, backend)

	resp := advisor.ProcessTask(context.Background(),
		core.NewTask(core.TaskOfferMotivation, map[string]any{"student_id": "s-1"}), nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "provider unavailable", resp.Error)
	assert.Empty(t, advisor.Sessions("s-1"))
}

func TestAdvisorClearSessions(t *testing.T) {
	backend := model.NewMock()
	advisor := newTestAdvisor(t, backend)

	for i := 0; i < 3; i++ {
		resp := advisor.ProcessTask(context.Background(),
			core.NewTask(core.TaskOfferMotivation, map[string]any{"student_id": "s-1"}), nil)
		require.True(t, resp.Success)
	}

	assert.Equal(t, 3, advisor.ClearSessions("s-1"))
	assert.Empty(t, advisor.Sessions("s-1"))
	assert.Zero(t, advisor.ClearSessions("s-1"))
}

func TestAdvisorAssessmentRecordKind(t *testing.T) {
	store := history.NewInMemoryStore()
	backend := model.NewMock().EnqueueContent("moderate stress, manageable")
	advisor := newTestAdvisor(t, backend, func(o *Options) {
		o.History = store
	})

	resp := advisor.ProcessTask(context.Background(),
		core.NewTask(core.TaskStressAssessment, map[string]any{
			"student_id": "s-1",
			"indicators": "poor sleep before exams",
		}), nil)
	require.True(t, resp.Success)

	records, err := store.List(context.Background(), "s-1", core.WithKind(core.RecordAssessment))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, core.TaskStressAssessment, records[0].TaskType)

	// Guidance kind stays empty for assessments.
	records, err = store.List(context.Background(), "s-1", core.WithKind(core.RecordGuidance))
	require.NoError(t, err)
	assert.Empty(t, records)
}

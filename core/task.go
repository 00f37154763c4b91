package core

import (
	"errors"
	"fmt"
)

// TaskType tags a task descriptor with the operation it requests. The set of
// known types is closed; each agent dispatches over its own subset with a
// switch and rejects anything else with a failure envelope.
type TaskType string

// Planner task types.
const (
	TaskCreateSchedule   TaskType = "create_schedule"
	TaskOptimizeSchedule TaskType = "optimize_schedule"
	TaskAddStudySession  TaskType = "add_study_session"
	TaskManageDeadlines  TaskType = "manage_deadlines"
	TaskAdaptSchedule    TaskType = "adapt_schedule"
	TaskSpacedRepetition TaskType = "spaced_repetition"
)

// Notewriter task types.
const (
	TaskAnalyzeContent   TaskType = "analyze_content"
	TaskGenerateNotes    TaskType = "generate_notes"
	TaskCreateSummary    TaskType = "create_summary"
	TaskGenerateQuiz     TaskType = "generate_quiz"
	TaskCreateFlashcards TaskType = "create_flashcards"
	TaskAdaptContent     TaskType = "adapt_content"
	TaskCreateVisualAids TaskType = "create_visual_aids"
)

// Advisor task types.
const (
	TaskProvideGuidance  TaskType = "provide_guidance"
	TaskDevelopStrategy  TaskType = "develop_strategy"
	TaskAssessProgress   TaskType = "assess_progress"
	TaskOfferMotivation  TaskType = "offer_motivation"
	TaskInterventionPlan TaskType = "intervention_plan"
	TaskGoalSetting      TaskType = "goal_setting"
	TaskStressAssessment TaskType = "stress_assessment"
)

// Coordinator task types.
const (
	TaskWorkflowExecution     TaskType = "workflow_execution"
	TaskAgentCoordination     TaskType = "agent_coordination"
	TaskStateManagement       TaskType = "state_management"
	TaskPerformanceMonitoring TaskType = "performance_monitoring"
)

// ErrMissingField reports a task descriptor lacking a required field. It is
// detected before any backend call and never retried.
var ErrMissingField = errors.New("missing required task field")

// ErrUnknownTaskType reports a type tag no handler matches. It indicates
// caller misuse rather than system malfunction.
var ErrUnknownTaskType = errors.New("unknown task type")

// Task is the descriptor every agent entry point accepts: a type tag that
// selects the handler plus operation-specific fields. Handlers validate
// their own required fields and convert absences into failure envelopes.
type Task struct {
	Type   TaskType       `json:"type"`
	Fields map[string]any `json:"fields,omitempty"`
}

// NewTask builds a task descriptor of the given type. Fields may be nil.
func NewTask(taskType TaskType, fields map[string]any) Task {
	return Task{Type: taskType, Fields: fields}
}

// StringField returns the named field as a string, or fallback when the
// field is absent or of another type.
func (t Task) StringField(name, fallback string) string {
	if v, ok := t.Fields[name].(string); ok {
		return v
	}
	return fallback
}

// IntField returns the named field as an int, accepting float64 for values
// decoded from JSON. Returns fallback when absent or of another type.
func (t Task) IntField(name string, fallback int) int {
	switch v := t.Fields[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// MapField returns the named field as a map, or an empty map when absent.
func (t Task) MapField(name string) map[string]any {
	if v, ok := t.Fields[name].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

// StringSliceField returns the named field as a string slice, tolerating
// []any elements produced by JSON decoding.
func (t Task) StringSliceField(name string) []string {
	switch v := t.Fields[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// RequireString returns the named field as a non-empty string or an error
// wrapping ErrMissingField naming the field.
func (t Task) RequireString(name string) (string, error) {
	v, ok := t.Fields[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return v, nil
}

// UnknownTypeError builds the error surfaced for an unmatched type tag. The
// offending tag is always part of the message.
func (t Task) UnknownTypeError() error {
	return fmt.Errorf("%w: %q", ErrUnknownTaskType, string(t.Type))
}

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/model"
)

// GuidanceSession is one entry in the advisor's per-student session log.
type GuidanceSession struct {
	TaskType  core.TaskType `json:"task_type"`
	Topic     string        `json:"topic,omitempty"`
	Challenge string        `json:"challenge,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Advisor is the guidance and motivation specialist: personalized guidance,
// study strategies, progress and stress assessments, intervention plans and
// goal setting. The session log per student is append-only and unbounded
// unless explicitly pruned via ClearSessions.
type Advisor struct {
	BaseAgent
	sessions map[string][]GuidanceSession
}

// NewAdvisor constructs the advisor agent.
func NewAdvisor(backend model.Model, optFns ...func(o *Options)) (*Advisor, error) {
	base, err := NewBaseAgent("Advisor", backend, append([]func(o *Options){func(o *Options) {
		o.Description = "Personalized guidance, motivation and academic strategy specialist"
	}}, optFns...)...)
	if err != nil {
		return nil, err
	}
	return &Advisor{
		BaseAgent: base,
		sessions:  make(map[string][]GuidanceSession),
	}, nil
}

// ProcessTask dispatches an advising task to its handler.
func (a *Advisor) ProcessTask(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	var resp core.Response

	switch task.Type {
	case core.TaskProvideGuidance:
		resp = a.advise(ctx, task, taskCtx, core.RecordGuidance, "challenge", a.guidancePrompt)
	case core.TaskDevelopStrategy:
		resp = a.advise(ctx, task, taskCtx, core.RecordGuidance, "challenge_area", a.strategyPrompt)
	case core.TaskAssessProgress:
		resp = a.advise(ctx, task, taskCtx, core.RecordAssessment, "", a.progressPrompt)
	case core.TaskOfferMotivation:
		resp = a.advise(ctx, task, taskCtx, core.RecordGuidance, "", a.motivationPrompt)
	case core.TaskInterventionPlan:
		resp = a.advise(ctx, task, taskCtx, core.RecordGuidance, "crisis_type", a.interventionPrompt)
	case core.TaskGoalSetting:
		resp = a.advise(ctx, task, taskCtx, core.RecordGuidance, "goal_area", a.goalPrompt)
	case core.TaskStressAssessment:
		resp = a.advise(ctx, task, taskCtx, core.RecordAssessment, "", a.stressPrompt)
	default:
		resp = a.unknownTask(task)
	}

	a.observeTask(task, resp)
	return resp
}

// Sessions returns the append-only session log for a student.
func (a *Advisor) Sessions(studentID string) []GuidanceSession {
	return a.sessions[studentID]
}

// ClearSessions prunes a student's session log and returns how many entries
// were removed.
func (a *Advisor) ClearSessions(studentID string) int {
	n := len(a.sessions[studentID])
	delete(a.sessions, studentID)
	return n
}

// advise validates the student id plus the task-specific required field,
// runs the prompt through the request executor, and appends the session to
// the student's log on success.
func (a *Advisor) advise(
	ctx context.Context,
	task core.Task,
	taskCtx map[string]any,
	kind core.RecordKind,
	requiredField string,
	prompt func(task core.Task) string,
) core.Response {
	studentID, err := task.RequireString("student_id")
	if err != nil {
		return a.validationFailure(task, err)
	}
	if requiredField != "" {
		if _, err := task.RequireString(requiredField); err != nil {
			return a.validationFailure(task, err)
		}
	}

	input := prompt(task)
	resp := a.ProcessMessage(ctx, input, taskCtx)

	if resp.Success {
		a.sessions[studentID] = append(a.sessions[studentID], GuidanceSession{
			TaskType:  task.Type,
			Topic:     task.StringField("topic", ""),
			Challenge: task.StringField("challenge", ""),
			CreatedAt: time.Now(),
		})
		resp.Metadata["student_id"] = studentID
		resp.Metadata["sessions"] = len(a.sessions[studentID])
	}

	a.record(ctx, studentID, kind, task, input, resp)
	return resp
}

func (a *Advisor) guidancePrompt(task core.Task) string {
	urgency := task.StringField("urgency_level", "normal")
	var b strings.Builder
	b.WriteString("A student needs personalized guidance.\n\n")
	if topic := task.StringField("topic", ""); topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", topic)
	}
	fmt.Fprintf(&b, "Challenge: %s\n", task.StringField("challenge", ""))
	fmt.Fprintf(&b, "Urgency: %s\n\n", urgency)
	b.WriteString("Provide supportive, actionable guidance with concrete next steps and follow-up actions.")
	return b.String()
}

func (a *Advisor) strategyPrompt(task core.Task) string {
	var b strings.Builder
	b.WriteString("Develop a study strategy for a student.\n\n")
	fmt.Fprintf(&b, "Challenge area: %s\n", task.StringField("challenge_area", ""))
	if goals := task.StringField("goals", ""); goals != "" {
		fmt.Fprintf(&b, "Goals: %s\n", goals)
	}
	b.WriteString("\nPropose a concrete strategy with techniques, a weekly routine, and measures of progress.")
	return b.String()
}

func (a *Advisor) progressPrompt(task core.Task) string {
	var b strings.Builder
	b.WriteString("Assess a student's academic progress.\n\n")
	if summary := task.StringField("progress_summary", ""); summary != "" {
		fmt.Fprintf(&b, "Recent progress: %s\n\n", summary)
	}
	b.WriteString("Highlight strengths, identify areas needing attention, and recommend adjustments.")
	return b.String()
}

func (a *Advisor) motivationPrompt(task core.Task) string {
	var b strings.Builder
	b.WriteString("Offer encouragement to a student.\n\n")
	if situation := task.StringField("situation", ""); situation != "" {
		fmt.Fprintf(&b, "Situation: %s\n\n", situation)
	}
	b.WriteString("Be warm and specific; acknowledge the difficulty and suggest one small achievable step.")
	return b.String()
}

func (a *Advisor) interventionPrompt(task core.Task) string {
	var b strings.Builder
	b.WriteString("Create an intervention plan for a student in difficulty.\n\n")
	fmt.Fprintf(&b, "Crisis type: %s\n", task.StringField("crisis_type", ""))
	if details := task.StringField("details", ""); details != "" {
		fmt.Fprintf(&b, "Details: %s\n", details)
	}
	b.WriteString("\nLay out immediate actions, support resources, and a check-in cadence. Recommend professional help where appropriate.")
	return b.String()
}

func (a *Advisor) goalPrompt(task core.Task) string {
	var b strings.Builder
	b.WriteString("Help a student set goals.\n\n")
	fmt.Fprintf(&b, "Goal area: %s\n", task.StringField("goal_area", ""))
	if timeframe := task.StringField("timeframe", ""); timeframe != "" {
		fmt.Fprintf(&b, "Timeframe: %s\n", timeframe)
	}
	b.WriteString("\nFormulate specific, measurable goals with milestones and a review schedule.")
	return b.String()
}

func (a *Advisor) stressPrompt(task core.Task) string {
	var b strings.Builder
	b.WriteString("Assess a student's stress level and suggest coping techniques.\n\n")
	if indicators := task.StringField("indicators", ""); indicators != "" {
		fmt.Fprintf(&b, "Reported indicators: %s\n\n", indicators)
	}
	b.WriteString("Gauge severity, suggest evidence-based coping techniques, and note when escalation to a professional is warranted.")
	return b.String()
}

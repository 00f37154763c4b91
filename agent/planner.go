package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/model"
)

// spacedRepetitionIntervals are the standard review intervals in days.
var spacedRepetitionIntervals = []int{1, 3, 7, 14, 30, 90}

// TimeSlot represents one block in a student's weekly schedule.
type TimeSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Activity  string `json:"activity"`
	Priority  int    `json:"priority"`
	Energy    string `json:"energy"` // low, medium, high
}

// StudySession represents a planned study unit for one subject.
type StudySession struct {
	Subject       string    `json:"subject"`
	Duration      int       `json:"duration"` // minutes
	LearningStyle string    `json:"learning_style"`
	Difficulty    string    `json:"difficulty"` // easy, medium, hard
	Deadline      time.Time `json:"deadline,omitempty"`
}

// Deadline tracks one upcoming due date for a student.
type Deadline struct {
	Title    string    `json:"title"`
	Due      time.Time `json:"due"`
	Priority int       `json:"priority"`
}

// StudentSchedule is the planner's per-student bookkeeping.
type StudentSchedule struct {
	Slots       []TimeSlot     `json:"slots"`
	Sessions    []StudySession `json:"sessions"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Planner is the schedule optimization and time management specialist. It
// creates and adapts study schedules, tracks deadlines and lays out spaced
// repetition reviews. Schedules and deadlines are keyed by student id and
// mutated only by this instance.
type Planner struct {
	BaseAgent
	schedules map[string]*StudentSchedule
	deadlines map[string][]Deadline
}

// NewPlanner constructs the planner agent.
func NewPlanner(backend model.Model, optFns ...func(o *Options)) (*Planner, error) {
	base, err := NewBaseAgent("Planner", backend, append([]func(o *Options){func(o *Options) {
		o.Description = "Schedule optimization and time management specialist"
	}}, optFns...)...)
	if err != nil {
		return nil, err
	}
	return &Planner{
		BaseAgent: base,
		schedules: make(map[string]*StudentSchedule),
		deadlines: make(map[string][]Deadline),
	}, nil
}

// ProcessTask dispatches a planning task to its handler. Unmatched type tags
// and missing required fields produce failure envelopes, never errors.
func (p *Planner) ProcessTask(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	var resp core.Response

	switch task.Type {
	case core.TaskCreateSchedule:
		resp = p.createSchedule(ctx, task, taskCtx)
	case core.TaskOptimizeSchedule:
		resp = p.optimizeSchedule(ctx, task, taskCtx)
	case core.TaskAddStudySession:
		resp = p.addStudySession(task)
	case core.TaskManageDeadlines:
		resp = p.manageDeadlines(task)
	case core.TaskAdaptSchedule:
		resp = p.adaptSchedule(ctx, task, taskCtx)
	case core.TaskSpacedRepetition:
		resp = p.spacedRepetition(task)
	default:
		resp = p.unknownTask(task)
	}

	p.observeTask(task, resp)
	return resp
}

// Schedule returns the current schedule for a student, if one exists.
func (p *Planner) Schedule(studentID string) (*StudentSchedule, bool) {
	s, ok := p.schedules[studentID]
	return s, ok
}

// createSchedule builds a new personalized study schedule from the
// student's subjects, availability and preferences.
func (p *Planner) createSchedule(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	studentID, err := task.RequireString("student_id")
	if err != nil {
		return p.validationFailure(task, err)
	}

	subjects := task.StringSliceField("subjects")
	preferences := task.MapField("learning_preferences")
	energyPattern := task.MapField("energy_pattern")

	var b strings.Builder
	b.WriteString("Create a personalized weekly study schedule.\n\n")
	fmt.Fprintf(&b, "Subjects: %s\n", strings.Join(subjects, ", "))
	if style, ok := preferences["style"].(string); ok {
		fmt.Fprintf(&b, "Preferred learning style: %s\n", style)
	}
	if peak, ok := energyPattern["peak_hours"].(string); ok {
		fmt.Fprintf(&b, "Peak energy hours: %s\n", peak)
	}
	b.WriteString("\nAllocate focused study blocks per subject, schedule demanding subjects during peak energy hours, and include short breaks.")

	resp := p.ProcessMessage(ctx, b.String(), taskCtx)
	if resp.Success {
		sessions := make([]StudySession, 0, len(subjects))
		for _, subject := range subjects {
			sessions = append(sessions, StudySession{
				Subject:       subject,
				Duration:      60,
				LearningStyle: task.StringField("learning_style", "mixed"),
				Difficulty:    "medium",
			})
		}
		p.schedules[studentID] = &StudentSchedule{
			Sessions:    sessions,
			LastUpdated: time.Now(),
		}
		resp.Metadata["student_id"] = studentID
		resp.Metadata["subjects"] = len(subjects)
	}

	p.record(ctx, studentID, core.RecordSchedule, task, b.String(), resp)
	return resp
}

// optimizeSchedule rebalances an existing schedule against the supplied
// criteria. A student without a schedule is a validation failure: the
// backend is never consulted.
func (p *Planner) optimizeSchedule(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	studentID, err := task.RequireString("student_id")
	if err != nil {
		return p.validationFailure(task, err)
	}
	schedule, ok := p.schedules[studentID]
	if !ok {
		return p.validationFailure(task, fmt.Errorf("no schedule found for student %s", studentID))
	}

	criteria := task.MapField("criteria")

	var b strings.Builder
	b.WriteString("Optimize the following study schedule.\n\n")
	for _, s := range schedule.Sessions {
		fmt.Fprintf(&b, "- %s (%d min, %s difficulty)\n", s.Subject, s.Duration, s.Difficulty)
	}
	if goal, ok := criteria["goal"].(string); ok {
		fmt.Fprintf(&b, "\nOptimization goal: %s\n", goal)
	}
	b.WriteString("\nSuggest an improved allocation that balances workload across the week.")

	resp := p.ProcessMessage(ctx, b.String(), taskCtx)
	if resp.Success {
		schedule.LastUpdated = time.Now()
		resp.Metadata["student_id"] = studentID
	}

	p.record(ctx, studentID, core.RecordSchedule, task, b.String(), resp)
	return resp
}

// addStudySession appends a session to the student's schedule. This is pure
// bookkeeping: no backend call is made.
func (p *Planner) addStudySession(task core.Task) core.Response {
	studentID, err := task.RequireString("student_id")
	if err != nil {
		return p.validationFailure(task, err)
	}

	session := task.MapField("session")
	subject, _ := session["subject"].(string)
	if subject == "" {
		return p.validationFailure(task, fmt.Errorf("%w: session.subject", core.ErrMissingField))
	}

	duration := 60
	if d, ok := session["duration"].(float64); ok {
		duration = int(d)
	} else if d, ok := session["duration"].(int); ok {
		duration = d
	}

	schedule, ok := p.schedules[studentID]
	if !ok {
		schedule = &StudentSchedule{}
		p.schedules[studentID] = schedule
	}
	schedule.Sessions = append(schedule.Sessions, StudySession{
		Subject:       subject,
		Duration:      duration,
		LearningStyle: stringOr(session["learning_style"], "mixed"),
		Difficulty:    stringOr(session["difficulty"], "medium"),
	})
	schedule.LastUpdated = time.Now()

	return core.NewResponse(
		fmt.Sprintf("Added %d-minute %s session for %s", duration, subject, studentID),
		map[string]any{
			"agent":      p.Name(),
			"student_id": studentID,
			"sessions":   len(schedule.Sessions),
		},
	)
}

// manageDeadlines records a deadline and reports the student's upcoming due
// dates ordered by urgency. Pure bookkeeping.
func (p *Planner) manageDeadlines(task core.Task) core.Response {
	studentID, err := task.RequireString("student_id")
	if err != nil {
		return p.validationFailure(task, err)
	}

	deadline := task.MapField("deadline")
	if title, ok := deadline["title"].(string); ok && title != "" {
		due := time.Now().AddDate(0, 0, 7)
		if raw, ok := deadline["due"].(string); ok {
			if parsed, perr := time.Parse(time.RFC3339, raw); perr == nil {
				due = parsed
			}
		}
		priority := 1
		if pr, ok := deadline["priority"].(float64); ok {
			priority = int(pr)
		}
		p.deadlines[studentID] = append(p.deadlines[studentID], Deadline{
			Title:    title,
			Due:      due,
			Priority: priority,
		})
	}

	tracked := p.deadlines[studentID]
	var b strings.Builder
	fmt.Fprintf(&b, "Tracking %d deadline(s):\n", len(tracked))
	for _, d := range tracked {
		fmt.Fprintf(&b, "- %s due %s (priority %d)\n", d.Title, d.Due.Format("2006-01-02"), d.Priority)
	}

	return core.NewResponse(strings.TrimRight(b.String(), "\n"), map[string]any{
		"agent":      p.Name(),
		"student_id": studentID,
		"deadlines":  len(tracked),
	})
}

// adaptSchedule adjusts an existing schedule to changed circumstances.
func (p *Planner) adaptSchedule(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	studentID, err := task.RequireString("student_id")
	if err != nil {
		return p.validationFailure(task, err)
	}
	schedule, ok := p.schedules[studentID]
	if !ok {
		return p.validationFailure(task, fmt.Errorf("no schedule found for student %s", studentID))
	}

	changes := task.MapField("changes")

	var b strings.Builder
	b.WriteString("Adapt the current study schedule to the following changes:\n\n")
	for k, v := range changes {
		fmt.Fprintf(&b, "- %s: %v\n", k, v)
	}
	b.WriteString("\nKeep existing commitments where possible and flag anything that must be dropped.")

	resp := p.ProcessMessage(ctx, b.String(), taskCtx)
	if resp.Success {
		schedule.LastUpdated = time.Now()
		resp.Metadata["student_id"] = studentID
		resp.Metadata["changes"] = len(changes)
	}

	p.record(ctx, studentID, core.RecordSchedule, task, b.String(), resp)
	return resp
}

// spacedRepetition lays out review sessions at the standard intervals for a
// subject the student is already studying. Pure bookkeeping.
func (p *Planner) spacedRepetition(task core.Task) core.Response {
	studentID, err := task.RequireString("student_id")
	if err != nil {
		return p.validationFailure(task, err)
	}
	subject, err := task.RequireString("subject")
	if err != nil {
		return p.validationFailure(task, err)
	}
	schedule, ok := p.schedules[studentID]
	if !ok {
		return p.validationFailure(task, fmt.Errorf("no schedule found for student %s", studentID))
	}

	start := time.Now()
	if raw := task.StringField("initial_date", ""); raw != "" {
		if parsed, perr := time.Parse(time.RFC3339, raw); perr == nil {
			start = parsed
		}
	}

	for i, days := range spacedRepetitionIntervals {
		schedule.Sessions = append(schedule.Sessions, StudySession{
			Subject:       fmt.Sprintf("%s Review %d", subject, i+1),
			Duration:      30,
			LearningStyle: "mixed",
			Difficulty:    "easy",
			Deadline:      start.AddDate(0, 0, days),
		})
	}
	schedule.LastUpdated = time.Now()

	return core.NewResponse(
		fmt.Sprintf("Spaced repetition scheduled for %s", subject),
		map[string]any{
			"agent":           p.Name(),
			"student_id":      studentID,
			"subject":         subject,
			"intervals":       spacedRepetitionIntervals,
			"review_sessions": len(spacedRepetitionIntervals),
		},
	)
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/model"
)

// Material is the notewriter's per-student record of a generated artifact.
type Material struct {
	TaskType  core.TaskType `json:"task_type"`
	Subject   string        `json:"subject"`
	Style     string        `json:"style,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Notewriter is the content processing specialist: it analyzes academic
// content and generates notes, summaries, quizzes, flashcards and visual
// aid descriptions tailored to a learning style. Generated materials are
// tracked per student and mutated only by this instance.
type Notewriter struct {
	BaseAgent
	materials map[string][]Material
}

// NewNotewriter constructs the notewriter agent.
func NewNotewriter(backend model.Model, optFns ...func(o *Options)) (*Notewriter, error) {
	base, err := NewBaseAgent("Notewriter", backend, append([]func(o *Options){func(o *Options) {
		o.Description = "Content processing and learning material generation specialist"
	}}, optFns...)...)
	if err != nil {
		return nil, err
	}
	return &Notewriter{
		BaseAgent: base,
		materials: make(map[string][]Material),
	}, nil
}

// ProcessTask dispatches a content task to its handler.
func (n *Notewriter) ProcessTask(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	var resp core.Response

	switch task.Type {
	case core.TaskAnalyzeContent:
		resp = n.generate(ctx, task, taskCtx, "content", n.analyzePrompt)
	case core.TaskGenerateNotes:
		resp = n.generate(ctx, task, taskCtx, "content", n.notesPrompt)
	case core.TaskCreateSummary:
		resp = n.generate(ctx, task, taskCtx, "content", n.summaryPrompt)
	case core.TaskGenerateQuiz:
		resp = n.generate(ctx, task, taskCtx, "content", n.quizPrompt)
	case core.TaskCreateFlashcards:
		resp = n.generate(ctx, task, taskCtx, "content", n.flashcardsPrompt)
	case core.TaskAdaptContent:
		resp = n.generate(ctx, task, taskCtx, "original_content", n.adaptPrompt)
	case core.TaskCreateVisualAids:
		resp = n.generate(ctx, task, taskCtx, "content", n.visualAidsPrompt)
	default:
		resp = n.unknownTask(task)
	}

	n.observeTask(task, resp)
	return resp
}

// Materials returns the generated materials tracked for a student.
func (n *Notewriter) Materials(studentID string) []Material {
	return n.materials[studentID]
}

// generate validates the required content field, builds the task-specific
// prompt and runs it through the request executor. Every notewriter task
// shares this shape; only the prompt differs.
func (n *Notewriter) generate(
	ctx context.Context,
	task core.Task,
	taskCtx map[string]any,
	contentField string,
	prompt func(task core.Task, content string) string,
) core.Response {
	content, err := task.RequireString(contentField)
	if err != nil {
		return n.validationFailure(task, err)
	}

	input := prompt(task, content)
	resp := n.ProcessMessage(ctx, input, taskCtx)

	studentID := task.StringField("student_id", "")
	if resp.Success {
		resp.Metadata["subject"] = task.StringField("subject", "")
		if studentID != "" {
			n.materials[studentID] = append(n.materials[studentID], Material{
				TaskType:  task.Type,
				Subject:   task.StringField("subject", ""),
				Style:     task.StringField("learning_style", ""),
				CreatedAt: time.Now(),
			})
			resp.Metadata["student_id"] = studentID
		}
	}

	n.record(ctx, studentID, core.RecordMaterial, task, input, resp)
	return resp
}

func (n *Notewriter) analyzePrompt(task core.Task, content string) string {
	var b strings.Builder
	b.WriteString("Analyze the following academic content.\n\n")
	writeSubject(&b, task)
	fmt.Fprintf(&b, "Content:\n%s\n\n", content)
	b.WriteString("Identify the key concepts, assess the difficulty level, estimate the required study time, and list prerequisites and learning objectives.")
	return b.String()
}

func (n *Notewriter) notesPrompt(task core.Task, content string) string {
	style := task.StringField("learning_style", "visual")
	var b strings.Builder
	fmt.Fprintf(&b, "Create comprehensive notes for the following content, tailored for %s learners.\n\n", style)
	writeSubject(&b, task)
	fmt.Fprintf(&b, "Content:\n%s\n\n", content)
	fmt.Fprintf(&b, "Please create detailed, well-organized notes that are optimized for %s learners.", style)
	return b.String()
}

func (n *Notewriter) summaryPrompt(task core.Task, content string) string {
	summaryType := task.StringField("summary_type", "comprehensive")
	var b strings.Builder
	switch summaryType {
	case "brief":
		b.WriteString("Create a brief, concise summary of the following content in 2-3 paragraphs.\n\n")
	case "key_points":
		b.WriteString("Summarize the following content as a bulleted list of its key points.\n\n")
	default:
		b.WriteString("Create a comprehensive summary of the following content, covering all major ideas and their relationships.\n\n")
	}
	writeSubject(&b, task)
	fmt.Fprintf(&b, "Content:\n%s", content)
	return b.String()
}

func (n *Notewriter) quizPrompt(task core.Task, content string) string {
	numQuestions := task.IntField("num_questions", 10)
	types := task.StringSliceField("question_types")
	if len(types) == 0 {
		types = []string{"multiple_choice", "true_false"}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Create a quiz with %d questions from the following content.\n\n", numQuestions)
	writeSubject(&b, task)
	fmt.Fprintf(&b, "Question types: %s\n", strings.Join(types, ", "))
	fmt.Fprintf(&b, "Content:\n%s\n\n", content)
	b.WriteString("Include the correct answer and a short explanation for each question.")
	return b.String()
}

func (n *Notewriter) flashcardsPrompt(task core.Task, content string) string {
	numCards := task.IntField("num_cards", 20)
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d flashcards from the following content.\n\n", numCards)
	writeSubject(&b, task)
	fmt.Fprintf(&b, "Content:\n%s\n\n", content)
	b.WriteString("Format each card as 'Front:' and 'Back:' pairs covering one concept each.")
	return b.String()
}

func (n *Notewriter) adaptPrompt(task core.Task, content string) string {
	target := task.StringField("target_learning_style", "visual")
	var b strings.Builder
	fmt.Fprintf(&b, "Adapt the following material for %s learners while preserving its meaning.\n\n", target)
	writeSubject(&b, task)
	fmt.Fprintf(&b, "Original content:\n%s", content)
	return b.String()
}

func (n *Notewriter) visualAidsPrompt(task core.Task, content string) string {
	visualType := task.StringField("visual_type", "mind_map")
	var b strings.Builder
	fmt.Fprintf(&b, "Describe a %s that captures the structure of the following content.\n\n", visualType)
	writeSubject(&b, task)
	fmt.Fprintf(&b, "Content:\n%s\n\n", content)
	b.WriteString("Describe the layout, groupings and connections in enough detail to draw it.")
	return b.String()
}

func writeSubject(b *strings.Builder, task core.Task) {
	if subject := task.StringField("subject", ""); subject != "" {
		fmt.Fprintf(b, "Subject: %s\n", subject)
	}
}

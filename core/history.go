package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordKind categorizes a history record by the operation that produced it.
type RecordKind string

const (
	// RecordQuery is a free-form question answered by an agent.
	RecordQuery RecordKind = "query"
	// RecordSchedule is a planner schedule or deadline operation.
	RecordSchedule RecordKind = "schedule"
	// RecordMaterial is a notewriter-generated learning material.
	RecordMaterial RecordKind = "material"
	// RecordGuidance is an advisor guidance or motivation session.
	RecordGuidance RecordKind = "guidance"
	// RecordAssessment is a progress or stress assessment.
	RecordAssessment RecordKind = "assessment"
)

// Record is one completed agent operation as persisted for a student. The
// envelope's outcome is flattened in: Success and Error mirror the response,
// Output is its content, Duration its execution time.
type Record struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Kind      RecordKind    `json:"kind"`
	TaskType  TaskType      `json:"task_type"`
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewRecord stamps a record with a fresh id and creation time.
func NewRecord(ownerID string, kind RecordKind, taskType TaskType) Record {
	return Record{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Kind:      kind,
		TaskType:  taskType,
		CreatedAt: time.Now().UTC(),
	}
}

// ListOptions narrows a history read. Zero Limit means the store default
// (50); Kind empty means all kinds. Records are always returned newest
// first.
type ListOptions struct {
	Limit  int
	Offset int
	Kind   RecordKind
}

// HistoryStore is the append-only persistence collaborator. The core only
// relies on write-then-read-back consistency for the same owner id; storage
// format and durability are implementation concerns.
type HistoryStore interface {
	// Append stores one record. Records are immutable once appended.
	Append(ctx context.Context, rec Record) error
	// List returns records for the owner, newest first, honoring
	// pagination and the optional kind filter.
	List(ctx context.Context, ownerID string, optFns ...func(o *ListOptions)) ([]Record, error)
	// Purge removes the owner's records, optionally limited to one kind
	// (empty kind removes everything). Returns the number removed.
	Purge(ctx context.Context, ownerID string, kind RecordKind) (int, error)
}

// WithLimit caps the number of records returned by List.
func WithLimit(n int) func(o *ListOptions) {
	return func(o *ListOptions) { o.Limit = n }
}

// WithOffset skips the newest n records.
func WithOffset(n int) func(o *ListOptions) {
	return func(o *ListOptions) { o.Offset = n }
}

// WithKind filters List to a single record kind.
func WithKind(k RecordKind) func(o *ListOptions) {
	return func(o *ListOptions) { o.Kind = k }
}

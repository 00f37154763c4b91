package history

import (
	"context"
	"sync"

	"github.com/ascend-ai/ascend/core"
)

// defaultListLimit caps List results when the caller does not set a limit.
const defaultListLimit = 50

// InMemoryStore is a thread-safe, in-process HistoryStore. Records live only
// for the lifetime of the process; use the sqlite subpackage when records
// must survive restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]core.Record
}

var _ core.HistoryStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string][]core.Record),
	}
}

// Append implements core.HistoryStore.
func (s *InMemoryStore) Append(ctx context.Context, rec core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.OwnerID] = append(s.records[rec.OwnerID], rec)
	return nil
}

// List implements core.HistoryStore. Records come back newest first.
func (s *InMemoryStore) List(ctx context.Context, ownerID string, optFns ...func(o *core.ListOptions)) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := core.ListOptions{Limit: defaultListLimit}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[ownerID]

	matched := make([]core.Record, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		if opts.Kind != "" && stored[i].Kind != opts.Kind {
			continue
		}
		matched = append(matched, stored[i])
	}

	if opts.Offset >= len(matched) {
		return []core.Record{}, nil
	}
	matched = matched[opts.Offset:]
	if len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// Purge implements core.HistoryStore.
func (s *InMemoryStore) Purge(ctx context.Context, ownerID string, kind core.RecordKind) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.records[ownerID]
	if kind == "" {
		delete(s.records, ownerID)
		return len(stored), nil
	}

	kept := stored[:0]
	removed := 0
	for _, rec := range stored {
		if rec.Kind == kind {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == 0 {
		delete(s.records, ownerID)
	} else {
		s.records[ownerID] = kept
	}
	return removed, nil
}

package timelogrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/projecthub/internal/domain/timelog"
	"github.com/yanqian/projecthub/pkg/util"
)

// MemoryRepository keeps entries in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[int64]timelog.Entry
	seq     int64
	now     util.Clock
}

// NewMemoryRepository constructs an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[int64]timelog.Entry), now: util.NowUTC}
}

// Create assigns an id and timestamps.
func (r *MemoryRepository) Create(_ context.Context, entry timelog.Entry) (timelog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := r.now()
	entry.ID = r.seq
	entry.CreatedAt = now
	entry.UpdatedAt = now
	r.entries[entry.ID] = entry
	return entry, nil
}

// Get fetches by id.
func (r *MemoryRepository) Get(_ context.Context, id int64) (timelog.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok, nil
}

// ListByUser returns the user's entries, newest date first.
func (r *MemoryRepository) ListByUser(_ context.Context, userID int64) ([]timelog.Entry, error) {
	r.mu.RLock()
	out := make([]timelog.Entry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Update replaces the editable fields of an existing entry.
func (r *MemoryRepository) Update(_ context.Context, entry timelog.Entry) (timelog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok {
		return timelog.Entry{}, timelog.ErrNotFound
	}
	existing.TaskID = entry.TaskID
	existing.Hours = entry.Hours
	existing.Date = entry.Date
	existing.Note = entry.Note
	existing.UpdatedAt = r.now()
	r.entries[entry.ID] = existing
	return existing, nil
}

// Delete removes the entry; deleting a missing entry is a no-op.
func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

var _ timelog.Repository = (*MemoryRepository)(nil)

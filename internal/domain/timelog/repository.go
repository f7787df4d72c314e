package timelog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Update when the entry no longer exists.
var ErrNotFound = errors.New("time log entry not found")

// Repository persists entries. Get reports absence through the bool rather than an error;
// Update reports it as ErrNotFound.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	Get(ctx context.Context, id int64) (Entry, bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Entry, error)
	Update(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, id int64) error
}

package timelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/yanqian/projecthub/internal/domain/auth"
	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

// Error codes surfaced by the timelog service.
const (
	CodeInvalidInput = "invalid_input"
	CodeNotFound     = "not_found"
	CodeInternal     = "timelog_error"
)

// Service manages entries on behalf of the authenticated caller.
type Service interface {
	Create(ctx context.Context, in EntryInput) (Entry, error)
	ListMine(ctx context.Context) ([]Entry, error)
	ListForUser(ctx context.Context, userID int64) ([]Entry, error)
	Get(ctx context.Context, id int64) (Entry, error)
	Update(ctx context.Context, id int64, in EntryInput) (Entry, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger.With("component", "timelog.service")}
}

func (s *service) Create(ctx context.Context, in EntryInput) (Entry, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return Entry{}, err
	}
	in, err = validate(in)
	if err != nil {
		return Entry{}, err
	}
	entry, err := s.repo.Create(ctx, Entry{
		UserID: caller,
		TaskID: in.TaskID,
		Hours:  in.Hours,
		Date:   in.Date,
		Note:   in.Note,
	})
	if err != nil {
		return Entry{}, apperrors.Wrap(CodeInternal, "failed to save entry", err)
	}
	s.logger.Info("entry logged", "entry_id", entry.ID, "user_id", caller)
	return entry, nil
}

func (s *service) ListMine(ctx context.Context) ([]Entry, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, caller)
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]Entry, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	if err := auth.CheckOwner(ctx, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, userID)
}

func (s *service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.owned(ctx, id)
}

func (s *service) Update(ctx context.Context, id int64, in EntryInput) (Entry, error) {
	entry, err := s.owned(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	in, err = validate(in)
	if err != nil {
		return Entry{}, err
	}
	entry.TaskID = in.TaskID
	entry.Hours = in.Hours
	entry.Date = in.Date
	entry.Note = in.Note
	updated, err := s.repo.Update(ctx, entry)
	if errors.Is(err, ErrNotFound) {
		return Entry{}, errNotFound()
	}
	if err != nil {
		return Entry{}, apperrors.Wrap(CodeInternal, "failed to update entry", err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(CodeInternal, "failed to delete entry", err)
	}
	s.logger.Info("entry deleted", "entry_id", id)
	return nil
}

func (s *service) list(ctx context.Context, userID int64) ([]Entry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(CodeInternal, "failed to list entries", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// owned loads the entry and applies the ownership guard against its author.
func (s *service) owned(ctx context.Context, id int64) (Entry, error) {
	if _, err := callerID(ctx); err != nil {
		return Entry{}, err
	}
	if id <= 0 {
		return Entry{}, errNotFound()
	}
	entry, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, apperrors.Wrap(CodeInternal, "failed to load entry", err)
	}
	if !found {
		return Entry{}, errNotFound()
	}
	if err := auth.CheckOwner(ctx, entry.UserID); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func callerID(ctx context.Context) (int64, error) {
	claims, ok := auth.ClaimsFrom(ctx)
	if !ok || claims.UserID <= 0 {
		return 0, auth.ErrMissingToken()
	}
	return claims.UserID, nil
}

func validate(in EntryInput) (EntryInput, error) {
	if in.TaskID <= 0 {
		return in, apperrors.Wrap(CodeInvalidInput, "taskId must be positive", nil)
	}
	if math.IsNaN(in.Hours) || in.Hours <= 0 || in.Hours > MaxHours {
		return in, apperrors.Wrap(CodeInvalidInput, fmt.Sprintf("hours must be greater than 0 and at most %d", MaxHours), nil)
	}
	in.Date = strings.TrimSpace(in.Date)
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return in, apperrors.Wrap(CodeInvalidInput, "date must be formatted as YYYY-MM-DD", nil)
	}
	in.Note = strings.TrimSpace(in.Note)
	return in, nil
}

func errNotFound() error {
	return apperrors.Wrap(CodeNotFound, "entry not found", nil)
}

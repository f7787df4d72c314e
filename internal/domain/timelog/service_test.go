package timelog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/projecthub/internal/domain/auth"
	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

func TestService_OwnerLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ann := asUser(1)

	created, err := svc.Create(ann, EntryInput{TaskID: 7, Hours: 2.5, Date: "2026-03-02", Note: "  review  "})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.UserID)
	require.Equal(t, "review", created.Note)

	got, err := svc.Get(ann, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	updated, err := svc.Update(ann, created.ID, EntryInput{TaskID: 7, Hours: 3, Date: "2026-03-02"})
	require.NoError(t, err)
	require.Equal(t, 3.0, updated.Hours)
	require.Equal(t, int64(1), updated.UserID)

	require.NoError(t, svc.Delete(ann, created.ID))
	_, err = svc.Get(ann, created.ID)
	require.True(t, apperrors.IsCode(err, CodeNotFound))
}

func TestService_ForeignEntriesAreForbidden(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(asUser(1), EntryInput{TaskID: 1, Hours: 1, Date: "2026-03-02"})
	require.NoError(t, err)

	bob := asUser(2)
	_, err = svc.Get(bob, created.ID)
	require.True(t, apperrors.IsCode(err, auth.CodeForbidden))
	_, err = svc.Update(bob, created.ID, EntryInput{TaskID: 1, Hours: 8, Date: "2026-03-02"})
	require.True(t, apperrors.IsCode(err, auth.CodeForbidden))
	require.True(t, apperrors.IsCode(svc.Delete(bob, created.ID), auth.CodeForbidden))

	still, err := svc.Get(asUser(1), created.ID)
	require.NoError(t, err)
	require.Equal(t, 1.0, still.Hours)

	_, err = svc.ListForUser(bob, 1)
	require.True(t, apperrors.IsCode(err, auth.CodeForbidden))
}

func TestService_ListsAreScopedToCaller(t *testing.T) {
	svc, _ := newTestService()
	for _, date := range []string{"2026-03-01", "2026-03-03", "2026-03-02"} {
		_, err := svc.Create(asUser(1), EntryInput{TaskID: 1, Hours: 1, Date: date})
		require.NoError(t, err)
	}
	_, err := svc.Create(asUser(2), EntryInput{TaskID: 1, Hours: 1, Date: "2026-03-04"})
	require.NoError(t, err)

	mine, err := svc.ListMine(asUser(1))
	require.NoError(t, err)
	require.Len(t, mine, 3)
	require.Equal(t, "2026-03-03", mine[0].Date)
	require.Equal(t, "2026-03-01", mine[2].Date)

	own, err := svc.ListForUser(asUser(1), 1)
	require.NoError(t, err)
	require.Equal(t, mine, own)

	empty, err := svc.ListMine(asUser(3))
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestService_Validation(t *testing.T) {
	svc, _ := newTestService()
	cases := map[string]EntryInput{
		"zero task":      {TaskID: 0, Hours: 1, Date: "2026-03-02"},
		"zero hours":     {TaskID: 1, Hours: 0, Date: "2026-03-02"},
		"negative hours": {TaskID: 1, Hours: -1, Date: "2026-03-02"},
		"over a day":     {TaskID: 1, Hours: 24.5, Date: "2026-03-02"},
		"bad date":       {TaskID: 1, Hours: 1, Date: "02/03/2026"},
		"empty date":     {TaskID: 1, Hours: 1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(asUser(1), in)
			require.True(t, apperrors.IsCode(err, CodeInvalidInput), "got %v", err)
		})
	}

	_, err := svc.Create(asUser(1), EntryInput{TaskID: 1, Hours: 24, Date: "2026-03-02"})
	require.NoError(t, err)
}

func TestService_RequiresIdentity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, EntryInput{TaskID: 1, Hours: 1, Date: "2026-03-02"})
	require.True(t, apperrors.IsCode(err, auth.CodeMissingToken))
	_, err = svc.ListMine(ctx)
	require.True(t, apperrors.IsCode(err, auth.CodeMissingToken))
	_, err = svc.Get(ctx, 1)
	require.True(t, apperrors.IsCode(err, auth.CodeMissingToken))
}

func TestService_UpdateOfVanishedEntry(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(asUser(1), EntryInput{TaskID: 1, Hours: 1, Date: "2026-03-02"})
	require.NoError(t, err)

	repo.updateErr = ErrNotFound
	_, err = svc.Update(asUser(1), created.ID, EntryInput{TaskID: 1, Hours: 2, Date: "2026-03-02"})
	require.True(t, apperrors.IsCode(err, CodeNotFound), "got %v", err)
}

func TestService_StoreFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.err = errors.New("connection reset")

	_, err := svc.Create(asUser(1), EntryInput{TaskID: 1, Hours: 1, Date: "2026-03-02"})
	require.True(t, apperrors.IsCode(err, CodeInternal))
	require.Equal(t, "failed to save entry", apperrors.PublicMessage(err))

	_, err = svc.Get(asUser(1), 1)
	require.True(t, apperrors.IsCode(err, CodeInternal))
}

func asUser(id int64) context.Context {
	return auth.WithClaims(context.Background(), auth.Claims{UserID: id})
}

func newTestService() (Service, *memoryRepo) {
	repo := &memoryRepo{entries: map[int64]Entry{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

type memoryRepo struct {
	mu        sync.Mutex
	entries   map[int64]Entry
	seq       int64
	err       error
	updateErr error
}

func (r *memoryRepo) Create(_ context.Context, entry Entry) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Entry{}, r.err
	}
	r.seq++
	entry.ID = r.seq
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Entry{}, false, r.err
	}
	entry, ok := r.entries[id]
	return entry, ok, nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID int64) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, r.err
}

func (r *memoryRepo) Update(_ context.Context, entry Entry) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return Entry{}, r.updateErr
	}
	r.entries[entry.ID] = entry
	return entry, r.err
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return r.err
}

package timelogrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/projecthub/internal/domain/timelog"
)

const entryColumns = `id, user_id, task_id, hours::float8, work_date, note, created_at, updated_at`

// PostgresRepository persists entries in the logging_hours table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a row.
func (r *PostgresRepository) Create(ctx context.Context, entry timelog.Entry) (timelog.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO logging_hours (user_id, task_id, hours, work_date, note)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING `+entryColumns, entry.UserID, entry.TaskID, entry.Hours, entry.Date, entry.Note)
	return scanEntry(row)
}

// Get fetches by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (timelog.Entry, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM logging_hours WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return timelog.Entry{}, false, nil
	}
	if err != nil {
		return timelog.Entry{}, false, err
	}
	return entry, true, nil
}

// ListByUser returns the user's entries, newest date first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]timelog.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM logging_hours
		WHERE user_id = $1
		ORDER BY work_date DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]timelog.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Update rewrites the editable columns.
func (r *PostgresRepository) Update(ctx context.Context, entry timelog.Entry) (timelog.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE logging_hours
		SET task_id = $2, hours = $3, work_date = $4::date, note = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+entryColumns, entry.ID, entry.TaskID, entry.Hours, entry.Date, entry.Note)
	updated, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return timelog.Entry{}, timelog.ErrNotFound
	}
	return updated, err
}

// Delete removes the row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM logging_hours WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (timelog.Entry, error) {
	var (
		entry            timelog.Entry
		date             time.Time
		created, updated time.Time
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.TaskID, &entry.Hours, &date, &entry.Note, &created, &updated); err != nil {
		return timelog.Entry{}, err
	}
	entry.Date = date.Format(timelog.DateLayout)
	entry.CreatedAt = created.UTC()
	entry.UpdatedAt = updated.UTC()
	return entry, nil
}

var _ timelog.Repository = (*PostgresRepository)(nil)

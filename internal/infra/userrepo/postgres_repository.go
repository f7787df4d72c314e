package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/projecthub/internal/domain/auth"
)

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row. A unique violation on email maps to auth.ErrEmailExists.
func (r *PostgresRepository) Create(ctx context.Context, name, email, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns, name, email, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
		LIMIT 1
	`, email)
	return scanOptional(row)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanOptional(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOptional(row rowScanner) (auth.User, bool, error) {
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, nil
}

func scanUser(row rowScanner) (auth.User, error) {
	var user auth.User
	var created, updated time.Time
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &created, &updated); err != nil {
		return auth.User{}, err
	}
	user.CreatedAt = created.UTC()
	user.UpdatedAt = updated.UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var _ auth.Repository = (*PostgresRepository)(nil)

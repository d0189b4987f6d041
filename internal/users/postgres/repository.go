// Package postgres provides PostgreSQL implementation of the users repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/runningsport/internal/domain"
	"github.com/bissquit/runningsport/internal/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Data exceptions raised for values the request validators let through.
var invalidDataCodes = map[string]bool{
	"22007": true, // invalid_datetime_format
	"22008": true, // datetime_field_overflow
	"22021": true, // character_not_in_repertoire
}

const userColumns = `
	id, email, firstname, lastname,
	COALESCE(to_char(birthdate, 'YYYY-MM-DD'), ''),
	phone, password, status, role, created_at, updated_at`

var _ users.Repository = (*Repository)(nil)

// Repository implements the users.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListActive retrieves all active users ordered by creation time.
func (r *Repository) ListActive(ctx context.Context) ([]domain.User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE status
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	list := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return list, nil
}

// GetActiveByEmail retrieves the active user with the given email.
func (r *Repository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE email = $1 AND status
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, classify("get user by email", err)
	}
	return user, nil
}

// Create inserts a new user and fills in the generated fields.
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, firstname, lastname, birthdate, phone, password, status, role)
		VALUES ($1, $2, $3, NULLIF($4, '')::date, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.BirthDate,
		user.Phone,
		user.Password,
		user.Status,
		string(user.Role),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return users.ErrEmailExists
		}
		return classify("create user", err)
	}
	return nil
}

// UpdateProfile replaces first name, last name and phone of an active user.
func (r *Repository) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) error {
	query := `
		UPDATE users
		SET firstname = $2, lastname = $3, phone = $4, updated_at = NOW()
		WHERE id = $1 AND status
	`
	tag, err := r.db.Exec(ctx, query, id, patch.FirstName, patch.LastName, patch.Phone)
	if err != nil {
		return classify("update user profile", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotApplied
	}
	return nil
}

// Deactivate flips an active user to inactive.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET status = FALSE, updated_at = NOW()
		WHERE id = $1 AND status
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotApplied
	}
	return nil
}

// classify wraps err, marking PostgreSQL data exceptions as invalid input.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && invalidDataCodes[pgErr.Code] {
		return fmt.Errorf("%w: %s: %s", users.ErrInvalidInput, op, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.BirthDate,
		&user.Phone,
		&user.Password,
		&user.Status,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

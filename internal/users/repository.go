package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/essp-platform/essp/internal/platform/db"
	"github.com/essp-platform/essp/internal/shared"
)

// Repository defines data access for user administration.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (*Detail, error)
	SetActive(ctx context.Context, id int64, active bool) error
	AssignRole(ctx context.Context, userID int64, role string) error
	RemoveRole(ctx context.Context, userID int64, role string) error
	GrantPermission(ctx context.Context, userID int64, permission string) error
	RevokePermission(ctx context.Context, userID int64, permission string) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

// List returns all users ordered by email.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, name, is_active, created_at, updated_at FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns a user with their role and permission assignments. The reads
// run in one repeatable-read transaction so the assignments match the row.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Detail, error) {
	var detail Detail
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT id, email, name, is_active, created_at, updated_at FROM users WHERE id = $1`, id)
		if err := row.Scan(&detail.ID, &detail.Email, &detail.Name, &detail.IsActive, &detail.CreatedAt, &detail.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		roles, err := queryStrings(ctx, tx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, id)
		if err != nil {
			return err
		}
		perms, err := queryStrings(ctx, tx, `SELECT permission FROM user_permissions WHERE user_id = $1 ORDER BY permission`, id)
		if err != nil {
			return err
		}
		detail.Roles = roles
		detail.ExplicitPermissions = perms
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// SetActive flips the account's active flag.
func (r *PGRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AssignRole adds a role assignment.
func (r *PGRepository) AssignRole(ctx context.Context, userID int64, role string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	return mapConstraint(err)
}

// RemoveRole deletes a role assignment.
func (r *PGRepository) RemoveRole(ctx context.Context, userID int64, role string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAssigned
	}
	return nil
}

// GrantPermission adds an explicit permission grant.
func (r *PGRepository) GrantPermission(ctx context.Context, userID int64, permission string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2)`, userID, permission)
	return mapConstraint(err)
}

// RevokePermission deletes an explicit permission grant.
func (r *PGRepository) RevokePermission(ctx context.Context, userID int64, permission string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND permission = $2`, userID, permission)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAssigned
	}
	return nil
}

// mapConstraint translates assignment-table constraint violations into domain
// errors: duplicate key means the assignment exists, foreign key means the
// user does not.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrAlreadyAssigned
		case "23503":
			return shared.ErrNotFound
		}
	}
	return err
}

func queryStrings(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
	pkgdb "feeltrack/pkg/db"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u together with its default preferences row in one transaction.
// A taken username or email yields *apperr.DuplicateError.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := pkgdb.InTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING user_id, created_at
		`
		if err := tx.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO user_preferences (user_id) VALUES ($1)`, u.ID)
		return err
	})
	return apperr.FromPg(err)
}

const userColumns = `user_id, username, email, password_hash, created_at, last_login`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.LastLogin); err != nil {
		return nil, apperr.FromPg(err)
	}
	return &u, nil
}

// FindByUsername returns apperr.ErrNotFound when no user has that name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE user_id = $1`, id)
	return err
}

// Delete removes the user; conversations, messages, supportive messages and
// preferences go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

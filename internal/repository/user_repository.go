package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/login-auth-api/internal/model"
	"github.com/iliyamo/login-auth-api/internal/utils"
)

// UserRepo reads and writes the 'users' table. Username comparisons are
// case-insensitive: the column uses a case-insensitive collation and every
// lookup additionally normalizes through LOWER() so behavior does not depend
// on the deployed collation.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with a bcrypt-hashed password and returns its ID.
// Duplicate unique keys map to ErrUsernameExists/ErrEmailExists depending on
// which index collided.
func (r *UserRepo) Create(ctx context.Context, username, email, password, profile string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, profile) VALUES (?,?,?,NULLIF(?,''))",
		username, email, hash, profile)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by username, matching case-insensitively.
// A miss is reported as ErrUserNotFound, never as a raw sql error.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	var profile sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,profile,created_at,updated_at FROM users WHERE LOWER(username)=LOWER(?) LIMIT 1",
		strings.TrimSpace(username)).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &profile, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	u.Profile = profile.String
	return u, nil
}

// UpdatePassword overwrites the stored password hash for a user. Hashing
// happens here, in the persistence layer; callers hand over the plain text
// exactly once. ErrUserNotFound is returned when no row matched.
func (r *UserRepo) UpdatePassword(ctx context.Context, username, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE LOWER(username)=LOWER(?)",
		hash, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sagesilk/internal/models"
)

type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

// Ensure implementation of Credentials interface at compile time.
var _ Credentials = (*UserSQLite)(nil)

const (
	insertUserSQL        = `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`
	usernameTakenSQL     = `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`
	emailTakenSQL        = `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`
	selectUserColumnsSQL = `SELECT id, username, email, password_hash, created_at FROM users`
	selectUserByUsername = selectUserColumnsSQL + ` WHERE username = ?`
	selectUserByEmail    = selectUserColumnsSQL + ` WHERE email = ?`

	uniqueViolationMarker = "UNIQUE constraint failed: "
)

// CreateUser inserts a new user and returns its ID. The existence checks and
// the insert share one transaction; a unique index violation that slips past
// the checks is mapped to the same duplicate errors.
func (r *UserSQLite) CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		taken, err := exists(ctx, tx, usernameTakenSQL, username)
		if err != nil {
			return fmt.Errorf("check username %q: %w", username, err)
		}
		if taken {
			return ErrDuplicateUsername
		}

		taken, err = exists(ctx, tx, emailTakenSQL, email)
		if err != nil {
			return fmt.Errorf("check email for %q: %w", username, err)
		}
		if taken {
			return ErrDuplicateEmail
		}

		res, err := tx.ExecContext(ctx, insertUserSQL, username, email, passwordHash)
		if err != nil {
			if dup := duplicateFromConstraint(err); dup != nil {
				return dup
			}
			return fmt.Errorf("insert user %q: %w", username, err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("get last insert id for user %q: %w", username, err)
		}
		id = lastID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserSQLite) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByUsername, username))
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// FindByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserSQLite) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByEmail, email))
	if err != nil {
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func exists(ctx context.Context, tx *sql.Tx, query string, arg any) (bool, error) {
	var found bool
	if err := tx.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// duplicateFromConstraint maps SQLite's "UNIQUE constraint failed: users.<col>"
// to the matching duplicate error, or nil for anything else.
func duplicateFromConstraint(err error) error {
	msg := err.Error()
	i := strings.Index(msg, uniqueViolationMarker)
	if i < 0 {
		return nil
	}
	switch cols := msg[i+len(uniqueViolationMarker):]; {
	case strings.HasPrefix(cols, "users.username"):
		return ErrDuplicateUsername
	case strings.HasPrefix(cols, "users.email"):
		return ErrDuplicateEmail
	}
	return nil
}

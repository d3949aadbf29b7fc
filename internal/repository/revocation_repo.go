package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type RevocationSQLite struct {
	db *sql.DB
}

func NewRevocationSQLite(db *sql.DB) *RevocationSQLite {
	return &RevocationSQLite{db: db}
}

var _ Revocations = (*RevocationSQLite)(nil)

const (
	insertRevokedTokenSQL = `INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?) ON CONFLICT(token_id) DO NOTHING`
	revokedTokenExistsSQL = `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = ?)`
	purgeRevokedTokensSQL = `DELETE FROM revoked_tokens WHERE expires_at <= ?`
)

// Revoke records tokenID until expiresAt. Revoking twice is a no-op.
func (r *RevocationSQLite) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, insertRevokedTokenSQL, tokenID, expiresAt.UTC()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationSQLite) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	if err := r.db.QueryRowContext(ctx, revokedTokenExistsSQL, tokenID).Scan(&revoked); err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return revoked, nil
}

// PurgeExpired drops entries whose token would already be rejected as expired.
func (r *RevocationSQLite) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeRevokedTokensSQL, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sagesilk/internal/models"

	"github.com/google/uuid"
)

type AuditSQLite struct {
	db *sql.DB
}

func NewAuditSQLite(db *sql.DB) *AuditSQLite { return &AuditSQLite{db: db} }

var _ AuditRepo = (*AuditSQLite)(nil)

const (
	insertAuditEventSQL = `INSERT INTO audit_events (id, occurred_at, type, username, meta) VALUES (?, ?, ?, ?, ?)`
	selectAuditEventSQL = `SELECT id, occurred_at, type, username, meta FROM audit_events`
)

// Append inserts a new event. If EventID or OccurredAt are empty, they’re set.
func (r *AuditSQLite) Append(ctx context.Context, e models.AuditEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertAuditEventSQL,
		e.EventID,
		e.OccurredAt,
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Username,
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive), type and username,
// ordered ASC. Empty filters match everything.
func (r *AuditSQLite) List(ctx context.Context, from, to time.Time, typ, username string) ([]models.AuditEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if username != "" {
		conds = append(conds, "username = ?")
		args = append(args, username)
	}

	q := selectAuditEventSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AuditEvent, 0, 64)
	for rows.Next() {
		var ev models.AuditEvent
		var metaStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Username, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sagesilk/internal/models"
	"sagesilk/internal/repository"
)

// LogFilter narrows an audit log listing. Zero time and type values mean
// "no bound". Username is the owner of the events and is required.
type LogFilter struct {
	From     time.Time
	To       time.Time
	Type     string
	Username string
}

type AuditLogService struct {
	auditRepo repository.AuditRepo
}

func NewAuditLogService(auditRepo repository.AuditRepo) *AuditLogService {
	return &AuditLogService{auditRepo: auditRepo}
}

var (
	errInvalidTimeRange  = errors.New("invalid time range: from must be <= to")
	ErrAuditOwnerMissing = errors.New("audit listing requires an owner username")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", &Error{Kind: KindValidation, Messages: []string{errInvalidTimeRange.Error()}, Err: errInvalidTimeRange}
	}
	return from, to, normalizeEventType(f.Type), nil
}

// List returns the events of f.Username only.
func (s *AuditLogService) List(ctx context.Context, f LogFilter) ([]models.AuditEvent, error) {
	owner := strings.TrimSpace(f.Username)
	if owner == "" {
		return nil, &Error{Kind: KindAuthentication, Messages: []string{ErrAuditOwnerMissing.Error()}, Err: ErrAuditOwnerMissing}
	}
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.auditRepo.List(ctx, from, to, typ, owner)
}

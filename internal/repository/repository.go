package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sagesilk/internal/models"
)

// Credential store errors. Both are returned whether the conflict was seen by
// the pre-insert check or by the unique index at insert time.
var (
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUnknownSubcategory = errors.New("unknown subcategory")
)

// Credentials persists user records. Lookups return (nil, nil) when nothing matches.
type Credentials interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Products interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	ListBySubcategory(ctx context.Context, category, subcategory string) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p models.NewProduct) (int64, error)
}

// Revocations is a denylist of token ids that must be rejected before their natural expiry.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuditRepo interface {
	Append(ctx context.Context, e models.AuditEvent) error
	List(ctx context.Context, from, to time.Time, typ, username string) ([]models.AuditEvent, error)
}

type Repository struct {
	Users       Credentials
	Products    Products
	Audit       AuditRepo
	Revocations *RevocationSQLite
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:       NewUserSQLite(db),
		Products:    NewProductSQLite(db),
		Audit:       NewAuditSQLite(db),
		Revocations: NewRevocationSQLite(db),
	}
}

package service

import (
	"context"
	"time"

	"sagesilk/internal/logger"
	"sagesilk/internal/models"
	"sagesilk/internal/repository"
)

// Authorization covers signup, login, logout and per-request identity.
type Authorization interface {
	SignUp(ctx context.Context, in SignUpInput) (Session, error)
	Login(ctx context.Context, username, password string) (Session, error)
	Logout(ctx context.Context, id models.Identity) error
	Identify(ctx context.Context, token string) (models.Identity, error)
}

// Catalog exposes product listing and creation.
type Catalog interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	ListBySubcategory(ctx context.Context, category, subcategory string) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p models.NewProduct) (int64, error)
}

// Cart works on the item list held in the visitor's session.
type Cart interface {
	Add(ctx context.Context, items []models.CartItem, productID int64, quantity int) ([]models.CartItem, error)
	Remove(items []models.CartItem, productID int64) []models.CartItem
	Summarize(items []models.CartItem) models.CartSummary
}

// Chat answers chat widget messages.
type Chat interface {
	Reply(message string) string
}

type Tracking interface {
	Track(trackingID string) (models.Shipment, error)
}

// AuditLog exposes the append-only auth log with filtering access.
type AuditLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AuditEvent, error)
}

// Revocations is the optional token denylist consulted during verification.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	Authorization
	Catalog
	Cart
	Chat
	Tracking
	AuditLog
}

// Deps are the collaborators that are not part of the repository layer.
type Deps struct {
	Hasher *BcryptHasher
	Tokens *TokenManager
	Log    *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, deps.Hasher, deps.Tokens, repos.Audit, deps.Log),
		Catalog:       NewCatalogService(repos.Products),
		Cart:          NewCartService(repos.Products),
		Chat:          NewChatService(),
		Tracking:      NewTrackingService(),
		AuditLog:      NewAuditLogService(repos.Audit),
	}
}

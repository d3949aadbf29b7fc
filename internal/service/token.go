package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sagesilk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// Claims defines JWT claims. Subject holds the username, ID the token id.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens. The secret is fixed
// at construction; changing it invalidates every outstanding token.
type TokenManager struct {
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
	revocations Revocations
}

// NewTokenManager builds a manager. revocations may be nil, in which case
// verification is purely signature and expiry based.
func NewTokenManager(secret string, ttl time.Duration, revocations Revocations) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
		revocations: revocations,
	}, nil
}

// Issue signs a token for subject valid from now until now+ttl.
func (m *TokenManager) Issue(subject string) (string, models.Identity, error) {
	if subject == "" {
		return "", models.Anonymous, errors.New("empty token subject")
	}
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", models.Anonymous, fmt.Errorf("sign token: %w", err)
	}
	return signed, models.Authenticated(subject, claims.ID, claims.ExpiresAt.Time), nil
}

// Verify checks signature, algorithm and expiry, and consults the revocation
// list when one is configured. A bad or revoked token is ErrInvalidToken; a
// revocation store failure is ErrRevocationUnavailable wrapping the cause.
func (m *TokenManager) Verify(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Anonymous, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return models.Anonymous, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if m.revocations != nil && claims.ID != "" {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return models.Anonymous, fmt.Errorf("%w: %w", ErrRevocationUnavailable, err)
		}
		if revoked {
			return models.Anonymous, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}

	return models.Authenticated(claims.Subject, claims.ID, claims.ExpiresAt.Time), nil
}

// Revoke denylists the token behind id until its expiry. Without a revocation
// backend it is a no-op and logout relies on the cookie being cleared.
func (m *TokenManager) Revoke(ctx context.Context, id models.Identity) error {
	if m.revocations == nil || id.TokenID == "" {
		return nil
	}
	return m.revocations.Revoke(ctx, id.TokenID, id.ExpiresAt)
}

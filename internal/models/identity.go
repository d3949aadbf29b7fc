package models

import "time"

// Identity is the per-request view of who is calling. The zero value is anonymous.
type Identity struct {
	Username  string    `json:"username,omitempty"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Anonymous is the identity of a request without a valid session token.
var Anonymous = Identity{}

// Authenticated returns the identity bound to a verified token subject.
func Authenticated(username, tokenID string, expiresAt time.Time) Identity {
	return Identity{Username: username, TokenID: tokenID, ExpiresAt: expiresAt}
}

func (i Identity) IsAuthenticated() bool { return i.Username != "" }

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName   = "sagesilkapp"
	sessionCookieMaxAge = 86400 // 24h, matches the token lifetime
)

// SessionCookie carries the session token between requests.
type SessionCookie struct {
	Name   string
	MaxAge int
	Secure bool
}

func newSessionCookie(secure bool) SessionCookie {
	return SessionCookie{Name: sessionCookieName, MaxAge: sessionCookieMaxAge, Secure: secure}
}

// Attach stores token in an HttpOnly cookie scoped to the whole site.
func (s SessionCookie) Attach(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, s.MaxAge, "/", "", s.Secure, true)
}

// Extract returns the token from the request, if any.
func (s SessionCookie) Extract(c *gin.Context) (string, bool) {
	v, err := c.Cookie(s.Name)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// Clear tells the client to drop the cookie.
func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"sagesilk/internal/models"
	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// identityMiddleware resolves the request identity from the session cookie.
// A missing cookie means anonymous; a cookie that fails verification also
// means anonymous and is cleared so the browser stops sending it. When the
// revocation store is down the request is anonymous but the cookie is kept.
func (h *Handler) identityMiddleware(c *gin.Context) {
	id := models.Anonymous
	if token, ok := h.cookies.Extract(c); ok {
		verified, err := h.services.Identify(c.Request.Context(), token)
		switch {
		case err == nil:
			id = verified
		case errors.Is(err, service.ErrRevocationUnavailable):
			h.log.Warnw("auth_revocation_unavailable", "path", c.Request.URL.Path, "err", err)
		default:
			h.log.Debugw("auth_token_rejected", "path", c.Request.URL.Path, "err", err)
			h.cookies.Clear(c)
		}
	}
	c.Set(identityKey, id)
	c.Next()
}

// identityFrom returns the identity set by identityMiddleware, or anonymous.
func identityFrom(c *gin.Context) models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(models.Identity); ok {
			return id
		}
	}
	return models.Anonymous
}

// requireLogin sends anonymous visitors of HTML pages to the login form.
func (h *Handler) requireLogin(c *gin.Context) {
	if !identityFrom(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

// requireAPIAuth rejects anonymous API calls with 401.
func (h *Handler) requireAPIAuth(c *gin.Context) {
	if !identityFrom(c).IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
		return
	}
	c.Next()
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
		"user", identityFrom(c).Username,
	)
}

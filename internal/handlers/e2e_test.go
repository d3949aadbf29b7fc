package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"sagesilk/internal/repository"
	"sagesilk/internal/repository/db"
	"sagesilk/internal/service"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newStackRouter wires the real repositories and services over a fresh SQLite file.
func newStackRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := db.InitDB(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repos := repository.NewRepository(conn)
	tokens, err := service.NewTokenManager("e2e-secret", service.DefaultTokenTTL, repos.Revocations)
	require.NoError(t, err)

	s := service.NewService(repos, service.Deps{
		Hasher: service.NewBcryptHasher(bcrypt.MinCost),
		Tokens: tokens,
	})
	return newTestRouter(s)
}

func sessionFromResponse(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	c := findCookie(w.Result(), sessionCookieName)
	require.NotNil(t, c, "session cookie missing")
	require.NotEmpty(t, c.Value)
	return c.Value
}

func TestStack_SignUpWelcomeLogout(t *testing.T) {
	r := newStackRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/signup", url.Values{
		"username": {"alice1"}, "email": {"A@B.com "}, "password": {"Abcdef12"},
	}))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, "/welcome", w.Header().Get("Location"))
	token := sessionFromResponse(t, w)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/welcome", nil), token))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Welcome, alice1!")

	// No cookie.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/welcome", nil))
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	// Tampered signature downgrades to anonymous and clears the cookie.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/welcome", nil), token+"x"))
	require.Equal(t, http.StatusFound, w.Code)
	cleared := findCookie(w.Result(), sessionCookieName)
	require.NotNil(t, cleared)
	require.Less(t, cleared.MaxAge, 0)

	// Same username and email again: both conflicts are reported.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/signup", url.Values{
		"username": {"alice1"}, "email": {"a@b.com"}, "password": {"Abcdef12"},
	}))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), htmlEscape(service.MsgUsernameTaken))
	require.Contains(t, w.Body.String(), htmlEscape(service.MsgEmailTaken))
	require.Nil(t, findCookie(w.Result(), sessionCookieName))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/logout", nil), token))
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	// The logged-out token is revoked.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/welcome", nil), token))
	require.Equal(t, http.StatusFound, w.Code)
}

func TestStack_LoginAndAudit(t *testing.T) {
	r := newStackRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/signup", url.Values{
		"username": {"bob22"}, "email": {"bob@example.com"}, "password": {"Passw0rdX"},
	}))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	// Wrong password and unknown user look the same.
	for _, form := range []url.Values{
		{"username": {"bob22"}, "password": {"wrongPass1"}},
		{"username": {"nobody"}, "password": {"Passw0rdX"}},
	} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, postForm("/login", form))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), service.MsgInvalidCredentials)
		require.Nil(t, findCookie(w.Result(), sessionCookieName))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/login", url.Values{"username": {"bob22"}, "password": {"Passw0rdX"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	token := sessionFromResponse(t, w)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil), token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeAudit(t, w)
	var types []string
	for _, e := range out.Events {
		require.Equal(t, "bob22", e.Username)
		types = append(types, e.Type)
	}
	require.Equal(t,
		[]string{service.AuditSignup, service.AuditLoginFailed, service.AuditLogin},
		types)
}

type auditPage struct {
	Count  int `json:"count"`
	Events []struct {
		Type     string `json:"type"`
		Username string `json:"username"`
		Metadata any    `json:"metadata"`
	} `json:"events"`
}

func decodeAudit(t *testing.T, w *httptest.ResponseRecorder) auditPage {
	t.Helper()
	var out auditPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, len(out.Events), out.Count)
	return out
}

func TestStack_AuditIsScopedToCaller(t *testing.T) {
	r := newStackRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/signup", url.Values{
		"username": {"victim1"}, "email": {"victim@example.com"}, "password": {"Passw0rdX"},
	}))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	for _, form := range []url.Values{
		{"username": {"victim1"}, "password": {"wrongPass1"}},
		{"username": {"ghost9"}, "password": {"wrongPass1"}},
	} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, postForm("/login", form))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/signup", url.Values{
		"username": {"mallory1"}, "email": {"m@example.com"}, "password": {"Passw0rdX"},
	}))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	mallory := sessionFromResponse(t, w)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/audit?type=LOGIN_FAILED", nil), mallory))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Zero(t, decodeAudit(t, w).Count, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil), mallory))
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeAudit(t, w)
	require.Len(t, out.Events, 1)
	require.Equal(t, "mallory1", out.Events[0].Username)
	require.NotContains(t, w.Body.String(), "victim1")
	require.NotContains(t, w.Body.String(), "ghost9")
	require.NotContains(t, w.Body.String(), "reason")
}

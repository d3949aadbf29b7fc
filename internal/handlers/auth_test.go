package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"sagesilk/internal/models"
	"sagesilk/internal/service"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSignUp_SuccessSetsCookieAndRedirects(t *testing.T) {
	auth := &mockAuth{signUpSession: service.Session{
		Token:    "tok123",
		Identity: models.Authenticated("alice1", "jti", time.Now().Add(time.Hour)),
	}}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/signup", url.Values{
		"username": {"alice1"}, "email": {"a@b.com"}, "password": {"Abcdef12"},
	}))

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/welcome" {
		t.Fatalf("expected 303 to /welcome, got %d %q", w.Code, w.Header().Get("Location"))
	}
	c := findCookie(w.Result(), sessionCookieName)
	if c == nil || c.Value != "tok123" || !c.HttpOnly || c.MaxAge != 86400 {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if auth.lastSignUp.Username != "alice1" || auth.lastSignUp.Email != "a@b.com" || auth.lastSignUp.Password != "Abcdef12" {
		t.Fatalf("form not passed through: %+v", auth.lastSignUp)
	}
}

func TestSignUp_ErrorsRerenderForm(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsgs []string
	}{
		{
			name:     "validation",
			err:      &service.Error{Kind: service.KindValidation, Messages: []string{service.MsgInvalidEmail, service.MsgWeakPassword}},
			wantCode: http.StatusOK,
			wantMsgs: []string{"Enter a valid email address.", "Password should be at least 8 characters"},
		},
		{
			name:     "conflict",
			err:      &service.Error{Kind: service.KindConflict, Messages: []string{service.MsgUsernameTaken}},
			wantCode: http.StatusOK,
			wantMsgs: []string{"This username is already taken."},
		},
		{
			name:     "internal",
			err:      errors.New("db down"),
			wantCode: http.StatusInternalServerError,
			wantMsgs: []string{service.MsgSignupFailed},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: &mockAuth{signUpErr: tc.err}})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, postForm("/signup", url.Values{
				"username": {"alice1"}, "email": {"bad"}, "password": {"x"},
			}))

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d", w.Code, tc.wantCode)
			}
			body := w.Body.String()
			for _, m := range tc.wantMsgs {
				if !strings.Contains(body, htmlEscape(m)) {
					t.Fatalf("body missing %q:\n%s", m, body)
				}
			}
			if !strings.Contains(body, `value="alice1"`) {
				t.Fatal("form should keep the submitted username")
			}
			if strings.Contains(body, "db down") {
				t.Fatal("internal error details must not leak")
			}
			if findCookie(w.Result(), sessionCookieName) != nil {
				t.Fatal("no session cookie on failure")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := &mockAuth{loginSession: service.Session{Token: "tok456"}}
		r := newTestRouter(&service.Service{Authorization: auth})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, postForm("/login", url.Values{"username": {"alice1"}, "password": {"Abcdef12"}}))

		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/welcome" {
			t.Fatalf("expected 303 to /welcome, got %d", w.Code)
		}
		if c := findCookie(w.Result(), sessionCookieName); c == nil || c.Value != "tok456" {
			t.Fatalf("unexpected cookie %+v", c)
		}
		if auth.lastLoginUsername != "alice1" || auth.lastLoginPassword != "Abcdef12" {
			t.Fatalf("credentials not passed through")
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		auth := &mockAuth{loginErr: &service.Error{
			Kind: service.KindAuthentication, Messages: []string{service.MsgInvalidCredentials}, Err: service.ErrInvalidCredentials,
		}}
		r := newTestRouter(&service.Service{Authorization: auth})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, postForm("/login", url.Values{"username": {"alice1"}, "password": {"nope"}}))

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d", w.Code)
		}
		if !strings.Contains(w.Body.String(), service.MsgInvalidCredentials) {
			t.Fatalf("expected generic message, body=%s", w.Body.String())
		}
	})

	t.Run("internal", func(t *testing.T) {
		r := newTestRouter(&service.Service{Authorization: &mockAuth{loginErr: errors.New("db down")}})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, postForm("/login", url.Values{"username": {"alice1"}, "password": {"x"}}))

		if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), service.MsgLoginFailed) {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestLogout_ClearsCookieAndRedirects(t *testing.T) {
	auth := loggedInAuth()
	r := newTestRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/logout", nil), "good"))

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if c := findCookie(w.Result(), sessionCookieName); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", c)
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0].Username != "alice1" {
		t.Fatalf("Logout should receive the current identity, got %+v", auth.loggedOut)
	}
}

func TestLogout_RevokeFailureStillClearsCookie(t *testing.T) {
	auth := loggedInAuth()
	auth.logoutErr = errors.New("redis down")
	r := newTestRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/logout", nil), "good"))

	if w.Code != http.StatusFound {
		t.Fatalf("status=%d", w.Code)
	}
	if c := findCookie(w.Result(), sessionCookieName); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", c)
	}
}

func TestWelcome(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: loggedInAuth()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/welcome", nil), "good"))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Welcome, alice1!") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/welcome", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous should be redirected, got %d", w.Code)
	}
}

func TestAuthForms_Render(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: loggedInAuth()})
	for _, path := range []string{"/signup", "/login"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `action="`+path+`"`) {
			t.Fatalf("%s: status=%d", path, w.Code)
		}
	}
}

// htmlEscape mirrors what html/template does to apostrophes in text.
func htmlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "&#39;")
}

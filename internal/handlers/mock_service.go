package handlers

import (
	"context"
	"net/http"
	"time"

	"sagesilk/internal/models"
	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpSession service.Session
	signUpErr     error
	loginSession  service.Session
	loginErr      error
	logoutErr     error

	// tokens maps a cookie value to the identity it resolves to.
	tokens map[string]models.Identity

	lastSignUp        service.SignUpInput
	lastLoginUsername string
	lastLoginPassword string
	loggedOut         []models.Identity
}

func (m *mockAuth) SignUp(_ context.Context, in service.SignUpInput) (service.Session, error) {
	m.lastSignUp = in
	return m.signUpSession, m.signUpErr
}

func (m *mockAuth) Login(_ context.Context, username, password string) (service.Session, error) {
	m.lastLoginUsername = username
	m.lastLoginPassword = password
	return m.loginSession, m.loginErr
}

func (m *mockAuth) Logout(_ context.Context, id models.Identity) error {
	m.loggedOut = append(m.loggedOut, id)
	return m.logoutErr
}

func (m *mockAuth) Identify(_ context.Context, token string) (models.Identity, error) {
	if id, ok := m.tokens[token]; ok {
		return id, nil
	}
	return models.Anonymous, service.ErrInvalidToken
}

type mockCatalog struct {
	products  []models.Product
	listErr   error
	byID      map[int64]models.Product
	createID  int64
	createErr error

	lastCategory    string
	lastSubcategory string
	lastCreate      models.NewProduct
}

func (m *mockCatalog) List(context.Context) ([]models.Product, error) {
	return m.products, m.listErr
}

func (m *mockCatalog) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	m.lastCategory = category
	return m.products, m.listErr
}

func (m *mockCatalog) ListBySubcategory(_ context.Context, category, subcategory string) ([]models.Product, error) {
	m.lastCategory, m.lastSubcategory = category, subcategory
	return m.products, m.listErr
}

func (m *mockCatalog) Get(_ context.Context, id int64) (*models.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, service.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockCatalog) Create(_ context.Context, p models.NewProduct) (int64, error) {
	m.lastCreate = p
	return m.createID, m.createErr
}

type mockAuditLog struct {
	resp     []models.AuditEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	lastUser string
}

func (m *mockAuditLog) List(_ context.Context, f service.LogFilter) ([]models.AuditEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastUser = f.Username
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

const testSessionSecret = "test-session-secret-0123456789abcdef"

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, Options{SessionSecret: testSessionSecret})
	return h.InitRoutes()
}

// withSession returns a request carrying the session cookie.
func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	return req
}

// loggedInAuth resolves the token "good" to alice1.
func loggedInAuth() *mockAuth {
	return &mockAuth{tokens: map[string]models.Identity{
		"good": models.Authenticated("alice1", "jti-1", time.Now().Add(time.Hour)),
	}}
}

package service

import (
	"context"
	"sync"
	"time"

	"sagesilk/internal/models"
)

// fakeUsers is a lightweight in-test mock for repository.Credentials.
type fakeUsers struct {
	CreateUserFn     func(username, email, hash string) (int64, error)
	FindByUsernameFn func(username string) (*models.User, error)
	FindByEmailFn    func(email string) (*models.User, error)

	createCalls []struct {
		username, email, hash string
	}
}

func (f *fakeUsers) CreateUser(_ context.Context, username, email, hash string) (int64, error) {
	f.createCalls = append(f.createCalls, struct{ username, email, hash string }{username, email, hash})
	if f.CreateUserFn == nil {
		return 1, nil
	}
	return f.CreateUserFn(username, email, hash)
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if f.FindByUsernameFn == nil {
		return nil, nil
	}
	return f.FindByUsernameFn(username)
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.FindByEmailFn == nil {
		return nil, nil
	}
	return f.FindByEmailFn(email)
}

// fakeAuditRepo records appended events and serves List from its fields.
type fakeAuditRepo struct {
	mu        sync.Mutex
	appended  []models.AuditEvent
	appendErr error

	gotFrom time.Time
	gotTo   time.Time
	gotType string
	gotUser string
	events  []models.AuditEvent
	err     error
	calls   int
}

func (f *fakeAuditRepo) Append(_ context.Context, e models.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeAuditRepo) List(_ context.Context, from, to time.Time, typ, username string) ([]models.AuditEvent, error) {
	f.calls++
	f.gotFrom, f.gotTo, f.gotType, f.gotUser = from, to, typ, username
	return f.events, f.err
}

func (f *fakeAuditRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

// fakeProducts serves products from a map keyed by ID.
type fakeProducts struct {
	byID      map[int64]models.Product
	list      []models.Product
	err       error
	createID  int64
	createErr error

	gotCategory    string
	gotSubcategory string
	created        []models.NewProduct
}

func (f *fakeProducts) List(context.Context) ([]models.Product, error) { return f.list, f.err }

func (f *fakeProducts) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	f.gotCategory = category
	return f.list, f.err
}

func (f *fakeProducts) ListBySubcategory(_ context.Context, category, subcategory string) ([]models.Product, error) {
	f.gotCategory, f.gotSubcategory = category, subcategory
	return f.list, f.err
}

func (f *fakeProducts) GetByID(_ context.Context, id int64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProducts) Create(_ context.Context, p models.NewProduct) (int64, error) {
	f.created = append(f.created, p)
	return f.createID, f.createErr
}

// memRevocations is an in-memory denylist.
type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemRevocations() *memRevocations {
	return &memRevocations{revoked: map[string]time.Time{}}
}

func (m *memRevocations) Revoke(_ context.Context, id string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[id] = exp
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[id]
	return ok, nil
}

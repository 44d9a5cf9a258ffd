package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/identities"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
)

// --- in-memory repositories ---

type memIdentities struct {
	mu   sync.Mutex
	byID map[string]*models.Identity

	// hideOnFind makes FindByEmail miss so Insert hits the unique index.
	hideOnFind bool
	findErr    error
	deleteErr  error
	deletes    int
	deleteCtx  []error
}

func newMemIdentities() *memIdentities {
	return &memIdentities{byID: map[string]*models.Identity{}}
}

func (m *memIdentities) count(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, i := range m.byID {
		if i.Email == email {
			n++
		}
	}
	return n
}

func (m *memIdentities) get(id string) (*models.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	cp := *i
	return &cp, true
}

func (m *memIdentities) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.hideOnFind {
		return nil, common.ErrorNotFound
	}
	for _, i := range m.byID {
		if i.Email == email {
			cp := *i
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memIdentities) FindByID(_ context.Context, id string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *i
	return &cp, nil
}

func (m *memIdentities) Insert(_ context.Context, identity *models.Identity) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.byID {
		if i.Email == identity.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	cp := *identity
	m.byID[identity.ID] = &cp
	return identity, nil
}

func (m *memIdentities) UpdateRoles(_ context.Context, email string, roles []models.Role) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.byID {
		if i.Email == email {
			i.Roles = append([]models.Role(nil), roles...)
			cp := *i
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memIdentities) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	i.Active = active
	return nil
}

func (m *memIdentities) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.deleteCtx = append(m.deleteCtx, ctx.Err())
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	_, ok := m.byID[id]
	delete(m.byID, id)
	return ok, nil
}

type memRefresh struct {
	mu     sync.Mutex
	byUser map[string]*models.RefreshRecord

	replaceErr error
}

func newMemRefresh() *memRefresh {
	return &memRefresh{byUser: map[string]*models.RefreshRecord{}}
}

func (m *memRefresh) ReplaceForUser(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.byUser[userID] = &models.RefreshRecord{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (m *memRefresh) Rotate(_ context.Context, userID, oldHash, newHash string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byUser[userID]
	if !ok || rec.Revoked || rec.TokenHash != oldHash {
		return false, nil
	}
	rec.TokenHash = newHash
	rec.ExpiresAt = expiresAt
	return true, nil
}

func (m *memRefresh) FindByValue(_ context.Context, tokenHash string) (*models.RefreshRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byUser {
		if r.TokenHash == tokenHash {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memRefresh) RevokeByValue(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for u, r := range m.byUser {
		if r.TokenHash == tokenHash {
			delete(m.byUser, u)
		}
	}
	return nil
}

func (m *memRefresh) RevokeForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byUser[userID]; ok {
		r.Revoked = true
	}
	return nil
}

func (m *memRefresh) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser)
}

type fakeRepoManager struct {
	ids *memIdentities
	rt  *memRefresh
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (f *fakeRepoManager) Identities(dbx.DBTX) identities.Repository       { return f.ids }
func (f *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return f.rt }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var testSecret = []byte(strings.Repeat("k", 64))

// countingStore is a cache.Store that tracks its size.
type countingStore struct {
	mu   sync.Mutex
	data map[string][]byte

	deleteErr error
}

func newCountingStore() *countingStore { return &countingStore{data: map[string][]byte{}} }

func (s *countingStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *countingStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *countingStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.data, key)
	return nil
}

func (s *countingStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

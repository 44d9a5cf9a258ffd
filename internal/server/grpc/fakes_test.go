package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// ---- fakes ----

// fakeEngine resolves access tokens through the principals map; unknown
// tokens are ErrTokenInvalid.
type fakeEngine struct {
	principals map[string]*services.Principal

	regResp *services.Registration
	regErr  error

	pair    *services.TokenPair
	pairErr error

	logoutErr error

	identity *models.Identity
	rolesErr error

	setActiveErr  error
	setActiveID   string
	setActiveTo   bool
	deleteErr     error
	deletedID     string
	lastRoles     []string
	lastLoginUser string
}

func (f *fakeEngine) Register(_ context.Context, email, _ string) (*services.Registration, error) {
	return f.regResp, f.regErr
}

func (f *fakeEngine) Login(_ context.Context, email, _ string) (*services.TokenPair, error) {
	f.lastLoginUser = email
	return f.pair, f.pairErr
}

func (f *fakeEngine) Refresh(context.Context, string) (*services.TokenPair, error) {
	return f.pair, f.pairErr
}

func (f *fakeEngine) Logout(context.Context, string) error { return f.logoutErr }

func (f *fakeEngine) Authenticate(_ context.Context, token string) (*services.Principal, error) {
	p, ok := f.principals[token]
	if !ok {
		return nil, common.ErrTokenInvalid
	}
	return p, nil
}

func (f *fakeEngine) UpdateRoles(_ context.Context, _ string, roles []string) (*models.Identity, error) {
	f.lastRoles = roles
	return f.identity, f.rolesErr
}

func (f *fakeEngine) SetActive(_ context.Context, id string, active bool) error {
	f.setActiveID, f.setActiveTo = id, active
	return f.setActiveErr
}

func (f *fakeEngine) DeleteCredentials(_ context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

func newFakeEngine() *fakeEngine {
	exp := time.Unix(1_700_000_900, 0).UTC()
	return &fakeEngine{
		principals: map[string]*services.Principal{
			adminToken: {UserID: "admin-1", Email: "root@example.com", Roles: []string{"USER", "ADMIN"}, ExpiresAt: exp},
			userToken:  {UserID: "user-1", Email: "joe@example.com", Roles: []string{"USER"}, ExpiresAt: exp},
		},
	}
}

package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, newFakeEngine(), "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, newFakeEngine(), "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

// startBufconn serves engine over an in-memory listener and returns a client.
func startBufconn(t *testing.T, engine Engine, internalToken string) *AuthServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("", logging.Nop{}, engine, internalToken)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return NewAuthServiceClient(conn)
}

func withBearer(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(),
		common.AuthorizationHeaderName, common.BearerPrefix+token)
}

func TestBufconn_Register(t *testing.T) {
	engine := newFakeEngine()
	engine.regResp = &services.Registration{
		IdentityID: "id-1",
		State:      services.StateComplete,
		Tokens:     &services.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}
	client := startBufconn(t, engine, "")

	resp, err := client.Register(context.Background(), &RegisterRequest{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, &RegisterResponse{IdentityID: "id-1", AccessToken: "a", RefreshToken: "r"}, resp)

	engine.regResp = &services.Registration{IdentityID: "id-2", State: services.StateRolledBack}
	engine.regErr = errors.Join(common.ErrProfileProvisioningFailed, errors.New("503"))
	_, err = client.Register(context.Background(), &RegisterRequest{Email: "b@example.com", Password: "password1"})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestBufconn_LoginRefreshLogout(t *testing.T) {
	engine := newFakeEngine()
	engine.pair = &services.TokenPair{AccessToken: "a", RefreshToken: "r"}
	client := startBufconn(t, engine, "")
	ctx := context.Background()

	resp, err := client.Login(ctx, &LoginRequest{Email: "joe@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.AccessToken)
	assert.Equal(t, "joe@example.com", engine.lastLoginUser)

	resp, err = client.Refresh(ctx, &RefreshRequest{RefreshToken: "r"})
	require.NoError(t, err)
	assert.Equal(t, "r", resp.RefreshToken)

	_, err = client.Logout(ctx, &LogoutRequest{RefreshToken: "r"})
	require.NoError(t, err)

	engine.pairErr = common.ErrInvalidCredentials
	_, err = client.Login(ctx, &LoginRequest{Email: "joe@example.com", Password: "bad"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid credentials", status.Convert(err).Message())

	engine.pairErr = common.ErrTokenRevoked
	_, err = client.Refresh(ctx, &RefreshRequest{RefreshToken: "old"})
	assert.Equal(t, "token revoked", status.Convert(err).Message())
}

func TestBufconn_Authenticate(t *testing.T) {
	client := startBufconn(t, newFakeEngine(), "")

	resp, err := client.Authenticate(context.Background(), &AuthenticateRequest{AccessToken: userToken})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, []string{"USER"}, resp.Roles)
	assert.True(t, resp.ExpiresAt.Equal(time.Unix(1_700_000_900, 0)))

	_, err = client.Authenticate(context.Background(), &AuthenticateRequest{AccessToken: "nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestBufconn_AdminMethods(t *testing.T) {
	engine := newFakeEngine()
	engine.identity = &models.Identity{ID: "user-1", Email: "joe@example.com", Roles: []models.Role{models.RoleUser, models.RoleAdmin}, Active: true}
	client := startBufconn(t, engine, "")

	req := &UpdateRolesRequest{Email: "joe@example.com", Roles: []string{"USER", "ADMIN"}}

	_, err := client.UpdateRoles(context.Background(), req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.UpdateRoles(withBearer(userToken), req)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Nil(t, engine.lastRoles, "engine must not be reached")

	resp, err := client.UpdateRoles(withBearer(adminToken), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"USER", "ADMIN"}, resp.Roles)

	_, err = client.SetActive(withBearer(adminToken), &SetActiveRequest{IdentityID: "user-1", Active: false})
	require.NoError(t, err)
	assert.Equal(t, "user-1", engine.setActiveID)
	assert.False(t, engine.setActiveTo)

	engine.setActiveErr = common.ErrUserNotFound
	_, err = client.SetActive(withBearer(adminToken), &SetActiveRequest{IdentityID: "ghost"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestBufconn_DeleteCredentials(t *testing.T) {
	engine := newFakeEngine()
	client := startBufconn(t, engine, "internal-secret")

	_, err := client.DeleteCredentials(context.Background(), &DeleteCredentialsRequest{IdentityID: "user-1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Empty(t, engine.deletedID)

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.InternalTokenHeaderName, "internal-secret")
	_, err = client.DeleteCredentials(ctx, &DeleteCredentialsRequest{IdentityID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", engine.deletedID)
}

func TestBufconn_DeleteCredentials_NoInternalTokenConfigured(t *testing.T) {
	engine := newFakeEngine()
	client := startBufconn(t, engine, "")

	_, err := client.DeleteCredentials(context.Background(), &DeleteCredentialsRequest{IdentityID: "user-1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Empty(t, engine.deletedID, "engine must not be reached")
}

func TestBufconn_Authenticate_DeletedSubjectLooksInvalid(t *testing.T) {
	engine := &deletedSubjectEngine{fakeEngine: newFakeEngine()}
	client := startBufconn(t, engine, "internal")

	_, errDeleted := client.Authenticate(context.Background(), &AuthenticateRequest{AccessToken: userToken})
	_, errGarbage := client.Authenticate(context.Background(), &AuthenticateRequest{AccessToken: "garbage"})

	assert.Equal(t, codes.Unauthenticated, status.Code(errDeleted))
	assert.Equal(t, status.Convert(errGarbage).Message(), status.Convert(errDeleted).Message())
}

// deletedSubjectEngine answers every well-formed token as if its subject
// had been deleted.
type deletedSubjectEngine struct {
	*fakeEngine
}

func (e *deletedSubjectEngine) Authenticate(ctx context.Context, token string) (*services.Principal, error) {
	if _, err := e.fakeEngine.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	return nil, common.ErrUserNotFound
}

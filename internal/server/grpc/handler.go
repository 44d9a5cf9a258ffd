package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// Engine is the slice of services.AuthService the transport calls.
type Engine interface {
	Register(ctx context.Context, email, password string) (*services.Registration, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*services.Principal, error)
	UpdateRoles(ctx context.Context, email string, roles []string) (*models.Identity, error)
	SetActive(ctx context.Context, id string, active bool) error
	DeleteCredentials(ctx context.Context, id string) error
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	reg, err := s.engine.Register(ctx, req.Email, req.Password)
	if err != nil {
		if reg != nil {
			s.logger.Info(ctx, "registration failed", "state", reg.State.String())
		}
		return nil, toStatus(err)
	}
	return &RegisterResponse{
		IdentityID:   reg.IdentityID,
		AccessToken:  reg.Tokens.AccessToken,
		RefreshToken: reg.Tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	pair, err := s.engine.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *RefreshRequest) (*TokenResponse, error) {
	pair, err := s.engine.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *LogoutRequest) (*Empty, error) {
	if err := s.engine.Logout(ctx, req.RefreshToken); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *AuthenticateRequest) (*AuthenticateResponse, error) {
	p, err := s.engine.Authenticate(ctx, req.AccessToken)
	if err != nil {
		// a deleted subject is reported like any other bad token
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, toStatus(common.ErrTokenInvalid)
		}
		return nil, toStatus(err)
	}
	return &AuthenticateResponse{UserID: p.UserID, Email: p.Email, Roles: p.Roles, ExpiresAt: p.ExpiresAt}, nil
}

func (s *GRPCServer) UpdateRoles(ctx context.Context, req *UpdateRolesRequest) (*IdentityResponse, error) {
	identity, err := s.engine.UpdateRoles(ctx, req.Email, req.Roles)
	if err != nil {
		return nil, toStatus(err)
	}
	if p, ok := PrincipalFromContext(ctx); ok {
		s.logger.Info(ctx, "roles updated", "identity_id", identity.ID, "by", p.UserID)
	}
	return &IdentityResponse{
		ID:     identity.ID,
		Email:  identity.Email,
		Roles:  identity.RoleStrings(),
		Active: identity.Active,
	}, nil
}

func (s *GRPCServer) SetActive(ctx context.Context, req *SetActiveRequest) (*Empty, error) {
	if err := s.engine.SetActive(ctx, req.IdentityID, req.Active); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) DeleteCredentials(ctx context.Context, req *DeleteCredentialsRequest) (*Empty, error) {
	if err := s.engine.DeleteCredentials(ctx, req.IdentityID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

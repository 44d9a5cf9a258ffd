package grpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

var adminMethods = map[string]bool{
	AuthService_UpdateRoles_FullMethodName: true,
	AuthService_SetActive_FullMethodName:   true,
}

var internalMethods = map[string]bool{
	AuthService_DeleteCredentials_FullMethodName: true,
}

// PrincipalFromContext returns the caller set by the access-token interceptor.
func PrincipalFromContext(ctx context.Context) (*services.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*services.Principal)
	return p, ok
}

func firstMD(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func bearerToken(ctx context.Context) string {
	h := firstMD(ctx, common.AuthorizationHeaderName)
	if len(h) < len(common.BearerPrefix) || !strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(common.BearerPrefix):])
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if adminMethods[info.FullMethod] {

		token := bearerToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		p, err := s.engine.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrTokenInvalid) || errors.Is(err, common.ErrUserNotFound) {
				return nil, status.Error(codes.Unauthenticated, "invalid token")
			}
			return nil, toStatus(err)
		}
		if !models.HasRole(p.Roles, models.RoleAdmin) {
			s.logger.Warn(ctx, "admin call denied", "method", info.FullMethod, "user_id", p.UserID)
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}

		ctx = context.WithValue(ctx, principalKey, p)
	}

	// an unset internal token rejects every internal call
	if internalMethods[info.FullMethod] {
		got := firstMD(ctx, common.InternalTokenHeaderName)
		if s.internalToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.internalToken)) != 1 {
			return nil, status.Error(codes.Unauthenticated, "invalid internal token")
		}
	}

	return handler(ctx, req)
}

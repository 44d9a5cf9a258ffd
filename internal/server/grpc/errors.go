package grpc

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps engine errors onto gRPC status codes. Messages are fixed
// strings so repository or provisioning details never reach the caller;
// validation messages are the exception since they only describe input.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, "identity already exists")
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrTokenInvalid):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrTokenRevoked):
		return status.Error(codes.Unauthenticated, "token revoked")
	case errors.Is(err, common.ErrAccountInactive):
		return status.Error(codes.PermissionDenied, "account is inactive")
	case errors.Is(err, common.ErrUserNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, common.ErrProfileProvisioningFailed):
		return status.Error(codes.Unavailable, "profile provisioning failed")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// Package common defines shared constants and sentinel errors used across
// the authentication service. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Credential errors.
	ErrDuplicateIdentity  = errors.New("identity already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors. Callers only ever learn "invalid" or "revoked".
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")

	// Registration saga errors.
	ErrProfileProvisioningFailed = errors.New("profile provisioning failed")
	ErrReconciliationRequired    = errors.New("manual reconciliation required")
)

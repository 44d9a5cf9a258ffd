// Package provisioning creates profile records in the companion user service
// during registration.
package provisioning

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/netx"
)

// CreatePath is the internal endpoint of the user service.
const CreatePath = "/api/user-service/users/internal/create"

// ProfileProvisioner creates the profile that mirrors a new identity.
type ProfileProvisioner interface {
	Create(ctx context.Context, authID, email string) error
}

type createProfileRequest struct {
	AuthID string `json:"authId"`
	Email  string `json:"email"`
}

// HTTPProvisioner calls the user service over HTTP. Every call is bounded by
// the configured timeout on top of the caller's context.
type HTTPProvisioner struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPProvisioner(baseURL string, timeout time.Duration) *HTTPProvisioner {
	return &HTTPProvisioner{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvisioner) Create(ctx context.Context, authID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := netx.PostJSON(ctx, p.client, p.baseURL+CreatePath, createProfileRequest{AuthID: authID, Email: email})
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

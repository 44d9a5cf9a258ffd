// Package auth issues and verifies signed bearer tokens and hashes passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest HMAC key accepted for HS512.
const MinSecretLength = 64

var (
	ErrWeakSigningKey = errors.New("signing key must be at least 64 bytes for HS512")
	ErrEmptyIssuer    = errors.New("issuer must not be empty")
)

// Kind tells access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the payload of every token minted by Codec.
type Claims struct {
	jwt.RegisteredClaims
	Kind  Kind     `json:"typ"`
	Roles []string `json:"roles,omitempty"`
}

// Codec signs and verifies HS512 tokens with a single shared key.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
	log    logging.Logger
}

type Option func(*Codec)

// WithClock replaces time.Now, mostly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Codec) { c.log = l }
}

// NewCodec builds a Codec. It fails when the secret is too short for HS512
// or the issuer is empty; callers treat both as fatal startup errors.
func NewCodec(secret []byte, issuer string, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSigningKey
	}
	if issuer == "" {
		return nil, ErrEmptyIssuer
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	c := &Codec{secret: key, issuer: issuer, now: time.Now, log: logging.Nop{}}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("module", "auth")
	return c, nil
}

// Issuer returns the configured issuer string.
func (c *Codec) Issuer() string { return c.issuer }

// Issue mints a token for subject valid for ttl. Roles are embedded only into
// access tokens.
func (c *Codec) Issue(subject string, roles []string, ttl time.Duration, kind Kind) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("empty subject")
	}
	if kind != KindAccess && kind != KindRefresh {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Kind: kind,
	}
	if kind == KindAccess && len(roles) > 0 {
		claims.Roles = append([]string(nil), roles...)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry. Every failure is reported as
// common.ErrTokenInvalid; the reason only goes to the debug log.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		c.reject("parse", err)
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid {
		c.reject("invalid", nil)
		return nil, common.ErrTokenInvalid
	}
	if claims.Subject == "" {
		c.reject("empty subject", nil)
		return nil, common.ErrTokenInvalid
	}

	return claims, nil
}

// VerifyKind is Verify plus a check of the token kind, so an access token
// cannot be presented where a refresh token is expected and vice versa.
func (c *Codec) VerifyKind(tokenString string, kind Kind) (*Claims, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		c.reject("kind mismatch", fmt.Errorf("want %s, got %s", kind, claims.Kind))
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}

func (c *Codec) reject(reason string, err error) {
	args := []any{"reason", reason}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	c.log.Debug(context.Background(), "token rejected", args...)
}

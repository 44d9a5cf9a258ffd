// Package services contains server-side business logic. This file implements
// AuthService: registration with profile provisioning and compensation,
// login, refresh-token rotation, logout and identity administration.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/provisioning"
	"github.com/dmitrijs2005/gophauth/internal/server/reconciliation"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DefaultCompensationTimeout bounds the compensating delete of a failed
// registration.
const DefaultCompensationTimeout = 5 * time.Second

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PasswordHasher creates and checks password verifiers.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Principal is the caller behind a verified access token.
type Principal struct {
	UserID string
	Email  string
	// Roles come from the token, so they may lag behind UpdateRoles until
	// the token expires.
	Roles     []string
	ExpiresAt time.Time
}

// AuthService is the authentication engine.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	provisioner provisioning.ProfileProvisioner

	hasher   PasswordHasher
	sink     reconciliation.Sink
	identity *cache.IdentityCache
	log      logging.Logger
	now      func() time.Time
	newID    func() string

	accessTTL           time.Duration
	refreshTTL          time.Duration
	provisionTimeout    time.Duration
	compensationTimeout time.Duration

	// dummyHash is compared against for unknown e-mails so both login
	// failures cost one bcrypt comparison.
	dummyHash string
}

type Option func(*AuthService)

func WithHasher(h PasswordHasher) Option       { return func(s *AuthService) { s.hasher = h } }
func WithSink(sink reconciliation.Sink) Option { return func(s *AuthService) { s.sink = sink } }
func WithIdentityCache(c *cache.IdentityCache) Option {
	return func(s *AuthService) { s.identity = c }
}
func WithLogger(l logging.Logger) Option     { return func(s *AuthService) { s.log = l } }
func WithClock(now func() time.Time) Option  { return func(s *AuthService) { s.now = now } }
func WithIDGenerator(f func() string) Option { return func(s *AuthService) { s.newID = f } }
func WithCompensationTimeout(d time.Duration) Option {
	return func(s *AuthService) { s.compensationTimeout = d }
}

// NewAuthService wires the engine. TTLs and the provisioning timeout come
// from cfg; everything else has a default that the options override.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec,
	provisioner provisioning.ProfileProvisioner, cfg *config.Config, opts ...Option) *AuthService {
	s := &AuthService{
		db:                  db,
		repomanager:         m,
		codec:               codec,
		provisioner:         provisioner,
		hasher:              auth.NewBcryptHasher(0),
		log:                 logging.Nop{},
		now:                 time.Now,
		newID:               uuid.NewString,
		accessTTL:           cfg.AccessTokenValidityDuration,
		refreshTTL:          cfg.RefreshTokenValidityDuration,
		provisionTimeout:    cfg.ProvisionTimeout,
		compensationTimeout: DefaultCompensationTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("module", "auth_service")
	if s.sink == nil {
		s.sink = reconciliation.NewLogSink(s.log)
	}
	if s.identity == nil {
		s.identity = cache.NewIdentityCache(nil, 0, s.log)
	}

	filler, err := common.MakeRandHexString(16)
	if err == nil {
		s.dummyHash, _ = s.hasher.Hash(filler)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an identity, provisions its profile and returns the first
// token pair. The returned Registration is non-nil even on failure and tells
// how far the attempt got.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Registration, error) {
	reg := &Registration{State: StateStart}

	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return reg, err
	}

	identities := s.repomanager.Identities(s.db)

	_, err := identities.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return reg, common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrorNotFound):
		s.log.Error(ctx, "lookup identity failed", "error", err.Error())
		return reg, common.ErrorInternal
	}

	verifier, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error(ctx, "hash password failed", "error", err.Error())
		return reg, common.ErrorInternal
	}

	identity := &models.Identity{
		ID:               s.newID(),
		Email:            email,
		PasswordVerifier: verifier,
		Roles:            models.DefaultRoles(),
		Active:           true,
	}
	if _, err := identities.Insert(ctx, identity); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return reg, common.ErrDuplicateIdentity
		}
		s.log.Error(ctx, "insert identity failed", "error", err.Error())
		return reg, common.ErrorInternal
	}
	reg.IdentityID = identity.ID
	reg.State = StateIdentityReserved

	if err := s.provision(ctx, identity); err != nil {
		return reg, s.compensate(ctx, reg, identity, err)
	}
	reg.State = StateProfileProvisioned

	pair, hash, expiresAt, err := s.mint(identity)
	if err == nil {
		err = s.repomanager.RefreshTokens(s.db).ReplaceForUser(ctx, identity.ID, hash, expiresAt)
	}
	if err != nil {
		// The profile exists, so the identity stays; the user can log in.
		s.log.Error(ctx, "issue tokens after registration failed", "identity_id", identity.ID, "error", err.Error())
		return reg, common.ErrorInternal
	}

	reg.Tokens = pair
	reg.State = StateComplete
	s.log.Info(ctx, "identity registered", "identity_id", identity.ID)
	return reg, nil
}

func (s *AuthService) provision(ctx context.Context, identity *models.Identity) error {
	if s.provisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.provisionTimeout)
		defer cancel()
	}
	return s.provisioner.Create(ctx, identity.ID, identity.Email)
}

// compensate deletes the reserved identity. It runs detached from the
// caller's cancellation so an aborted request still rolls back.
func (s *AuthService) compensate(ctx context.Context, reg *Registration, identity *models.Identity, cause error) error {
	failure := fmt.Errorf("%w: %w", common.ErrProfileProvisioningFailed, cause)

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	_, err := s.repomanager.Identities(s.db).Delete(cctx, identity.ID)
	if err == nil {
		reg.State = StateRolledBack
		s.log.Warn(ctx, "registration rolled back", "identity_id", identity.ID, "cause", cause.Error())
		return failure
	}

	reg.State = StateReconciliationRequired
	s.log.Error(ctx, "manual reconciliation required",
		"identity_id", identity.ID,
		"cause", cause.Error(),
		"error", fmt.Errorf("%w: %w", common.ErrReconciliationRequired, err).Error(),
	)

	orphan := reconciliation.Orphan{
		IdentityID:  identity.ID,
		Email:       identity.Email,
		Cause:       cause.Error(),
		RollbackErr: err.Error(),
		DetectedAt:  s.now(),
	}
	if rerr := s.sink.Report(cctx, orphan); rerr != nil {
		s.log.Error(ctx, "reconciliation report failed", "identity_id", identity.ID, "error", rerr.Error())
	}
	return failure
}

// Login checks credentials and replaces the user's refresh token. Unknown
// e-mail and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)

	identity, err := s.repomanager.Identities(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "lookup identity failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if err := s.hasher.Compare(identity.PasswordVerifier, password); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !identity.Active {
		return nil, common.ErrAccountInactive
	}

	pair, hash, expiresAt, err := s.mint(identity)
	if err != nil {
		s.log.Error(ctx, "issue tokens failed", "identity_id", identity.ID, "error", err.Error())
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(s.db).ReplaceForUser(ctx, identity.ID, hash, expiresAt); err != nil {
		s.log.Error(ctx, "store refresh token failed", "identity_id", identity.ID, "error", err.Error())
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// Refresh exchanges a current refresh token for a new pair. A token that was
// already rotated away, revoked, or lost a concurrent rotation is
// ErrTokenRevoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.VerifyKind(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}

	tokens := s.repomanager.RefreshTokens(s.db)
	oldHash := common.HashToken(refreshToken)

	rec, err := tokens.FindByValue(ctx, oldHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "refresh token reuse or unknown token", "subject", claims.Subject)
			return nil, common.ErrTokenRevoked
		}
		s.log.Error(ctx, "lookup refresh token failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	if rec.Revoked || rec.UserID != claims.Subject {
		return nil, common.ErrTokenRevoked
	}

	// the live record proves the identity exists (deletion cascades to it),
	// so the cached copy only supplies roles
	identity, err := s.identity.Get(ctx, claims.Subject, s.loadIdentity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		s.log.Error(ctx, "lookup identity failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	pair, newHash, expiresAt, err := s.mint(identity)
	if err != nil {
		s.log.Error(ctx, "issue tokens failed", "identity_id", identity.ID, "error", err.Error())
		return nil, common.ErrorInternal
	}

	ok, err := tokens.Rotate(ctx, identity.ID, oldHash, newHash, expiresAt)
	if err != nil {
		s.log.Error(ctx, "rotate refresh token failed", "identity_id", identity.ID, "error", err.Error())
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrTokenRevoked
	}
	return pair, nil
}

// Logout deletes the record of the refresh token. Unknown and malformed
// tokens are a successful no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).RevokeByValue(ctx, common.HashToken(refreshToken)); err != nil {
		s.log.Error(ctx, "revoke refresh token failed", "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}

// UpdateRoles replaces the roles of the identity with the e-mail. Access
// tokens already issued keep their roles until they expire.
func (s *AuthService) UpdateRoles(ctx context.Context, email string, roles []string) (*models.Identity, error) {
	parsed, ok := models.ParseRoles(roles)
	if !ok || len(parsed) == 0 {
		return nil, fmt.Errorf("%w: roles must be a non-empty set of known tags", common.ErrValidation)
	}

	identity, err := s.repomanager.Identities(s.db).UpdateRoles(ctx, normalizeEmail(email), parsed)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		s.log.Error(ctx, "update roles failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	if err := s.invalidate(ctx, identity.ID); err != nil {
		return nil, err
	}

	identity.PasswordVerifier = ""
	return identity, nil
}

// SetActive disables or re-enables an identity. Disabling also revokes its
// refresh token in the same transaction; access tokens stay valid until they
// expire.
func (s *AuthService) SetActive(ctx context.Context, id string, active bool) error {
	if !validID(id) {
		return common.ErrUserNotFound
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Identities(tx).SetActive(ctx, id, active); err != nil {
			return err
		}
		if !active {
			return s.repomanager.RefreshTokens(tx).RevokeForUser(ctx, id)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		s.log.Error(ctx, "set active failed", "identity_id", id, "error", err.Error())
		return common.ErrorInternal
	}
	if err := s.invalidate(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "identity activation changed", "identity_id", id, "active", active)
	return nil
}

// DeleteCredentials hard-deletes the identity. It is called by the user
// service after it deleted the profile, and is idempotent: unknown and
// malformed ids succeed. A failed cache invalidation is an error so the
// caller retries.
func (s *AuthService) DeleteCredentials(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}

	removed, err := s.repomanager.Identities(s.db).Delete(ctx, id)
	if err != nil {
		s.log.Error(ctx, "delete identity failed", "identity_id", id, "error", err.Error())
		return common.ErrorInternal
	}
	if err := s.invalidate(ctx, id); err != nil {
		return err
	}
	if removed {
		s.log.Info(ctx, "identity deleted", "identity_id", id)
	}
	return nil
}

// Authenticate verifies an access token and checks against the database
// that its subject still exists. The identity cache is not consulted, so a
// deletion takes effect on the next call. Deactivation is not consulted.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.codec.VerifyKind(accessToken, auth.KindAccess)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}

	identity, err := s.loadIdentity(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		s.log.Error(ctx, "lookup identity failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	p := &Principal{UserID: identity.ID, Email: identity.Email, Roles: claims.Roles}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (s *AuthService) loadIdentity(ctx context.Context, id string) (*models.Identity, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Identities(s.db).FindByID(ctx, id)
}

// invalidate drops the cached identity. The database change is already
// committed, so a failure leaves a stale entry and is reported as internal.
func (s *AuthService) invalidate(ctx context.Context, id string) error {
	if err := s.identity.Invalidate(ctx, id); err != nil {
		s.log.Error(ctx, "identity cache invalidation failed", "identity_id", id, "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}

// validID reports whether id can name an identity; ids are UUIDs.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// mint issues an access/refresh pair and returns the refresh token hash and
// expiry to persist.
func (s *AuthService) mint(identity *models.Identity) (*TokenPair, string, time.Time, error) {
	access, err := s.codec.Issue(identity.ID, identity.RoleStrings(), s.accessTTL, auth.KindAccess)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	refresh, err := s.codec.Issue(identity.ID, nil, s.refreshTTL, auth.KindRefresh)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, common.HashToken(refresh), s.now().Add(s.refreshTTL), nil
}

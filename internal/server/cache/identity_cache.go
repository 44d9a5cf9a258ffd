package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "gophauth:identity:"

// Loader fetches an identity from the source of truth.
type Loader func(ctx context.Context, id string) (*models.Identity, error)

// cachedIdentity is what goes to Redis. The password verifier never does.
type cachedIdentity struct {
	ID     string        `json:"id"`
	Email  string        `json:"email"`
	Roles  []models.Role `json:"roles"`
	Active bool          `json:"active"`
}

// IdentityCache is a read-through cache of identities keyed by id.
// Concurrent misses for the same id share one load. A nil store turns it
// into a pass-through that still collapses concurrent loads.
type IdentityCache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
	log   logging.Logger
}

func NewIdentityCache(store Store, ttl time.Duration, l logging.Logger) *IdentityCache {
	if l == nil {
		l = logging.Nop{}
	}
	return &IdentityCache{store: store, ttl: ttl, log: l.With("module", "cache")}
}

func key(id string) string { return keyPrefix + id }

// Get returns the cached identity or calls load. Store failures degrade to a
// direct load. Loader errors, including not-found, are not cached.
// The returned identity never carries the password verifier.
func (c *IdentityCache) Get(ctx context.Context, id string, load Loader) (*models.Identity, error) {
	if c.store != nil {
		b, err := c.store.Get(ctx, key(id))
		if err != nil {
			c.log.Warn(ctx, "identity cache read failed", "identity_id", id, "error", err.Error())
		} else if b != nil {
			var ci cachedIdentity
			if err := json.Unmarshal(b, &ci); err == nil {
				return ci.identity(), nil
			}
			c.log.Warn(ctx, "identity cache entry corrupt", "identity_id", id)
		}
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		i, err := load(ctx, id)
		if err != nil {
			return nil, err
		}
		ci := cachedIdentity{ID: i.ID, Email: i.Email, Roles: i.Roles, Active: i.Active}
		c.put(ctx, ci)
		return &ci, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cachedIdentity).identity(), nil
}

// Invalidate drops the entry for id.
func (c *IdentityCache) Invalidate(ctx context.Context, id string) error {
	if c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, key(id))
}

func (c *IdentityCache) put(ctx context.Context, ci cachedIdentity) {
	if c.store == nil {
		return
	}
	b, err := json.Marshal(ci)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key(ci.ID), b, c.ttl); err != nil {
		c.log.Warn(ctx, "identity cache write failed", "identity_id", ci.ID, "error", err.Error())
	}
}

func (ci *cachedIdentity) identity() *models.Identity {
	return &models.Identity{
		ID:     ci.ID,
		Email:  ci.Email,
		Roles:  append([]models.Role(nil), ci.Roles...),
		Active: ci.Active,
	}
}

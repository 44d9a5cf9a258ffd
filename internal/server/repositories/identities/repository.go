// Package identities declares the credential store: persistence of user
// identities keyed by id and by unique e-mail.
package identities

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// FindByEmail returns common.ErrorNotFound when no identity has the e-mail.
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	// FindByID returns common.ErrorNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	// Insert fails with common.ErrorAlreadyExists if the e-mail is taken.
	Insert(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	// UpdateRoles replaces the roles of the identity with the e-mail.
	UpdateRoles(ctx context.Context, email string, roles []models.Role) (*models.Identity, error)
	SetActive(ctx context.Context, id string, active bool) error
	// Delete removes the identity. It is idempotent and reports whether a
	// row was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

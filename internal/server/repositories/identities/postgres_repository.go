package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const identityColumns = `id, email, password_verifier, roles, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*models.Identity, error) {
	var (
		i     models.Identity
		roles []string
	)
	err := row.Scan(&i.ID, &i.Email, &i.PasswordVerifier, pgtype.NewMap().SQLScanner(&roles),
		&i.Active, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Roles = make([]models.Role, len(roles))
	for n, r := range roles {
		i.Roles[n] = models.Role(r)
	}
	return &i, nil
}

func roleStrings(roles []models.Role) []string {
	out := make([]string, len(roles))
	for n, r := range roles {
		out[n] = string(r)
	}
	return out
}

func mapReadErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE email = $1
	`
	i, err := scanIdentity(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapReadErr(err)
	}
	return i, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE id = $1
	`
	i, err := scanIdentity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapReadErr(err)
	}
	return i, nil
}

// Insert stores identity and fills its timestamps. A unique violation on the
// e-mail index is reported as common.ErrorAlreadyExists.
func (r *PostgresRepository) Insert(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	query := `
		INSERT INTO identities (id, email, password_verifier, roles, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		identity.ID, identity.Email, identity.PasswordVerifier, roleStrings(identity.Roles), identity.Active,
	).Scan(&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return identity, nil
}

func (r *PostgresRepository) UpdateRoles(ctx context.Context, email string, roles []models.Role) (*models.Identity, error) {
	query := `
		UPDATE identities
		SET roles = $2, updated_at = now()
		WHERE email = $1
		RETURNING ` + identityColumns
	i, err := scanIdentity(r.db.QueryRowContext(ctx, query, email, roleStrings(roles)))
	if err != nil {
		return nil, mapReadErr(err)
	}
	return i, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `
		UPDATE identities
		SET active = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `
		DELETE FROM identities
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

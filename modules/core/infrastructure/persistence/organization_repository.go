package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/organization"
	"github.com/sanifleet/sanifleet/pkg/composables"
)

var ErrSlugTaken = fmt.Errorf("organization slug already taken")

const (
	orgFindQuery = `SELECT id, external_id, name, slug, is_active, created_at, updated_at FROM organizations`
)

type OrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &OrganizationRepository{}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	return r.queryOne(ctx, orgFindQuery+" WHERE id = $1", id)
}

func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	return r.queryOne(ctx, orgFindQuery+" WHERE slug = $1", strings.ToLower(strings.TrimSpace(slug)))
}

func (r *OrganizationRepository) GetByExternalID(ctx context.Context, externalID string) (*organization.Organization, error) {
	return r.queryOne(ctx, orgFindQuery+" WHERE external_id = $1", externalID)
}

func (r *OrganizationRepository) Create(ctx context.Context, o *organization.Organization) (*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	slug := strings.ToLower(strings.TrimSpace(o.Slug()))
	query := `
		INSERT INTO organizations (id, external_id, name, slug, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var idStr string
	err = tx.QueryRow(
		ctx,
		query,
		o.ID().String(),
		o.ExternalID(),
		o.Name(),
		slug,
		o.IsActive(),
		o.CreatedAt(),
		o.UpdatedAt(),
	).Scan(&idStr)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %s", ErrSlugTaken, slug)
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update never touches the slug: the subdomain slug is immutable once
// assigned.
func (r *OrganizationRepository) Update(ctx context.Context, o *organization.Organization) (*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE organizations
		SET name = $1, is_active = $2, updated_at = $3
		WHERE id = $4
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(ctx, query, o.Name(), o.IsActive(), o.UpdatedAt(), o.ID().String()).Scan(&idStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, o.ID())
}

// UpdateExternalID re-points an existing slug at a different identity
// provider organization. This is the only way a slug's external binding can
// change; Create with a taken slug is a conflict.
func (r *OrganizationRepository) UpdateExternalID(ctx context.Context, id uuid.UUID, externalID string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE organizations SET external_id = $1, updated_at = $2 WHERE id = $3`, externalID, time.Now(), id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes. Organizations are never hard-deleted while
// tenant data references them.
func (r *OrganizationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE organizations SET is_active = false, updated_at = $1 WHERE id = $2`, time.Now(), id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}

func (r *OrganizationRepository) queryOne(ctx context.Context, query string, args ...any) (*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs, err := scanOrganizations(rows)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, organization.ErrNotFound
	}
	return orgs[0], nil
}

func scanOrganizations(rows pgx.Rows) ([]*organization.Organization, error) {
	var out []*organization.Organization
	for rows.Next() {
		var m OrganizationModel
		if err := rows.Scan(&m.ID, &m.ExternalID, &m.Name, &m.Slug, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		o, err := m.ToEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

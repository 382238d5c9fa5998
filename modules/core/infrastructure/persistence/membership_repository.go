package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/membership"
	"github.com/sanifleet/sanifleet/pkg/composables"
)

const membershipFindQuery = `
	SELECT id, org_id, user_id, external_user_id, role, created_at, updated_at
	FROM organization_members
`

type MembershipRepository struct{}

func NewMembershipRepository() membership.Repository {
	return &MembershipRepository{}
}

// FindByUser queries both join keys concurrently and prefers whichever
// returned a row, the internal user id winning when both did. Identity
// mapping between our ids and the provider's is not always settled when a
// caller reaches the gate, so a sequential fallback would pay both lookups'
// latency on every miss.
func (r *MembershipRepository) FindByUser(ctx context.Context, orgID uuid.UUID, userID, externalUserID string) (*membership.Membership, error) {
	if userID == "" && externalUserID == "" {
		return nil, membership.ErrNotFound
	}
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return nil, err
	}

	var byInternal, byExternal *membership.Membership
	g, gctx := errgroup.WithContext(ctx)

	if userID != "" {
		g.Go(func() error {
			m, err := r.queryOne(gctx, pool, membershipFindQuery+" WHERE org_id = $1 AND user_id = $2", orgID.String(), userID)
			if err != nil && !errors.Is(err, membership.ErrNotFound) {
				return err
			}
			byInternal = m
			return nil
		})
	}
	if externalUserID != "" {
		g.Go(func() error {
			m, err := r.queryOne(gctx, pool, membershipFindQuery+" WHERE org_id = $1 AND external_user_id = $2", orgID.String(), externalUserID)
			if err != nil && !errors.Is(err, membership.ErrNotFound) {
				return err
			}
			byExternal = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if byInternal != nil {
		return byInternal, nil
	}
	if byExternal != nil {
		return byExternal, nil
	}
	return nil, membership.ErrNotFound
}

// Upsert keeps the one-active-role-per-user-per-org invariant through the
// unique (org_id, user_id) index.
func (r *MembershipRepository) Upsert(ctx context.Context, m *membership.Membership) (*membership.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO organization_members (id, org_id, user_id, external_user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (org_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, external_user_id = EXCLUDED.external_user_id, updated_at = EXCLUDED.updated_at
		RETURNING id, org_id, user_id, external_user_id, role, created_at, updated_at
	`
	row := tx.QueryRow(ctx, query, m.ID.String(), m.OrgID.String(), m.UserID, m.ExternalUserID, m.RoleValue, time.Now())
	return scanMembership(row)
}

func (r *MembershipRepository) Remove(ctx context.Context, orgID uuid.UUID, userID string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM organization_members WHERE org_id = $1 AND user_id = $2`, orgID.String(), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return membership.ErrNotFound
	}
	return nil
}

func (r *MembershipRepository) queryOne(ctx context.Context, tx composables.Tx, query string, args ...any) (*membership.Membership, error) {
	row := tx.QueryRow(ctx, query, args...)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, membership.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanMembership(row pgx.Row) (*membership.Membership, error) {
	var m MembershipModel
	if err := row.Scan(&m.ID, &m.OrgID, &m.UserID, &m.ExternalUserID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m.ToEntity()
}

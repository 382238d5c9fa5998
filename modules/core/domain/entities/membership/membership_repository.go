package membership

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// FindByUser resolves a user's membership within an organization by
	// either join key: the internal user id or the identity-provider user
	// id. Callers may hold either; both are tried.
	FindByUser(ctx context.Context, orgID uuid.UUID, userID, externalUserID string) (*Membership, error)
	Upsert(ctx context.Context, m *Membership) (*Membership, error)
	Remove(ctx context.Context, orgID uuid.UUID, userID string) error
}

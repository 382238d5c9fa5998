package organization

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	GetByExternalID(ctx context.Context, externalID string) (*Organization, error)
	Create(ctx context.Context, o *Organization) (*Organization, error)
	Update(ctx context.Context, o *Organization) (*Organization, error)
	UpdateExternalID(ctx context.Context, id uuid.UUID, externalID string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/organization"
	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/eventbus"
	"github.com/sanifleet/sanifleet/pkg/tenanthost"
)

type OrganizationDeactivatedEvent struct {
	OrgID uuid.UUID
	Slug  string
}

type OrganizationService struct {
	repo      organization.Repository
	publisher eventbus.EventBus
}

func NewOrganizationService(repo organization.Repository, publisher eventbus.EventBus) *OrganizationService {
	return &OrganizationService{repo: repo, publisher: publisher}
}

// TenantIDBySlug resolves a subdomain slug to the tenant id. Deactivated
// organizations resolve as not found: a dead tenant's subdomain must not
// keep serving data.
func (s *OrganizationService) TenantIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	o, err := s.ResolveSlug(ctx, slug)
	if err != nil {
		return uuid.Nil, err
	}
	return o.ID(), nil
}

func (s *OrganizationService) ResolveSlug(ctx context.Context, slug string) (*organization.Organization, error) {
	o, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !o.IsActive() {
		return nil, organizationNotFoundError(slug)
	}
	return o, nil
}

func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

type CreateOrganizationParams struct {
	Name       string
	Slug       string
	ExternalID string
}

func (s *OrganizationService) Create(ctx context.Context, p CreateOrganizationParams) (*organization.Organization, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	if p.Name == "" {
		return nil, NewServiceError(http.StatusBadRequest, "ORG_INVALID_BODY", "name is required", nil)
	}
	if !tenanthost.ValidSlug(p.Slug) {
		return nil, NewServiceError(http.StatusBadRequest, "ORG_INVALID_SLUG", fmt.Sprintf("invalid slug %q", p.Slug), nil)
	}

	// The organizations directory is not tenant-scoped: provisioning runs
	// before any tenant context exists.
	var created *organization.Organization
	err := composables.InTxGlobal(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, organization.New(
			p.Name,
			p.Slug,
			organization.WithExternalID(p.ExternalID),
		))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *OrganizationService) Deactivate(ctx context.Context, id uuid.UUID) error {
	var slug string
	err := composables.InTxGlobal(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		slug = o.Slug()
		return s.repo.Deactivate(txCtx, id)
	})
	if err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.Publish(&OrganizationDeactivatedEvent{OrgID: id, Slug: slug})
	}
	return nil
}

type SyncOrganizationParams struct {
	ExternalID string
	Name       string
	Slug       string
}

// Sync upserts an organization from the external identity provider. Matching
// is by slug; when the slug already exists under a different external org id
// the binding is re-pointed through the explicit update path and logged —
// never recreated.
func (s *OrganizationService) Sync(ctx context.Context, p SyncOrganizationParams) (*organization.Organization, error) {
	existing, err := s.repo.GetBySlug(ctx, p.Slug)
	if err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			return s.Create(ctx, CreateOrganizationParams{
				Name:       p.Name,
				Slug:       p.Slug,
				ExternalID: p.ExternalID,
			})
		}
		return nil, err
	}

	if existing.ExternalID() != p.ExternalID {
		logger := composables.UseLogger(ctx)
		logger.WithField("slug", p.Slug).
			WithField("old_external_id", existing.ExternalID()).
			WithField("new_external_id", p.ExternalID).
			Warn("re-pointing organization slug to a different external org")
		if err := composables.InTxGlobal(ctx, func(txCtx context.Context) error {
			return s.repo.UpdateExternalID(txCtx, existing.ID(), p.ExternalID)
		}); err != nil {
			return nil, err
		}
	}

	if p.Name != "" && p.Name != existing.Name() {
		existing.SetName(p.Name)
		if err := composables.InTxGlobal(ctx, func(txCtx context.Context) error {
			_, err := s.repo.Update(txCtx, existing)
			return err
		}); err != nil {
			return nil, err
		}
	}

	return s.repo.GetByID(ctx, existing.ID())
}

func organizationNotFoundError(slug string) *ServiceError {
	return NewServiceError(http.StatusNotFound, "ORG_NOT_FOUND", fmt.Sprintf("organization %q not found", slug), nil)
}

package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/organization"
)

type fakeOrgRepo struct {
	bySlug map[string]*organization.Organization
	byID   map[uuid.UUID]*organization.Organization
}

func newFakeOrgRepo(orgs ...*organization.Organization) *fakeOrgRepo {
	r := &fakeOrgRepo{
		bySlug: map[string]*organization.Organization{},
		byID:   map[uuid.UUID]*organization.Organization{},
	}
	for _, o := range orgs {
		r.bySlug[o.Slug()] = o
		r.byID[o.ID()] = o
	}
	return r
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*organization.Organization, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, organization.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrgRepo) GetBySlug(_ context.Context, slug string) (*organization.Organization, error) {
	o, ok := r.bySlug[slug]
	if !ok {
		return nil, organization.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrgRepo) GetByExternalID(_ context.Context, externalID string) (*organization.Organization, error) {
	for _, o := range r.byID {
		if o.ExternalID() == externalID {
			return o, nil
		}
	}
	return nil, organization.ErrNotFound
}

func (r *fakeOrgRepo) Create(_ context.Context, o *organization.Organization) (*organization.Organization, error) {
	r.bySlug[o.Slug()] = o
	r.byID[o.ID()] = o
	return o, nil
}

func (r *fakeOrgRepo) Update(_ context.Context, o *organization.Organization) (*organization.Organization, error) {
	r.byID[o.ID()] = o
	r.bySlug[o.Slug()] = o
	return o, nil
}

func (r *fakeOrgRepo) UpdateExternalID(_ context.Context, id uuid.UUID, externalID string) error {
	o, ok := r.byID[id]
	if !ok {
		return organization.ErrNotFound
	}
	updated := organization.New(o.Name(), o.Slug(), organization.WithID(id), organization.WithExternalID(externalID))
	r.byID[id] = updated
	r.bySlug[o.Slug()] = updated
	return nil
}

func (r *fakeOrgRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	o, ok := r.byID[id]
	if !ok {
		return organization.ErrNotFound
	}
	o.Deactivate()
	return nil
}

func TestTenantIDBySlug_ActiveOrganization(t *testing.T) {
	org := organization.New("Acme Events", "acme")
	svc := NewOrganizationService(newFakeOrgRepo(org), nil)

	id, err := svc.TenantIDBySlug(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, org.ID(), id)
}

func TestTenantIDBySlug_UnknownSlug(t *testing.T) {
	svc := NewOrganizationService(newFakeOrgRepo(), nil)

	_, err := svc.TenantIDBySlug(context.Background(), "ghost")

	assert.ErrorIs(t, err, organization.ErrNotFound)
}

func TestTenantIDBySlug_DeactivatedOrganizationIsNotFound(t *testing.T) {
	org := organization.New("Gone Corp", "gone")
	org.Deactivate()
	svc := NewOrganizationService(newFakeOrgRepo(org), nil)

	_, err := svc.TenantIDBySlug(context.Background(), "gone")

	requireServiceError(t, err, http.StatusNotFound, "ORG_NOT_FOUND")
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc := NewOrganizationService(newFakeOrgRepo(), nil)

	_, err := svc.Create(context.Background(), CreateOrganizationParams{Slug: "acme"})
	requireServiceError(t, err, http.StatusBadRequest, "ORG_INVALID_BODY")

	_, err = svc.Create(context.Background(), CreateOrganizationParams{Name: "Acme", Slug: "Bad Slug!"})
	requireServiceError(t, err, http.StatusBadRequest, "ORG_INVALID_SLUG")
}

func TestSync_NoChangesMakesNoWrites(t *testing.T) {
	org := organization.New("Acme Events", "acme", organization.WithExternalID("ext-1"))
	repo := newFakeOrgRepo(org)
	svc := NewOrganizationService(repo, nil)

	synced, err := svc.Sync(context.Background(), SyncOrganizationParams{
		ExternalID: "ext-1",
		Name:       "Acme Events",
		Slug:       "acme",
	})

	require.NoError(t, err)
	assert.Equal(t, org.ID(), synced.ID())
	assert.Equal(t, "ext-1", synced.ExternalID())
}

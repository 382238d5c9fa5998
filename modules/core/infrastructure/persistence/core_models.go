package persistence

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/membership"
	"github.com/sanifleet/sanifleet/modules/core/domain/entities/organization"
)

type OrganizationModel struct {
	ID         string
	ExternalID string
	Name       string
	Slug       string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (m *OrganizationModel) ToEntity() (*organization.Organization, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return organization.New(
		m.Name,
		m.Slug,
		organization.WithID(id),
		organization.WithExternalID(m.ExternalID),
		organization.WithIsActive(m.IsActive),
		organization.WithCreatedAt(m.CreatedAt),
		organization.WithUpdatedAt(m.UpdatedAt),
	), nil
}

type MembershipModel struct {
	ID             string
	OrgID          string
	UserID         string
	ExternalUserID string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (m *MembershipModel) ToEntity() (*membership.Membership, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	orgID, err := uuid.Parse(m.OrgID)
	if err != nil {
		return nil, err
	}
	return &membership.Membership{
		ID:             id,
		OrgID:          orgID,
		UserID:         m.UserID,
		ExternalUserID: m.ExternalUserID,
		RoleValue:      m.Role,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

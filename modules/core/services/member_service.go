package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/membership"
	"github.com/sanifleet/sanifleet/modules/core/domain/entities/role"
	"github.com/sanifleet/sanifleet/pkg/composables"
)

// MemberService manages organization membership records. Role values are
// normalized to their canonical form before they are persisted, so stored
// rows never contain aliases or legacy prefixes.
type MemberService struct {
	repo membership.Repository
}

func NewMemberService(repo membership.Repository) *MemberService {
	return &MemberService{repo: repo}
}

type UpsertMemberParams struct {
	OrgID          uuid.UUID
	UserID         string
	ExternalUserID string
	Role           string
}

func (s *MemberService) Upsert(ctx context.Context, p UpsertMemberParams) (*membership.Membership, error) {
	if strings.TrimSpace(p.UserID) == "" && strings.TrimSpace(p.ExternalUserID) == "" {
		return nil, NewServiceError(http.StatusBadRequest, "CORE_INVALID_BODY", "user_id or external_user_id is required", nil)
	}
	normalized, ok := role.Normalize(p.Role)
	if !ok {
		return nil, NewServiceError(http.StatusBadRequest, "CORE_INVALID_ROLE", "unsupported role", nil)
	}

	var saved *membership.Membership
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		saved, err = s.repo.Upsert(txCtx, &membership.Membership{
			OrgID:          p.OrgID,
			UserID:         p.UserID,
			ExternalUserID: p.ExternalUserID,
			RoleValue:      string(normalized),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *MemberService) Remove(ctx context.Context, orgID uuid.UUID, userID string) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Remove(txCtx, orgID, userID)
	})
}

package services

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/membership"
	"github.com/sanifleet/sanifleet/modules/core/domain/entities/role"
	"github.com/sanifleet/sanifleet/pkg/metrics"
)

// AccessService is the authorization gate. Every failure is a *ServiceError
// whose code is either UNAUTHORIZED (identity or tenant context missing,
// maps to 401) or FORBIDDEN (authenticated but denied, maps to 403); the
// two are never conflated.
type AccessService struct {
	memberships membership.Repository
}

func NewAccessService(memberships membership.Repository) *AccessService {
	return &AccessService{memberships: memberships}
}

type RequireRoleParams struct {
	// UserID and ExternalUserID are alternate join keys for the same user;
	// either may be set.
	UserID         string
	ExternalUserID string
	OrgID          uuid.UUID
	RequiredRoles  []string
}

// RequireRole allows or denies the operation for the given user within the
// given organization. Role checks are opt-in per operation: an empty
// RequiredRoles list succeeds without a lookup.
func (s *AccessService) RequireRole(ctx context.Context, p RequireRoleParams) error {
	if p.UserID == "" && p.ExternalUserID == "" {
		metrics.RecordAuthzDenied("unauthenticated")
		return unauthorizedError("Authentication required")
	}
	if p.OrgID == uuid.Nil {
		metrics.RecordAuthzDenied("no_tenant")
		return unauthorizedError("Organization context required")
	}

	required, err := role.NormalizeRequired(p.RequiredRoles)
	if err != nil {
		// A caller bug in the requirement list must not fail open.
		metrics.RecordAuthzDenied("bad_requirement")
		if errors.Is(err, role.ErrLegacyRole) {
			return forbiddenError("Legacy roles are not supported", err)
		}
		return forbiddenError("Unsupported role requirement", err)
	}
	if len(required) == 0 {
		metrics.RecordAuthzAllowed()
		return nil
	}

	m, err := s.memberships.FindByUser(ctx, p.OrgID, p.UserID, p.ExternalUserID)
	if err != nil {
		if errors.Is(err, membership.ErrNotFound) {
			metrics.RecordAuthzDenied("not_member")
			return forbiddenError("User is not a member of this organization", nil)
		}
		return err
	}

	stored, err := m.Role()
	if err != nil {
		metrics.RecordAuthzDenied("legacy_stored_role")
		return forbiddenError("Legacy roles are not supported", err)
	}

	if !slices.Contains(required, stored) {
		metrics.RecordAuthzDenied("insufficient_role")
		return forbiddenError("Insufficient role", nil)
	}

	metrics.RecordAuthzAllowed()
	return nil
}

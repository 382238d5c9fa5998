package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/pkg/constants"
)

var ErrNoTenantID = errors.New("no tenant id found in context")

func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

// UseTenantID returns the tenant id from the context. Tenant-scoped
// operations must fail when it is absent rather than fall through to an
// unscoped query.
func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.TenantIDKey)
	if v == nil {
		return uuid.Nil, ErrNoTenantID
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return id, nil
}

// RequireTenantID validates an explicitly supplied tenant id at the entry of
// a tenant-scoped operation.
func RequireTenantID(tenantID uuid.UUID) (uuid.UUID, error) {
	if tenantID == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return tenantID, nil
}

func WithOrgSlug(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, constants.OrgSlugKey, slug)
}

// UseOrgSlug returns the slug resolved from the request host. The second
// value distinguishes "checked, none found" (empty string, true) from
// "resolution never ran" (false).
func UseOrgSlug(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(constants.OrgSlugKey).(string)
	return v, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/configuration"
	"github.com/sanifleet/sanifleet/pkg/constants"
	"github.com/sanifleet/sanifleet/pkg/tenanthost"
)

// Paths the tenant propagator leaves alone. Static assets and well-known
// files are served identically for every tenant.
var propagatorExclusions = []string{
	"/static/",
	"/assets/",
	"/favicon.ico",
	"/robots.txt",
	"/.well-known/",
}

func excludedFromPropagation(path string) bool {
	for _, p := range propagatorExclusions {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// TenantFromHost resolves the tenant slug from the request host and forwards
// it on the X-Org-Slug header. The header is always set — empty string when
// no slug resolved — so downstream code can tell "checked, none found" from
// "not yet checked". A request id is attached to both the forwarded request
// and the response. Slugless requests pass through untouched otherwise; the
// marketing site is a legitimate caller.
func TenantFromHost(rootDomain string) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excludedFromPropagation(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			slug := tenanthost.ResolveSlug(r.Host, rootDomain)
			r.Header.Set(constants.OrgSlugHeader, slug)

			requestID := r.Header.Get(conf.RequestIDHeader)
			if requestID == "" {
				// An earlier middleware may have generated one already;
				// never mint a second id for the same request.
				requestID = composables.UseRequestID(r.Context())
			}
			if requestID == "" {
				requestID = uuid.New().String()
			}
			r.Header.Set(conf.RequestIDHeader, requestID)
			w.Header().Set(conf.RequestIDHeader, requestID)

			ctx := composables.WithOrgSlug(r.Context(), slug)
			ctx = composables.WithRequestID(ctx, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SlugResolver resolves a tenant slug to a tenant id. Implemented by
// core/services.OrganizationService; declared here so the middleware stays
// independently testable.
type SlugResolver interface {
	TenantIDBySlug(ctx context.Context, slug string) (uuid.UUID, error)
}

// RequireTenant guards tenant-only routes: a request whose host did not
// resolve to a known, active organization gets a 404.
func RequireTenant(resolver SlugResolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug, checked := composables.UseOrgSlug(r.Context())
			if !checked {
				slug = r.Header.Get(constants.OrgSlugHeader)
			}
			if slug == "" {
				http.NotFound(w, r)
				return
			}

			tenantID, err := resolver.TenantIDBySlug(r.Context(), slug)
			if err != nil {
				logger := composables.UseLogger(r.Context())
				logger.WithField("slug", slug).WithField("path", r.URL.Path).WithError(err).Warn("tenant not found for host")
				http.NotFound(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), tenantID)))
		})
	}
}

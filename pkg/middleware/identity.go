package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/configuration"
)

// Identity puts the authenticated user identity forwarded by the auth proxy
// into the request context. The headers are trusted: the proxy authenticates
// the caller and strips them from inbound client traffic. Requests without
// them pass through anonymous and are rejected by the authorization gate
// downstream.
func Identity() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := r.Header.Get(conf.UserIDHeader); userID != "" {
				ctx = composables.WithUserID(ctx, userID)
			}
			if externalID := r.Header.Get(conf.ExternalUserIDHeader); externalID != "" {
				ctx = composables.WithExternalUserID(ctx, externalID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package server

import (
	"net/http"

	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/httpapi"
)

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, composables.UseRequestID(r.Context()),
			"NOT_FOUND", "resource not found")
	})
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, composables.UseRequestID(r.Context()),
			"METHOD_NOT_ALLOWED", "method not allowed")
	})
}

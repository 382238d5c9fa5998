package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/membership"
	"github.com/sanifleet/sanifleet/modules/core/domain/entities/organization"
	"github.com/sanifleet/sanifleet/modules/core/domain/entities/role"
	"github.com/sanifleet/sanifleet/modules/core/services"
	"github.com/sanifleet/sanifleet/pkg/application"
	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/httpapi"
	"github.com/sanifleet/sanifleet/pkg/middleware"
)

type OrgAPIController struct {
	orgs      *services.OrganizationService
	members   *services.MemberService
	access    *services.AccessService
	apiPrefix string
}

func NewOrgAPIController(app application.Application) application.Controller {
	return &OrgAPIController{
		orgs:      app.Service(services.OrganizationService{}).(*services.OrganizationService),
		members:   app.Service(services.MemberService{}).(*services.MemberService),
		access:    app.Service(services.AccessService{}).(*services.AccessService),
		apiPrefix: "/core/api",
	}
}

func (c *OrgAPIController) Key() string {
	return c.apiPrefix
}

func (c *OrgAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.RequireTenant(c.orgs))
	api.HandleFunc("/organizations/current", c.GetCurrent).Methods(http.MethodGet)
	api.HandleFunc("/organizations/current/members", c.UpsertMember).Methods(http.MethodPut)
	api.HandleFunc("/organizations/current/members/{userID}", c.RemoveMember).Methods(http.MethodDelete)
}

type organizationResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	IsActive   bool   `json:"is_active"`
}

func toOrganizationResponse(o *organization.Organization) organizationResponse {
	return organizationResponse{
		ID:         o.ID().String(),
		ExternalID: o.ExternalID(),
		Name:       o.Name(),
		Slug:       o.Slug(),
		IsActive:   o.IsActive(),
	}
}

func (c *OrgAPIController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	tenantID, err := composables.UseTenantID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, requestID, "ORG_NOT_FOUND", "no organization resolved for this host")
		return
	}

	o, err := c.orgs.GetByID(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOrganizationResponse(o))
}

type upsertMemberRequest struct {
	UserID         string `json:"user_id"`
	ExternalUserID string `json:"external_user_id"`
	Role           string `json:"role"`
}

func (c *OrgAPIController) UpsertMember(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	tenantID, err := composables.UseTenantID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, requestID, services.CodeUnauthorized, "organization context required")
		return
	}
	if !c.requireRole(w, r, tenantID, role.Admin) {
		return
	}

	var body upsertMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, requestID, "CORE_INVALID_BODY", "invalid JSON body")
		return
	}

	saved, err := c.members.Upsert(r.Context(), services.UpsertMemberParams{
		OrgID:          tenantID,
		UserID:         body.UserID,
		ExternalUserID: body.ExternalUserID,
		Role:           body.Role,
	})
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{
		"id":   saved.ID.String(),
		"role": saved.RoleValue,
	})
}

func (c *OrgAPIController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	tenantID, err := composables.UseTenantID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, requestID, services.CodeUnauthorized, "organization context required")
		return
	}
	if !c.requireRole(w, r, tenantID, role.Admin) {
		return
	}

	userID := mux.Vars(r)["userID"]
	if err := c.members.Remove(r.Context(), tenantID, userID); err != nil {
		if errors.Is(err, membership.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, requestID, "CORE_MEMBER_NOT_FOUND", "member not found")
			return
		}
		writeServiceError(w, requestID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *OrgAPIController) requireRole(w http.ResponseWriter, r *http.Request, tenantID uuid.UUID, roles ...role.Role) bool {
	required := make([]string, 0, len(roles))
	for _, rr := range roles {
		required = append(required, string(rr))
	}
	err := c.access.RequireRole(r.Context(), services.RequireRoleParams{
		UserID:         composables.UseUserID(r.Context()),
		ExternalUserID: composables.UseExternalUserID(r.Context()),
		OrgID:          tenantID,
		RequiredRoles:  required,
	})
	if err != nil {
		writeServiceError(w, composables.UseRequestID(r.Context()), err)
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		_ = httpapi.WriteError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
		return
	}
	if errors.Is(err, organization.ErrNotFound) {
		_ = httpapi.WriteError(w, http.StatusNotFound, requestID, "ORG_NOT_FOUND", "organization not found")
		return
	}
	_ = httpapi.WriteError(w, http.StatusInternalServerError, requestID, "INTERNAL", "internal error")
}

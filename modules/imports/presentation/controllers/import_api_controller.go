package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/role"
	coreservices "github.com/sanifleet/sanifleet/modules/core/services"
	"github.com/sanifleet/sanifleet/modules/imports/services"
	"github.com/sanifleet/sanifleet/pkg/application"
	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/configuration"
	"github.com/sanifleet/sanifleet/pkg/httpapi"
	"github.com/sanifleet/sanifleet/pkg/middleware"
)

var importerRoles = []string{string(role.Admin), string(role.Dispatcher)}

type ImportAPIController struct {
	imports   *services.ImportService
	access    *coreservices.AccessService
	resolver  middleware.SlugResolver
	apiPrefix string
}

func NewImportAPIController(app application.Application) application.Controller {
	return &ImportAPIController{
		imports:   app.Service(services.ImportService{}).(*services.ImportService),
		access:    app.Service(coreservices.AccessService{}).(*coreservices.AccessService),
		resolver:  app.Service(coreservices.OrganizationService{}).(*coreservices.OrganizationService),
		apiPrefix: "/imports/api",
	}
}

func (c *ImportAPIController) Key() string {
	return c.apiPrefix
}

func (c *ImportAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.RequireTenant(c.resolver))
	api.HandleFunc("/batches", c.ImportBatch).Methods(http.MethodPost)
	api.HandleFunc("/spreadsheets", c.ImportSpreadsheet).Methods(http.MethodPost)
}

type importBatchRequest struct {
	Type   string           `json:"type"`
	Rows   []map[string]any `json:"rows"`
	Atomic *bool            `json:"atomic,omitempty"`
}

func (c *ImportAPIController) ImportBatch(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	tenantID, ok := c.authorize(w, r)
	if !ok {
		return
	}

	var body importBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, requestID, "IMPORT_INVALID_BODY", "invalid JSON body")
		return
	}

	result, err := c.imports.Import(r.Context(), services.ImportParams{
		Type:   body.Type,
		OrgID:  tenantID,
		UserID: composables.UseUserID(r.Context()),
		Rows:   body.Rows,
		Atomic: body.Atomic,
	})
	if err != nil {
		writeImportError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, result)
}

func (c *ImportAPIController) ImportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	tenantID, ok := c.authorize(w, r)
	if !ok {
		return
	}

	maxSize := configuration.Use().Import.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, requestID, "IMPORT_INVALID_UPLOAD", "could not read the uploaded file")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, requestID, "IMPORT_INVALID_UPLOAD", "file field is required")
		return
	}
	defer file.Close()

	rows, err := spreadsheetRows(file)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, requestID, "IMPORT_INVALID_SPREADSHEET", err.Error())
		return
	}

	var atomic *bool
	if raw := r.FormValue("atomic"); raw != "" {
		v := strings.EqualFold(raw, "true")
		atomic = &v
	}
	result, err := c.imports.Import(r.Context(), services.ImportParams{
		Type:   r.FormValue("type"),
		OrgID:  tenantID,
		UserID: composables.UseUserID(r.Context()),
		Rows:   rows,
		Atomic: atomic,
	})
	if err != nil {
		writeImportError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, result)
}

// spreadsheetRows reads the first sheet of an XLSX file into row maps keyed
// by the header row. Blank rows are skipped; blank cells are omitted so
// validators see them as missing.
func spreadsheetRows(file io.Reader) ([]map[string]any, error) {
	doc, err := excelize.OpenReader(file)
	if err != nil {
		return nil, errors.New("file is not a valid spreadsheet")
	}
	defer doc.Close()

	sheets := doc.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}
	cells, err := doc.GetRows(sheets[0])
	if err != nil {
		return nil, errors.New("could not read the first sheet")
	}
	if len(cells) < 2 {
		return nil, errors.New("spreadsheet needs a header row and at least one data row")
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]map[string]any, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := map[string]any{}
		for i, cell := range line {
			if i >= len(header) || header[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			row[header[i]] = value
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *ImportAPIController) authorize(w http.ResponseWriter, r *http.Request) (tenantID uuid.UUID, ok bool) {
	requestID := composables.UseRequestID(r.Context())
	tenantID, err := composables.UseTenantID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, requestID, coreservices.CodeUnauthorized, "organization context required")
		return tenantID, false
	}
	err = c.access.RequireRole(r.Context(), coreservices.RequireRoleParams{
		UserID:         composables.UseUserID(r.Context()),
		ExternalUserID: composables.UseExternalUserID(r.Context()),
		OrgID:          tenantID,
		RequiredRoles:  importerRoles,
	})
	if err != nil {
		writeImportError(w, requestID, err)
		return tenantID, false
	}
	return tenantID, true
}

func writeImportError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *coreservices.ServiceError
	if errors.As(err, &svcErr) {
		_ = httpapi.WriteError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
		return
	}
	_ = httpapi.WriteError(w, http.StatusInternalServerError, requestID, "INTERNAL", "internal error")
}

package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/membership"
	"github.com/sanifleet/sanifleet/modules/core/domain/entities/organization"
	coreservices "github.com/sanifleet/sanifleet/modules/core/services"
	"github.com/sanifleet/sanifleet/modules/imports/domain/entities/importlog"
	"github.com/sanifleet/sanifleet/modules/imports/services"
	"github.com/sanifleet/sanifleet/modules/imports/validators"
	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/eventbus"
)

type stubRecordStore struct {
	atomicCalls int
}

func (s *stubRecordStore) InsertAtomic(_ context.Context, _ uuid.UUID, _ string, records []validators.Record) (int, error) {
	s.atomicCalls++
	return len(records), nil
}

func (s *stubRecordStore) InsertCopy(_ context.Context, _ uuid.UUID, _ validators.Validator, records []validators.Record) (int, error) {
	return len(records), nil
}

func (s *stubRecordStore) ExistsOwned(context.Context, uuid.UUID, string, uuid.UUID) (bool, error) {
	return true, nil
}

type stubLogRepo struct {
	entries []*importlog.ImportLog
}

func (s *stubLogRepo) Create(_ context.Context, log *importlog.ImportLog) error {
	s.entries = append(s.entries, log)
	return nil
}

type stubMembershipRepo struct {
	roles map[string]string
}

func (s *stubMembershipRepo) FindByUser(_ context.Context, orgID uuid.UUID, userID, _ string) (*membership.Membership, error) {
	roleValue, ok := s.roles[fmt.Sprintf("%s|%s", orgID, userID)]
	if !ok {
		return nil, membership.ErrNotFound
	}
	return &membership.Membership{OrgID: orgID, UserID: userID, RoleValue: roleValue}, nil
}

func (s *stubMembershipRepo) Upsert(_ context.Context, m *membership.Membership) (*membership.Membership, error) {
	return m, nil
}

func (s *stubMembershipRepo) Remove(context.Context, uuid.UUID, string) error {
	return nil
}

type stubResolver struct {
	slug  string
	orgID uuid.UUID
}

func (s *stubResolver) TenantIDBySlug(_ context.Context, slug string) (uuid.UUID, error) {
	if slug != s.slug {
		return uuid.Nil, organization.ErrNotFound
	}
	return s.orgID, nil
}

type controllerFixture struct {
	router  *mux.Router
	store   *stubRecordStore
	logs    *stubLogRepo
	orgID   uuid.UUID
	members *stubMembershipRepo
}

func newFixture(t *testing.T) *controllerFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	orgID := uuid.New()
	store := &stubRecordStore{}
	logs := &stubLogRepo{}
	members := &stubMembershipRepo{roles: map[string]string{}}
	ctrl := &ImportAPIController{
		imports:   services.NewImportService(store, logs, eventbus.NewEventPublisher(logger)),
		access:    coreservices.NewAccessService(members),
		resolver:  &stubResolver{slug: "acme", orgID: orgID},
		apiPrefix: "/imports/api",
	}
	router := mux.NewRouter()
	ctrl.Register(router)
	return &controllerFixture{
		router:  router,
		store:   store,
		logs:    logs,
		orgID:   orgID,
		members: members,
	}
}

func (f *controllerFixture) grant(userID, roleValue string) {
	f.members.roles[fmt.Sprintf("%s|%s", f.orgID, userID)] = roleValue
}

func (f *controllerFixture) do(req *http.Request, userID string, withTenant bool) *httptest.ResponseRecorder {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := composables.WithLogger(req.Context(), logrus.NewEntry(logger))
	ctx = composables.WithUserID(ctx, userID)
	ctx = composables.WithRequestID(ctx, "req-1")
	if withTenant {
		ctx = composables.WithOrgSlug(ctx, "acme")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func batchBody(t *testing.T, entityType string, rows []map[string]any) *bytes.Buffer {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"type": entityType, "rows": rows})
	require.NoError(t, err)
	return bytes.NewBuffer(payload)
}

func TestImportBatch_Success(t *testing.T) {
	f := newFixture(t)
	f.grant("u-1", "admin")

	body := batchBody(t, "customers", []map[string]any{{"name": "Acme"}})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/batches", body)
	rec := f.do(req, "u-1", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var result services.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, f.store.atomicCalls)
	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, "u-1", f.logs.entries[0].UserID)
}

func TestImportBatch_DispatcherAllowed(t *testing.T) {
	f := newFixture(t)
	f.grant("u-2", "dispatcher")

	body := batchBody(t, "customers", []map[string]any{{"name": "Acme"}})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/batches", body)
	rec := f.do(req, "u-2", true)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportBatch_DriverForbidden(t *testing.T) {
	f := newFixture(t)
	f.grant("u-3", "driver")

	body := batchBody(t, "customers", []map[string]any{{"name": "Acme"}})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/batches", body)
	rec := f.do(req, "u-3", true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, f.store.atomicCalls)
}

func TestImportBatch_NoTenantHostIs404(t *testing.T) {
	f := newFixture(t)

	body := batchBody(t, "customers", []map[string]any{{"name": "Acme"}})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/batches", body)
	rec := f.do(req, "u-1", false)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.store.atomicCalls)
}

func TestImportBatch_ValidationErrorsInResponse(t *testing.T) {
	f := newFixture(t)
	f.grant("u-1", "admin")

	body := batchBody(t, "customers", []map[string]any{{"email": "nope"}})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/batches", body)
	rec := f.do(req, "u-1", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var result services.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.OK)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, 2, result.Errors[0].Row)
}

func TestImportBatch_UnknownType(t *testing.T) {
	f := newFixture(t)
	f.grant("u-1", "admin")

	body := batchBody(t, "llamas", []map[string]any{{"name": "Fuzzy"}})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/batches", body)
	rec := f.do(req, "u-1", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func xlsxUpload(t *testing.T, entityType string, header []string, rows [][]string) (*bytes.Buffer, string) {
	t.Helper()
	doc := excelize.NewFile()
	sheet := doc.GetSheetName(0)
	require.NoError(t, doc.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		require.NoError(t, doc.SetSheetRow(sheet, cell, &row))
	}
	var workbook bytes.Buffer
	require.NoError(t, doc.Write(&workbook))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("type", entityType))
	part, err := form.CreateFormFile("file", "batch.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())
	return &body, form.FormDataContentType()
}

func TestImportSpreadsheet_Success(t *testing.T) {
	f := newFixture(t)
	f.grant("u-1", "admin")

	body, contentType := xlsxUpload(t, "customers",
		[]string{"Name", "Email"},
		[][]string{
			{"Acme Events", "ops@acme.test"},
			{"Bravo Rentals", ""},
		})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/spreadsheets", body)
	req.Header.Set("Content-Type", contentType)
	rec := f.do(req, "u-1", true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result services.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, 2, result.Inserted)
}

func TestImportSpreadsheet_RowNumbersMatchSheet(t *testing.T) {
	f := newFixture(t)
	f.grant("u-1", "admin")

	body, contentType := xlsxUpload(t, "customers",
		[]string{"Name", "Email"},
		[][]string{
			{"Acme Events", "ops@acme.test"},
			{"", "broken"},
		})
	req := httptest.NewRequest(http.MethodPost, "/imports/api/spreadsheets", body)
	req.Header.Set("Content-Type", contentType)
	rec := f.do(req, "u-1", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var result services.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.OK)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, 3, result.Errors[0].Row)
}

func TestImportSpreadsheet_NotASpreadsheet(t *testing.T) {
	f := newFixture(t)
	f.grant("u-1", "admin")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("type", "customers"))
	part, err := form.CreateFormFile("file", "batch.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a workbook"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports/api/spreadsheets", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := f.do(req, "u-1", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportSpreadsheet_MissingFile(t *testing.T) {
	f := newFixture(t)
	f.grant("u-1", "admin")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("type", "customers"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports/api/spreadsheets", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := f.do(req, "u-1", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

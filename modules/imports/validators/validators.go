// Package validators holds the per-entity row validators used by bulk
// imports. A validator turns one raw spreadsheet row into a sanitized
// record ready for insertion, or a list of field-level errors keyed to the
// row it came from, and declares which of its fields must reference rows
// owned by the same organization.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RowError is one field-level failure, keyed to the spreadsheet row it
// occurred on. Row numbers are reported with the header offset applied, so
// the first data row reports as row 2.
type RowError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Error string `json:"error"`
}

// ForeignKeyRule declares that a record field must reference a row that
// exists in Table and belongs to the importing organization.
type ForeignKeyRule struct {
	Field   string
	Table   string
	Message string
}

// Record is a sanitized row keyed by column name, ready for insertion.
// Every record carries its id and tenant_id.
type Record map[string]any

type Validator interface {
	EntityType() string
	Table() string
	// Columns returns the insert column order shared by every record this
	// validator produces.
	Columns() []string
	ValidateRecord(row map[string]any, orgID uuid.UUID, rowNum int) (Record, []RowError)
	Rules() []ForeignKeyRule
}

var registry = map[string]Validator{
	"customers": &CustomerValidator{},
	"invoices":  &InvoiceValidator{},
	"vehicles":  &VehicleValidator{},
	"units":     &UnitValidator{},
	"jobs":      &JobValidator{},
	"products":  &ProductValidator{},
}

// For returns the validator registered for the given entity type.
func For(entityType string) (Validator, bool) {
	v, ok := registry[entityType]
	return v, ok
}

func EntityTypes() []string {
	return []string{"customers", "invoices", "vehicles", "units", "jobs", "products"}
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// structErrors converts go-playground validation failures into row errors.
func structErrors(rowNum int, err error) []RowError {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []RowError{{Row: rowNum, Field: "", Error: err.Error()}}
	}
	out := make([]RowError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, RowError{Row: rowNum, Field: fe.Field(), Error: tagMessage(fe)})
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// fieldReader coerces loosely typed row values (JSON numbers, spreadsheet
// cell strings) into the shapes records need, accumulating errors as it
// goes.
type fieldReader struct {
	row    map[string]any
	rowNum int
	errs   []RowError
}

func newFieldReader(row map[string]any, rowNum int) *fieldReader {
	return &fieldReader{row: row, rowNum: rowNum}
}

func (r *fieldReader) fail(field, msg string) {
	r.errs = append(r.errs, RowError{Row: r.rowNum, Field: field, Error: msg})
}

func (r *fieldReader) str(field string) string {
	v, ok := r.row[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// uuidVal parses an optional id field. Empty values return uuid.Nil with
// no error; requiredness is enforced by the struct tags upstream.
func (r *fieldReader) uuidVal(field string) uuid.UUID {
	raw := r.str(field)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		r.fail(field, "must be a valid id")
		return uuid.Nil
	}
	return id
}

func (r *fieldReader) decimalVal(field string) decimal.Decimal {
	raw := r.str(field)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		r.fail(field, "must be a valid amount")
		return decimal.Zero
	}
	if d.IsNegative() {
		r.fail(field, "must not be negative")
		return decimal.Zero
	}
	return d
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func (r *fieldReader) dateVal(field string) time.Time {
	raw := r.str(field)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	r.fail(field, "must be an RFC3339 timestamp or a YYYY-MM-DD date")
	return time.Time{}
}

func (r *fieldReader) intVal(field string) int {
	raw := r.str(field)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(field, "must be a whole number")
		return 0
	}
	if n < 0 {
		r.fail(field, "must not be negative")
		return 0
	}
	return n
}

func (r *fieldReader) boolVal(field string, def bool) bool {
	raw := strings.ToLower(r.str(field))
	if raw == "" {
		return def
	}
	switch raw {
	case "true", "yes", "1":
		return true
	case "false", "no", "0":
		return false
	default:
		r.fail(field, "must be true or false")
		return def
	}
}

// nilIfZeroUUID maps uuid.Nil to nil so optional references insert as NULL.
func nilIfZeroUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func nilIfZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func baseRecord(orgID uuid.UUID) Record {
	return Record{
		"id":        uuid.New(),
		"tenant_id": orgID,
	}
}

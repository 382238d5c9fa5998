package validators

import "github.com/google/uuid"

type InvoiceValidator struct{}

type invoiceRow struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Amount     string `json:"amount" validate:"required"`
	Status     string `json:"status" validate:"omitempty,oneof=draft sent paid void"`
	DueDate    string `json:"due_date" validate:"omitempty"`
}

func (v *InvoiceValidator) EntityType() string { return "invoices" }
func (v *InvoiceValidator) Table() string      { return "invoices" }

func (v *InvoiceValidator) Columns() []string {
	return []string{"id", "tenant_id", "customer_id", "amount", "status", "due_date"}
}

func (v *InvoiceValidator) Rules() []ForeignKeyRule {
	return []ForeignKeyRule{
		{Field: "customer_id", Table: "customers", Message: "customer does not exist in this organization"},
	}
}

func (v *InvoiceValidator) ValidateRecord(row map[string]any, orgID uuid.UUID, rowNum int) (Record, []RowError) {
	r := newFieldReader(row, rowNum)
	parsed := invoiceRow{
		CustomerID: r.str("customer_id"),
		Amount:     r.str("amount"),
		Status:     r.str("status"),
		DueDate:    r.str("due_date"),
	}
	if errs := structErrors(rowNum, validate.Struct(parsed)); len(errs) > 0 {
		return nil, append(r.errs, errs...)
	}

	customerID := r.uuidVal("customer_id")
	amount := r.decimalVal("amount")
	dueDate := r.dateVal("due_date")
	if len(r.errs) > 0 {
		return nil, r.errs
	}

	status := parsed.Status
	if status == "" {
		status = "draft"
	}
	rec := baseRecord(orgID)
	rec["customer_id"] = customerID
	rec["amount"] = amount
	rec["status"] = status
	rec["due_date"] = nilIfZeroTime(dueDate)
	return rec, nil
}

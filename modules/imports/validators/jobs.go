package validators

import "github.com/google/uuid"

type JobValidator struct{}

type jobRow struct {
	CustomerID   string `json:"customer_id" validate:"required,uuid"`
	VehicleID    string `json:"vehicle_id" validate:"omitempty,uuid"`
	UnitID       string `json:"unit_id" validate:"omitempty,uuid"`
	ScheduledFor string `json:"scheduled_for" validate:"required"`
	Status       string `json:"status" validate:"omitempty,oneof=scheduled in_progress done cancelled"`
	Notes        string `json:"notes" validate:"omitempty,max=1000"`
}

func (v *JobValidator) EntityType() string { return "jobs" }
func (v *JobValidator) Table() string      { return "jobs" }

func (v *JobValidator) Columns() []string {
	return []string{"id", "tenant_id", "customer_id", "vehicle_id", "unit_id", "scheduled_for", "status", "notes"}
}

func (v *JobValidator) Rules() []ForeignKeyRule {
	return []ForeignKeyRule{
		{Field: "customer_id", Table: "customers", Message: "customer does not exist in this organization"},
		{Field: "vehicle_id", Table: "vehicles", Message: "vehicle does not exist in this organization"},
		{Field: "unit_id", Table: "units", Message: "unit does not exist in this organization"},
	}
}

func (v *JobValidator) ValidateRecord(row map[string]any, orgID uuid.UUID, rowNum int) (Record, []RowError) {
	r := newFieldReader(row, rowNum)
	parsed := jobRow{
		CustomerID:   r.str("customer_id"),
		VehicleID:    r.str("vehicle_id"),
		UnitID:       r.str("unit_id"),
		ScheduledFor: r.str("scheduled_for"),
		Status:       r.str("status"),
		Notes:        r.str("notes"),
	}
	if errs := structErrors(rowNum, validate.Struct(parsed)); len(errs) > 0 {
		return nil, append(r.errs, errs...)
	}

	customerID := r.uuidVal("customer_id")
	vehicleID := r.uuidVal("vehicle_id")
	unitID := r.uuidVal("unit_id")
	scheduledFor := r.dateVal("scheduled_for")
	if len(r.errs) > 0 {
		return nil, r.errs
	}

	status := parsed.Status
	if status == "" {
		status = "scheduled"
	}
	rec := baseRecord(orgID)
	rec["customer_id"] = customerID
	rec["vehicle_id"] = nilIfZeroUUID(vehicleID)
	rec["unit_id"] = nilIfZeroUUID(unitID)
	rec["scheduled_for"] = scheduledFor
	rec["status"] = status
	rec["notes"] = parsed.Notes
	return rec, nil
}

package validators

import "github.com/google/uuid"

type UnitValidator struct{}

type unitRow struct {
	Serial    string `json:"serial" validate:"required,max=64"`
	Model     string `json:"model" validate:"omitempty,max=100"`
	Status    string `json:"status" validate:"omitempty,oneof=available deployed maintenance"`
	VehicleID string `json:"vehicle_id" validate:"omitempty,uuid"`
}

func (v *UnitValidator) EntityType() string { return "units" }
func (v *UnitValidator) Table() string      { return "units" }

func (v *UnitValidator) Columns() []string {
	return []string{"id", "tenant_id", "serial", "model", "status", "vehicle_id"}
}

func (v *UnitValidator) Rules() []ForeignKeyRule {
	return []ForeignKeyRule{
		{Field: "vehicle_id", Table: "vehicles", Message: "vehicle does not exist in this organization"},
	}
}

func (v *UnitValidator) ValidateRecord(row map[string]any, orgID uuid.UUID, rowNum int) (Record, []RowError) {
	r := newFieldReader(row, rowNum)
	parsed := unitRow{
		Serial:    r.str("serial"),
		Model:     r.str("model"),
		Status:    r.str("status"),
		VehicleID: r.str("vehicle_id"),
	}
	if errs := structErrors(rowNum, validate.Struct(parsed)); len(errs) > 0 {
		return nil, append(r.errs, errs...)
	}

	vehicleID := r.uuidVal("vehicle_id")
	if len(r.errs) > 0 {
		return nil, r.errs
	}

	status := parsed.Status
	if status == "" {
		status = "available"
	}
	rec := baseRecord(orgID)
	rec["serial"] = parsed.Serial
	rec["model"] = parsed.Model
	rec["status"] = status
	rec["vehicle_id"] = nilIfZeroUUID(vehicleID)
	return rec, nil
}

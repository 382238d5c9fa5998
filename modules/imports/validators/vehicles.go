package validators

import "github.com/google/uuid"

type VehicleValidator struct{}

type vehicleRow struct {
	Name     string `json:"name" validate:"required,max=200"`
	Plate    string `json:"plate" validate:"required,max=20"`
	Capacity string `json:"capacity" validate:"omitempty"`
}

func (v *VehicleValidator) EntityType() string { return "vehicles" }
func (v *VehicleValidator) Table() string      { return "vehicles" }

func (v *VehicleValidator) Columns() []string {
	return []string{"id", "tenant_id", "name", "plate", "capacity"}
}

func (v *VehicleValidator) Rules() []ForeignKeyRule { return nil }

func (v *VehicleValidator) ValidateRecord(row map[string]any, orgID uuid.UUID, rowNum int) (Record, []RowError) {
	r := newFieldReader(row, rowNum)
	parsed := vehicleRow{
		Name:     r.str("name"),
		Plate:    r.str("plate"),
		Capacity: r.str("capacity"),
	}
	if errs := structErrors(rowNum, validate.Struct(parsed)); len(errs) > 0 {
		return nil, append(r.errs, errs...)
	}

	capacity := r.intVal("capacity")
	if len(r.errs) > 0 {
		return nil, r.errs
	}

	rec := baseRecord(orgID)
	rec["name"] = parsed.Name
	rec["plate"] = parsed.Plate
	rec["capacity"] = capacity
	return rec, nil
}

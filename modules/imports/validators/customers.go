package validators

import "github.com/google/uuid"

type CustomerValidator struct{}

type customerRow struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

func (v *CustomerValidator) EntityType() string { return "customers" }
func (v *CustomerValidator) Table() string      { return "customers" }

func (v *CustomerValidator) Columns() []string {
	return []string{"id", "tenant_id", "name", "email", "phone", "address"}
}

func (v *CustomerValidator) Rules() []ForeignKeyRule { return nil }

func (v *CustomerValidator) ValidateRecord(row map[string]any, orgID uuid.UUID, rowNum int) (Record, []RowError) {
	r := newFieldReader(row, rowNum)
	parsed := customerRow{
		Name:    r.str("name"),
		Email:   r.str("email"),
		Phone:   r.str("phone"),
		Address: r.str("address"),
	}
	errs := append(r.errs, structErrors(rowNum, validate.Struct(parsed))...)
	if len(errs) > 0 {
		return nil, errs
	}

	rec := baseRecord(orgID)
	rec["name"] = parsed.Name
	rec["email"] = parsed.Email
	rec["phone"] = parsed.Phone
	rec["address"] = parsed.Address
	return rec, nil
}

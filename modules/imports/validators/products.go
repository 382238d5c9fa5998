package validators

import "github.com/google/uuid"

type ProductValidator struct{}

type productRow struct {
	SKU    string `json:"sku" validate:"required,max=64"`
	Name   string `json:"name" validate:"required,max=200"`
	Price  string `json:"price" validate:"required"`
	Active string `json:"active" validate:"omitempty"`
}

func (v *ProductValidator) EntityType() string { return "products" }
func (v *ProductValidator) Table() string      { return "products" }

func (v *ProductValidator) Columns() []string {
	return []string{"id", "tenant_id", "sku", "name", "price", "active"}
}

func (v *ProductValidator) Rules() []ForeignKeyRule { return nil }

func (v *ProductValidator) ValidateRecord(row map[string]any, orgID uuid.UUID, rowNum int) (Record, []RowError) {
	r := newFieldReader(row, rowNum)
	parsed := productRow{
		SKU:    r.str("sku"),
		Name:   r.str("name"),
		Price:  r.str("price"),
		Active: r.str("active"),
	}
	if errs := structErrors(rowNum, validate.Struct(parsed)); len(errs) > 0 {
		return nil, append(r.errs, errs...)
	}

	price := r.decimalVal("price")
	active := r.boolVal("active", true)
	if len(r.errs) > 0 {
		return nil, r.errs
	}

	rec := baseRecord(orgID)
	rec["sku"] = parsed.SKU
	rec["name"] = parsed.Name
	rec["price"] = price
	rec["active"] = active
	return rec, nil
}

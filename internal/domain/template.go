package domain

import "time"

type FieldType string

const (
	FieldTypeProp  FieldType = "prop"
	FieldTypeRests FieldType = "rests"
)

// Canonical field values a TemplateRow of type prop can carry.
const (
	FieldBrand       = "brand"
	FieldArticle     = "article"
	FieldPrice       = "price"
	FieldDescription = "description"
)

// TemplateRow binds one canonical field or one warehouse to a file column.
// Header is the positional column key ("0", "1", ...) or empty when unmatched.
type TemplateRow struct {
	Name    string    `json:"name" validate:"required"`
	Value   string    `json:"value" validate:"required"`
	Type    FieldType `json:"type" validate:"oneof=prop rests"`
	Header  string    `json:"header"`
	Aliases []string  `json:"aliases,omitempty"`
}

type Template struct {
	ID              int64         `db:"id" json:"id"`
	ProviderID      string        `db:"provider_id" json:"provider_id" validate:"required"`
	Name            string        `db:"name" json:"name" validate:"required"`
	FirstRowHeaders bool          `db:"first_row_headers" json:"first_row_headers"`
	Rows            []TemplateRow `db:"rows" json:"rows" validate:"dive"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

type Warehouse struct {
	ID         string `db:"id" json:"id"`
	ProviderID string `db:"provider_id" json:"provider_id"`
	Name       string `db:"name" json:"name"`
}

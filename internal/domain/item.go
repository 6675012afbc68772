package domain

import (
	"github.com/bytedance/sonic"
	"math"
	"strconv"
)

// Rest is a warehouse stock value. Unknown means the supplier file has no
// column for that warehouse, which is not the same as zero stock.
type Rest struct {
	Quantity string
	Unknown  bool
}

func UnknownRest() Rest {
	return Rest{Unknown: true}
}

func QuantityRest(q string) Rest {
	return Rest{Quantity: q}
}

func (r Rest) MarshalJSON() ([]byte, error) {
	if r.Unknown {
		return []byte("null"), nil
	}
	if f, err := strconv.ParseFloat(r.Quantity, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return sonic.Marshal(r.Quantity)
}

func (r *Rest) UnmarshalJSON(data []byte) error {
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case nil:
		*r = UnknownRest()
	case string:
		*r = QuantityRest(t)
	case float64:
		*r = QuantityRest(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		*r = QuantityRest(string(data))
	}
	return nil
}

type TransformedItem struct {
	Brand       string          `json:"brand"`
	Article     string          `json:"article"`
	Price       float64         `json:"price"`
	Description string          `json:"description"`
	ProviderID  string          `json:"provider_id"`
	Rests       map[string]Rest `json:"rests"`
}

// PriceRow is the stored shape of a TransformedItem.
type PriceRow struct {
	Brand       string          `db:"brand" json:"brand"`
	Article     string          `db:"article" json:"article"`
	Price       float64         `db:"price" json:"price"`
	Description *string         `db:"description" json:"description"`
	ProviderID  string          `db:"provider_id" json:"provider_id"`
	Rests       map[string]Rest `db:"rests" json:"rests"`
	LoadedID    string          `db:"loaded_id" json:"loaded_id"`
}

func NewPriceRow(item TransformedItem, loadedID string) PriceRow {
	row := PriceRow{
		Brand:      item.Brand,
		Article:    item.Article,
		Price:      item.Price,
		ProviderID: item.ProviderID,
		Rests:      item.Rests,
		LoadedID:   loadedID,
	}
	if item.Description != "" {
		desc := item.Description
		row.Description = &desc
	}
	return row
}

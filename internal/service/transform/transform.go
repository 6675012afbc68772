package transform

import (
	"context"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/shopspring/decimal"
	"strings"
	"unicode"
)

// rows between cancellation checks
const yieldEvery = 10000

type binding struct {
	brand, article, price, description string
	rests                              []domain.TemplateRow
}

func bind(mapping []domain.TemplateRow) binding {
	var b binding
	seen := make(map[string]bool)
	for _, m := range mapping {
		if m.Type == domain.FieldTypeRests {
			b.rests = append(b.rests, m)
			continue
		}
		if seen[m.Value] {
			continue
		}
		seen[m.Value] = true

		switch m.Value {
		case domain.FieldBrand:
			b.brand = m.Header
		case domain.FieldArticle:
			b.article = m.Header
		case domain.FieldPrice:
			b.price = m.Header
		case domain.FieldDescription:
			b.description = m.Header
		}
	}
	return b
}

// Transform maps raw rows onto canonical items. Rows without an article are
// dropped. Unparseable prices become 0.
func Transform(ctx context.Context, rows []domain.RawRow, mapping []domain.TemplateRow, providerID string) ([]domain.TransformedItem, error) {
	b := bind(mapping)

	items := make([]domain.TransformedItem, 0, len(rows))
	for i, row := range rows {
		if i%yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		article := strings.TrimSpace(row.Get(b.article).String())
		if article == "" {
			continue
		}

		item := domain.TransformedItem{
			Brand:       strings.TrimSpace(row.Get(b.brand).String()),
			Article:     article,
			Price:       ParsePrice(row.Get(b.price)),
			Description: strings.TrimSpace(row.Get(b.description).String()),
			ProviderID:  providerID,
			Rests:       make(map[string]domain.Rest, len(b.rests)),
		}

		for _, r := range b.rests {
			if r.Header == "" {
				item.Rests[r.Value] = domain.UnknownRest()
				continue
			}

			q := strings.TrimSpace(row.Get(r.Header).String())
			if q == "" {
				q = "0"
			}
			item.Rests[r.Value] = domain.QuantityRest(q)
		}

		items = append(items, item)
	}

	return items, nil
}

// ParsePrice accepts comma or dot as the decimal separator and ignores
// spaces used as thousands separators.
func ParsePrice(c domain.Cell) float64 {
	if c.Kind == domain.CellNumber {
		return c.Number
	}

	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, c.Text)
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

package automap

import (
	"github.com/ougirez/pricelist/internal/domain"
	"strconv"
	"strings"
	"unicode"
)

// CanonicalFields is the catalogue of prop fields in mapping order.
var CanonicalFields = []domain.TemplateRow{
	{
		Name:    "Бренд",
		Value:   domain.FieldBrand,
		Type:    domain.FieldTypeProp,
		Aliases: []string{"brand", "марка", "бренд"},
	},
	{
		Name:    "Код Бренду",
		Value:   domain.FieldArticle,
		Type:    domain.FieldTypeProp,
		Aliases: []string{"артикул", "код", "код бренду", "CatItemNo", "номер", "Номер за каталогом постачальника"},
	},
	{
		Name:    "Ціна",
		Value:   domain.FieldPrice,
		Type:    domain.FieldTypeProp,
		Aliases: []string{"ціна", "вартість", "price", "Ваша ціна"},
	},
	{
		Name:    "Опис",
		Value:   domain.FieldDescription,
		Type:    domain.FieldTypeProp,
		Aliases: []string{"опис", "опис товару", "description", "назва", "назва товару"},
	},
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// AutoMap binds canonical fields and warehouses to header positions. Entries
// of saved win over matching. Headers are searched in order, first match wins.
func AutoMap(headers []string, warehouses []*domain.Warehouse, saved []domain.TemplateRow) []domain.TemplateRow {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize(h)
	}

	savedProps := make(map[string]string)
	savedRests := make(map[string]string)
	for _, row := range saved {
		switch row.Type {
		case domain.FieldTypeRests:
			if _, ok := savedRests[row.Value]; !ok {
				savedRests[row.Value] = row.Header
			}
		default:
			if _, ok := savedProps[row.Value]; !ok {
				savedProps[row.Value] = row.Header
			}
		}
	}

	result := make([]domain.TemplateRow, 0, len(CanonicalFields)+len(warehouses))
	for _, field := range CanonicalFields {
		row := field
		row.Aliases = append([]string(nil), field.Aliases...)

		if header, ok := savedProps[field.Value]; ok {
			row.Header = header
		} else {
			row.Header = matchExact(normalized, append([]string{field.Name}, field.Aliases...))
		}
		result = append(result, row)
	}

	for _, wh := range warehouses {
		row := domain.TemplateRow{
			Name:  wh.Name,
			Value: wh.ID,
			Type:  domain.FieldTypeRests,
		}

		if header, ok := savedRests[wh.ID]; ok {
			row.Header = header
		} else {
			row.Header = matchContains(normalized, normalize(wh.Name))
		}
		result = append(result, row)
	}

	return result
}

func matchExact(headers []string, candidates []string) string {
	want := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		want[normalize(c)] = struct{}{}
	}

	for i, h := range headers {
		if _, ok := want[h]; ok && h != "" {
			return strconv.Itoa(i)
		}
	}
	return ""
}

func matchContains(headers []string, name string) string {
	if name == "" {
		return ""
	}

	for i, h := range headers {
		if strings.Contains(h, name) {
			return strconv.Itoa(i)
		}
	}
	return ""
}

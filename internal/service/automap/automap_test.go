package automap

import (
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func headerOf(t *testing.T, rows []domain.TemplateRow, value string) string {
	t.Helper()
	for _, r := range rows {
		if r.Value == value {
			return r.Header
		}
	}
	t.Fatalf("no mapping for %q", value)
	return ""
}

func TestAutoMapAliases(t *testing.T) {
	headers := []string{"Артикул", "Марка", " Ваша  ЦІНА ", "Назва товару", "Залишок Київ"}

	rows := AutoMap(headers, nil, nil)

	require.Len(t, rows, 4)
	assert.Equal(t, "1", headerOf(t, rows, domain.FieldBrand))
	assert.Equal(t, "0", headerOf(t, rows, domain.FieldArticle))
	assert.Equal(t, "2", headerOf(t, rows, domain.FieldPrice))
	assert.Equal(t, "3", headerOf(t, rows, domain.FieldDescription))
}

func TestAutoMapFirstMatchWins(t *testing.T) {
	headers := []string{"ціна", "price", "Код"}

	rows := AutoMap(headers, nil, nil)

	assert.Equal(t, "0", headerOf(t, rows, domain.FieldPrice))
	assert.Equal(t, "2", headerOf(t, rows, domain.FieldArticle))
	assert.Equal(t, "", headerOf(t, rows, domain.FieldBrand))
}

func TestAutoMapExactNotSubstring(t *testing.T) {
	rows := AutoMap([]string{"код товару постачальника"}, nil, nil)

	assert.Equal(t, "", headerOf(t, rows, domain.FieldArticle))
}

func TestAutoMapWarehouses(t *testing.T) {
	headers := []string{"Артикул", "Ціна", "Наявність Київ Центр", "Наявність Львів"}
	warehouses := []*domain.Warehouse{
		{ID: "w-kyiv", Name: "Київ центр"},
		{ID: "w-lviv", Name: "Львів"},
		{ID: "w-odesa", Name: "Одеса"},
		{ID: "w-blank", Name: "  "},
	}

	rows := AutoMap(headers, warehouses, nil)

	require.Len(t, rows, 8)
	assert.Equal(t, "2", headerOf(t, rows, "w-kyiv"))
	assert.Equal(t, "3", headerOf(t, rows, "w-lviv"))
	assert.Equal(t, "", headerOf(t, rows, "w-odesa"))
	assert.Equal(t, "", headerOf(t, rows, "w-blank"))
	assert.Equal(t, domain.FieldTypeRests, rows[4].Type)
	assert.Equal(t, "Київ центр", rows[4].Name)
}

func TestAutoMapSavedTemplatePrecedence(t *testing.T) {
	headers := []string{"Артикул", "Ціна", "Львів"}
	warehouses := []*domain.Warehouse{{ID: "w-lviv", Name: "Львів"}}
	saved := []domain.TemplateRow{
		{Value: domain.FieldArticle, Type: domain.FieldTypeProp, Header: "1"},
		{Value: domain.FieldPrice, Type: domain.FieldTypeProp, Header: ""},
		{Value: "w-lviv", Type: domain.FieldTypeRests, Header: "Залишок"},
	}

	rows := AutoMap(headers, warehouses, saved)

	assert.Equal(t, "1", headerOf(t, rows, domain.FieldArticle))
	assert.Equal(t, "", headerOf(t, rows, domain.FieldPrice))
	assert.Equal(t, "Залишок", headerOf(t, rows, "w-lviv"))
}

func TestAutoMapIsPure(t *testing.T) {
	headers := []string{"Бренд", "Код", "Ціна", "Опис", "Склад 1"}
	warehouses := []*domain.Warehouse{{ID: "w1", Name: "склад 1"}}
	saved := []domain.TemplateRow{{Value: domain.FieldBrand, Type: domain.FieldTypeProp, Header: "0"}}

	headersCopy := append([]string(nil), headers...)
	first := AutoMap(headers, warehouses, saved)
	second := AutoMap(headers, warehouses, saved)

	assert.Equal(t, first, second)
	assert.Equal(t, headersCopy, headers)
	assert.Equal(t, "0", saved[0].Header)

	first[0].Aliases[0] = "mutated"
	assert.Equal(t, "brand", CanonicalFields[0].Aliases[0])
}

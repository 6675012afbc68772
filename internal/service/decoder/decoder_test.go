package decoder

import (
	"context"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"github.com/ougirez/pricelist/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"strings"
	"testing"
)

func run(t *testing.T, req dto.DecodeRequest) []dto.DecodeMessage {
	t.Helper()

	var msgs []dto.DecodeMessage
	terminal := New().Decode(context.Background(), req, func(m dto.DecodeMessage) {
		msgs = append(msgs, m)
	})
	return append(msgs, terminal)
}

func previewOf(t *testing.T, msgs []dto.DecodeMessage) dto.DecodePreview {
	t.Helper()

	var found []dto.DecodePreview
	for _, m := range msgs {
		if p, ok := m.(dto.DecodePreview); ok {
			found = append(found, p)
		}
	}
	require.Len(t, found, 1)
	return found[0]
}

func texts(rows []domain.RawRow) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = make(map[string]string, len(row))
		for k, c := range row {
			out[i][k] = c.String()
		}
	}
	return out
}

func TestDecodeCSVEndToEnd(t *testing.T) {
	msgs := run(t, dto.DecodeRequest{
		FileBuffer:       []byte("a,b,c\n1,2,3\n4,5,6\n7,8,9\n"),
		FileName:         "prices.csv",
		PreviewRowsCount: 2,
	})

	preview := previewOf(t, msgs)
	assert.Equal(t, []map[string]string{
		{"0": "1", "1": "2", "2": "3"},
		{"0": "4", "1": "5", "2": "6"},
	}, texts(preview.PreviewData))
	assert.Equal(t, []string{"a", "b", "c"}, preview.Metadata.Headers)
	assert.Equal(t, 3, preview.Metadata.RowCount)

	full, ok := msgs[len(msgs)-1].(dto.DecodeFull)
	require.True(t, ok)
	assert.Len(t, full.FileData, 3)
	assert.Equal(t, "9", full.FileData[2]["2"].String())
}

func TestDecodeMessageOrder(t *testing.T) {
	msgs := run(t, dto.DecodeRequest{
		FileBuffer:       []byte("a;b\n1;2\n"),
		FileName:         "x.txt",
		PreviewRowsCount: 10,
	})

	terminals := 0
	for i, m := range msgs {
		switch m.(type) {
		case dto.DecodeFull, dto.DecodeError:
			terminals++
			assert.Equal(t, len(msgs)-1, i)
		}
	}
	assert.Equal(t, 1, terminals)
}

func TestDecodeOffsets(t *testing.T) {
	msgs := run(t, dto.DecodeRequest{
		FileBuffer:       []byte("h\nr0\nr1\nr2\nr3\n"),
		FileName:         "x.csv",
		StartFrom:        2,
		PreviewRowsCount: 2,
		StartPreviewFrom: 3,
	})

	preview := previewOf(t, msgs)
	require.Len(t, preview.PreviewData, 1)
	assert.Equal(t, "r3", preview.PreviewData[0]["0"].String())

	full := msgs[len(msgs)-1].(dto.DecodeFull)
	require.Len(t, full.FileData, 2)
	assert.Equal(t, "r2", full.FileData[0]["0"].String())
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.DecodeRequest
	}{
		{"negative start", dto.DecodeRequest{FileName: "a.csv", StartFrom: -1}},
		{"negative preview count", dto.DecodeRequest{FileName: "a.csv", PreviewRowsCount: -5}},
		{"negative preview start", dto.DecodeRequest{FileName: "a.csv", StartPreviewFrom: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.FileBuffer = []byte("a\n1\n")

			msgs := run(t, tt.req)

			require.Len(t, msgs, 1)
			_, ok := msgs[0].(dto.DecodeError)
			assert.True(t, ok)
		})
	}
}

func TestDecodeEmptyContent(t *testing.T) {
	for _, body := range []string{"", "a,b,c\n", "a,b\n,\n"} {
		msgs := run(t, dto.DecodeRequest{FileBuffer: []byte(body), FileName: "x.csv"})

		last, ok := msgs[len(msgs)-1].(dto.DecodeError)
		require.True(t, ok, "body %q", body)
		assert.NotEmpty(t, last.Message)
		for _, m := range msgs {
			_, isPreview := m.(dto.DecodePreview)
			assert.False(t, isPreview)
		}
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		text string
		want rune
	}{
		{"a,b,c\n1,2,3", ','},
		{"a;b;c\n1;2,5;3", ';'},
		{"a\tb\tc\n1\t2\t3", '\t'},
		{"a|b|c", '|'},
		{"abc", ','},
		{"a;b,c", ','},
		{strings.Repeat("x", sniffSampleSize) + ";;;;", ','},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sniffDelimiter(tt.text), tt.text)
	}
}

func TestDecodeShortRowsAreMissing(t *testing.T) {
	msgs := run(t, dto.DecodeRequest{
		FileBuffer:       []byte("a;b;c\n1\n"),
		FileName:         "x.csv",
		PreviewRowsCount: 1,
	})

	full := msgs[len(msgs)-1].(dto.DecodeFull)
	require.Len(t, full.FileData, 1)
	assert.Equal(t, domain.CellMissing, full.FileData[0]["2"].Kind)
	assert.Equal(t, domain.CellText, full.FileData[0]["0"].Kind)
}

func TestDecodeWindows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("Артикул;Ціна\nA1;10,5\n")
	require.NoError(t, err)

	msgs := run(t, dto.DecodeRequest{FileBuffer: []byte(encoded), FileName: "x.csv", PreviewRowsCount: 1})

	preview := previewOf(t, msgs)
	assert.Equal(t, []string{"Артикул", "Ціна"}, preview.Metadata.Headers)
	assert.Equal(t, "10,5", preview.PreviewData[0]["1"].String())
}

func TestDecodeWorkbookFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Артикул", "Бренд", "Ціна"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"A1", "Bosch", "10.5"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"A2", "Mann", "7"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]any{"ignored"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	msgs := run(t, dto.DecodeRequest{FileBuffer: buf.Bytes(), FileName: "prices.xlsx", PreviewRowsCount: 1})

	preview := previewOf(t, msgs)
	assert.Equal(t, []string{"Артикул", "Бренд", "Ціна"}, preview.Metadata.Headers)
	assert.Equal(t, 2, preview.Metadata.RowCount)

	full := msgs[len(msgs)-1].(dto.DecodeFull)
	require.Len(t, full.FileData, 2)
	assert.Equal(t, "Mann", full.FileData[1]["1"].String())
}

func TestDecodeWorkbookStyledNumbers(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Артикул", "Ціна", "Залишок"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"00123", 1234.5, 1500}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"00124", 1234, 3}))

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	require.NoError(t, err)
	whole, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", money))
	require.NoError(t, f.SetCellStyle("Sheet1", "B3", "B3", whole))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C3", whole))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	msgs := run(t, dto.DecodeRequest{FileBuffer: buf.Bytes(), FileName: "prices.xlsx"})

	full, ok := msgs[len(msgs)-1].(dto.DecodeFull)
	require.True(t, ok)
	require.Len(t, full.FileData, 2)

	first, second := full.FileData[0], full.FileData[1]
	assert.Equal(t, domain.TextCell("00123"), first["0"])
	assert.Equal(t, domain.NumberCell(1234.5), first["1"])
	assert.Equal(t, domain.NumberCell(1500), first["2"])
	assert.Equal(t, "1500", first["2"].String())
	assert.Equal(t, domain.NumberCell(1234), second["1"])
	assert.Equal(t, domain.NumberCell(3), second["2"])
}

func TestDecodeEmptyWorkbook(t *testing.T) {
	buf, err := excelize.NewFile().WriteToBuffer()
	require.NoError(t, err)

	msgs := run(t, dto.DecodeRequest{FileBuffer: buf.Bytes(), FileName: "prices.xlsx"})

	require.Len(t, msgs, 2)
	_, ok := msgs[1].(dto.DecodeError)
	assert.True(t, ok)
}

func TestDecodeGarbageWorkbook(t *testing.T) {
	msgs := run(t, dto.DecodeRequest{FileBuffer: []byte{0x01, 0x02, 0x03}, FileName: "prices.xls"})

	_, ok := msgs[len(msgs)-1].(dto.DecodeError)
	assert.True(t, ok)
}

func TestDecodeHTMLTableSavedAsXLS(t *testing.T) {
	page := `<html><body><table>
<tr><th>Код</th><th>Ціна</th></tr>
<tr><td> A1 </td><td>10,5</td></tr>
<tr><td>A2</td><td><table><tr><td>nested</td></tr></table>7</td></tr>
</table></body></html>`

	msgs := run(t, dto.DecodeRequest{FileBuffer: []byte(page), FileName: "export.xls", PreviewRowsCount: 5})

	preview := previewOf(t, msgs)
	assert.Equal(t, []string{"Код", "Ціна"}, preview.Metadata.Headers)
	require.Len(t, preview.PreviewData, 2)
	assert.Equal(t, "A1", preview.PreviewData[0]["0"].String())
	assert.Equal(t, "A2", preview.PreviewData[1]["0"].String())
}

func TestDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	terminal := New().Decode(ctx, dto.DecodeRequest{
		FileBuffer: []byte("a\n1\n"),
		FileName:   "x.csv",
	}, func(dto.DecodeMessage) {})

	_, ok := terminal.(dto.DecodeError)
	assert.True(t, ok)
}

func TestDecodeThroughSession(t *testing.T) {
	d := New()
	h := session.Start(context.Background(), d.Job(dto.DecodeRequest{
		FileBuffer:       []byte("a,b\n1,2\n"),
		FileName:         "x.csv",
		PreviewRowsCount: 1,
	}), OnPanic)

	var last dto.DecodeMessage
	for {
		m, ok := h.Next()
		if !ok {
			break
		}
		last = m
	}

	full, ok := last.(dto.DecodeFull)
	require.True(t, ok)
	assert.Len(t, full.FileData, 1)
}

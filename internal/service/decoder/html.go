package decoder

import (
	"bytes"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"strings"
)

const htmlSniffSize = 4096

// looksLikeHTML catches spreadsheet exports that are HTML tables saved with
// an .xls name.
func looksLikeHTML(buf []byte) bool {
	head := bytes.TrimLeft(bytes.TrimPrefix(buf, utf8BOM), " \t\r\n")
	if len(head) == 0 || head[0] != '<' {
		return false
	}
	if len(head) > htmlSniffSize {
		head = head[:htmlSniffSize]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<table"))
}

// parseHTML reads the first table of the document.
func parseHTML(buf []byte) ([][]string, error) {
	text, err := decodeText(buf)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, fmt.Errorf("no table in document: %w", constants.ErrUnsupportedFormat)
	}

	var grid [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// скипаем строки вложенных таблиц
		if tr.Closest("table").Get(0) != tbl.Get(0) {
			return
		}

		cells := tr.ChildrenFiltered("td, th")
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(strings.ReplaceAll(cell.Text(), "\u00a0", " ")))
		})
		grid = append(grid, row)
	})

	if len(grid) == 0 {
		return nil, emptyFileErr("table has no rows")
	}
	return grid, nil
}

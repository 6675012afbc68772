package decoder

import (
	"context"
	"fmt"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"strconv"
	"strings"
)

type table struct {
	headers []string
	data    [][]domain.Cell
}

// shape splits the header row from data rows and drops blank rows.
func shape(grid [][]domain.Cell) (*table, error) {
	if len(grid) == 0 {
		return nil, emptyFileErr("file is empty")
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	headers := make([]string, width)
	for i, c := range grid[0] {
		headers[i] = c.String()
	}

	data := make([][]domain.Cell, 0, len(grid)-1)
	for _, row := range grid[1:] {
		if isBlank(row) {
			continue
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return nil, emptyFileErr("no data rows after the header row")
	}

	return &table{headers: headers, data: data}, nil
}

// rows builds row objects for data[from:from+count], clipped to the data.
func (t *table) rows(ctx context.Context, from, count int) ([]domain.RawRow, error) {
	if from > len(t.data) {
		from = len(t.data)
	}
	to := from + count
	if to > len(t.data) || to < from {
		to = len(t.data)
	}

	out := make([]domain.RawRow, 0, to-from)
	for i := from; i < to; i++ {
		if (i-from)%yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out = append(out, rowObject(t.data[i], len(t.headers)))
	}
	return out, nil
}

func rowObject(cells []domain.Cell, width int) domain.RawRow {
	row := make(domain.RawRow, width)
	for i := 0; i < width; i++ {
		key := columnKey(i)
		if i < len(cells) {
			row[key] = cells[i]
		} else {
			row[key] = domain.Cell{}
		}
	}
	return row
}

func isBlank(row []domain.Cell) bool {
	for _, c := range row {
		if strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}

func emptyFileErr(msg string) error {
	return fmt.Errorf("%s: %w", msg, constants.ErrEmptyFile)
}

var columnKeys = func() []string {
	keys := make([]string, 256)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}()

func columnKey(i int) string {
	if i < len(columnKeys) {
		return columnKeys[i]
	}
	return strconv.Itoa(i)
}

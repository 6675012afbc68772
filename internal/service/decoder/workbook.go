package decoder

import (
	"bytes"
	"fmt"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/xuri/excelize/v2"
	"strconv"
)

// parseWorkbook reads the first sheet only. Cells come back as stored, so a
// styled number like "1,234.50" arrives as 1234.5.
func parseWorkbook(buf []byte) (grid [][]domain.Cell, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenReader: %w", constants.ErrUnsupportedFormat)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", closeErr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, constants.ErrNoSheet
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("GetRows %s: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, emptyFileErr(fmt.Sprintf("sheet %q is empty", sheet))
	}

	grid = make([][]domain.Cell, len(raw))
	for r, values := range raw {
		row := make([]domain.Cell, len(values))
		for c, v := range values {
			if row[c], err = workbookCell(f, sheet, r, c, v); err != nil {
				return nil, err
			}
		}
		grid[r] = row
	}

	return grid, nil
}

// workbookCell keeps strings as text, including digit-only strings like
// articles with leading zeros. Only numeric cells become numbers.
func workbookCell(f *excelize.File, sheet string, r, c int, v string) (domain.Cell, error) {
	if v == "" {
		return domain.TextCell(v), nil
	}

	name, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return domain.Cell{}, fmt.Errorf("CoordinatesToCellName: %w", err)
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return domain.Cell{}, fmt.Errorf("GetCellType %s: %w", name, err)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, parseErr := strconv.ParseFloat(v, 64); parseErr == nil {
			return domain.NumberCell(n), nil
		}
	}
	return domain.TextCell(v), nil
}

package domain

import (
	"github.com/bytedance/sonic"
	"strconv"
)

type CellKind uint8

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
)

// Cell is a single decoded value: text, number or missing.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return sonic.Marshal(c.Text)
	case CellNumber:
		return sonic.Marshal(c.Number)
	default:
		return []byte("null"), nil
	}
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case nil:
		*c = Cell{}
	case string:
		*c = TextCell(t)
	case float64:
		*c = NumberCell(t)
	default:
		*c = TextCell(string(data))
	}
	return nil
}

// RawRow maps a stringified column position to its cell.
type RawRow map[string]Cell

// Get returns CellMissing for unknown or empty keys.
func (r RawRow) Get(key string) Cell {
	if key == "" {
		return Cell{}
	}
	return r[key]
}

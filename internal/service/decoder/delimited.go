package decoder

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"golang.org/x/text/encoding/charmap"
	"io"
	"strings"
	"unicode/utf8"
)

const sniffSampleSize = 5000

var candidateDelimiters = []rune{',', ';', '\t', '|'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText strips a UTF-8 BOM and falls back to Windows-1251 for input
// that is not valid UTF-8.
func decodeText(buf []byte) (string, error) {
	buf = bytes.TrimPrefix(buf, utf8BOM)
	if utf8.Valid(buf) {
		return string(buf), nil
	}

	decoded, err := charmap.Windows1251.NewDecoder().Bytes(buf)
	if err != nil {
		return "", fmt.Errorf("windows-1251 decode: %w", err)
	}
	return string(decoded), nil
}

// sniffDelimiter picks the most frequent candidate in the sample. Ties go
// to the earlier candidate, so comma wins when nothing is found.
func sniffDelimiter(text string) rune {
	sample := text
	if len(sample) > sniffSampleSize {
		sample = sample[:sniffSampleSize]
	}

	best, bestCount := candidateDelimiters[0], -1
	for _, d := range candidateDelimiters {
		if n := strings.Count(sample, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func parseDelimited(ctx context.Context, buf []byte) ([][]string, error) {
	text, err := decodeText(buf)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var grid [][]string
	for {
		if len(grid)%yieldEvery == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, readErr := r.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("csv read: %w", readErr)
		}
		grid = append(grid, record)
	}

	return grid, nil
}

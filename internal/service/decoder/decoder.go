package decoder

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/bytes"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"github.com/ougirez/pricelist/internal/pkg/session"
	"go.uber.org/zap"
	"path/filepath"
	"strings"
)

// rows between cancellation checks
const yieldEvery = 10000

type format int

const (
	formatDelimited format = iota
	formatWorkbook
	formatHTML
)

type Decoder struct {
	validate *validator.Validate
}

func New() *Decoder {
	return &Decoder{validate: validator.New()}
}

// Job adapts Decode to a session invocation.
func (d *Decoder) Job(req dto.DecodeRequest) session.Func[dto.DecodeMessage] {
	return func(ctx context.Context, emit func(dto.DecodeMessage)) dto.DecodeMessage {
		return d.Decode(ctx, req, emit)
	}
}

func OnPanic(err error) dto.DecodeMessage {
	return dto.DecodeError{Message: err.Error()}
}

// Decode emits progress and exactly one preview, and returns the terminal
// message: DecodeFull on success, DecodeError otherwise.
func (d *Decoder) Decode(ctx context.Context, req dto.DecodeRequest, emit func(dto.DecodeMessage)) dto.DecodeMessage {
	ctx = logger.With(ctx, zap.String("file_name", req.FileName))

	if err := d.validate.Struct(req); err != nil {
		return decodeError(ctx, fmt.Errorf("invalid request: %w", err))
	}

	logger.Debugf(ctx, "decoding %s", bytes.Format(int64(len(req.FileBuffer))))
	emit(dto.DecodeProgress{Message: "reading file", Percentage: 10})

	grid, err := parse(ctx, req.FileName, req.FileBuffer)
	if err != nil {
		return decodeError(ctx, err)
	}

	emit(dto.DecodeProgress{Message: "file parsed", Percentage: 50})

	table, err := shape(grid)
	if err != nil {
		return decodeError(ctx, err)
	}

	preview, err := table.rows(ctx, req.StartPreviewFrom, req.PreviewRowsCount)
	if err != nil {
		return decodeError(ctx, err)
	}

	emit(dto.DecodePreview{
		PreviewData: preview,
		Metadata: dto.PreviewMetadata{
			Headers:  table.headers,
			RowCount: len(table.data),
		},
	})
	emit(dto.DecodeProgress{Message: "building rows", Percentage: 80})

	full, err := table.rows(ctx, req.StartFrom, len(table.data))
	if err != nil {
		return decodeError(ctx, err)
	}

	logger.Debugf(ctx, "decoded %d rows, %d columns", len(full), len(table.headers))
	return dto.DecodeFull{FileData: full}
}

func decodeError(ctx context.Context, err error) dto.DecodeMessage {
	if !errors.Is(err, context.Canceled) {
		logger.Warnf(ctx, "decode: %s", err.Error())
	}
	return dto.DecodeError{Message: err.Error()}
}

func detectFormat(fileName string, buf []byte) format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return formatDelimited
	case ".html", ".htm":
		return formatHTML
	}

	if looksLikeHTML(buf) {
		return formatHTML
	}
	return formatWorkbook
}

func parse(ctx context.Context, fileName string, buf []byte) ([][]domain.Cell, error) {
	switch detectFormat(fileName, buf) {
	case formatDelimited:
		return textGrid(parseDelimited(ctx, buf))
	case formatHTML:
		return textGrid(parseHTML(buf))
	default:
		return parseWorkbook(buf)
	}
}

// textGrid wraps formats that carry no cell types.
func textGrid(grid [][]string, err error) ([][]domain.Cell, error) {
	if err != nil {
		return nil, err
	}

	out := make([][]domain.Cell, len(grid))
	for i, row := range grid {
		cells := make([]domain.Cell, len(row))
		for j, v := range row {
			cells[j] = domain.TextCell(v)
		}
		out[i] = cells
	}
	return out, nil
}

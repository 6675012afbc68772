package dto

import "github.com/ougirez/pricelist/internal/domain"

type DecodeRequest struct {
	FileBuffer       []byte `json:"-"`
	FileName         string `json:"file_name" validate:"required"`
	StartFrom        int    `json:"start_from" validate:"gte=0"`
	PreviewRowsCount int    `json:"preview_rows_count" validate:"gte=0"`
	StartPreviewFrom int    `json:"start_preview_from" validate:"gte=0"`
}

// DecodeMessage is one of DecodeProgress, DecodePreview, DecodeFull or DecodeError.
type DecodeMessage interface {
	decodeMessage()
}

type DecodeProgress struct {
	Message    string  `json:"message"`
	Percentage float64 `json:"percentage"`
}

type PreviewMetadata struct {
	Headers  []string `json:"headers"`
	RowCount int      `json:"row_count"`
}

type DecodePreview struct {
	PreviewData []domain.RawRow `json:"preview_data"`
	Metadata    PreviewMetadata `json:"metadata"`
}

type DecodeFull struct {
	FileData []domain.RawRow `json:"file_data"`
}

type DecodeError struct {
	Message string `json:"message"`
}

func (DecodeProgress) decodeMessage() {}
func (DecodePreview) decodeMessage()  {}
func (DecodeFull) decodeMessage()     {}
func (DecodeError) decodeMessage()    {}

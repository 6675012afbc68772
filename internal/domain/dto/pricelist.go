package dto

import "github.com/ougirez/pricelist/internal/domain"

type PreviewRequest struct {
	ProviderID       string `validate:"required"`
	FileName         string `validate:"required"`
	FileBuffer       []byte
	PreviewRows      int `validate:"gte=0"`
	StartPreviewFrom int `validate:"gte=0"`
}

type PreviewResponse struct {
	Preview  []domain.RawRow      `json:"preview"`
	Metadata PreviewMetadata      `json:"metadata"`
	Mapping  []domain.TemplateRow `json:"mapping"`
}

// StartUploadRequest is a whole file to decode, transform and upload.
// An empty Mapping is replaced by the auto-mapped one.
type StartUploadRequest struct {
	ProviderID string `validate:"required"`
	FileName   string `validate:"required"`
	FileBuffer []byte
	Currency   string
	Mapping    []domain.TemplateRow `validate:"dive"`
	TenantID   string
	AuthToken  string
	LoadedID   string
	Settings   UploadSettings
}

type UploadStarted struct {
	JobID      string `json:"job_id"`
	Hash       string `json:"hash"`
	TotalCount int    `json:"total_count"`
}

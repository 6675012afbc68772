package dto

import (
	"github.com/ougirez/pricelist/internal/domain"
	"time"
)

type UploadSettings struct {
	StartFrom        int `json:"start_from" validate:"gte=0"`
	ChunkSize        int `json:"chunk_size" validate:"gte=0"`
	ConcurrencyLimit int `json:"concurrency_limit" validate:"gte=0"`
}

type UploadRequest struct {
	Rows       []domain.TransformedItem `json:"rows"`
	Hash       string                   `json:"hash" validate:"required"`
	ProviderID string                   `json:"provider_id" validate:"required"`
	LoadedID   string                   `json:"loaded_id,omitempty"`
	TenantID   string                   `json:"tenant_id"`
	AuthToken  string                   `json:"-"`
	Currency   string                   `json:"currency"`
	Settings   UploadSettings           `json:"settings"`
}

// UploadMessage is one of UploadProgress, UploadComplete or UploadError.
type UploadMessage interface {
	uploadMessage()
}

type UploadProgress struct {
	UploadedCount int     `json:"uploaded_count"`
	TotalCount    int     `json:"total_count"`
	Percentage    float64 `json:"percentage"`
	Message       string  `json:"message"`
}

type UploadComplete struct {
	TotalCount int `json:"total_count"`
}

type UploadError struct {
	Message       string  `json:"message"`
	UploadedCount int     `json:"uploaded_count"`
	TotalCount    int     `json:"total_count"`
	Percentage    float64 `json:"percentage"`
}

func (UploadProgress) uploadMessage() {}
func (UploadComplete) uploadMessage() {}
func (UploadError) uploadMessage()    {}

type JobState string

const (
	JobStateRunning   JobState = "running"
	JobStateComplete  JobState = "complete"
	JobStateFailed    JobState = "failed"
	JobStateCancelled JobState = "cancelled"
)

// JobStatus is the last known state of an upload session.
type JobStatus struct {
	ID            string    `json:"id"`
	ProviderID    string    `json:"provider_id"`
	Hash          string    `json:"hash"`
	State         JobState  `json:"state"`
	UploadedCount int       `json:"uploaded_count"`
	TotalCount    int       `json:"total_count"`
	Percentage    float64   `json:"percentage"`
	Message       string    `json:"message,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (j *JobStatus) Apply(msg UploadMessage, now time.Time) {
	j.UpdatedAt = now
	switch m := msg.(type) {
	case UploadProgress:
		if m.UploadedCount >= j.UploadedCount {
			j.UploadedCount = m.UploadedCount
			j.Percentage = m.Percentage
		}
		j.TotalCount = m.TotalCount
		j.Message = m.Message
	case UploadComplete:
		j.State = JobStateComplete
		j.UploadedCount = m.TotalCount
		j.TotalCount = m.TotalCount
		j.Percentage = 100
		j.Message = ""
	case UploadError:
		j.State = JobStateFailed
		j.UploadedCount = m.UploadedCount
		j.TotalCount = m.TotalCount
		j.Percentage = m.Percentage
		j.Message = m.Message
	}
}

func (j *JobStatus) Finished() bool {
	return j.State != JobStateRunning
}

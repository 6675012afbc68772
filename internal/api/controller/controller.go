package controller

import (
	"context"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/domain/dto"
)

type PricelistService interface {
	GetTemplate(ctx context.Context, providerID string) (*domain.Template, error)
	SaveTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error)
	Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error)
	StartUpload(ctx context.Context, req dto.StartUploadRequest) (*dto.UploadStarted, error)
	JobStatus(ctx context.Context, jobID string) (*dto.JobStatus, error)
	CancelUpload(ctx context.Context, jobID string) error
}

type Controller struct {
	service PricelistService
}

func NewController(service PricelistService) *Controller {
	return &Controller{service: service}
}

package pricelist

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"github.com/ougirez/pricelist/internal/pkg/archive"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/ougirez/pricelist/internal/pkg/jobs"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"github.com/ougirez/pricelist/internal/pkg/session"
	"github.com/ougirez/pricelist/internal/service/automap"
	"github.com/ougirez/pricelist/internal/service/decoder"
	"github.com/ougirez/pricelist/internal/service/transform"
	"github.com/ougirez/pricelist/internal/service/uploader"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"net/http"
	"sync"
	"time"
)

type Store interface {
	uploader.Store
	ListWarehouses(ctx context.Context, providerID string) ([]*domain.Warehouse, error)
	SaveTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error)
	GetLatestTemplate(ctx context.Context, providerID string) (*domain.Template, error)
	ExpireStaleUploads(ctx context.Context, before time.Time) (int64, error)
}

type TenantResolver interface {
	TenantID(token string) (string, error)
}

type upload struct {
	handle *session.Handle[dto.UploadMessage]
	done   chan struct{}
}

type Service struct {
	store     Store
	decoder   *decoder.Decoder
	scheduler *uploader.Scheduler
	uploadCfg uploader.Config
	jobs      jobs.Store
	archive   archive.Archiver
	tenants   TenantResolver
	validate  *validator.Validate
	now       func() time.Time

	// загрузки живут дольше запроса, который их запустил
	baseCtx context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	channels map[string]*session.Channel[dto.UploadMessage]
	uploads  map[string]*upload
	wg       sync.WaitGroup
}

func NewService(
	store Store,
	uploadCfg uploader.Config,
	jobStore jobs.Store,
	archiver archive.Archiver,
	tenants TenantResolver,
) *Service {
	baseCtx, stop := context.WithCancel(context.Background())
	return &Service{
		store:     store,
		decoder:   decoder.New(),
		scheduler: uploader.NewScheduler(store, uploadCfg),
		uploadCfg: uploadCfg,
		jobs:      jobStore,
		archive:   archiver,
		tenants:   tenants,
		validate:  validator.New(),
		now:       time.Now,
		baseCtx:   baseCtx,
		stop:      stop,
		channels:  make(map[string]*session.Channel[dto.UploadMessage]),
		uploads:   make(map[string]*upload),
	}
}

// Close отменяет все загрузки и ждет их наблюдателей.
func (s *Service) Close() {
	s.stop()
	s.wg.Wait()
}

func (s *Service) GetTemplate(ctx context.Context, providerID string) (*domain.Template, error) {
	template, err := s.store.GetLatestTemplate(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("store.GetLatestTemplate: %w", err)
	}
	return template, nil
}

func (s *Service) SaveTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if err := s.validate.Struct(template); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), constants.ErrBadRequest)
	}

	saved, err := s.store.SaveTemplate(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("store.SaveTemplate: %w", err)
	}
	return saved, nil
}

// MapHeaders auto-maps headers against the provider's warehouses and its
// latest saved template.
func (s *Service) MapHeaders(ctx context.Context, providerID string, headers []string) ([]domain.TemplateRow, error) {
	var (
		warehouses []*domain.Warehouse
		saved      []domain.TemplateRow
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		warehouses, err = s.store.ListWarehouses(egCtx, providerID)
		if err != nil {
			return fmt.Errorf("store.ListWarehouses: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		template, err := s.store.GetLatestTemplate(egCtx, providerID)
		if errors.Is(err, constants.ErrDBNotFound) {
			// скипаем, шаблона еще нет
			return nil
		}
		if err != nil {
			return fmt.Errorf("store.GetLatestTemplate: %w", err)
		}
		saved = template.Rows
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return automap.AutoMap(headers, warehouses, saved), nil
}

type decoded struct {
	preview dto.DecodePreview
	rows    []domain.RawRow
}

// decode runs the decoder in its own session and drains it.
func (s *Service) decode(ctx context.Context, req dto.DecodeRequest) (*decoded, error) {
	h := session.Start(ctx, s.decoder.Job(req), decoder.OnPanic)
	defer h.Cancel()

	var out decoded
	for {
		msg, ok := h.Next()
		if !ok {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, errors.New("decoder stopped without a result")
		}

		switch m := msg.(type) {
		case dto.DecodeProgress:
			logger.Debugf(ctx, "decode %.0f%%: %s", m.Percentage, m.Message)
		case dto.DecodePreview:
			out.preview = m
		case dto.DecodeFull:
			out.rows = m.FileData
			return &out, nil
		case dto.DecodeError:
			return nil, constants.NewCodedError(http.StatusBadRequest, m.Message)
		}
	}
}

func (s *Service) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), constants.ErrBadRequest)
	}
	ctx = logger.With(ctx, zap.String("provider_id", req.ProviderID))

	res, err := s.decode(ctx, dto.DecodeRequest{
		FileBuffer:       req.FileBuffer,
		FileName:         req.FileName,
		PreviewRowsCount: req.PreviewRows,
		StartPreviewFrom: req.StartPreviewFrom,
	})
	if err != nil {
		return nil, err
	}

	mapping, err := s.MapHeaders(ctx, req.ProviderID, res.preview.Metadata.Headers)
	if err != nil {
		return nil, err
	}

	return &dto.PreviewResponse{
		Preview:  res.preview.PreviewData,
		Metadata: res.preview.Metadata,
		Mapping:  mapping,
	}, nil
}

func (s *Service) resolveTenant(tenantID, token string) (string, error) {
	if tenantID != "" {
		return tenantID, nil
	}
	tenantID, err := s.tenants.TenantID(token)
	if err != nil {
		return "", fmt.Errorf("tenants.TenantID: %w", err)
	}
	return tenantID, nil
}

// Prepare transforms decoded rows and hashes the result. An empty tenantID
// is taken from the auth token.
func (s *Service) Prepare(
	ctx context.Context,
	rows []domain.RawRow,
	mapping []domain.TemplateRow,
	providerID, tenantID, token string,
) ([]domain.TransformedItem, string, error) {
	tenantID, err := s.resolveTenant(tenantID, token)
	if err != nil {
		return nil, "", err
	}

	items, err := transform.Transform(ctx, rows, mapping, providerID)
	if err != nil {
		return nil, "", fmt.Errorf("transform.Transform: %w", err)
	}

	hash, err := transform.Hash(ctx, items, tenantID)
	if err != nil {
		return nil, "", fmt.Errorf("transform.Hash: %w", err)
	}

	return items, hash, nil
}

// StartUpload decodes and transforms the file, then starts an upload session
// in the background. A newer upload of the same provider cancels the
// running one.
func (s *Service) StartUpload(ctx context.Context, req dto.StartUploadRequest) (*dto.UploadStarted, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), constants.ErrBadRequest)
	}
	ctx = logger.With(ctx, zap.String("provider_id", req.ProviderID))

	tenantID, err := s.resolveTenant(req.TenantID, req.AuthToken)
	if err != nil {
		return nil, err
	}

	res, err := s.decode(ctx, dto.DecodeRequest{FileBuffer: req.FileBuffer, FileName: req.FileName})
	if err != nil {
		return nil, err
	}

	mapping := req.Mapping
	if len(mapping) == 0 {
		if mapping, err = s.MapHeaders(ctx, req.ProviderID, res.preview.Metadata.Headers); err != nil {
			return nil, err
		}
	}

	items, hash, err := s.Prepare(ctx, res.rows, mapping, req.ProviderID, tenantID, req.AuthToken)
	if err != nil {
		return nil, err
	}

	uploadReq := dto.UploadRequest{
		Rows:       items,
		Hash:       hash,
		ProviderID: req.ProviderID,
		LoadedID:   req.LoadedID,
		TenantID:   tenantID,
		Currency:   req.Currency,
		Settings:   req.Settings,
	}
	jobID, err := s.startJob(ctx, uploadReq)
	if err != nil {
		return nil, err
	}

	return &dto.UploadStarted{JobID: jobID, Hash: hash, TotalCount: len(items)}, nil
}

func (s *Service) startJob(ctx context.Context, req dto.UploadRequest) (string, error) {
	status := &dto.JobStatus{
		ID:         uuid.NewString(),
		ProviderID: req.ProviderID,
		Hash:       req.Hash,
		State:      dto.JobStateRunning,
		TotalCount: len(req.Rows),
		UpdatedAt:  s.now(),
	}
	if err := s.jobs.Save(ctx, status); err != nil {
		return "", fmt.Errorf("jobs.Save: %w", err)
	}

	s.mu.Lock()
	ch, ok := s.channels[req.ProviderID]
	if !ok {
		ch = new(session.Channel[dto.UploadMessage])
		s.channels[req.ProviderID] = ch
	}
	jobCtx := logger.With(s.baseCtx, zap.String("job_id", status.ID))
	u := &upload{
		handle: ch.Start(jobCtx, s.scheduler.Job(req), uploader.OnPanic),
		done:   make(chan struct{}),
	}
	s.uploads[status.ID] = u
	s.wg.Add(1)
	s.mu.Unlock()

	go s.observe(jobCtx, status, req, u)

	logger.Infof(ctx, "upload job %s started, %d rows", status.ID, len(req.Rows))
	return status.ID, nil
}

// observe folds session messages into the job status until the session ends.
func (s *Service) observe(ctx context.Context, status *dto.JobStatus, req dto.UploadRequest, u *upload) {
	defer s.wg.Done()
	defer close(u.done)
	defer func() {
		s.mu.Lock()
		delete(s.uploads, status.ID)
		// канал нужен, пока на нем висит следующая загрузка поставщика
		if ch, ok := s.channels[req.ProviderID]; ok && ch.Current() == u.handle {
			delete(s.channels, req.ProviderID)
		}
		s.mu.Unlock()
	}()

	for {
		msg, ok := u.handle.Next()
		if !ok {
			break
		}

		status.Apply(msg, s.now())
		s.saveStatus(ctx, status)

		if _, complete := msg.(dto.UploadComplete); complete {
			chunkSize := s.uploadCfg.ChunkSize(req.Settings.ChunkSize)
			if err := s.archive.Archive(ctx, status.ID, req.Rows, chunkSize); err != nil {
				logger.Errorf(ctx, "archive: %s", err.Error())
			}
		}
	}

	if !status.Finished() {
		status.State = dto.JobStateCancelled
		status.Message = "upload cancelled"
		status.UpdatedAt = s.now()
		s.saveStatus(ctx, status)
	}
}

func (s *Service) saveStatus(ctx context.Context, status *dto.JobStatus) {
	// на остановке контекст уже может быть отменен
	if err := s.jobs.Save(context.WithoutCancel(ctx), status); err != nil {
		logger.Errorf(ctx, "jobs.Save: %s", err.Error())
	}
}

// CancelUpload invalidates the job's session and waits until its status is
// recorded. Rows already committed stay in the store.
func (s *Service) CancelUpload(ctx context.Context, jobID string) error {
	s.mu.Lock()
	u, ok := s.uploads[jobID]
	s.mu.Unlock()

	if !ok {
		if _, err := s.jobs.Get(ctx, jobID); err != nil {
			return fmt.Errorf("jobs.Get: %w", err)
		}
		return nil
	}

	u.handle.Cancel()
	select {
	case <-u.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) JobStatus(ctx context.Context, jobID string) (*dto.JobStatus, error) {
	status, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobs.Get: %w", err)
	}
	return status, nil
}

// SweepStale fails uploads left in the uploading state for longer than staleAfter.
func (s *Service) SweepStale(ctx context.Context, staleAfter time.Duration) (int64, error) {
	n, err := s.store.ExpireStaleUploads(ctx, s.now().Add(-staleAfter))
	if err != nil {
		return 0, fmt.Errorf("store.ExpireStaleUploads: %w", err)
	}
	if n > 0 {
		logger.Warnf(ctx, "marked %d stale uploads as failed", n)
	}
	return n, nil
}

// RunSweeper раз в interval вызывает SweepStale, пока жив ctx.
func (s *Service) RunSweeper(ctx context.Context, interval, staleAfter time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepStale(ctx, staleAfter); err != nil {
				logger.Errorf(ctx, "sweep stale uploads: %s", err.Error())
			}
		}
	}
}

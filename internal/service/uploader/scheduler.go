package uploader

import (
	"context"
	"errors"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"github.com/ougirez/pricelist/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"sync/atomic"
	"time"
)

type Store interface {
	UpsertLoaded(ctx context.Context, hash string) (*domain.Loaded, error)
	MarkLoadedComplete(ctx context.Context, id string) error
	InsertHistory(ctx context.Context, history *domain.History) (*domain.History, error)
	UpdateHistoryStatus(ctx context.Context, id string, status domain.HistoryStatus, clearLoaded bool) error
	RetireHistory(ctx context.Context, providerID, keepID string, before time.Time) (int64, error)
	HasLiveHistory(ctx context.Context, providerID, loadedID string) (bool, error)
	InsertPrices(ctx context.Context, rows []domain.PriceRow) error
	DeletePrices(ctx context.Context, loadedID string) (int64, error)
}

type Scheduler struct {
	store    Store
	cfg      Config
	validate *validator.Validate
}

func NewScheduler(store Store, cfg Config) *Scheduler {
	if cfg.NewBackOff == nil {
		cfg.NewBackOff = defaultBackOff
	}
	return &Scheduler{store: store, cfg: cfg, validate: validator.New()}
}

func (s *Scheduler) Job(req dto.UploadRequest) session.Func[dto.UploadMessage] {
	return func(ctx context.Context, emit func(dto.UploadMessage)) dto.UploadMessage {
		return s.Upload(ctx, req, emit)
	}
}

func OnPanic(err error) dto.UploadMessage {
	return dto.UploadError{Message: err.Error()}
}

// Upload resolves the snapshot, records a history row, inserts rows unless
// the snapshot is cloned or already complete, and retires older snapshots of
// the provider. Rows left under an incomplete snapshot are dropped before a
// run that starts from the first row.
func (s *Scheduler) Upload(ctx context.Context, req dto.UploadRequest, emit func(dto.UploadMessage)) dto.UploadMessage {
	ctx = logger.With(ctx,
		zap.String("provider_id", req.ProviderID),
		zap.String("hash", req.Hash),
		zap.String("tenant_id", req.TenantID),
	)
	total := len(req.Rows)

	if err := s.validate.Struct(req); err != nil {
		return setupError(ctx, total, fmt.Errorf("invalid request: %w", err))
	}

	start := min(max(req.Settings.StartFrom, 0), total)
	cloned := req.LoadedID != ""
	loadedID := req.LoadedID
	reused := false
	if !cloned {
		loaded, err := s.store.UpsertLoaded(ctx, req.Hash)
		if err != nil {
			return setupError(ctx, total, fmt.Errorf("store.UpsertLoaded: %w", err))
		}
		loadedID = loaded.ID

		live, err := s.store.HasLiveHistory(ctx, req.ProviderID, loadedID)
		if err != nil {
			return setupError(ctx, total, fmt.Errorf("store.HasLiveHistory: %w", err))
		}
		if live {
			return setupError(ctx, total, constants.ErrSnapshotAlreadyActual)
		}

		reused = loaded.Complete
		if !reused && start == 0 {
			dropped, err := s.store.DeletePrices(ctx, loadedID)
			if err != nil {
				return setupError(ctx, total, fmt.Errorf("store.DeletePrices: %w", err))
			}
			if dropped > 0 {
				logger.Warnf(ctx, "dropped %d rows of an unfinished upload of snapshot %s", dropped, loadedID)
			}
		}
	}

	status := domain.HistoryStatusUploading
	if cloned {
		status = domain.HistoryStatusCloned
	}
	history, err := s.store.InsertHistory(ctx, &domain.History{
		ProviderID: req.ProviderID,
		Status:     status,
		LoadedID:   &loadedID,
		Currency:   req.Currency,
	})
	if err != nil {
		return setupError(ctx, total, fmt.Errorf("store.InsertHistory: %w", err))
	}
	ctx = logger.With(ctx, zap.String("history_id", history.ID), zap.String("loaded_id", loadedID))

	progress := newTracker(total, start, s.cfg.ProgressInterval, emit)

	if !cloned && !reused {
		progress.report(true)

		err = s.insertRows(ctx, req.Rows[start:], loadedID, req.Settings, progress)
		if err == nil {
			if err = s.store.MarkLoadedComplete(ctx, loadedID); err != nil {
				err = fmt.Errorf("store.MarkLoadedComplete: %w", err)
			}
		}
		if err != nil {
			if ctx.Err() == nil {
				if markErr := s.store.UpdateHistoryStatus(ctx, history.ID, domain.HistoryStatusFailed, false); markErr != nil {
					logger.Errorf(ctx, "mark history failed: %s", markErr.Error())
				}
			}
			logger.Errorf(ctx, "insert rows: %s", err.Error())
			return progress.failure(err)
		}
	}

	if err = s.finalize(ctx, history); err != nil {
		logger.Errorf(ctx, "finalize: %s", err.Error())
		return progress.failure(err)
	}

	logger.Infof(ctx, "upload complete, %d rows, cloned=%t, reused=%t", total, cloned, reused)
	return dto.UploadComplete{TotalCount: total}
}

func setupError(ctx context.Context, total int, err error) dto.UploadMessage {
	logger.Errorf(ctx, "upload setup: %s", err.Error())
	return dto.UploadError{Message: err.Error(), TotalCount: total}
}

// finalize only fails when the snapshot could not be made actual.
func (s *Scheduler) finalize(ctx context.Context, history *domain.History) error {
	if err := s.store.UpdateHistoryStatus(ctx, history.ID, domain.HistoryStatusActual, false); err != nil {
		return fmt.Errorf("store.UpdateHistoryStatus: %w", err)
	}

	var retired int64
	err := backoff.Retry(
		func() error {
			var retireErr error
			retired, retireErr = s.store.RetireHistory(ctx, history.ProviderID, history.ID, history.CreatedAt)
			if retireErr != nil && classify(retireErr) != classRetryable {
				return backoff.Permanent(retireErr)
			}
			return retireErr
		},
		backoff.WithContext(backoff.WithMaxRetries(s.cfg.NewBackOff(), s.cfg.retries()), ctx),
	)
	if err != nil {
		// снапшот уже актуален, старые строки подберет следующая загрузка
		logger.Errorf(ctx, "store.RetireHistory: %s", err.Error())
		return nil
	}

	logger.Debugf(ctx, "retired %d older snapshots", retired)
	return nil
}

// insertRows runs a fixed pool of workers that claim chunks from a shared
// cursor. After the first failure no new chunks are claimed.
func (s *Scheduler) insertRows(
	ctx context.Context,
	rows []domain.TransformedItem,
	loadedID string,
	settings dto.UploadSettings,
	progress *tracker,
) error {
	chunkSize := s.cfg.ChunkSize(settings.ChunkSize)
	workers := s.cfg.concurrency(settings.ConcurrencyLimit)
	limiter := newLimiter(s.cfg.RequestsPerSecond)
	n := int64(len(rows))

	var (
		cursor  atomic.Int64
		aborted atomic.Bool
		eg      errgroup.Group
	)

	for w := 0; w < workers; w++ {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					aborted.Store(true)
					err = fmt.Errorf("panic in upload worker: %v", r)
				}
			}()

			for !aborted.Load() {
				lo := cursor.Add(int64(chunkSize)) - int64(chunkSize)
				if lo >= n {
					return nil
				}
				hi := min(lo+int64(chunkSize), n)

				if err = s.insertChunk(ctx, limiter, rows[lo:hi], loadedID, progress); err != nil {
					aborted.Store(true)
					return fmt.Errorf("rows %d-%d: %w", lo, hi, err)
				}
			}
			return nil
		})
	}

	return eg.Wait()
}

// insertChunk retries transient failures and splits the chunk in half when
// the store rejects it as too large. Halves get their own retry budget.
func (s *Scheduler) insertChunk(
	ctx context.Context,
	limiter *rate.Limiter,
	items []domain.TransformedItem,
	loadedID string,
	progress *tracker,
) error {
	payload := make([]domain.PriceRow, len(items))
	for i, item := range items {
		payload[i] = domain.NewPriceRow(item, loadedID)
	}

	err := backoff.Retry(
		func() error {
			if waitErr := limiter.Wait(ctx); waitErr != nil {
				return backoff.Permanent(waitErr)
			}

			insertErr := s.store.InsertPrices(ctx, payload)
			if insertErr == nil {
				return nil
			}
			if classify(insertErr) == classRetryable {
				logger.Warnf(ctx, "insert %d rows, retrying: %s", len(payload), insertErr.Error())
				return insertErr
			}
			return backoff.Permanent(insertErr)
		},
		backoff.WithContext(backoff.WithMaxRetries(s.cfg.NewBackOff(), s.cfg.retries()), ctx),
	)
	if err == nil {
		progress.add(len(items))
		return nil
	}

	if classify(err) == classTooLarge && len(items) > 1 {
		mid := len(items) / 2
		logger.Warnf(ctx, "chunk of %d rows too large, splitting", len(items))

		if err = s.insertChunk(ctx, limiter, items[:mid], loadedID, progress); err != nil {
			return err
		}
		return s.insertChunk(ctx, limiter, items[mid:], loadedID, progress)
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}

// newLimiter spaces attempts at least 1/perSecond apart, so any one-second
// window holds at most perSecond attempts.
func newLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

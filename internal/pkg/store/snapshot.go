package store

import (
	"context"
	"fmt"
	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"time"
)

var (
	loadedColumns  = []string{"id", "hash", "complete", "created_at"}
	historyColumns = []string{"id", "provider_id", "status", "loaded_id", "currency", "created_at"}
)

func (s *store) UpsertLoaded(ctx context.Context, hash string) (*domain.Loaded, error) {
	query := builder().Insert(tableLoaded).
		Columns("hash").
		Values(hash).
		Suffix(`on conflict (hash) do nothing`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, err
	}

	selectQuery := builder().Select(loadedColumns...).
		From(tableLoaded).
		Where(sq.Eq{"hash": hash})

	var selected domain.Loaded
	if err := s.pool.Getx(ctx, &selected, selectQuery); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

// MarkLoadedComplete помечает снапшот, все строки которого уже записаны.
func (s *store) MarkLoadedComplete(ctx context.Context, id string) error {
	query := builder().Update(tableLoaded).
		Set("complete", true).
		Where(sq.Eq{"id": id})

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loaded %s: %w", id, constants.ErrDBNotFound)
	}

	return nil
}

func (s *store) InsertHistory(ctx context.Context, history *domain.History) (*domain.History, error) {
	query := builder().Insert(tableHistory).
		Columns("provider_id", "status", "loaded_id", "currency").
		Values(history.ProviderID, history.Status, history.LoadedID, history.Currency).
		Suffix("RETURNING " + joinColumns(historyColumns))

	var inserted domain.History
	if err := s.pool.Getx(ctx, &inserted, query); err != nil {
		return nil, wrapErr(err)
	}

	return &inserted, nil
}

// UpdateHistoryStatus двигает статус только по разрешенным переходам.
func (s *store) UpdateHistoryStatus(ctx context.Context, id string, status domain.HistoryStatus, clearLoaded bool) error {
	query := builder().Update(tableHistory).
		Set("status", status).
		Where(sq.And{
			sq.Eq{"id": id},
			sq.Eq{"status": domain.PreviousStatuses(status)},
		})
	if clearLoaded {
		query = query.Set("loaded_id", nil)
	}

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("history %s to %s: %w", id, status, constants.ErrInvalidTransition)
	}

	return nil
}

func (s *store) RetireHistory(ctx context.Context, providerID, keepID string, before time.Time) (int64, error) {
	query := builder().Update(tableHistory).
		Set("status", domain.HistoryStatusDeleted).
		Set("loaded_id", nil).
		Where(sq.And{
			sq.Eq{"provider_id": providerID},
			sq.Eq{"status": domain.PreviousStatuses(domain.HistoryStatusDeleted)},
			sq.Lt{"created_at": before},
			sq.NotEq{"id": keepID},
		})

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (s *store) HasLiveHistory(ctx context.Context, providerID, loadedID string) (bool, error) {
	query := builder().Select("1").
		From(tableHistory).
		Where(sq.And{
			sq.Eq{"provider_id": providerID},
			sq.Eq{"loaded_id": loadedID},
			sq.Eq{"status": []domain.HistoryStatus{domain.HistoryStatusActual, domain.HistoryStatusCloned}},
		}).
		Prefix("select exists (").
		Suffix(")")

	var exists bool
	if err := s.pool.Getx(ctx, &exists, query); err != nil {
		return false, wrapErr(err)
	}

	return exists, nil
}

// ExpireStaleUploads переводит в failed брошенные загрузки.
func (s *store) ExpireStaleUploads(ctx context.Context, before time.Time) (int64, error) {
	query := builder().Update(tableHistory).
		Set("status", domain.HistoryStatusFailed).
		Where(sq.And{
			sq.Eq{"status": domain.HistoryStatusUploading},
			sq.Lt{"created_at": before},
		})

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

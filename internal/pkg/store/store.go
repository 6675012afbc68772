package store

import (
	"context"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/store/xpgx"
	"time"
)

type Pool = xpgx.Pool

type Store interface {
	SnapshotStore
	ProviderStore
	InsertPrices(ctx context.Context, rows []domain.PriceRow) error
	DeletePrices(ctx context.Context, loadedID string) (int64, error)
}

type SnapshotStore interface {
	UpsertLoaded(ctx context.Context, hash string) (*domain.Loaded, error)
	MarkLoadedComplete(ctx context.Context, id string) error
	InsertHistory(ctx context.Context, history *domain.History) (*domain.History, error)
	UpdateHistoryStatus(ctx context.Context, id string, status domain.HistoryStatus, clearLoaded bool) error
	RetireHistory(ctx context.Context, providerID, keepID string, before time.Time) (int64, error)
	HasLiveHistory(ctx context.Context, providerID, loadedID string) (bool, error)
	ExpireStaleUploads(ctx context.Context, before time.Time) (int64, error)
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}

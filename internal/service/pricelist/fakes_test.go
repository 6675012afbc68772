package pricelist

import (
	"context"
	"fmt"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"sync"
	"time"
)

type fakeStore struct {
	mu          sync.Mutex
	warehouses  []*domain.Warehouse
	templates   map[string]*domain.Template
	loaded      map[string]string
	complete    map[string]bool
	history     []*domain.History
	prices      []domain.PriceRow
	staleBefore time.Time

	// blockInserts parks InsertPrices until its context is cancelled
	blockInserts bool
	inserting    chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates: make(map[string]*domain.Template),
		loaded:    make(map[string]string),
		complete:  make(map[string]bool),
		inserting: make(chan struct{}, 16),
	}
}

func (f *fakeStore) ListWarehouses(_ context.Context, providerID string) ([]*domain.Warehouse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Warehouse
	for _, w := range f.warehouses {
		if w.ProviderID == providerID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveTemplate(_ context.Context, t *domain.Template) (*domain.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	saved := *t
	saved.ID = int64(len(f.templates) + 1)
	f.templates[t.ProviderID] = &saved
	return &saved, nil
}

func (f *fakeStore) GetLatestTemplate(_ context.Context, providerID string) (*domain.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.templates[providerID]
	if !ok {
		return nil, constants.ErrDBNotFound
	}
	return t, nil
}

func (f *fakeStore) ExpireStaleUploads(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.staleBefore = before
	var n int64
	for _, h := range f.history {
		if h.Status == domain.HistoryStatusUploading && h.CreatedAt.Before(before) {
			h.Status = domain.HistoryStatusFailed
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UpsertLoaded(_ context.Context, hash string) (*domain.Loaded, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.loaded[hash]
	if !ok {
		id = fmt.Sprintf("l%d", len(f.loaded)+1)
		f.loaded[hash] = id
	}
	return &domain.Loaded{ID: id, Hash: hash, Complete: f.complete[id]}, nil
}

func (f *fakeStore) MarkLoadedComplete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.complete[id] = true
	return nil
}

func (f *fakeStore) DeletePrices(_ context.Context, loadedID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.prices[:0]
	for _, row := range f.prices {
		if row.LoadedID != loadedID {
			kept = append(kept, row)
		}
	}
	n := int64(len(f.prices) - len(kept))
	f.prices = kept
	return n, nil
}

func (f *fakeStore) InsertHistory(_ context.Context, h *domain.History) (*domain.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inserted := *h
	inserted.ID = fmt.Sprintf("h%d", len(f.history)+1)
	inserted.CreatedAt = time.Now()
	f.history = append(f.history, &inserted)

	out := inserted
	return &out, nil
}

func (f *fakeStore) UpdateHistoryStatus(_ context.Context, id string, status domain.HistoryStatus, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, h := range f.history {
		if h.ID == id && h.Status.CanTransitionTo(status) {
			h.Status = status
			return nil
		}
	}
	return constants.ErrInvalidTransition
}

func (f *fakeStore) RetireHistory(_ context.Context, providerID, keepID string, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, h := range f.history {
		if h.ProviderID == providerID && h.ID != keepID && !h.CreatedAt.After(before) &&
			h.Status.CanTransitionTo(domain.HistoryStatusDeleted) {
			h.Status = domain.HistoryStatusDeleted
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) HasLiveHistory(_ context.Context, providerID, loadedID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, h := range f.history {
		if h.ProviderID == providerID && h.Status.Live() && h.LoadedID != nil && *h.LoadedID == loadedID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertPrices(ctx context.Context, rows []domain.PriceRow) error {
	if f.blockInserts {
		f.inserting <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices = append(f.prices, rows...)
	return nil
}

func (f *fakeStore) historyStatus(id string) domain.HistoryStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, h := range f.history {
		if h.ID == id {
			return h.Status
		}
	}
	return ""
}

type fakeTenants map[string]string

func (f fakeTenants) TenantID(token string) (string, error) {
	tenant, ok := f[token]
	if !ok {
		return "", constants.ErrUnauthorized
	}
	return tenant, nil
}

type archived struct {
	uploadID  string
	rows      int
	chunkSize int
}

type fakeArchive struct {
	mu    sync.Mutex
	calls []archived
	err   error
}

func (f *fakeArchive) Archive(_ context.Context, uploadID string, rows []domain.TransformedItem, chunkSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, archived{uploadID: uploadID, rows: len(rows), chunkSize: chunkSize})
	return f.err
}

func (f *fakeArchive) snapshot() []archived {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]archived(nil), f.calls...)
}

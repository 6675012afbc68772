package uploader

import (
	"context"
	"fmt"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"sync"
	"time"
)

type memStore struct {
	mu       sync.Mutex
	loaded   map[string]string
	complete map[string]bool
	history  []*domain.History
	prices   []domain.PriceRow
	calls    []int
	clock    time.Time
	insertFn func(call int, rows []domain.PriceRow) error

	failInsertHistory bool
	failRetire        bool
}

func newMemStore() *memStore {
	return &memStore{
		loaded:   make(map[string]string),
		complete: make(map[string]bool),
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) seedHistory(providerID string, status domain.HistoryStatus, loadedID string) *domain.History {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := &domain.History{
		ID:         fmt.Sprintf("h%d", len(m.history)+1),
		ProviderID: providerID,
		Status:     status,
		LoadedID:   &loadedID,
		CreatedAt:  m.tick(),
	}
	m.history = append(m.history, h)
	return h
}

func (m *memStore) UpsertLoaded(_ context.Context, hash string) (*domain.Loaded, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.loaded[hash]
	if !ok {
		id = fmt.Sprintf("l%d", len(m.loaded)+1)
		m.loaded[hash] = id
	}
	return &domain.Loaded{ID: id, Hash: hash, Complete: m.complete[id]}, nil
}

func (m *memStore) MarkLoadedComplete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.complete[id] = true
	return nil
}

func (m *memStore) InsertHistory(_ context.Context, h *domain.History) (*domain.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInsertHistory {
		return nil, constants.NewCodedError(500, "history insert failed")
	}

	inserted := *h
	inserted.ID = fmt.Sprintf("h%d", len(m.history)+1)
	inserted.CreatedAt = m.tick()
	m.history = append(m.history, &inserted)

	out := inserted
	return &out, nil
}

func (m *memStore) UpdateHistoryStatus(_ context.Context, id string, status domain.HistoryStatus, clearLoaded bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.history {
		if h.ID == id && h.Status.CanTransitionTo(status) {
			h.Status = status
			if clearLoaded {
				h.LoadedID = nil
			}
			return nil
		}
	}
	return constants.ErrInvalidTransition
}

func (m *memStore) RetireHistory(_ context.Context, providerID, keepID string, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failRetire {
		return 0, constants.NewCodedError(500, "retire failed")
	}

	var n int64
	for _, h := range m.history {
		if h.ProviderID == providerID && h.ID != keepID && h.CreatedAt.Before(before) &&
			h.Status.CanTransitionTo(domain.HistoryStatusDeleted) {
			h.Status = domain.HistoryStatusDeleted
			h.LoadedID = nil
			n++
		}
	}
	return n, nil
}

func (m *memStore) HasLiveHistory(_ context.Context, providerID, loadedID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.history {
		if h.ProviderID == providerID && h.Status.Live() && h.LoadedID != nil && *h.LoadedID == loadedID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertPrices(_ context.Context, rows []domain.PriceRow) error {
	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, len(rows))
	fn := m.insertFn
	m.mu.Unlock()

	if fn != nil {
		if err := fn(call, rows); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = append(m.prices, rows...)
	return nil
}

func (m *memStore) DeletePrices(_ context.Context, loadedID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.prices[:0]
	for _, row := range m.prices {
		if row.LoadedID != loadedID {
			kept = append(kept, row)
		}
	}
	n := int64(len(m.prices) - len(kept))
	m.prices = kept
	return n, nil
}

func (m *memStore) pricesUnder(loadedID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, row := range m.prices {
		if row.LoadedID == loadedID {
			n++
		}
	}
	return n
}

func (m *memStore) statuses(providerID string) map[string]domain.HistoryStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]domain.HistoryStatus)
	for _, h := range m.history {
		if h.ProviderID == providerID {
			out[h.ID] = h.Status
		}
	}
	return out
}

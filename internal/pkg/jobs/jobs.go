package jobs

import (
	"context"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"sync"
	"time"
)

// Store keeps the last known status of upload jobs.
type Store interface {
	Save(ctx context.Context, status *dto.JobStatus) error
	Get(ctx context.Context, id string) (*dto.JobStatus, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	status    dto.JobStatus
	expiresAt time.Time
}

// Memory хранит статусы в памяти процесса, если редис не настроен.
type Memory struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]memoryEntry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, m: make(map[string]memoryEntry)}
}

func (s *Memory) Save(_ context.Context, status *dto.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{status: *status}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.m[status.ID] = entry
	return nil
}

func (s *Memory) Get(_ context.Context, id string) (*dto.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.m[id]
	if !ok {
		return nil, constants.ErrUploadNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.m, id)
		return nil, constants.ErrUploadNotFound
	}

	status := entry.status
	return &status, nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, id)
	return nil
}

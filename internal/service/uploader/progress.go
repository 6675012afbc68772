package uploader

import (
	"fmt"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// tracker counts uploaded rows and throttles progress messages.
type tracker struct {
	uploaded atomic.Int64
	total    int
	interval time.Duration
	emit     func(dto.UploadMessage)

	mu   sync.Mutex
	last time.Time
}

func newTracker(total, already int, interval time.Duration, emit func(dto.UploadMessage)) *tracker {
	t := &tracker{total: total, interval: interval, emit: emit}
	t.uploaded.Store(int64(already))
	return t
}

func (t *tracker) count() int {
	return int(t.uploaded.Load())
}

func (t *tracker) add(n int) {
	t.uploaded.Add(int64(n))
	t.report(false)
}

func (t *tracker) report(force bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if !force && now.Sub(t.last) < t.interval {
		return
	}
	t.last = now

	uploaded := t.count()
	t.emit(dto.UploadProgress{
		UploadedCount: uploaded,
		TotalCount:    t.total,
		Percentage:    percentage(uploaded, t.total),
		Message:       fmt.Sprintf("uploaded %d of %d rows", uploaded, t.total),
	})
}

func (t *tracker) failure(err error) dto.UploadError {
	uploaded := t.count()
	return dto.UploadError{
		Message:       err.Error(),
		UploadedCount: uploaded,
		TotalCount:    t.total,
		Percentage:    percentage(uploaded, t.total),
	}
}

// percentage: 5% на подготовку, до финализации не больше 95%.
func percentage(uploaded, total int) float64 {
	if total <= 0 {
		return 5
	}
	p := float64(uploaded)/float64(total)*90 + 5
	return math.Round(math.Min(95, p)*100) / 100
}

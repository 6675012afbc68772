package domain

import "time"

type HistoryStatus string

const (
	HistoryStatusUploading HistoryStatus = "uploading"
	HistoryStatusActual    HistoryStatus = "actual"
	HistoryStatusCloned    HistoryStatus = "cloned"
	HistoryStatusFailed    HistoryStatus = "failed"
	HistoryStatusDeleted   HistoryStatus = "deleted"
)

var historyTransitions = map[HistoryStatus][]HistoryStatus{
	HistoryStatusUploading: {HistoryStatusActual, HistoryStatusFailed},
	HistoryStatusCloned:    {HistoryStatusActual, HistoryStatusDeleted},
	HistoryStatusActual:    {HistoryStatusDeleted},
}

func (s HistoryStatus) CanTransitionTo(next HistoryStatus) bool {
	for _, allowed := range historyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Live statuses are the ones a later snapshot of the same provider retires.
func (s HistoryStatus) Live() bool {
	return s == HistoryStatusActual || s == HistoryStatusCloned
}

// Loaded is a content snapshot, unique per hash.
type Loaded struct {
	ID        string    `db:"id" json:"id"`
	Hash      string    `db:"hash" json:"hash"`
	Complete  bool      `db:"complete" json:"complete"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type History struct {
	ID         string        `db:"id" json:"id"`
	ProviderID string        `db:"provider_id" json:"provider_id"`
	Status     HistoryStatus `db:"status" json:"status"`
	LoadedID   *string       `db:"loaded_id" json:"loaded_id"`
	Currency   string        `db:"currency" json:"currency"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// PreviousStatuses lists the statuses a row may hold before moving to next.
func PreviousStatuses(next HistoryStatus) []HistoryStatus {
	var prev []HistoryStatus
	for _, from := range []HistoryStatus{HistoryStatusUploading, HistoryStatusCloned, HistoryStatusActual} {
		if from.CanTransitionTo(next) {
			prev = append(prev, from)
		}
	}
	return prev
}

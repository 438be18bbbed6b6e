package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryLimit is the maximum number of entries returned by GET /history.
const HistoryLimit = 50

// HistoryEntry records one accepted search. Entries are never updated.
type HistoryEntry struct {
	ID         uuid.UUID  `db:"id"          json:"id"`
	UserID     string     `db:"user_id"     json:"user_id"`
	Query      string     `db:"query"       json:"query"`
	SearchType SearchType `db:"search_type" json:"search_type"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
}

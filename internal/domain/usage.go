package domain

import "time"

// monthLayout formats the usage period key.
const monthLayout = "2006-01"

// Usage is a per-user monthly activity counter. Counting only; nothing is enforced.
type Usage struct {
	UserID            string    `db:"user_id"             json:"user_id"`
	MonthYear         string    `db:"month_year"          json:"month_year"`
	SearchesPerformed int       `db:"searches_performed"  json:"searches_performed"`
	AIGenerationsUsed int       `db:"ai_generations_used" json:"ai_generations_used"`
	UpdatedAt         time.Time `db:"updated_at"          json:"updated_at"`
}

// MonthKey returns the YYYY-MM period containing t, in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// UsageCounter names a column of the usage_tracking table.
type UsageCounter string

const (
	CounterSearches      UsageCounter = "searches_performed"
	CounterAIGenerations UsageCounter = "ai_generations_used"
)

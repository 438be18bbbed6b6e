package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/quillglow/internal/domain"
)

// UsageRepository maintains the monthly usage counters.
type UsageRepository struct {
	db *sqlx.DB
}

// NewUsageRepository creates a new usage repository.
func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Increment adds one to counter for the month containing at, creating the row if needed.
func (r *UsageRepository) Increment(ctx context.Context, userID string, counter domain.UsageCounter, at time.Time) error {
	var searches, generations int
	switch counter {
	case domain.CounterSearches:
		searches = 1
	case domain.CounterAIGenerations:
		generations = 1
	default:
		return fmt.Errorf("unknown usage counter %q", counter)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usage_tracking (user_id, month_year, searches_performed, ai_generations_used, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, month_year) DO UPDATE SET
			searches_performed = usage_tracking.searches_performed + EXCLUDED.searches_performed,
			ai_generations_used = usage_tracking.ai_generations_used + EXCLUDED.ai_generations_used,
			updated_at = NOW()
	`, userID, domain.MonthKey(at), searches, generations)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	return nil
}

// Get returns the counters for userID in the month containing at.
// A month with no activity yields zero counters rather than an error.
func (r *UsageRepository) Get(ctx context.Context, userID string, at time.Time) (*domain.Usage, error) {
	month := domain.MonthKey(at)

	usage := &domain.Usage{}
	err := r.db.GetContext(ctx, usage, `
		SELECT user_id, month_year, searches_performed, ai_generations_used, updated_at
		FROM usage_tracking
		WHERE user_id = $1 AND month_year = $2
	`, userID, month)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Usage{UserID: userID, MonthYear: month}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}

	return usage, nil
}

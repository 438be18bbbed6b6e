package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/quillglow/internal/domain"
)

// HistoryRepository stores the searches each user has run.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert records a search.
func (r *HistoryRepository) Insert(ctx context.Context, userID, query string, searchType domain.SearchType) (*domain.HistoryEntry, error) {
	entry := &domain.HistoryEntry{
		ID:         uuid.New(),
		UserID:     userID,
		Query:      query,
		SearchType: searchType,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO search_history (id, user_id, query, search_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.UserID, entry.Query, entry.SearchType, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert search history: %w", err)
	}

	return entry, nil
}

// ListRecent returns at most limit entries for userID, newest first.
func (r *HistoryRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, query, search_type, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}

	return entries, nil
}

// DeleteAll removes every history entry owned by userID and returns the count.
func (r *HistoryRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM search_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear search history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

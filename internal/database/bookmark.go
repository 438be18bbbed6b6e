package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/quillglow/internal/domain"
)

const bookmarkColumns = "id, user_id, title, url, description, thumbnail, source_type, created_at"

// BookmarkRepository stores saved search results.
type BookmarkRepository struct {
	db *sqlx.DB
}

// NewBookmarkRepository creates a new bookmark repository.
func NewBookmarkRepository(db *sqlx.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// List returns all bookmarks of userID, newest first.
func (r *BookmarkRepository) List(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	bookmarks := []domain.Bookmark{}
	err := r.db.SelectContext(ctx, &bookmarks, `
		SELECT `+bookmarkColumns+`
		FROM search_bookmarks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	return bookmarks, nil
}

// Create inserts a bookmark. It returns domain.ErrAlreadyExists when the user
// has already bookmarked the same URL; the existing row is left untouched.
func (r *BookmarkRepository) Create(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, error) {
	b.ID = uuid.New()
	b.CreatedAt = time.Now().UTC()

	created := &domain.Bookmark{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO search_bookmarks (`+bookmarkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, url) DO NOTHING
		RETURNING `+bookmarkColumns,
		b.ID, b.UserID, b.Title, b.URL, b.Description, b.Thumbnail, b.SourceType, b.CreatedAt,
	).StructScan(created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	return created, nil
}

// Delete removes the bookmark id if it belongs to userID. Deleting a bookmark
// that does not exist, or belongs to someone else, affects zero rows and is not an error.
func (r *BookmarkRepository) Delete(ctx context.Context, id uuid.UUID, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM search_bookmarks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceType tells whether a bookmark points at a video or an article.
type SourceType string

const (
	SourceTypeVideo   SourceType = "video"
	SourceTypeArticle SourceType = "article"
)

// Bookmark is a saved search result, unique per (user, url).
type Bookmark struct {
	ID          uuid.UUID  `db:"id"          json:"id"`
	UserID      string     `db:"user_id"     json:"user_id"`
	Title       string     `db:"title"       json:"title"`
	URL         string     `db:"url"         json:"url"`
	Description *string    `db:"description" json:"description"`
	Thumbnail   *string    `db:"thumbnail"   json:"thumbnail"`
	SourceType  SourceType `db:"source_type" json:"source_type"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`
}

// CreateBookmarkRequest is the body of POST /bookmarks.
type CreateBookmarkRequest struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description *string    `json:"description"`
	Thumbnail   *string    `json:"thumbnail"`
	SourceType  SourceType `json:"source_type"`
}

// Validate checks the request and returns a bookmark owned by userID.
func (r *CreateBookmarkRequest) Validate(userID string) (*Bookmark, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidBookmark)
	}

	rawURL := strings.TrimSpace(r.URL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidBookmark)
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) URL", ErrInvalidBookmark)
	}

	switch r.SourceType {
	case SourceTypeVideo, SourceTypeArticle:
	default:
		return nil, fmt.Errorf("%w: source_type must be video or article", ErrInvalidBookmark)
	}

	return &Bookmark{
		UserID:      userID,
		Title:       title,
		URL:         rawURL,
		Description: r.Description,
		Thumbnail:   r.Thumbnail,
		SourceType:  r.SourceType,
	}, nil
}

// ParseBookmarkID validates the id query parameter of DELETE /bookmarks.
func ParseBookmarkID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, ErrMissingID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

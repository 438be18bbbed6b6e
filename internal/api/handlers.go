package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/quillglow/infrastructure/jwt"
	infralogger "github.com/jonesrussell/quillglow/infrastructure/logger"
	"github.com/jonesrussell/quillglow/internal/domain"
)

// Searcher runs the moderated search pipeline.
type Searcher interface {
	Search(ctx context.Context, userID string, req domain.SearchRequest) (*domain.SearchResponse, error)
}

// BookmarkStore persists bookmarks per user.
type BookmarkStore interface {
	List(ctx context.Context, userID string) ([]domain.Bookmark, error)
	Create(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) (int64, error)
}

// HistoryStore reads and clears search history per user.
type HistoryStore interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error)
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// UsageReader reads the monthly usage counters.
type UsageReader interface {
	Get(ctx context.Context, userID string, at time.Time) (*domain.Usage, error)
}

// Handler holds HTTP request handlers
type Handler struct {
	search    Searcher
	bookmarks BookmarkStore
	history   HistoryStore
	usage     UsageReader
	now       func() time.Time
}

// NewHandler creates a new handler instance
func NewHandler(search Searcher, bookmarks BookmarkStore, history HistoryStore, usage UsageReader) *Handler {
	return &Handler{
		search:    search,
		bookmarks: bookmarks,
		history:   history,
		usage:     usage,
		now:       time.Now,
	}
}

// Search handles POST /search.
func (h *Handler) Search(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := h.search.Search(c.Request.Context(), userID, req)
	if err != nil {
		h.searchError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) searchError(c *gin.Context, userID string, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingQuery):
		respondError(c, http.StatusBadRequest, msgQueryRequired)
	case errors.Is(err, domain.ErrQueryTooLong):
		respondError(c, http.StatusBadRequest, msgQueryTooLong)
	case errors.Is(err, domain.ErrInvalidSearchType):
		respondError(c, http.StatusBadRequest, msgInvalidSearchType)
	case errors.Is(err, domain.ErrInappropriateContent):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   codeInappropriateContent,
			Message: domain.BlockedQueryMessage,
		})
	default:
		h.internalError(c, err, msgSearchFailed, infralogger.String("user_id", userID))
	}
}

// ListBookmarks handles GET /bookmarks.
func (h *Handler) ListBookmarks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	bookmarks, err := h.bookmarks.List(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, err, msgFetchBookmarks, infralogger.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// CreateBookmark handles POST /bookmarks.
func (h *Handler) CreateBookmark(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req domain.CreateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	bookmark, err := req.Validate(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   msgInvalidBookmark,
			Message: strings.TrimPrefix(err.Error(), domain.ErrInvalidBookmark.Error()+": "),
		})
		return
	}

	created, err := h.bookmarks.Create(c.Request.Context(), bookmark)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			respondError(c, http.StatusConflict, msgBookmarkExists)
			return
		}
		h.internalError(c, err, msgAddBookmark, infralogger.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmark": created})
}

// DeleteBookmark handles DELETE /bookmarks?id=<uuid>. Deleting a bookmark
// that does not exist still succeeds.
func (h *Handler) DeleteBookmark(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := domain.ParseBookmarkID(c.Query("id"))
	if err != nil {
		if errors.Is(err, domain.ErrMissingID) {
			respondError(c, http.StatusBadRequest, msgBookmarkIDRequired)
			return
		}
		respondError(c, http.StatusBadRequest, msgInvalidBookmarkID)
		return
	}

	if _, err := h.bookmarks.Delete(c.Request.Context(), id, userID); err != nil {
		h.internalError(c, err, msgDeleteBookmark,
			infralogger.String("user_id", userID),
			infralogger.String("bookmark_id", id.String()),
		)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ListHistory handles GET /history.
func (h *Handler) ListHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	entries, err := h.history.ListRecent(c.Request.Context(), userID, domain.HistoryLimit)
	if err != nil {
		h.internalError(c, err, msgFetchHistory, infralogger.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// ClearHistory handles DELETE /history.
func (h *Handler) ClearHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if _, err := h.history.DeleteAll(c.Request.Context(), userID); err != nil {
		h.internalError(c, err, msgClearHistory, infralogger.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// GetUsage handles GET /usage and reports the current month's counters.
func (h *Handler) GetUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	usage, err := h.usage.Get(c.Request.Context(), userID, h.now())
	if err != nil {
		h.internalError(c, err, msgFetchUsage, infralogger.String("user_id", userID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (string, bool) {
	userID := jwt.UserID(c)
	if userID == "" {
		respondError(c, http.StatusUnauthorized, msgUnauthorized)
		return "", false
	}
	return userID, true
}

// internalError logs the cause and writes a generic 500.
func (h *Handler) internalError(c *gin.Context, err error, message string, fields ...infralogger.Field) {
	_ = c.Error(err)
	fields = append(fields, infralogger.Error(err))
	infralogger.FromContext(c.Request.Context()).Error(message, fields...)
	respondError(c, http.StatusInternalServerError, message)
}

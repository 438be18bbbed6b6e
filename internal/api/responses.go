package api

import "github.com/gin-gonic/gin"

// Client-facing messages. The 500 messages never carry the cause.
const (
	msgUnauthorized       = "Unauthorized"
	msgInvalidBody        = "Invalid request body"
	msgQueryRequired      = "Query is required"
	msgQueryTooLong       = "Query is too long"
	msgInvalidSearchType  = "Invalid search type"
	msgInvalidBookmark    = "Invalid bookmark"
	msgBookmarkExists     = "Bookmark already exists"
	msgBookmarkIDRequired = "Bookmark ID is required"
	msgInvalidBookmarkID  = "Invalid bookmark ID"

	msgSearchFailed   = "Failed to perform search"
	msgFetchBookmarks = "Failed to fetch bookmarks"
	msgAddBookmark    = "Failed to add bookmark"
	msgDeleteBookmark = "Failed to delete bookmark"
	msgFetchHistory   = "Failed to fetch history"
	msgClearHistory   = "Failed to clear history"
	msgFetchUsage     = "Failed to fetch usage"

	codeInappropriateContent = "inappropriate_content"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse acknowledges a delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

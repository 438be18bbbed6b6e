// Package domain holds the study-search data model and its sentinel errors.
package domain

import "errors"

// Input errors map to 400 responses.
var (
	ErrMissingQuery      = errors.New("query is required")
	ErrQueryTooLong      = errors.New("query is too long")
	ErrInvalidSearchType = errors.New("invalid search type")
	ErrInvalidBookmark   = errors.New("invalid bookmark")
	ErrMissingID         = errors.New("bookmark id is required")
	ErrInvalidID         = errors.New("bookmark id is invalid")
)

// ErrInappropriateContent is returned when a query matches the blocklist (403).
var ErrInappropriateContent = errors.New("inappropriate content")

// ErrAlreadyExists is returned when a (user, url) bookmark already exists (409).
var ErrAlreadyExists = errors.New("resource already exists")

// BlockedQueryMessage is the user-facing explanation for a rejected query.
const BlockedQueryMessage = "This search query contains inappropriate content. QuillGlow is an educational platform."

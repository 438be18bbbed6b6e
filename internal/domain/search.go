package domain

import (
	"fmt"
	"strings"
)

// SearchType selects which sources a search fans out to.
type SearchType string

const (
	SearchTypeAll      SearchType = "all"
	SearchTypeArticles SearchType = "articles"
	SearchTypeVideos   SearchType = "videos"
)

// Sources reports which sources a search type dispatches to.
func (t SearchType) Sources() (web, video, summary bool) {
	switch t {
	case SearchTypeArticles:
		return true, false, false
	case SearchTypeVideos:
		return false, true, false
	default:
		return true, true, true
	}
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query      string     `json:"query"`
	SearchType SearchType `json:"searchType"`
}

// Normalize trims the query, defaults the search type and validates both.
// maxQueryLength <= 0 disables the length check.
func (r *SearchRequest) Normalize(maxQueryLength int) error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return ErrMissingQuery
	}
	if maxQueryLength > 0 && len([]rune(r.Query)) > maxQueryLength {
		return fmt.Errorf("%w: limit is %d characters", ErrQueryTooLong, maxQueryLength)
	}

	switch r.SearchType {
	case "":
		r.SearchType = SearchTypeAll
	case SearchTypeAll, SearchTypeArticles, SearchTypeVideos:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSearchType, r.SearchType)
	}

	return nil
}

// Article is one web search hit.
type Article struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
	Source      string  `json:"source"`
}

// Video is one video search hit.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Channel     string `json:"channel"`
	PublishedAt string `json:"publishedAt"`
}

// SearchResponse is the aggregated search result envelope.
// Articles and Videos are never nil so they always encode as arrays.
type SearchResponse struct {
	Query     string    `json:"query"`
	Articles  []Article `json:"articles"`
	Videos    []Video   `json:"videos"`
	AISummary *string   `json:"aiSummary"`
}

// NewSearchResponse returns an envelope with empty, non-nil result lists.
func NewSearchResponse(query string) *SearchResponse {
	return &SearchResponse{
		Query:    query,
		Articles: []Article{},
		Videos:   []Video{},
	}
}

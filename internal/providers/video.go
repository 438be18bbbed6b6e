package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonesrussell/quillglow/internal/config"
	"github.com/jonesrussell/quillglow/internal/domain"
)

const (
	youtubeSearchPath = "/youtube/v3/search"
	youtubeWatchURL   = "https://www.youtube.com/watch?v="
	// educationCategory is YouTube's "Education" video category.
	educationCategory = "27"
)

// YouTube queries the YouTube Data API v3 for embeddable educational videos.
type YouTube struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewYouTube creates a video search provider.
func NewYouTube(client *http.Client, cfg config.VideoConfig) *YouTube {
	return &YouTube{
		client:  client,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Available reports whether the API key is set.
func (y *YouTube) Available() bool {
	return y.apiKey != ""
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchVideos returns up to ten videos in provider order.
func (y *YouTube) SearchVideos(ctx context.Context, query string) ([]domain.Video, error) {
	if !y.Available() {
		return nil, ErrUnavailable
	}

	params := url.Values{}
	params.Set("key", y.apiKey)
	params.Set("q", query)
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("relevanceLanguage", "en")
	params.Set("safeSearch", "strict")
	params.Set("videoEmbeddable", "true")
	params.Set("videoCategoryId", educationCategory)

	var body youtubeSearchResponse
	if err := getJSON(ctx, y.client, y.baseURL+youtubeSearchPath+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	videos := make([]domain.Video, 0, min(len(body.Items), maxResults))
	for _, item := range body.Items {
		if len(videos) == maxResults {
			break
		}
		if item.ID.VideoID == "" {
			continue
		}

		videos = append(videos, domain.Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			URL:         youtubeWatchURL + item.ID.VideoID,
			Description: item.Snippet.Description,
			Thumbnail:   item.Snippet.Thumbnails.Medium.URL,
			Channel:     item.Snippet.ChannelTitle,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}

	return videos, nil
}

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

const customSearchPath = "/customsearch/v1"

// GoogleSearch queries the Google Custom Search JSON API with SafeSearch on.
type GoogleSearch struct {
	client   *http.Client
	apiKey   string
	engineID string
	baseURL  string
}

// NewGoogleSearch creates a web search provider.
func NewGoogleSearch(client *http.Client, cfg config.WebConfig) *GoogleSearch {
	return &GoogleSearch{
		client:   client,
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Available reports whether both the API key and engine id are set.
func (g *GoogleSearch) Available() bool {
	return g.apiKey != "" && g.engineID != ""
}

type customSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Pagemap struct {
			CSEThumbnail []struct {
				Src string `json:"src"`
			} `json:"cse_thumbnail"`
		} `json:"pagemap"`
	} `json:"items"`
}

// SearchWeb returns up to ten articles in provider order. Items whose link is
// not an absolute URL are dropped.
func (g *GoogleSearch) SearchWeb(ctx context.Context, query string) ([]domain.Article, error) {
	if !g.Available() {
		return nil, ErrUnavailable
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("safe", "active")
	params.Set("filter", "1")

	var body customSearchResponse
	if err := getJSON(ctx, g.client, g.baseURL+customSearchPath+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	articles := make([]domain.Article, 0, min(len(body.Items), maxResults))
	for _, item := range body.Items {
		if len(articles) == maxResults {
			break
		}

		link, err := url.Parse(item.Link)
		if err != nil || link.Hostname() == "" {
			continue
		}

		var thumbnail *string
		if thumbs := item.Pagemap.CSEThumbnail; len(thumbs) > 0 && thumbs[0].Src != "" {
			src := thumbs[0].Src
			thumbnail = &src
		}

		articles = append(articles, domain.Article{
			Title:       item.Title,
			URL:         item.Link,
			Description: item.Snippet,
			Thumbnail:   thumbnail,
			Source:      link.Hostname(),
		})
	}

	return articles, nil
}

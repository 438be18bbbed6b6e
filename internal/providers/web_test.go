package providers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/jonesrussell/quillglow/infrastructure/errors"
	infrahttp "github.com/jonesrussell/quillglow/infrastructure/http"
	"github.com/jonesrussell/quillglow/internal/config"
	"github.com/jonesrussell/quillglow/internal/providers"
)

const googleFixture = `{
  "items": [
    {
      "title": "Photosynthesis - Wikipedia",
      "link": "https://en.wikipedia.org/wiki/Photosynthesis",
      "snippet": "Photosynthesis is a process used by plants...",
      "pagemap": {"cse_thumbnail": [{"src": "https://encrypted-tbn0.gstatic.com/a.png"}]}
    },
    {
      "title": "Broken link",
      "link": "::not a url",
      "snippet": "dropped"
    },
    {
      "title": "Photosynthesis | Khan Academy",
      "link": "https://www.khanacademy.org/science/photosynthesis",
      "snippet": "Learn how plants make food."
    }
  ]
}`

func testClient() *http.Client {
	return infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: 2 * time.Second})
}

func TestGoogleSearch_Available(t *testing.T) {
	t.Parallel()

	assert.False(t, providers.NewGoogleSearch(testClient(), config.WebConfig{APIKey: "k"}).Available())
	assert.False(t, providers.NewGoogleSearch(testClient(), config.WebConfig{EngineID: "cx"}).Available())
	assert.True(t, providers.NewGoogleSearch(testClient(), config.WebConfig{APIKey: "k", EngineID: "cx"}).Available())
}

func TestGoogleSearch_Unconfigured(t *testing.T) {
	t.Parallel()

	_, err := providers.NewGoogleSearch(testClient(), config.WebConfig{}).SearchWeb(context.Background(), "cells")
	assert.ErrorIs(t, err, providers.ErrUnavailable)
}

func TestGoogleSearch_SearchWeb(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, "photosynthesis", q.Get("q"))
		assert.Equal(t, "10", q.Get("num"))
		assert.Equal(t, "active", q.Get("safe"))
		assert.Equal(t, "1", q.Get("filter"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(googleFixture))
	}))
	defer server.Close()

	g := providers.NewGoogleSearch(testClient(), config.WebConfig{
		APIKey: "test-key", EngineID: "test-cx", BaseURL: server.URL + "/",
	})

	articles, err := g.SearchWeb(context.Background(), "photosynthesis")
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "Photosynthesis - Wikipedia", first.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Photosynthesis", first.URL)
	assert.Equal(t, "en.wikipedia.org", first.Source)
	require.NotNil(t, first.Thumbnail)
	assert.Equal(t, "https://encrypted-tbn0.gstatic.com/a.png", *first.Thumbnail)

	second := articles[1]
	assert.Equal(t, "www.khanacademy.org", second.Source)
	assert.Nil(t, second.Thumbnail)
}

func TestGoogleSearch_CapsAtTen(t *testing.T) {
	t.Parallel()

	var items []string
	for i := range 12 {
		items = append(items, fmt.Sprintf(`{"title":"r%d","link":"https://example.org/%d","snippet":"s"}`, i, i))
	}
	body := `{"items":[` + strings.Join(items, ",") + `]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	g := providers.NewGoogleSearch(testClient(), config.WebConfig{APIKey: "k", EngineID: "cx", BaseURL: server.URL})

	articles, err := g.SearchWeb(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, articles, 10)
	assert.Equal(t, "r0", articles[0].Title)
}

func TestGoogleSearch_NoItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"searchInformation":{"totalResults":"0"}}`))
	}))
	defer server.Close()

	g := providers.NewGoogleSearch(testClient(), config.WebConfig{APIKey: "k", EngineID: "cx", BaseURL: server.URL})

	articles, err := g.SearchWeb(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestGoogleSearch_UpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded for quota metric 'Queries'"}}`))
	}))
	defer server.Close()

	g := providers.NewGoogleSearch(testClient(), config.WebConfig{APIKey: "k", EngineID: "cx", BaseURL: server.URL})

	_, err := g.SearchWeb(context.Background(), "cells")
	require.Error(t, err)

	var httpErr *infraerrors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "Quota exceeded")
}

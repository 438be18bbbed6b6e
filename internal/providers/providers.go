// Package providers calls the upstream sources behind a study search:
// Google Custom Search for web pages, the YouTube Data API for videos and a
// language model for the study summary.
//
// Every provider reports Available() == false when its credentials are not
// configured, in which case the caller skips it without logging an error.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	infraerrors "github.com/jonesrussell/quillglow/infrastructure/errors"
)

// ErrUnavailable is returned when a provider is called without credentials.
var ErrUnavailable = errors.New("provider not configured")

// maxResults is the per-source cap shared by web and video search.
const maxResults = 10

// Source names, used as log and metric labels.
const (
	SourceWeb     = "web"
	SourceVideo   = "video"
	SourceSummary = "summary"
)

// getJSON issues a GET and decodes a 2xx JSON body into dst.
func getJSON(ctx context.Context, client *http.Client, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		return httpErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

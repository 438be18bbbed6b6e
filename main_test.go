package main

import (
	"net/http"
	"testing"

	"github.com/jonesrussell/quillglow/internal/config"
	"github.com/jonesrussell/quillglow/internal/providers"
)

func TestNewSummarizer_SelectsBackend(t *testing.T) {
	testCases := []struct {
		provider      string
		wantAnthropic bool
	}{
		{provider: config.SummaryProviderGroq},
		{provider: config.SummaryProviderOpenAI},
		{provider: config.SummaryProviderAnthropic, wantAnthropic: true},
	}

	for _, tc := range testCases {
		t.Run(tc.provider, func(t *testing.T) {
			s := newSummarizer(http.DefaultClient, config.SummaryConfig{
				Provider: tc.provider,
				APIKey:   "key",
				Model:    "model-" + tc.provider,
			})

			_, isAnthropic := s.(*providers.AnthropicSummarizer)
			_, isChat := s.(*providers.ChatCompletionSummarizer)
			if isAnthropic != tc.wantAnthropic || isChat == tc.wantAnthropic {
				t.Errorf("newSummarizer(%q) = %T", tc.provider, s)
			}
			if !s.Available() {
				t.Error("summarizer with an API key should be available")
			}
			if s.Model() != "model-"+tc.provider {
				t.Errorf("Model() = %q, want %q", s.Model(), "model-"+tc.provider)
			}
		})
	}
}

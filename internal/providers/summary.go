package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/jonesrussell/quillglow/internal/config"
)

const summarySystemPrompt = "You are an educational AI assistant for students. " +
	"Provide clear, concise, age-appropriate summaries. " +
	"Focus on key concepts and learning objectives. " +
	"NEVER provide adult, sexual, or inappropriate content. " +
	"If asked about inappropriate topics, politely decline and suggest educational alternatives."

const summaryUserPrompt = "Provide a brief educational summary about: %s. Include key points students should know."

func summaryPrompt(query string) string {
	return fmt.Sprintf(summaryUserPrompt, query)
}

// nonEmpty returns nil for blank model output.
func nonEmpty(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}

// ChatCompletionSummarizer talks to any OpenAI-compatible chat completions API.
type ChatCompletionSummarizer struct {
	client      *openai.Client
	available   bool
	model       string
	temperature float32
	maxTokens   int
}

// NewChatCompletionSummarizer creates a summarizer for Groq or OpenAI.
// A temperature of 0 is sent as the smallest positive float32; the request
// omits a zero temperature and the API would fall back to its own default.
func NewChatCompletionSummarizer(httpClient *http.Client, cfg config.SummaryConfig) *ChatCompletionSummarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = httpClient

	temperature := cfg.SamplingTemperature()
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return &ChatCompletionSummarizer{
		client:      openai.NewClientWithConfig(clientCfg),
		available:   cfg.APIKey != "",
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (s *ChatCompletionSummarizer) Available() bool { return s.available }

func (s *ChatCompletionSummarizer) Model() string { return s.model }

// Summarize returns nil without error when the model answers with no content.
func (s *ChatCompletionSummarizer) Summarize(ctx context.Context, query string) (*string, error) {
	if !s.available {
		return nil, ErrUnavailable
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: summaryPrompt(query)},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return nonEmpty(resp.Choices[0].Message.Content), nil
}

// AnthropicSummarizer uses the Anthropic Messages API.
type AnthropicSummarizer struct {
	client      *anthropic.Client
	available   bool
	model       string
	temperature float32
	maxTokens   int
}

// NewAnthropicSummarizer creates a summarizer backed by Claude.
func NewAnthropicSummarizer(httpClient *http.Client, cfg config.SummaryConfig) *AnthropicSummarizer {
	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(httpClient)}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	return &AnthropicSummarizer{
		client:      anthropic.NewClient(cfg.APIKey, opts...),
		available:   cfg.APIKey != "",
		model:       cfg.Model,
		temperature: cfg.SamplingTemperature(),
		maxTokens:   cfg.MaxTokens,
	}
}

func (s *AnthropicSummarizer) Available() bool { return s.available }

func (s *AnthropicSummarizer) Model() string { return s.model }

// Summarize returns the first text block of the reply, or nil when there is none.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, query string) (*string, error) {
	if !s.available {
		return nil, ErrUnavailable
	}

	prompt := summaryPrompt(query)
	temperature := s.temperature

	resp, err := s.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(s.model),
		System:      summarySystemPrompt,
		MaxTokens:   s.maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{{Type: "text", Text: &prompt}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return nonEmpty(block.GetText()), nil
		}
	}
	return nil, nil
}

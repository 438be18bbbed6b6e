// Package service implements the study search pipeline: moderation, history,
// concurrent source fan-out, result filtering and response assembly.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/quillglow/infrastructure/circuitbreaker"
	infraerrors "github.com/jonesrussell/quillglow/infrastructure/errors"
	infralogger "github.com/jonesrussell/quillglow/infrastructure/logger"
	"github.com/jonesrussell/quillglow/internal/config"
	"github.com/jonesrussell/quillglow/internal/domain"
	"github.com/jonesrussell/quillglow/internal/moderation"
	"github.com/jonesrussell/quillglow/internal/providers"
	"github.com/jonesrussell/quillglow/internal/telemetry"
)

// WebSearcher returns educational web pages for a query.
type WebSearcher interface {
	Available() bool
	SearchWeb(ctx context.Context, query string) ([]domain.Article, error)
}

// VideoSearcher returns educational videos for a query.
type VideoSearcher interface {
	Available() bool
	SearchVideos(ctx context.Context, query string) ([]domain.Video, error)
}

// Summarizer produces a short study summary for a query.
type Summarizer interface {
	Available() bool
	Model() string
	Summarize(ctx context.Context, query string) (*string, error)
}

// HistoryRecorder persists accepted searches.
type HistoryRecorder interface {
	Insert(ctx context.Context, userID, query string, searchType domain.SearchType) (*domain.HistoryEntry, error)
}

// UsageCounter increments the monthly usage counters.
type UsageCounter interface {
	Increment(ctx context.Context, userID string, counter domain.UsageCounter, at time.Time) error
}

// SummaryCache stores generated summaries per model and query.
type SummaryCache interface {
	Get(ctx context.Context, model, query string) (string, bool, error)
	Set(ctx context.Context, model, query, summary string) error
}

// Dependencies wires the search service. Cache may be nil to disable caching;
// every other field is required.
type Dependencies struct {
	Web       WebSearcher
	Video     VideoSearcher
	Summary   Summarizer
	History   HistoryRecorder
	Usage     UsageCounter
	Cache     SummaryCache
	Filter    *moderation.Filter
	Telemetry *telemetry.Provider
	Logger    infralogger.Logger

	MaxQueryLength int
	Breaker        config.BreakerConfig
}

// SearchService runs the moderated search pipeline.
type SearchService struct {
	web       WebSearcher
	video     VideoSearcher
	summary   Summarizer
	history   HistoryRecorder
	usage     UsageCounter
	cache     SummaryCache
	filter    *moderation.Filter
	telemetry *telemetry.Provider
	logger    infralogger.Logger

	maxQueryLength int
	breakers       map[string]*circuitbreaker.Breaker
	now            func() time.Time
}

// NewSearchService creates a search service with one circuit breaker per source.
func NewSearchService(deps Dependencies) *SearchService {
	s := &SearchService{
		web:            deps.Web,
		video:          deps.Video,
		summary:        deps.Summary,
		history:        deps.History,
		usage:          deps.Usage,
		cache:          deps.Cache,
		filter:         deps.Filter,
		telemetry:      deps.Telemetry,
		logger:         deps.Logger,
		maxQueryLength: deps.MaxQueryLength,
		breakers:       make(map[string]*circuitbreaker.Breaker, 3),
		now:            time.Now,
	}

	for _, source := range []string{providers.SourceWeb, providers.SourceVideo, providers.SourceSummary} {
		s.breakers[source] = circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: deps.Breaker.FailureThreshold,
			Timeout:          deps.Breaker.OpenTimeout,
			OnStateChange:    s.onBreakerStateChange(source),
		})
	}

	return s
}

func (s *SearchService) onBreakerStateChange(source string) func(from, to circuitbreaker.State) {
	return func(from, to circuitbreaker.State) {
		s.telemetry.SetBreakerState(source, int(to))
		s.logger.Warn("Provider circuit breaker changed state",
			infralogger.String("source", source),
			infralogger.String("from", from.String()),
			infralogger.String("to", to.String()),
		)
	}
}

// Search validates and moderates the query, records it, fans out to the
// sources selected by the search type and returns the filtered results.
//
// Validation failures return domain.ErrMissingQuery, domain.ErrQueryTooLong
// or domain.ErrInvalidSearchType; a blocked query returns
// domain.ErrInappropriateContent and nothing is recorded. Source failures
// never fail the search; the affected list is simply empty.
func (s *SearchService) Search(ctx context.Context, userID string, req domain.SearchRequest) (*domain.SearchResponse, error) {
	// The envelope echoes the query as sent; everything else uses the trimmed form.
	sent := req.Query
	if err := req.Normalize(s.maxQueryLength); err != nil {
		return nil, err
	}

	if s.filter.Blocked(req.Query) {
		s.telemetry.RecordBlocked(telemetry.StageQuery, 1)
		s.logger.Info("Blocked inappropriate search query",
			infralogger.String("user_id", userID),
			infralogger.String("search_type", string(req.SearchType)),
		)
		return nil, domain.ErrInappropriateContent
	}

	ctx, span := s.telemetry.StartSpan(ctx, "search",
		attribute.String("search.type", string(req.SearchType)),
	)
	defer span.End()

	s.recordSearch(ctx, userID, req)

	resp := domain.NewSearchResponse(sent)
	articles, videos, summary := s.fanOut(ctx, userID, req)

	filteredArticles, droppedArticles := s.filter.FilterArticles(articles)
	filteredVideos, droppedVideos := s.filter.FilterVideos(videos)
	s.telemetry.RecordBlocked(telemetry.StageResult, droppedArticles+droppedVideos)

	resp.Articles = append(resp.Articles, filteredArticles...)
	resp.Videos = append(resp.Videos, filteredVideos...)
	resp.AISummary = summary

	span.SetAttributes(
		attribute.Int("search.articles", len(resp.Articles)),
		attribute.Int("search.videos", len(resp.Videos)),
		attribute.Bool("search.summary", resp.AISummary != nil),
	)

	return resp, nil
}

// recordSearch writes the history row and bumps the usage counter. Both are best-effort.
func (s *SearchService) recordSearch(ctx context.Context, userID string, req domain.SearchRequest) {
	if _, err := s.history.Insert(ctx, userID, req.Query, req.SearchType); err != nil {
		s.logger.Error("Failed to record search history",
			infralogger.String("user_id", userID),
			infralogger.String("query", req.Query),
			infralogger.Error(err),
		)
	}

	if err := s.usage.Increment(ctx, userID, domain.CounterSearches, s.now()); err != nil {
		s.logger.Warn("Failed to increment search usage",
			infralogger.String("user_id", userID),
			infralogger.Error(err),
		)
	}
}

// fanOut queries the selected sources concurrently. Goroutines never return
// an error so that one failing source cannot cancel the others.
func (s *SearchService) fanOut(
	ctx context.Context, userID string, req domain.SearchRequest,
) ([]domain.Article, []domain.Video, *string) {
	wantWeb, wantVideo, wantSummary := req.SearchType.Sources()

	var (
		articles []domain.Article
		videos   []domain.Video
		summary  *string
		g        errgroup.Group
	)

	if wantWeb {
		g.Go(func() error {
			s.call(ctx, providers.SourceWeb, s.web.Available(), func(ctx context.Context) error {
				found, err := s.web.SearchWeb(ctx, req.Query)
				if err != nil {
					return err
				}
				articles = found
				return nil
			})
			return nil
		})
	}

	if wantVideo {
		g.Go(func() error {
			s.call(ctx, providers.SourceVideo, s.video.Available(), func(ctx context.Context) error {
				found, err := s.video.SearchVideos(ctx, req.Query)
				if err != nil {
					return err
				}
				videos = found
				return nil
			})
			return nil
		})
	}

	if wantSummary {
		g.Go(func() error {
			summary = s.generateSummary(ctx, userID, req.Query)
			return nil
		})
	}

	_ = g.Wait()
	return articles, videos, summary
}

// generateSummary serves the summary from the cache when possible and
// otherwise asks the model, counting and caching fresh generations.
func (s *SearchService) generateSummary(ctx context.Context, userID, query string) *string {
	if !s.summary.Available() {
		s.telemetry.RecordProvider(providers.SourceSummary, telemetry.OutcomeUnavailable, 0)
		return nil
	}

	model := s.summary.Model()
	if cached, ok := s.cachedSummary(ctx, model, query); ok {
		return &cached
	}

	var summary *string
	s.call(ctx, providers.SourceSummary, true, func(ctx context.Context) error {
		text, err := s.summary.Summarize(ctx, query)
		if err != nil {
			return err
		}
		summary = text
		return nil
	})
	if summary == nil {
		return nil
	}

	if err := s.usage.Increment(ctx, userID, domain.CounterAIGenerations, s.now()); err != nil {
		s.logger.Warn("Failed to increment AI generation usage",
			infralogger.String("user_id", userID),
			infralogger.Error(err),
		)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, model, query, *summary); err != nil {
			s.logger.Warn("Failed to cache summary", infralogger.Error(err))
		}
	}

	return summary
}

func (s *SearchService) cachedSummary(ctx context.Context, model, query string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	cached, found, err := s.cache.Get(ctx, model, query)
	if err != nil {
		s.logger.Warn("Summary cache lookup failed", infralogger.Error(err))
		return "", false
	}

	s.telemetry.RecordCacheLookup(found)
	return cached, found
}

// call runs fn for source behind its circuit breaker and records the outcome.
// Failures are logged and swallowed.
func (s *SearchService) call(ctx context.Context, source string, available bool, fn func(context.Context) error) {
	if !available {
		s.telemetry.RecordProvider(source, telemetry.OutcomeUnavailable, 0)
		return
	}

	ctx, span := s.telemetry.StartSpan(ctx, "provider."+source, attribute.String("provider.source", source))
	defer span.End()

	start := time.Now()
	err := s.breakers[source].Execute(ctx, func() error { return fn(ctx) })
	elapsed := time.Since(start)

	outcome := telemetry.OutcomeOK
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		outcome = telemetry.OutcomeCircuitOpen
	case errors.Is(err, providers.ErrUnavailable):
		outcome = telemetry.OutcomeUnavailable
	case err != nil:
		outcome = telemetry.OutcomeFailed
	}
	s.telemetry.RecordProvider(source, outcome, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)

		fields := []infralogger.Field{
			infralogger.String("source", source),
			infralogger.String("outcome", outcome),
			infralogger.Duration("elapsed", elapsed),
			infralogger.Error(err),
		}
		if status, ok := infraerrors.GetHTTPStatusCode(err); ok {
			fields = append(fields, infralogger.Int("upstream_status", status))
		}
		s.logger.Warn("Provider call failed", fields...)
	}
}

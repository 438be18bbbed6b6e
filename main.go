package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	infraconfig "github.com/jonesrussell/quillglow/infrastructure/config"
	infrahttp "github.com/jonesrussell/quillglow/infrastructure/http"
	infralogger "github.com/jonesrussell/quillglow/infrastructure/logger"
	infraredis "github.com/jonesrussell/quillglow/infrastructure/redis"
	"github.com/jonesrussell/quillglow/infrastructure/retry"
	"github.com/jonesrussell/quillglow/internal/api"
	"github.com/jonesrussell/quillglow/internal/cache"
	"github.com/jonesrussell/quillglow/internal/config"
	"github.com/jonesrussell/quillglow/internal/database"
	"github.com/jonesrussell/quillglow/internal/moderation"
	"github.com/jonesrussell/quillglow/internal/providers"
	"github.com/jonesrussell/quillglow/internal/service"
	"github.com/jonesrussell/quillglow/internal/telemetry"
)

const (
	dbConnectAttempts     = 5
	dbConnectInitialDelay = time.Second
	redisConnectTimeout   = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	infralogger.SetDefault(log)

	log.Info("Starting study search service",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
		infralogger.Bool("debug", cfg.Service.Debug),
	)

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", infralogger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()
	log.Info("Connected to database", infralogger.String("database", cfg.Database.Database))

	redisClient := connectRedis(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	return runServer(cfg, db, redisClient, log)
}

// loadConfig loads configuration from config file.
func loadConfig() (*config.Config, error) {
	configPath := infraconfig.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, err
	}
	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}

// connectDatabase waits for PostgreSQL to accept connections.
func connectDatabase(cfg *config.Config, log infralogger.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	err := retry.Do(context.Background(), retry.Config{
		MaxAttempts:  dbConnectAttempts,
		InitialDelay: dbConnectInitialDelay,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			log.Warn("Database not ready, retrying",
				infralogger.Int("attempt", attempt),
				infralogger.Duration("delay", delay),
				infralogger.Error(err),
			)
		},
	}, func() error {
		var connErr error
		db, connErr = database.Connect(cfg.Database)
		return connErr
	})
	return db, err
}

// connectRedis returns nil when the cache is disabled or unreachable;
// searches then always ask the model.
func connectRedis(cfg *config.Config, log infralogger.Logger) *goredis.Client {
	if cfg.Redis.Address == "" {
		log.Info("Summary cache disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	client, err := infraredis.Connect(ctx, infraredis.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, summary cache disabled", infralogger.Error(err))
		return nil
	}

	log.Info("Summary cache enabled",
		infralogger.String("address", cfg.Redis.Address),
		infralogger.Duration("ttl", cfg.Redis.SummaryTTL),
	)
	return client
}

// newSummarizer picks the summary backend named by cfg.Provider.
// Groq and OpenAI share the chat-completions client.
func newSummarizer(client *http.Client, cfg config.SummaryConfig) service.Summarizer {
	if cfg.Provider == config.SummaryProviderAnthropic {
		return providers.NewAnthropicSummarizer(client, cfg)
	}
	return providers.NewChatCompletionSummarizer(client, cfg)
}

// runServer wires the providers, stores and search service, then serves until shutdown.
func runServer(cfg *config.Config, db *sqlx.DB, redisClient *goredis.Client, log infralogger.Logger) int {
	httpClient := infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Providers.Timeout})

	web := providers.NewGoogleSearch(httpClient, cfg.Providers.Web)
	video := providers.NewYouTube(httpClient, cfg.Providers.Video)
	summarizer := newSummarizer(httpClient, cfg.Providers.Summary)

	log.Info("Search providers configured",
		infralogger.Bool("web", web.Available()),
		infralogger.Bool("video", video.Available()),
		infralogger.Bool("summary", summarizer.Available()),
		infralogger.String("summary_model", summarizer.Model()),
	)

	historyRepo := database.NewHistoryRepository(db)
	bookmarkRepo := database.NewBookmarkRepository(db)
	usageRepo := database.NewUsageRepository(db)
	tel := telemetry.NewProvider()

	deps := service.Dependencies{
		Web:            web,
		Video:          video,
		Summary:        summarizer,
		History:        historyRepo,
		Usage:          usageRepo,
		Filter:         moderation.Default(cfg.Moderation.ExtraTerms...),
		Telemetry:      tel,
		Logger:         log,
		MaxQueryLength: cfg.Service.MaxQueryLength,
		Breaker:        cfg.Providers.Breaker,
	}

	opts := api.ServerOptions{
		DatabasePing: db.PingContext,
		Telemetry:    tel,
	}

	if redisClient != nil {
		deps.Cache = cache.NewSummaryCache(redisClient, cfg.Redis.SummaryTTL)
		opts.RedisPing = infraredis.PingFunc(redisClient)
	}

	searchService := service.NewSearchService(deps)
	handler := api.NewHandler(searchService, bookmarkRepo, historyRepo, usageRepo)
	server := api.NewServer(handler, cfg, log, opts)

	if runErr := server.Run(context.Background()); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return 1
	}

	log.Info("Study search service exited cleanly")
	return 0
}

// Package config defines the study-search service configuration.
package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/quillglow/infrastructure/config"
)

// Summary backends.
const (
	SummaryProviderGroq      = "groq"
	SummaryProviderOpenAI    = "openai"
	SummaryProviderAnthropic = "anthropic"
)

// Default configuration values.
const (
	defaultServiceName    = "study-search"
	defaultServicePort    = 8095
	defaultVersion        = "0.1.0"
	defaultMaxQueryLength = 500

	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBName         = "study_search"
	defaultDBUser         = "postgres"
	defaultDBSSLMode      = "disable"
	defaultDBMaxOpenConns = 25
	defaultDBMaxIdleConns = 5
	defaultDBConnLifetime = 5 * time.Minute

	defaultSummaryTTL = 24 * time.Hour

	defaultProviderTimeout   = 10 * time.Second
	defaultGoogleBaseURL     = "https://www.googleapis.com"
	defaultGroqBaseURL       = "https://api.groq.com/openai/v1"
	defaultGroqModel         = "llama-3.3-70b-versatile"
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultAnthropicModel    = "claude-3-5-haiku-20241022"
	defaultSummaryTemp       = 0.7
	defaultSummaryMaxTokens  = 500
	defaultBreakerFailures   = 5
	defaultBreakerOpenPeriod = 30 * time.Second

	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Auth       AuthConfig       `yaml:"auth"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Moderation ModerationConfig `yaml:"moderation"`
	CORS       CORSConfig       `yaml:"cors"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name           string `yaml:"name"`
	Version        string `yaml:"version"`
	Port           int    `env:"STUDY_SEARCH_PORT" yaml:"port"`
	Debug          bool   `env:"APP_DEBUG"         yaml:"debug"`
	MaxQueryLength int    `yaml:"max_query_length"`
}

// AuthConfig holds the secret used to verify BaaS-issued access tokens.
type AuthConfig struct {
	JWTSecret string `env:"SUPABASE_JWT_SECRET" yaml:"jwt_secret"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_STUDY_SEARCH_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_STUDY_SEARCH_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_STUDY_SEARCH_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_STUDY_SEARCH_PASSWORD" yaml:"password"` //nolint:gosec // connection config
	Database        string        `env:"POSTGRES_STUDY_SEARCH_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_STUDY_SEARCH_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// MigrateURL returns the postgres:// URL form used by golang-migrate.
func (d *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig configures the summary cache. An empty address disables it.
type RedisConfig struct {
	Address    string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password   string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB         int           `env:"REDIS_DB"       yaml:"db"`
	SummaryTTL time.Duration `yaml:"summary_ttl"`
}

// ProvidersConfig configures the upstream search sources.
type ProvidersConfig struct {
	Timeout time.Duration `env:"PROVIDER_TIMEOUT" yaml:"timeout"`
	Web     WebConfig     `yaml:"web"`
	Video   VideoConfig   `yaml:"video"`
	Summary SummaryConfig `yaml:"summary"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// WebConfig configures the Google Custom Search source.
type WebConfig struct {
	APIKey   string `env:"GOOGLE_CUSTOM_SEARCH_KEY"   yaml:"api_key"`
	EngineID string `env:"GOOGLE_SEARCH_ENGINE_ID"    yaml:"engine_id"`
	BaseURL  string `env:"GOOGLE_CUSTOM_SEARCH_URL"   yaml:"base_url"`
}

// VideoConfig configures the YouTube Data API source.
type VideoConfig struct {
	APIKey  string `env:"YOUTUBE_API_KEY"  yaml:"api_key"`
	BaseURL string `env:"YOUTUBE_API_URL"  yaml:"base_url"`
}

// SummaryConfig configures the language model used for the study summary.
type SummaryConfig struct {
	Provider  string `env:"SUMMARY_PROVIDER" yaml:"provider"`
	APIKey    string `env:"GROQ_API_KEY"     yaml:"api_key"`
	Model     string `env:"SUMMARY_MODEL"    yaml:"model"`
	BaseURL   string `env:"SUMMARY_BASE_URL" yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
	// Temperature is nil when unset so that an explicit 0 is kept.
	Temperature *float32 `yaml:"temperature"`
}

// SamplingTemperature returns the configured temperature, or the default when unset.
func (s SummaryConfig) SamplingTemperature() float32 {
	if s.Temperature == nil {
		return defaultSummaryTemp
	}
	return *s.Temperature
}

// BreakerConfig configures the per-provider circuit breakers.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

// ModerationConfig extends the built-in blocklist.
type ModerationConfig struct {
	ExtraTerms []string `env:"MODERATION_EXTRA_TERMS" yaml:"extra_terms"`
}

// CORSConfig holds CORS settings for the browser client.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `env:"CORS_ORIGINS" yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	if cfg.Redis.SummaryTTL == 0 {
		cfg.Redis.SummaryTTL = defaultSummaryTTL
	}
	setProviderDefaults(&cfg.Providers)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLoggingFmt
	}
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.MaxQueryLength == 0 {
		svc.MaxQueryLength = defaultMaxQueryLength
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
	if db.MaxOpenConns == 0 {
		db.MaxOpenConns = defaultDBMaxOpenConns
	}
	if db.MaxIdleConns == 0 {
		db.MaxIdleConns = defaultDBMaxIdleConns
	}
	if db.ConnMaxLifetime == 0 {
		db.ConnMaxLifetime = defaultDBConnLifetime
	}
}

func setProviderDefaults(p *ProvidersConfig) {
	if p.Timeout == 0 {
		p.Timeout = defaultProviderTimeout
	}
	if p.Web.BaseURL == "" {
		p.Web.BaseURL = defaultGoogleBaseURL
	}
	if p.Video.BaseURL == "" {
		p.Video.BaseURL = defaultGoogleBaseURL
	}

	s := &p.Summary
	if s.Provider == "" {
		s.Provider = SummaryProviderGroq
	}
	if s.Model == "" {
		switch s.Provider {
		case SummaryProviderAnthropic:
			s.Model = defaultAnthropicModel
		case SummaryProviderOpenAI:
			s.Model = defaultOpenAIModel
		default:
			s.Model = defaultGroqModel
		}
	}
	if s.BaseURL == "" && s.Provider == SummaryProviderGroq {
		s.BaseURL = defaultGroqBaseURL
	}
	if s.Temperature == nil {
		temperature := float32(defaultSummaryTemp)
		s.Temperature = &temperature
	}
	if s.MaxTokens == 0 {
		s.MaxTokens = defaultSummaryMaxTokens
	}

	if p.Breaker.FailureThreshold == 0 {
		p.Breaker.FailureThreshold = defaultBreakerFailures
	}
	if p.Breaker.OpenTimeout == 0 {
		p.Breaker.OpenTimeout = defaultBreakerOpenPeriod
	}
}

// Validate reports every invalid field. Missing provider credentials are
// not errors: the corresponding source is skipped at request time.
func (c *Config) Validate() error {
	var checks infraconfig.Checks

	checks.Port("service.port", c.Service.Port)
	checks.Required("auth.jwt_secret", c.Auth.JWTSecret)
	if c.Service.MaxQueryLength < 0 {
		checks.Failf("service.max_query_length", "must not be negative")
	}

	checks.OneOf("providers.summary.provider", c.Providers.Summary.Provider,
		SummaryProviderGroq, SummaryProviderOpenAI, SummaryProviderAnthropic)
	checks.URL("providers.web.base_url", c.Providers.Web.BaseURL)
	checks.URL("providers.video.base_url", c.Providers.Video.BaseURL)
	checks.URL("providers.summary.base_url", c.Providers.Summary.BaseURL)
	if c.Providers.Breaker.FailureThreshold < 1 {
		checks.Failf("providers.breaker.failure_threshold", "must be at least 1")
	}

	checks.Add(infraconfig.ValidateLogLevel(c.Logging.Level))
	checks.Add(infraconfig.ValidateLogFormat(c.Logging.Format))

	return checks.Err()
}

// Package api exposes the study search HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/quillglow/infrastructure/gin"
	infralogger "github.com/jonesrussell/quillglow/infrastructure/logger"
	"github.com/jonesrussell/quillglow/internal/config"
	"github.com/jonesrussell/quillglow/internal/telemetry"
)

// writeMargin is added to the provider timeout so a search whose slowest
// source times out can still write its degraded response.
const writeMargin = 5 * time.Second

// ServerOptions carries the optional collaborators of the HTTP server.
type ServerOptions struct {
	// DatabasePing marks /health unhealthy when it fails.
	DatabasePing func(context.Context) error
	// RedisPing marks /health degraded when it fails. Nil when the cache is disabled.
	RedisPing func(context.Context) error
	Telemetry *telemetry.Provider
}

// NewServer creates a new HTTP server using the infrastructure gin package.
func NewServer(handler *Handler, cfg *config.Config, log infralogger.Logger, opts ServerOptions) *infragin.Server {
	corsConfig := infragin.CORSConfig{
		Enabled:          cfg.CORS.Enabled,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(0, cfg.Providers.Timeout+writeMargin, 0, 0).
		WithCORS(corsConfig)

	if opts.DatabasePing != nil {
		builder = builder.WithDatabaseHealthCheck(opts.DatabasePing)
	}
	if opts.RedisPing != nil {
		builder = builder.WithRedisHealthCheck(opts.RedisPing)
	}

	var metrics http.Handler
	if opts.Telemetry != nil {
		builder = builder.WithMiddleware(opts.Telemetry.Middleware())
		metrics = opts.Telemetry.Handler()
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			// Health routes are registered by the builder.
			SetupServiceRoutes(router, handler, cfg.Auth.JWTSecret, metrics)
		}).
		Build()
}

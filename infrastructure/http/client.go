// Package http builds the outbound HTTP clients used for upstream search providers.
package http

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a whole upstream request including the body read.
	DefaultTimeout = 10 * time.Second

	defaultMaxIdleConns          = 100
	defaultMaxIdleConnsPerHost   = 10
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 5 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
)

// ClientConfig configures an HTTP client. Zero values fall back to defaults.
type ClientConfig struct {
	Timeout             time.Duration
	MaxIdleConnsPerHost int
	// ResponseHeaderTimeout defaults to Timeout.
	ResponseHeaderTimeout time.Duration
}

// NewClient creates an *http.Client with a hard request timeout so a stalled
// provider cannot hold a search request open indefinitely.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	perHost := cfg.MaxIdleConnsPerHost
	if perHost <= 0 {
		perHost = defaultMaxIdleConnsPerHost
	}

	headerTimeout := cfg.ResponseHeaderTimeout
	if headerTimeout <= 0 {
		headerTimeout = timeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
		ResponseHeaderTimeout: headerTimeout,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

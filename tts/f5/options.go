package f5

import (
	"log/slog"
	"net/http"
	"time"
)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	retry      RetryConfig
}

// Option configures the F5-TTS client.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		// flow-matching synthesis of a long chunk on CPU takes minutes
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		logger:     slog.Default(),
		retry:      DefaultRetryConfig(),
	}
}

// WithHTTPClient allows providing a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAPIKey sends the key in the X-Api-Key header.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg RetryConfig) Option {
	return func(o *options) {
		if cfg.MaxAttempts > 0 {
			o.retry = cfg
		}
	}
}

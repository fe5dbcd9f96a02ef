package gemini

import "log/slog"

// options holds configuration for the Gemini speech client.
type options struct {
	model     string
	voiceName string
	apiKey    string
	logger    *slog.Logger
}

// Option is a function type for configuring the client.
type Option func(*options)

func applyOptions(opts ...Option) options {
	o := options{
		model:     "gemini-2.5-flash-preview-tts",
		voiceName: "Kore",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithVoiceName selects one of the prebuilt voices.
func WithVoiceName(name string) Option {
	return func(opts *options) {
		if name != "" {
			opts.voiceName = name
		}
	}
}

// WithAPIKey sets the Gemini API key.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

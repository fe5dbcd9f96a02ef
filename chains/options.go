package chains

import (
	"log/slog"

	"github.com/sevigo/bookpurr/tts"
)

type options struct {
	voice        *tts.ReferenceVoice
	library      *tts.VoiceLibrary
	ttsOptions   tts.Options
	cache        SpeechCache
	workers      int
	progress     Progress
	logger       *slog.Logger
	skipExisting bool
}

// Option configures a Narration.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		ttsOptions: tts.DefaultOptions(),
		workers:    1,
		progress:   NopProgress{},
		logger:     slog.Default(),
	}
}

// WithVoice fixes the reference voice for every chunk.
func WithVoice(voice tts.ReferenceVoice) Option {
	return func(o *options) {
		o.voice = &voice
	}
}

// WithVoiceLibrary picks the reference voice from the library based on the text's script.
// A voice set with WithVoice takes precedence.
func WithVoiceLibrary(lib tts.VoiceLibrary) Option {
	return func(o *options) {
		o.library = &lib
	}
}

// WithOptions sets the sampling options sent with every request.
func WithOptions(opts tts.Options) Option {
	return func(o *options) {
		o.ttsOptions = opts
	}
}

// WithCache reuses speech for chunks synthesized before.
func WithCache(c SpeechCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithWorkers sets how many chunks of a chapter are synthesized concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithProgress receives progress events. It is called from worker goroutines.
func WithProgress(p Progress) Option {
	return func(o *options) {
		if p != nil {
			o.progress = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSkipExisting leaves chapter files that already exist untouched.
func WithSkipExisting(skip bool) Option {
	return func(o *options) {
		o.skipExisting = skip
	}
}

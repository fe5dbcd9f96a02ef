package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sevigo/bookpurr/cache"
	"github.com/sevigo/bookpurr/chains"
	"github.com/sevigo/bookpurr/documentloaders"
	"github.com/sevigo/bookpurr/internal/appconfig"
	"github.com/sevigo/bookpurr/parsers"
	"github.com/sevigo/bookpurr/tts"
	"github.com/sevigo/bookpurr/tts/f5"
	"github.com/sevigo/bookpurr/tts/gemini"
)

// bookSource picks the parser registry for book files, or runs converter with
// the book path appended as its last argument.
func (a *app) bookSource(book, converter string) (documentloaders.BookSource, error) {
	opts := []documentloaders.Option{documentloaders.WithLogger(a.logger)}

	if converter = strings.TrimSpace(converter); converter != "" {
		parts := strings.Fields(converter)
		args := append(parts[1:], book)
		return documentloaders.NewCLICommandLoader(parts[0], args, opts...), nil
	}

	registry, err := parsers.RegisterBookParsers(a.logger)
	if err != nil {
		return nil, err
	}
	return documentloaders.NewBook(book, registry, opts...), nil
}

// newSynthesizer builds the configured speech backend.
func (a *app) newSynthesizer(ctx context.Context) (tts.Synthesizer, error) {
	switch a.cfg.BackendOrDefault() {
	case appconfig.BackendGemini:
		opts := []gemini.Option{gemini.WithLogger(a.logger)}
		if m := a.cfg.Gemini.Model; m != "" {
			opts = append(opts, gemini.WithModel(m))
		}
		if v := a.cfg.Gemini.Voice; v != "" {
			opts = append(opts, gemini.WithVoiceName(v))
		}
		if k := a.cfg.Gemini.APIKey; k != "" {
			opts = append(opts, gemini.WithAPIKey(k))
		}
		s, err := gemini.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil

	case appconfig.BackendF5:
		opts := []f5.Option{
			f5.WithLogger(a.logger),
			f5.WithHTTPClient(&http.Client{Timeout: a.cfg.RequestTimeout()}),
		}
		if k := a.cfg.F5.APIKey; k != "" {
			opts = append(opts, f5.WithAPIKey(k))
		}
		if n := a.cfg.F5.MaxAttempts; n > 0 {
			retry := f5.DefaultRetryConfig()
			retry.MaxAttempts = n
			opts = append(opts, f5.WithRetry(retry))
		}
		s, err := f5.New(a.cfg.F5URL(), opts...)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", appconfig.ErrInvalidConfig, a.cfg.Backend)
	}
}

// narrationOptions translates the configuration into chain options. The
// returned close func releases the synthesis cache.
func (a *app) narrationOptions(ctx context.Context) ([]chains.Option, func() error, error) {
	opts := []chains.Option{
		chains.WithLogger(a.logger),
		chains.WithOptions(a.cfg.TTSOptions()),
		chains.WithWorkers(a.cfg.WorkersOrDefault()),
		chains.WithSkipExisting(a.cfg.SkipExisting),
	}
	closeFn := func() error { return nil }

	if a.cfg.Voice.Audio != "" {
		voice, err := tts.LoadVoice(a.cfg.Voice.Audio, a.cfg.Voice.Text)
		if err != nil {
			return nil, closeFn, err
		}
		opts = append(opts, chains.WithVoice(voice))
	} else {
		opts = append(opts, chains.WithVoiceLibrary(tts.VoiceLibrary{Dir: a.cfg.VoicesDirOrDefault()}))
	}

	if a.cfg.CachePath != "" {
		c, err := cache.Open(ctx, a.cfg.CachePath, cache.WithLogger(a.logger))
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open synthesis cache: %w", err)
		}
		opts = append(opts, chains.WithCache(c))
		closeFn = func() error {
			if stats, err := c.Stats(context.WithoutCancel(ctx)); err == nil {
				a.logger.Info("Synthesis cache", "entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)
			}
			return c.Close()
		}
	}

	return opts, closeFn, nil
}

func joinClose(err error, closeFn func() error) error {
	return errors.Join(err, closeFn())
}

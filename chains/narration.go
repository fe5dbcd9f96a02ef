package chains

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/cache"
	"github.com/sevigo/bookpurr/schema"
	"github.com/sevigo/bookpurr/textsplitter"
	"github.com/sevigo/bookpurr/tts"
)

// ErrNoVoice is returned when neither a voice nor a voice library is configured.
var ErrNoVoice = errors.New("no reference voice configured")

const maxSlugRunes = 40

// Chunker produces the chunks of a text in order.
type Chunker interface {
	Chunks(text string) iter.Seq[string]
}

// SpeechCache stores trimmed speech by request key.
type SpeechCache interface {
	Get(ctx context.Context, key string) (audio.Waveform, bool, error)
	Put(ctx context.Context, key, backend, text string, wf audio.Waveform) error
}

// Narration turns text into one continuous waveform: chunk, synthesize each chunk,
// drop the reference prefix and concatenate in source order.
type Narration struct {
	chunker     Chunker
	synthesizer tts.Synthesizer
	opts        *options
	logger      *slog.Logger
}

// NewNarration builds a narration chain.
func NewNarration(chunker Chunker, synthesizer tts.Synthesizer, opts ...Option) (*Narration, error) {
	if chunker == nil || synthesizer == nil {
		return nil, errors.New("chunker and synthesizer are required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.ttsOptions.Validate(); err != nil {
		return nil, err
	}
	if o.voice != nil {
		if err := tts.ValidateVoice(*o.voice); err != nil {
			return nil, err
		}
	}

	return &Narration{
		chunker:     chunker,
		synthesizer: synthesizer,
		opts:        o,
		logger:      o.logger.With("component", "narration", "backend", synthesizer.Name()),
	}, nil
}

// Call narrates text with a voice chosen for it.
func (n *Narration) Call(ctx context.Context, text string) (audio.Waveform, error) {
	voice, err := n.voiceFor(text)
	if err != nil {
		return audio.Waveform{}, err
	}
	return n.narrate(ctx, n.logger, 0, "", text, voice)
}

// NarrateBook writes one WAV per chapter document into outDir, named NNN_<slug>.wav,
// and returns the paths in chapter order.
func (n *Narration) NarrateBook(ctx context.Context, docs []schema.Document, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger := n.logger.With("run_id", uuid.NewString())

	var sample strings.Builder
	for _, doc := range docs {
		sample.WriteString(doc.PageContent)
	}
	voice, err := n.voiceFor(sample.String())
	if err != nil {
		return nil, err
	}
	logger.Info("Narrating book", "chapters", len(docs), "voice", voice.Name, "workers", n.opts.workers)

	start := time.Now()
	paths := make([]string, 0, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return paths, err
		}

		index := doc.IntMeta(schema.MetaChapterIndex, i+1)
		title := doc.StringMeta(schema.MetaChapterTitle)
		path := filepath.Join(outDir, ChapterFileName(index, title))

		if n.opts.skipExisting {
			if _, err := os.Stat(path); err == nil {
				logger.Info("Chapter already narrated, skipping", "chapter", doc.Label(), "path", path)
				n.opts.progress.ChapterDone(index, path, 0)
				paths = append(paths, path)
				continue
			}
		}

		chapterLogger := logger.With("chapter", index)
		wf, err := n.narrate(ctx, chapterLogger, index, title, doc.PageContent, voice)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", doc.Label(), err)
		}
		if err := audio.WriteFile(path, wf); err != nil {
			return paths, fmt.Errorf("%s: %w", doc.Label(), err)
		}

		chapterLogger.Info("Chapter narrated", "path", path, "duration", wf.Duration())
		n.opts.progress.ChapterDone(index, path, wf.Duration())
		paths = append(paths, path)
	}

	logger.Info("Book narrated", "files", len(paths), "elapsed", time.Since(start))
	return paths, nil
}

func (n *Narration) narrate(ctx context.Context, logger *slog.Logger, chapter int, title, text string, voice tts.ReferenceVoice) (audio.Waveform, error) {
	var chunks []string
	for chunk := range n.chunker.Chunks(text) {
		// punctuation-only chunks carry nothing to speak
		if textsplitter.CountUnits(chunk) == 0 {
			continue
		}
		chunks = append(chunks, chunk)
	}

	n.opts.progress.ChapterStarted(chapter, title, len(chunks))
	logger.Debug("Text chunked", "chunks", len(chunks))

	speech := make([]audio.Waveform, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.opts.workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			wf, cached, err := n.synthesize(gctx, chunk, voice)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			speech[i] = wf
			n.opts.progress.ChunkDone(chapter, i, chunk, wf.Duration(), cached)
			logger.Debug("Chunk synthesized", "chunk", i, "duration", wf.Duration(), "cached", cached)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return audio.Waveform{}, err
	}

	return audio.Concat(speech...)
}

// synthesize returns the trimmed speech for one chunk and whether it came from the cache.
func (n *Narration) synthesize(ctx context.Context, text string, voice tts.ReferenceVoice) (audio.Waveform, bool, error) {
	req := tts.Request{Text: text, Voice: voice, Options: n.opts.ttsOptions}

	var key string
	if n.opts.cache != nil {
		key = cache.Key(n.synthesizer.Name(), req)
		wf, ok, err := n.opts.cache.Get(ctx, key)
		if err != nil {
			n.logger.Warn("Cache lookup failed", "error", err)
		} else if ok {
			return wf, true, nil
		}
	}

	res, err := n.synthesizer.Synthesize(ctx, req)
	if err != nil {
		return audio.Waveform{}, false, err
	}
	wf := res.Speech()

	if n.opts.cache != nil {
		if err := n.opts.cache.Put(ctx, key, n.synthesizer.Name(), text, wf); err != nil {
			n.logger.Warn("Cache store failed", "error", err)
		}
	}
	return wf, false, nil
}

func (n *Narration) voiceFor(text string) (tts.ReferenceVoice, error) {
	switch {
	case n.opts.voice != nil:
		return *n.opts.voice, nil
	case n.opts.library != nil:
		return n.opts.library.ForText(text)
	default:
		return tts.ReferenceVoice{}, ErrNoVoice
	}
}

// ChapterFileName returns the output file name for a chapter, e.g. "003_the-storm.wav".
func ChapterFileName(index int, title string) string {
	return fmt.Sprintf("%03d_%s.wav", index, slug(title))
}

func slug(title string) string {
	var b strings.Builder
	dash := false
	count := 0
	for _, r := range strings.ToLower(title) {
		if count >= maxSlugRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			count++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			count++
		}
	}

	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "chapter"
	}
	return s
}

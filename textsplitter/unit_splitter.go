package textsplitter

import (
	"context"
	"iter"
	"log/slog"
	"strings"
)

// UnitSplitter breaks prose into chunks of at most maxUnits speech units, preferring
// the coarsest punctuation boundary that works.
type UnitSplitter struct {
	maxUnits int
	tiers    []Tier
	logger   *slog.Logger
}

var (
	_ TextSplitter     = (*UnitSplitter)(nil)
	_ DocumentSplitter = (*UnitSplitter)(nil)
)

// NewUnitSplitter returns a splitter bounded by maxUnits. maxUnits below 1 is rejected.
func NewUnitSplitter(maxUnits int, opts ...Option) (*UnitSplitter, error) {
	if err := validateMaxUnits(maxUnits); err != nil {
		return nil, err
	}

	o := &options{
		logger: slog.Default(),
		tiers:  AllTiers,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &UnitSplitter{
		maxUnits: maxUnits,
		tiers:    o.tiers,
		logger:   o.logger.With("component", "unit_splitter"),
	}, nil
}

// MaxUnits returns the configured per-chunk budget.
func (s *UnitSplitter) MaxUnits() int {
	return s.maxUnits
}

// Chunks returns a lazy sequence of chunks. Each range over the sequence walks the text again.
func (s *UnitSplitter) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		s.split(text, s.tiers, yield)
	}
}

// SplitText collects Chunks, checking ctx between chunks.
func (s *UnitSplitter) SplitText(ctx context.Context, text string) ([]string, error) {
	var chunks []string
	for chunk := range s.Chunks(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// split reports false once the consumer stops iterating.
func (s *UnitSplitter) split(text string, tiers []Tier, yield func(string) bool) bool {
	if CountUnits(text) <= s.maxUnits {
		return yield(strings.TrimSpace(text))
	}

	for i, tier := range tiers {
		segments := SplitAtTier(text, tier)
		if len(segments) < 2 {
			continue
		}
		return s.merge(segments, tiers[i+1:], yield)
	}

	s.logger.Debug("No punctuation boundary left, using hard fallback",
		"runes", len([]rune(text)), "max_units", s.maxUnits)
	for _, piece := range splitMixed(text, s.maxUnits) {
		if !yield(piece) {
			return false
		}
	}
	return true
}

// merge packs segments greedily with a single-space joiner. Oversized segments are
// split with the finer tiers and their pieces are emitted without merging.
func (s *UnitSplitter) merge(segments []string, finer []Tier, yield func(string) bool) bool {
	var (
		buf      string
		bufUnits int
	)
	flush := func() bool {
		if buf == "" {
			return true
		}
		out := buf
		buf, bufUnits = "", 0
		return yield(out)
	}

	for _, seg := range segments {
		units := CountUnits(seg)
		if units > s.maxUnits {
			if !flush() || !s.split(seg, finer, yield) {
				return false
			}
			continue
		}

		switch {
		case buf == "":
			buf, bufUnits = seg, units
		case bufUnits+units <= s.maxUnits:
			// a space never joins two runs, so counts add up
			buf += " " + seg
			bufUnits += units
		default:
			if !flush() {
				return false
			}
			buf, bufUnits = seg, units
		}
	}
	return flush()
}

// Chunk splits text with a default-configured UnitSplitter.
func Chunk(text string, maxUnits int) ([]string, error) {
	s, err := NewUnitSplitter(maxUnits)
	if err != nil {
		return nil, err
	}
	return s.SplitText(context.Background(), text)
}

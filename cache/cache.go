// Package cache stores synthesized chunks in SQLite so an interrupted narration can
// resume without calling the backend again.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/tts"
)

const driverName = "sqlite"

// ErrClosed is returned by every method after Close.
var ErrClosed = errors.New("cache is closed")

// Stats describes the cache contents and the hit rate of this process.
type Stats struct {
	Entries int
	Bytes   int64
	Hits    int64
	Misses  int64
}

// SynthesisCache maps request keys to the speech part of a synthesis result.
type SynthesisCache struct {
	db     *sql.DB
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures the cache.
type Option func(*SynthesisCache)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *SynthesisCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open opens or creates the cache database at path. ":memory:" gives a private
// in-memory cache.
func Open(ctx context.Context, path string, opts ...Option) (*SynthesisCache, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a single connection also keeps ":memory:" databases alive and shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	c := &SynthesisCache{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "synthesis_cache")
	c.logger.Debug("Cache opened", "path", path)
	return c, nil
}

// Key derives the cache key of a request sent to the named backend.
func Key(backend string, req tts.Request) string {
	opts, _ := json.Marshal(req.Options)

	h := sha256.New()
	for _, part := range []string{backend, req.Text, req.Voice.Text, req.Voice.Digest(), string(opts)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached speech for key. The boolean is false on a miss.
func (c *SynthesisCache) Get(ctx context.Context, key string) (audio.Waveform, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return audio.Waveform{}, false, ErrClosed
	}

	var (
		rate int
		pcm  []byte
	)
	err := c.db.QueryRowContext(ctx, `SELECT sample_rate, pcm FROM synthesis WHERE key = ?`, key).Scan(&rate, &pcm)
	if errors.Is(err, sql.ErrNoRows) {
		c.misses.Add(1)
		return audio.Waveform{}, false, nil
	}
	if err != nil {
		return audio.Waveform{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, `UPDATE synthesis SET last_used_at = ? WHERE key = ?`, time.Now().UnixNano(), key); err != nil {
		c.logger.Warn("Failed to touch cache entry", "error", err)
	}

	c.hits.Add(1)
	return audio.FromPCM16LE(pcm, rate), true, nil
}

// Put stores speech under key, replacing any previous entry.
func (c *SynthesisCache) Put(ctx context.Context, key, backend, text string, wf audio.Waveform) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	now := time.Now().UnixNano()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO synthesis (key, backend, text, sample_rate, pcm, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			sample_rate = excluded.sample_rate,
			pcm = excluded.pcm,
			last_used_at = excluded.last_used_at
	`, key, backend, text, wf.SampleRate, wf.ToPCM16LE(), now, now)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Prune removes entries not used since before cutoff and returns how many were removed.
func (c *SynthesisCache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, ErrClosed
	}

	res, err := c.db.ExecContext(ctx, `DELETE FROM synthesis WHERE last_used_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}

func (c *SynthesisCache) Stats(ctx context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return Stats{}, ErrClosed
	}

	st := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(LENGTH(pcm)), 0) FROM synthesis`).Scan(&st.Entries, &st.Bytes)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return st, nil
}

// Close closes the database. It is safe to call more than once.
func (c *SynthesisCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

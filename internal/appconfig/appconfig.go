// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/bookpurr/textsplitter"
	"github.com/sevigo/bookpurr/tts"
)

const (
	// DefaultConfigName is the config file name looked up without an extension.
	DefaultConfigName = "bookpurr"
	// EnvPrefix prefixes environment overrides, e.g. BOOKPURR_BACKEND.
	EnvPrefix = "BOOKPURR"

	BackendF5     = "f5"
	BackendGemini = "gemini"

	defaultF5URL          = "http://localhost:8000"
	defaultVoicesDir      = "voices"
	defaultRequestTimeout = 600 * time.Second
	defaultWorkers        = 1
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the top-level application configuration.
type Config struct {
	Debug        bool         `mapstructure:"debug" json:"debug"`
	LogFile      string       `mapstructure:"logFile" json:"logFile,omitempty"`
	LogJSON      bool         `mapstructure:"logJSON" json:"logJSON"`
	MaxUnits     int          `mapstructure:"maxUnits" json:"maxUnits"`
	Backend      string       `mapstructure:"backend" json:"backend"`
	Workers      int          `mapstructure:"workers" json:"workers"`
	CachePath    string       `mapstructure:"cache" json:"cache,omitempty"`
	SkipExisting bool         `mapstructure:"skipExisting" json:"skipExisting"`
	VoicesDir    string       `mapstructure:"voicesDir" json:"voicesDir"`
	Voice        VoiceConfig  `mapstructure:"voice" json:"voice"`
	TTS          TTSConfig    `mapstructure:"tts" json:"tts"`
	F5           F5Config     `mapstructure:"f5" json:"f5"`
	Gemini       GeminiConfig `mapstructure:"gemini" json:"gemini"`
}

// VoiceConfig names a custom reference clip. When Audio is empty the bundled
// voices in VoicesDir are chosen per book.
type VoiceConfig struct {
	Audio string `mapstructure:"audio" json:"audio,omitempty"`
	Text  string `mapstructure:"text" json:"text,omitempty"`
}

// TTSConfig overrides sampling parameters; nil fields keep tts.DefaultOptions.
type TTSConfig struct {
	Steps            *int     `mapstructure:"steps" json:"steps,omitempty"`
	Method           string   `mapstructure:"method" json:"method,omitempty"`
	CFGStrength      *float64 `mapstructure:"cfgStrength" json:"cfgStrength,omitempty"`
	SwaySamplingCoef *float64 `mapstructure:"swaySamplingCoef" json:"swaySamplingCoef,omitempty"`
	Speed            *float64 `mapstructure:"speed" json:"speed,omitempty"`
	Seed             *int64   `mapstructure:"seed" json:"seed,omitempty"`
}

// F5Config points at an F5-TTS inference server.
type F5Config struct {
	URL            string `mapstructure:"url" json:"url"`
	APIKey         string `mapstructure:"apiKey" json:"-"`
	TimeoutSeconds int    `mapstructure:"timeout" json:"timeout,omitempty"`
	MaxAttempts    int    `mapstructure:"maxAttempts" json:"maxAttempts,omitempty"`
}

// GeminiConfig selects the Gemini speech model and prebuilt voice.
type GeminiConfig struct {
	Model  string `mapstructure:"model" json:"model,omitempty"`
	Voice  string `mapstructure:"voice" json:"voice,omitempty"`
	APIKey string `mapstructure:"apiKey" json:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		MaxUnits:  textsplitter.DefaultMaxUnits,
		Backend:   BackendF5,
		Workers:   defaultWorkers,
		VoicesDir: defaultVoicesDir,
		F5:        F5Config{URL: defaultF5URL},
	}
}

// SetDefaults registers Default() with v so that unmarshalled fields not set by
// file, env or flags keep their defaults.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("logJSON", d.LogJSON)
	v.SetDefault("maxUnits", d.MaxUnits)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("voicesDir", d.VoicesDir)
	v.SetDefault("f5.url", d.F5.URL)
}

// Load unmarshals and validates the merged configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MaxUnitsOrDefault returns the chunk budget, falling back to the default if not set.
func (c Config) MaxUnitsOrDefault() int {
	if c.MaxUnits == 0 {
		return textsplitter.DefaultMaxUnits
	}
	return c.MaxUnits
}

// WorkersOrDefault returns the number of concurrent synthesis requests.
func (c Config) WorkersOrDefault() int {
	if c.Workers <= 0 {
		return defaultWorkers
	}
	return c.Workers
}

// BackendOrDefault returns the lower-cased backend name.
func (c Config) BackendOrDefault() string {
	if b := strings.ToLower(strings.TrimSpace(c.Backend)); b != "" {
		return b
	}
	return BackendF5
}

// F5URL returns the inference server URL, applying a default if not set.
func (c Config) F5URL() string {
	if u := strings.TrimSpace(c.F5.URL); u != "" {
		return u
	}
	return defaultF5URL
}

// RequestTimeout returns the HTTP timeout for the F5 client.
func (c Config) RequestTimeout() time.Duration {
	if c.F5.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.F5.TimeoutSeconds) * time.Second
}

// VoicesDirOrDefault returns the bundled voice directory.
func (c Config) VoicesDirOrDefault() string {
	if d := strings.TrimSpace(c.VoicesDir); d != "" {
		return d
	}
	return defaultVoicesDir
}

// TTSOptions overlays the configured sampling parameters on tts.DefaultOptions.
func (c Config) TTSOptions() tts.Options {
	opts := tts.DefaultOptions()
	if c.TTS.Steps != nil {
		opts.Steps = *c.TTS.Steps
	}
	if m := strings.ToLower(strings.TrimSpace(c.TTS.Method)); m != "" {
		opts.Method = m
	}
	if c.TTS.CFGStrength != nil {
		opts.CFGStrength = *c.TTS.CFGStrength
	}
	if c.TTS.SwaySamplingCoef != nil {
		opts.SwaySamplingCoef = *c.TTS.SwaySamplingCoef
	}
	if c.TTS.Speed != nil {
		opts.Speed = *c.TTS.Speed
	}
	if c.TTS.Seed != nil {
		opts = opts.WithSeed(*c.TTS.Seed)
	}
	return opts
}

// Validate rejects unknown backends, chunk budgets below one and invalid
// sampling parameters.
func (c Config) Validate() error {
	switch c.BackendOrDefault() {
	case BackendF5, BackendGemini:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.MaxUnits < 1 {
		return fmt.Errorf("%w: maxUnits must be at least 1, got %d", ErrInvalidConfig, c.MaxUnits)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if (c.Voice.Audio == "") != (c.Voice.Text == "") {
		return fmt.Errorf("%w: voice.audio and voice.text must be set together", ErrInvalidConfig)
	}
	if err := c.TTSOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the config file in use and the effective configuration.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	pp.Fprintln(out, cfg.Redacted())
	fmt.Fprintln(out, "Sampling options:")
	pp.Fprintln(out, cfg.TTSOptions())
}

// Redacted returns a copy with API keys masked.
func (c Config) Redacted() Config {
	if c.F5.APIKey != "" {
		c.F5.APIKey = redacted
	}
	if c.Gemini.APIKey != "" {
		c.Gemini.APIKey = redacted
	}
	return c
}

const redacted = "****"

package textsplitter

import "log/slog"

// options holds configuration settings for the unit splitter.
type options struct {
	logger *slog.Logger
	tiers  []Tier
}

// Option is a function type for configuring the splitter.
type Option func(*options)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTiers restricts the punctuation tiers the splitter tries. Tiers are always tried
// coarsest first regardless of the order given; unknown tiers are ignored.
func WithTiers(tiers ...Tier) Option {
	return func(o *options) {
		var kept []Tier
		for _, t := range AllTiers {
			for _, want := range tiers {
				if t == want {
					kept = append(kept, t)
					break
				}
			}
		}
		o.tiers = kept
	}
}

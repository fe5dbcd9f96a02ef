package tts

import "fmt"

const (
	MethodEuler    = "euler"
	MethodMidpoint = "midpoint"
)

// Options are the sampling parameters of a flow-matching TTS model.
type Options struct {
	Steps            int     `json:"steps" mapstructure:"steps"`
	Method           string  `json:"method" mapstructure:"method"`
	CFGStrength      float64 `json:"cfg_strength" mapstructure:"cfgStrength"`
	SwaySamplingCoef float64 `json:"sway_sampling_coef" mapstructure:"swaySamplingCoef"`
	Speed            float64 `json:"speed" mapstructure:"speed"`
	Seed             *int64  `json:"seed,omitempty" mapstructure:"seed"`
}

func DefaultOptions() Options {
	return Options{
		Steps:            32,
		Method:           MethodEuler,
		CFGStrength:      2.0,
		SwaySamplingCoef: -1.0,
		Speed:            0.8,
	}
}

func (o Options) Validate() error {
	if o.Steps < 1 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidOptions, o.Steps)
	}
	if o.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidOptions, o.Speed)
	}
	switch o.Method {
	case MethodEuler, MethodMidpoint:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidOptions, o.Method)
	}
	return nil
}

// WithSeed returns a copy of o with a fixed seed.
func (o Options) WithSeed(seed int64) Options {
	o.Seed = &seed
	return o
}

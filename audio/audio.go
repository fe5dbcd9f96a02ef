// Package audio holds mono float waveforms and reads and writes them as 16-bit PCM WAV.
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// SampleRate is the rate every synthesis backend produces and every reference voice must use.
	SampleRate = 24000
	// TargetRMS is the loudness quiet reference clips are boosted to.
	TargetRMS = 0.1
)

var (
	ErrInvalidWAV         = errors.New("invalid wav data")
	ErrSampleRateMismatch = errors.New("sample rate mismatch")
)

// Waveform is a mono signal with samples in [-1, 1].
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Len returns the number of samples.
func (w Waveform) Len() int {
	return len(w.Samples)
}

// Duration returns the playing time of the waveform.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// RMS returns the root mean square of the samples, 0 for an empty waveform.
func (w Waveform) RMS() float64 {
	if len(w.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range w.Samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(w.Samples)))
}

// NormalizeRMS scales a quiet waveform up to target. Waveforms already at or above
// target, and silent ones, are returned unchanged.
func (w Waveform) NormalizeRMS(target float64) Waveform {
	rms := w.RMS()
	if rms == 0 || rms >= target {
		return w
	}

	gain := float32(target / rms)
	out := make([]float32, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = s * gain
	}
	return Waveform{Samples: out, SampleRate: w.SampleRate}
}

// TrimPrefix drops the first n samples.
func (w Waveform) TrimPrefix(n int) Waveform {
	if n <= 0 {
		return w
	}
	if n >= len(w.Samples) {
		return Waveform{SampleRate: w.SampleRate}
	}
	return Waveform{Samples: w.Samples[n:], SampleRate: w.SampleRate}
}

// Concat joins waveforms end to end. All inputs must share one sample rate; an empty
// argument list yields an empty waveform at SampleRate.
func Concat(waves ...Waveform) (Waveform, error) {
	if len(waves) == 0 {
		return Waveform{SampleRate: SampleRate}, nil
	}

	rate := waves[0].SampleRate
	total := 0
	for i, w := range waves {
		if w.SampleRate != rate {
			return Waveform{}, fmt.Errorf("%w: part %d is %d Hz, expected %d Hz", ErrSampleRateMismatch, i, w.SampleRate, rate)
		}
		total += len(w.Samples)
	}

	out := make([]float32, 0, total)
	for _, w := range waves {
		out = append(out, w.Samples...)
	}
	return Waveform{Samples: out, SampleRate: rate}, nil
}

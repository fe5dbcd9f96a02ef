package fake

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/tts"
)

// Synthesizer is a deterministic tts.Synthesizer for tests. Each rune of the text
// becomes one sample, prefixed by the reference clip the way a voice-cloning model
// returns it.
type Synthesizer struct {
	mu       sync.Mutex
	requests []tts.Request

	// ErrToReturn fails every call when set.
	ErrToReturn error
	// FailOn fails calls whose text contains the substring.
	FailOn string
	// Delay is slept before answering, honouring ctx.
	Delay time.Duration
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

func (f *Synthesizer) Name() string {
	return "fake"
}

func (f *Synthesizer) Synthesize(ctx context.Context, req tts.Request) (tts.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return tts.Result{}, ctx.Err()
		case <-time.After(f.Delay):
		}
	}

	if f.ErrToReturn != nil {
		return tts.Result{}, f.ErrToReturn
	}
	if f.FailOn != "" && strings.Contains(req.Text, f.FailOn) {
		return tts.Result{}, &FailedError{Text: req.Text}
	}

	prefix := req.Voice.Audio.Samples
	speech := Render(req.Text)
	samples := make([]float32, 0, len(prefix)+len(speech))
	samples = append(samples, prefix...)
	samples = append(samples, speech...)

	return tts.Result{
		Waveform:      audio.Waveform{Samples: samples, SampleRate: audio.SampleRate},
		PrefixSamples: len(prefix),
	}, nil
}

// Render is the speech the fake produces for text.
func Render(text string) []float32 {
	out := make([]float32, 0, len(text))
	for _, r := range text {
		out = append(out, float32(r%1000)/1000)
	}
	return out
}

// Requests returns a copy of every request received so far.
func (f *Synthesizer) Requests() []tts.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tts.Request(nil), f.requests...)
}

// Texts returns the text of every request received so far.
func (f *Synthesizer) Texts() []string {
	reqs := f.Requests()
	texts := make([]string, len(reqs))
	for i, r := range reqs {
		texts[i] = r.Text
	}
	return texts
}

// Reset forgets recorded requests.
func (f *Synthesizer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

// FailedError is returned for texts matching FailOn.
type FailedError struct {
	Text string
}

func (e *FailedError) Error() string {
	return "fake synthesis failed for " + e.Text
}

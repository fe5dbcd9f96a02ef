// Package gemini synthesizes speech with the Gemini API using a prebuilt voice.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/prompts"
	"github.com/sevigo/bookpurr/tts"
)

var (
	ErrNoAPIKey     = errors.New("gemini: API key is required")
	ErrInvalidModel = errors.New("gemini: invalid model specified")
	ErrNoAudio      = errors.New("gemini: response contained no audio")
)

// contentGenerator is the part of *genai.Models the synthesizer uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Synthesizer implements tts.Synthesizer on top of Gemini speech generation. The
// reference clip is validated but not sent; the speaker is the configured prebuilt voice.
type Synthesizer struct {
	models  contentGenerator
	options options
	logger  *slog.Logger
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// New creates a Gemini speech client. The API key falls back to GEMINI_API_KEY.
func New(ctx context.Context, opts ...Option) (*Synthesizer, error) {
	o := applyOptions(opts...)

	if o.apiKey == "" {
		o.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if o.model == "" {
		return nil, ErrInvalidModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: o.apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	s := &Synthesizer{
		models:  client.Models,
		options: o,
		logger:  o.logger.With("component", "gemini_synthesizer", "model", o.model),
	}
	s.logger.Info("Gemini synthesizer initialized", "voice", o.voiceName)
	return s, nil
}

func (s *Synthesizer) Name() string {
	return "gemini"
}

func (s *Synthesizer) Synthesize(ctx context.Context, req tts.Request) (tts.Result, error) {
	if err := tts.ValidateRequest(req); err != nil {
		return tts.Result{}, err
	}

	start := time.Now()
	prompt := prompts.SpeechStylePrompt.Format(map[string]string{"text": req.Text})
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.options.voiceName},
			},
		},
	}
	if req.Options.Seed != nil {
		config.Seed = genai.Ptr(int32(*req.Options.Seed))
	}

	resp, err := s.models.GenerateContent(ctx, s.options.model, genai.Text(prompt), config)
	if err != nil {
		s.logger.ErrorContext(ctx, "Gemini speech request failed", "error", err, "duration", time.Since(start))
		return tts.Result{}, err
	}

	wf, err := waveformFromResponse(resp)
	if err != nil {
		return tts.Result{}, err
	}

	s.logger.DebugContext(ctx, "Synthesized chunk", "duration", wf.Duration(), "elapsed", time.Since(start))
	return tts.Result{Waveform: wf}, nil
}

// waveformFromResponse concatenates every inline audio part of the first candidate.
func waveformFromResponse(resp *genai.GenerateContentResponse) (audio.Waveform, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return audio.Waveform{}, ErrNoAudio
	}

	var (
		pcm  []byte
		rate = audio.SampleRate
	)
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		if r, ok := rateFromMIME(part.InlineData.MIMEType); ok {
			rate = r
		}
		pcm = append(pcm, part.InlineData.Data...)
	}
	if len(pcm) == 0 {
		return audio.Waveform{}, ErrNoAudio
	}

	wf := audio.FromPCM16LE(pcm, rate)
	if wf.SampleRate != audio.SampleRate {
		return audio.Waveform{}, fmt.Errorf("gemini audio: %w: got %d Hz", tts.ErrInvalidSampleRate, wf.SampleRate)
	}
	return wf, nil
}

// rateFromMIME reads the rate parameter of e.g. "audio/L16;codec=pcm;rate=24000".
func rateFromMIME(mime string) (int, bool) {
	for _, param := range strings.Split(mime, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || key != "rate" {
			continue
		}
		rate, err := strconv.Atoi(value)
		if err != nil {
			return 0, false
		}
		return rate, true
	}
	return 0, false
}

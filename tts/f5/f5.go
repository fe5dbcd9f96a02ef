// Package f5 is a client for an F5-TTS inference server.
package f5

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/prompts"
	"github.com/sevigo/bookpurr/tts"
)

// ErrServer is returned for non-2xx responses.
var ErrServer = errors.New("f5 server error")

// maxErrorBody bounds how much of an error response is kept in the error message.
const maxErrorBody = 512

// synthesizeRequest is the JSON body of POST /synthesize.
type synthesizeRequest struct {
	Text             string  `json:"text"`
	RefText          string  `json:"ref_text"`
	RefAudio         string  `json:"ref_audio"`
	Steps            int     `json:"steps"`
	Method           string  `json:"method"`
	CFGStrength      float64 `json:"cfg_strength"`
	SwaySamplingCoef float64 `json:"sway_sampling_coef"`
	Speed            float64 `json:"speed"`
	Seed             *int64  `json:"seed,omitempty"`
}

// Synthesizer sends chunks to a remote F5-TTS server. The server returns the
// reference clip followed by the generated speech.
type Synthesizer struct {
	serverURL  string
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	retry      RetryConfig
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// New creates a new F5-TTS client.
func New(serverURL string, opts ...Option) (*Synthesizer, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("server URL cannot be empty")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Synthesizer{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: options.httpClient,
		logger:     options.logger.With("component", "f5_synthesizer"),
		apiKey:     options.apiKey,
		retry:      options.retry,
	}, nil
}

func (s *Synthesizer) Name() string {
	return "f5"
}

// Synthesize generates speech for req.Text in the voice of req.Voice.
func (s *Synthesizer) Synthesize(ctx context.Context, req tts.Request) (tts.Result, error) {
	if err := tts.ValidateRequest(req); err != nil {
		return tts.Result{}, err
	}

	refAudio, err := audio.EncodeBytes(req.Voice.Audio)
	if err != nil {
		return tts.Result{}, fmt.Errorf("failed to encode reference audio: %w", err)
	}

	payload, err := json.Marshal(synthesizeRequest{
		Text: prompts.NarrationPrompt.Format(map[string]string{
			"ref_text": req.Voice.Text,
			"text":     req.Text,
		}),
		RefText:          req.Voice.Text,
		RefAudio:         base64.StdEncoding.EncodeToString(refAudio),
		Steps:            req.Options.Steps,
		Method:           req.Options.Method,
		CFGStrength:      req.Options.CFGStrength,
		SwaySamplingCoef: req.Options.SwaySamplingCoef,
		Speed:            req.Options.Speed,
		Seed:             req.Options.Seed,
	})
	if err != nil {
		return tts.Result{}, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	wf, err := retryWithBackoff(ctx, s.retry, func() (audio.Waveform, error) {
		return s.post(ctx, payload)
	})
	if err != nil {
		return tts.Result{}, err
	}

	if wf.SampleRate != audio.SampleRate {
		return tts.Result{}, fmt.Errorf("server audio: %w: got %d Hz", tts.ErrInvalidSampleRate, wf.SampleRate)
	}

	s.logger.Debug("Synthesized chunk",
		"chars", len([]rune(req.Text)),
		"reference_samples", req.Voice.Audio.Len(),
		"duration", wf.TrimPrefix(req.Voice.Audio.Len()).Duration())

	return tts.Result{Waveform: wf, PrefixSamples: req.Voice.Audio.Len()}, nil
}

func (s *Synthesizer) post(ctx context.Context, payload []byte) (audio.Waveform, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		return audio.Waveform{}, permanent(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")
	if s.apiKey != "" {
		httpReq.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Warn("F5 request failed", "error", err)
		return audio.Waveform{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 500 {
			s.logger.Warn("F5 server error, will retry", "status", resp.StatusCode)
			return audio.Waveform{}, err
		}
		return audio.Waveform{}, permanent(err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to read response: %w", err)
	}

	wf, err := audio.DecodeBytes(data)
	if err != nil {
		return audio.Waveform{}, permanent(fmt.Errorf("failed to decode response audio: %w", err))
	}
	return wf, nil
}

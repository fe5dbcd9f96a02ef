// Package tts defines the speech synthesis contract shared by every backend.
package tts

import (
	"context"
	"errors"
	"strings"

	"github.com/sevigo/bookpurr/audio"
)

var (
	ErrInvalidOptions    = errors.New("invalid synthesis options")
	ErrInvalidSampleRate = errors.New("reference audio must have a sample rate of 24kHz")
	ErrEmptyVoice        = errors.New("reference voice is empty")
	ErrMissingResource   = errors.New("reference voice resource not found")
	ErrEmptyText         = errors.New("text to synthesize is empty")
)

// Synthesizer turns one chunk of text into speech in the reference speaker's voice.
// Implementations must be safe for concurrent use.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
	Name() string
}

type Request struct {
	Text    string
	Voice   ReferenceVoice
	Options Options
}

// Result is the generated audio. The first PrefixSamples samples belong to the
// reference clip and must be trimmed by the caller.
type Result struct {
	Waveform      audio.Waveform
	PrefixSamples int
}

// ValidateRequest checks the parts of a request every backend depends on.
func ValidateRequest(req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	if err := req.Options.Validate(); err != nil {
		return err
	}
	return ValidateVoice(req.Voice)
}

// Speech returns the waveform with the reference prefix removed.
func (r Result) Speech() audio.Waveform {
	return r.Waveform.TrimPrefix(r.PrefixSamples)
}

package tts

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/textnorm"
)

// Transcripts of the bundled reference clips.
const (
	EnglishReferenceText = "Some call me nature, others call me mother nature."
	ChineseReferenceText = "有些人叫我自然，有些人叫我自然母亲。"
)

// ReferenceVoice is a short clip of the target speaker and its transcript.
type ReferenceVoice struct {
	Name  string
	Text  string
	Audio audio.Waveform
}

// Digest identifies the reference samples.
func (v ReferenceVoice) Digest() string {
	sum := sha256.Sum256(v.Audio.ToPCM16LE())
	return hex.EncodeToString(sum[:])
}

// ValidateVoice checks that the clip is non-empty and recorded at audio.SampleRate.
func ValidateVoice(v ReferenceVoice) error {
	if v.Audio.Len() == 0 {
		return ErrEmptyVoice
	}
	if v.Audio.SampleRate != audio.SampleRate {
		return fmt.Errorf("%w: got %d Hz", ErrInvalidSampleRate, v.Audio.SampleRate)
	}
	return nil
}

// LoadVoice reads a reference clip, validates it and boosts quiet recordings to audio.TargetRMS.
func LoadVoice(path, text string) (ReferenceVoice, error) {
	wf, err := audio.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ReferenceVoice{}, fmt.Errorf("%w: %s", ErrMissingResource, path)
		}
		return ReferenceVoice{}, err
	}

	voice := ReferenceVoice{
		Name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Text:  strings.TrimSpace(text),
		Audio: wf,
	}
	if err := ValidateVoice(voice); err != nil {
		return ReferenceVoice{}, fmt.Errorf("reference %s: %w", path, err)
	}

	voice.Audio = voice.Audio.NormalizeRMS(audio.TargetRMS)
	return voice, nil
}

// VoiceLibrary is a directory of bundled reference voices: en.wav and zh.wav, each
// with an optional .txt transcript next to it.
type VoiceLibrary struct {
	Dir string
}

// Voice loads the named clip. The transcript falls back to the built-in one for en and zh.
func (l VoiceLibrary) Voice(name string) (ReferenceVoice, error) {
	text, err := os.ReadFile(filepath.Join(l.Dir, name+".txt"))
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		builtin, ok := builtinTranscripts[name]
		if !ok {
			return ReferenceVoice{}, fmt.Errorf("%w: transcript for voice %q", ErrMissingResource, name)
		}
		text = []byte(builtin)
	default:
		return ReferenceVoice{}, fmt.Errorf("failed to read transcript: %w", err)
	}

	return LoadVoice(filepath.Join(l.Dir, name+".wav"), string(text))
}

// ForText picks the reference for a book. Chinese text is read with the English clip
// and everything else with the Chinese clip.
func (l VoiceLibrary) ForText(text string) (ReferenceVoice, error) {
	if textnorm.ContainsCJK(text) {
		return l.Voice("en")
	}
	return l.Voice("zh")
}

var builtinTranscripts = map[string]string{
	"en": EnglishReferenceText,
	"zh": ChineseReferenceText,
}

package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth      = 16
	pcmFormat     = 1
	maxInt16Float = 32767.0
)

// Decode reads a PCM WAV stream. Multi-channel audio is down-mixed to mono.
func Decode(r io.ReadSeeker) (Waveform, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Waveform{}, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		channels = 1
	}
	depth := int(dec.BitDepth)
	if depth < 8 || depth > 32 {
		return Waveform{}, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, depth)
	}
	scale := float32(int64(1) << (depth - 1))
	// 8-bit PCM is unsigned with silence at 128
	var offset float32
	if depth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += float32(buf.Data[i*channels+c]) - offset
		}
		samples[i] = sum / float32(channels) / scale
	}

	return Waveform{Samples: samples, SampleRate: int(dec.SampleRate)}, nil
}

// DecodeBytes decodes an in-memory WAV file.
func DecodeBytes(data []byte) (Waveform, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	wf, err := Decode(f)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return wf, nil
}

// Encode writes wf as a 16-bit mono PCM WAV.
func Encode(w io.WriteSeeker, wf Waveform) error {
	rate := wf.SampleRate
	if rate <= 0 {
		rate = SampleRate
	}

	data := make([]int, len(wf.Samples))
	for i, s := range wf.Samples {
		data[i] = int(clamp(s) * maxInt16Float)
	}

	enc := wav.NewEncoder(w, rate, bitDepth, 1, pcmFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}

// EncodeBytes returns wf as an in-memory WAV file.
func EncodeBytes(wf Waveform) ([]byte, error) {
	var mem memFile
	if err := Encode(&mem, wf); err != nil {
		return nil, err
	}
	return mem.buf, nil
}

// WriteFile writes wf to path, replacing any existing file. The file is written
// under a temporary name first so an interrupted run never leaves a truncated WAV.
func WriteFile(path string, wf Waveform) error {
	tmp := path + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	if err := Encode(f, wf); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close wav file: %w", err)
	}
	return os.Rename(tmp, path)
}

func clamp(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	default:
		return s
	}
}

// memFile is an in-memory io.WriteSeeker; the wav encoder seeks back to patch sizes.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative position %d", next)
	}
	m.pos = int(next)
	return next, nil
}

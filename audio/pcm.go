package audio

import "encoding/binary"

// FromPCM16LE converts raw signed 16-bit little-endian mono PCM into a waveform.
// A trailing odd byte is ignored.
func FromPCM16LE(data []byte, rate int) Waveform {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[2*i:]))
		samples[i] = float32(v) / 32768
	}
	return Waveform{Samples: samples, SampleRate: rate}
}

// ToPCM16LE renders the waveform as raw signed 16-bit little-endian PCM.
func (w Waveform) ToPCM16LE() []byte {
	out := make([]byte, 2*len(w.Samples))
	for i, s := range w.Samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(clamp(s)*maxInt16Float)))
	}
	return out
}

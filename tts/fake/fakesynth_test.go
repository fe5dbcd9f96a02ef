package fake_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/tts"
	"github.com/sevigo/bookpurr/tts/fake"
)

func TestSynthesizer_Synthesize(t *testing.T) {
	ctx := context.Background()
	f := fake.NewSynthesizer()
	voice := tts.ReferenceVoice{Audio: audio.Waveform{Samples: []float32{0.9, 0.9}, SampleRate: audio.SampleRate}}

	res, err := f.Synthesize(ctx, tts.Request{Text: "ab", Voice: voice})
	require.NoError(t, err)
	assert.Equal(t, 2, res.PrefixSamples)
	assert.Equal(t, fake.Render("ab"), res.Speech().Samples)
	assert.Equal(t, "fake", f.Name())

	_, err = f.Synthesize(ctx, tts.Request{Text: "cd", Voice: voice})
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "cd"}, f.Texts())

	f.Reset()
	assert.Empty(t, f.Requests())
}

func TestSynthesizer_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("ErrToReturn", func(t *testing.T) {
		boom := errors.New("boom")
		f := &fake.Synthesizer{ErrToReturn: boom}
		_, err := f.Synthesize(ctx, tts.Request{Text: "x"})
		require.ErrorIs(t, err, boom)
		assert.Len(t, f.Requests(), 1, "failed calls are still recorded")
	})

	t.Run("FailOn", func(t *testing.T) {
		f := &fake.Synthesizer{FailOn: "bad"}
		_, err := f.Synthesize(ctx, tts.Request{Text: "good"})
		require.NoError(t, err)

		_, err = f.Synthesize(ctx, tts.Request{Text: "a bad one"})
		var failed *fake.FailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, "a bad one", failed.Text)
	})

	t.Run("Delay honours context", func(t *testing.T) {
		f := &fake.Synthesizer{Delay: time.Hour}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.Synthesize(cctx, tts.Request{Text: "x"})
		require.ErrorIs(t, err, context.Canceled)
	})
}

package chains_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/bookpurr/audio"
	"github.com/sevigo/bookpurr/cache"
	"github.com/sevigo/bookpurr/chains"
	"github.com/sevigo/bookpurr/schema"
	"github.com/sevigo/bookpurr/textsplitter"
	"github.com/sevigo/bookpurr/tts"
	"github.com/sevigo/bookpurr/tts/fake"
)

func testVoice() tts.ReferenceVoice {
	samples := make([]float32, 50)
	for i := range samples {
		samples[i] = 0.3
	}
	return tts.ReferenceVoice{
		Name:  "zh",
		Text:  tts.ChineseReferenceText,
		Audio: audio.Waveform{Samples: samples, SampleRate: audio.SampleRate},
	}
}

func newSplitter(t *testing.T, maxUnits int) *textsplitter.UnitSplitter {
	t.Helper()
	s, err := textsplitter.NewUnitSplitter(maxUnits)
	require.NoError(t, err)
	return s
}

func expectedSpeech(chunks ...string) []float32 {
	var out []float32
	for _, c := range chunks {
		out = append(out, fake.Render(c)...)
	}
	return out
}

type recordingProgress struct {
	mu       sync.Mutex
	started  []int
	chunks   map[int]int
	cached   int
	finished []string
}

func (p *recordingProgress) ChapterStarted(chapter int, _ string, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, chapter)
}

func (p *recordingProgress) ChunkDone(chapter, _ int, _ string, _ time.Duration, cached bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chunks == nil {
		p.chunks = make(map[int]int)
	}
	p.chunks[chapter]++
	if cached {
		p.cached++
	}
}

func (p *recordingProgress) ChapterDone(_ int, path string, _ time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = append(p.finished, path)
}

func TestNarration_Call(t *testing.T) {
	synth := fake.NewSynthesizer()
	n, err := chains.NewNarration(newSplitter(t, 3), synth, chains.WithVoice(testVoice()))
	require.NoError(t, err)

	wf, err := n.Call(context.Background(), "我能吞下玻璃而不伤身体。")
	require.NoError(t, err)

	assert.Equal(t, []string{"我能吞", "下玻璃", "而不伤", "身体。"}, synth.Texts())
	assert.Equal(t, expectedSpeech("我能吞", "下玻璃", "而不伤", "身体。"), wf.Samples, "reference prefix trimmed, order kept")
	assert.Equal(t, audio.SampleRate, wf.SampleRate)

	req := synth.Requests()[0]
	assert.Equal(t, tts.DefaultOptions(), req.Options)
	assert.Equal(t, tts.ChineseReferenceText, req.Voice.Text)
}

func TestNarration_ParallelKeepsOrder(t *testing.T) {
	synth := &fake.Synthesizer{Delay: 5 * time.Millisecond}
	n, err := chains.NewNarration(newSplitter(t, 2), synth, chains.WithVoice(testVoice()), chains.WithWorkers(4))
	require.NoError(t, err)

	text := "one two three four five six seven eight nine ten eleven twelve"
	chunks, err := textsplitter.Chunk(text, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 6)

	wf, err := n.Call(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, expectedSpeech(chunks...), wf.Samples)
	assert.ElementsMatch(t, chunks, synth.Texts())
}

func TestNarration_SkipsSilentChunks(t *testing.T) {
	synth := fake.NewSynthesizer()
	n, err := chains.NewNarration(newSplitter(t, 5), synth, chains.WithVoice(testVoice()))
	require.NoError(t, err)

	wf, err := n.Call(context.Background(), "* * * — * * *")
	require.NoError(t, err)
	assert.Empty(t, synth.Requests(), "nothing to speak")
	assert.Zero(t, wf.Len())
}

func TestNarration_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("No voice", func(t *testing.T) {
		n, err := chains.NewNarration(newSplitter(t, 5), fake.NewSynthesizer())
		require.NoError(t, err)
		_, err = n.Call(ctx, "hello")
		require.ErrorIs(t, err, chains.ErrNoVoice)
	})

	t.Run("Invalid options", func(t *testing.T) {
		opts := tts.DefaultOptions()
		opts.Steps = 0
		_, err := chains.NewNarration(newSplitter(t, 5), fake.NewSynthesizer(), chains.WithOptions(opts))
		require.ErrorIs(t, err, tts.ErrInvalidOptions)
	})

	t.Run("Wrong rate voice", func(t *testing.T) {
		voice := testVoice()
		voice.Audio.SampleRate = 44100
		_, err := chains.NewNarration(newSplitter(t, 5), fake.NewSynthesizer(), chains.WithVoice(voice))
		require.ErrorIs(t, err, tts.ErrInvalidSampleRate)
	})

	t.Run("Synthesizer failure", func(t *testing.T) {
		boom := errors.New("server down")
		n, err := chains.NewNarration(newSplitter(t, 2), &fake.Synthesizer{ErrToReturn: boom}, chains.WithVoice(testVoice()))
		require.NoError(t, err)
		_, err = n.Call(ctx, "one two three")
		require.ErrorIs(t, err, boom)
	})

	t.Run("Canceled", func(t *testing.T) {
		n, err := chains.NewNarration(newSplitter(t, 1), &fake.Synthesizer{Delay: time.Hour}, chains.WithVoice(testVoice()), chains.WithWorkers(2))
		require.NoError(t, err)
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = n.Call(cctx, "one two three four")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNarration_CacheHitSkipsSynthesizer(t *testing.T) {
	ctx := context.Background()
	c, err := cache.Open(ctx, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	synth := fake.NewSynthesizer()
	progress := &recordingProgress{}
	n, err := chains.NewNarration(newSplitter(t, 3), synth,
		chains.WithVoice(testVoice()), chains.WithCache(c), chains.WithProgress(progress))
	require.NoError(t, err)

	first, err := n.Call(ctx, "Short text. Another short text.")
	require.NoError(t, err)
	calls := len(synth.Requests())
	require.Positive(t, calls)

	second, err := n.Call(ctx, "Short text. Another short text.")
	require.NoError(t, err)
	assert.Len(t, synth.Requests(), calls, "second run served from cache")
	assert.Equal(t, calls, progress.cached)
	require.Len(t, second.Samples, len(first.Samples))
	for i := range first.Samples {
		assert.InDelta(t, first.Samples[i], second.Samples[i], 1e-4)
	}
}

func TestNarration_NarrateBook(t *testing.T) {
	ctx := context.Background()
	outDir := filepath.Join(t.TempDir(), "out")

	book := schema.Book{
		Title: "Test",
		Chapters: []schema.Chapter{
			{Index: 1, Title: "The Storm!", Text: "Rain fell. Wind blew."},
			{Index: 2, Title: "第二章", Text: "我能吞下玻璃。"},
		},
	}

	synth := fake.NewSynthesizer()
	progress := &recordingProgress{}
	n, err := chains.NewNarration(newSplitter(t, 50), synth, chains.WithVoice(testVoice()), chains.WithProgress(progress))
	require.NoError(t, err)

	paths, err := n.NarrateBook(ctx, book.Documents(), outDir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(outDir, "001_the-storm.wav"),
		filepath.Join(outDir, "002_第二章.wav"),
	}, paths)
	assert.Equal(t, paths, progress.finished)
	assert.Equal(t, []int{1, 2}, progress.started)

	wf, err := audio.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, len(fake.Render("我能吞下玻璃。")), wf.Len())

	t.Run("Skip existing", func(t *testing.T) {
		synth.Reset()
		require.NoError(t, os.Remove(paths[1]))

		n, err := chains.NewNarration(newSplitter(t, 50), synth, chains.WithVoice(testVoice()), chains.WithSkipExisting(true))
		require.NoError(t, err)

		again, err := n.NarrateBook(ctx, book.Documents(), outDir)
		require.NoError(t, err)
		assert.Equal(t, paths, again)
		assert.Equal(t, []string{"我能吞下玻璃。"}, synth.Texts())
	})
}

func TestNarration_VoiceLibraryPicksByScript(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"en", "zh"} {
		require.NoError(t, audio.WriteFile(filepath.Join(dir, name+".wav"), testVoice().Audio))
	}

	synth := fake.NewSynthesizer()
	n, err := chains.NewNarration(newSplitter(t, 50), synth, chains.WithVoiceLibrary(tts.VoiceLibrary{Dir: dir}))
	require.NoError(t, err)

	_, err = n.Call(context.Background(), "第一章")
	require.NoError(t, err)
	_, err = n.Call(context.Background(), "Chapter one")
	require.NoError(t, err)

	reqs := synth.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, tts.EnglishReferenceText, reqs[0].Voice.Text)
	assert.Equal(t, tts.ChineseReferenceText, reqs[1].Voice.Text)
}

func TestChapterFileName(t *testing.T) {
	assert.Equal(t, "003_the-storm.wav", chains.ChapterFileName(3, "The Storm!"))
	assert.Equal(t, "010_chapter.wav", chains.ChapterFileName(10, "  ...  "))
	assert.Equal(t, "001_第一章-开始.wav", chains.ChapterFileName(1, "第一章：开始"))
}

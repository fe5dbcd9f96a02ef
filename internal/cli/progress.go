package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"
)

// consoleProgress prints one line when a chapter starts and one when it is written.
type consoleProgress struct {
	out      io.Writer
	chapters int

	mu     sync.Mutex
	done   int
	cached int
}

func newConsoleProgress(out io.Writer, chapters int) *consoleProgress {
	return &consoleProgress{out: out, chapters: chapters}
}

func (p *consoleProgress) ChapterStarted(chapter int, title string, chunks int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := fmt.Sprintf("Chapter %d/%d", chapter, p.chapters)
	if title != "" {
		label += " · " + title
	}
	fmt.Fprintf(p.out, "%s %s\n", headingStyle.Sprint(label), dimStyle.Sprintf("(%d chunks)", chunks))
}

func (p *consoleProgress) ChunkDone(_, _ int, _ string, _ time.Duration, cached bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if cached {
		p.cached++
	}
}

func (p *consoleProgress) ChapterDone(_ int, path string, speech time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.reset()

	if speech == 0 && p.done == 0 {
		fmt.Fprintf(p.out, "  %s %s\n", dimStyle.Sprint("skipped"), filepath.Base(path))
		return
	}
	fmt.Fprintf(p.out, "  %s %s %s\n",
		okStyle.Sprint("wrote"),
		filepath.Base(path),
		dimStyle.Sprintf("%s, %d chunks, %d cached", speech.Round(time.Second), p.done, p.cached))
}

func (p *consoleProgress) reset() {
	p.done, p.cached = 0, 0
}

package chains

import "time"

// Progress receives narration events. ChunkDone may be called concurrently.
type Progress interface {
	ChapterStarted(chapter int, title string, chunks int)
	ChunkDone(chapter, chunk int, text string, speech time.Duration, cached bool)
	ChapterDone(chapter int, path string, speech time.Duration)
}

// NopProgress ignores every event.
type NopProgress struct{}

func (NopProgress) ChapterStarted(int, string, int)                   {}
func (NopProgress) ChunkDone(int, int, string, time.Duration, bool) {}
func (NopProgress) ChapterDone(int, string, time.Duration)          {}

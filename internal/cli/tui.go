package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/bookpurr/chains"
)

var (
	tuiTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tuiLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	tuiDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const maxRecentFiles = 5

type chapterStartedMsg struct {
	chapter int
	title   string
	chunks  int
}

type chunkDoneMsg struct {
	speech time.Duration
	cached bool
}

type chapterDoneMsg struct {
	chapter int
	path    string
}

type narrationDoneMsg struct {
	err error
}

// tuiModel is the Bubble Tea model of the live narration view.
type tuiModel struct {
	book     string
	chapters int
	cancel   context.CancelFunc

	chapter      int
	chapterTitle string
	chunks       int
	chunksDone   int
	cached       int
	speech       time.Duration
	written      []string

	spinner spinner.Model
	bar     progress.Model
	started time.Time
	done    bool
	err     error
}

func newTUIModel(book string, chapters int, cancel context.CancelFunc) tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return tuiModel{
		book:     book,
		chapters: chapters,
		cancel:   cancel,
		spinner:  s,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		started:  time.Now(),
	}
}

func (m tuiModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			m.err = context.Canceled
			return m, tea.Quit
		}
	case chapterStartedMsg:
		m.chapter = msg.chapter
		m.chapterTitle = msg.title
		m.chunks = msg.chunks
		m.chunksDone = 0
		m.cached = 0
	case chunkDoneMsg:
		m.chunksDone++
		m.speech += msg.speech
		if msg.cached {
			m.cached++
		}
	case chapterDoneMsg:
		m.written = append(m.written, filepath.Base(msg.path))
	case narrationDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m tuiModel) percent() float64 {
	if m.chunks == 0 {
		return 0
	}
	return float64(m.chunksDone) / float64(m.chunks)
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(tuiTitleStyle.Render(m.book))
	b.WriteString("\n\n")

	if m.chapter > 0 {
		label := fmt.Sprintf("Chapter %d/%d", m.chapter, m.chapters)
		if m.chapterTitle != "" {
			label += " · " + m.chapterTitle
		}
		b.WriteString(tuiLabelStyle.Render(label))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s %d/%d chunks", m.spinner.View(), m.bar.ViewAs(m.percent()), m.chunksDone, m.chunks)
		if m.cached > 0 {
			b.WriteString(tuiDimStyle.Render(fmt.Sprintf(" (%d cached)", m.cached)))
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "%s Loading...\n", m.spinner.View())
	}

	recent := m.written
	if len(recent) > maxRecentFiles {
		recent = recent[len(recent)-maxRecentFiles:]
	}
	for _, name := range recent {
		b.WriteString(tuiDimStyle.Render("  ✓ " + name))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%s\n", tuiDimStyle.Render(fmt.Sprintf("%d/%d chapters written · %s of speech · %s elapsed · q to stop",
		len(m.written), m.chapters, m.speech.Round(time.Second), time.Since(m.started).Round(time.Second))))

	if m.err != nil {
		b.WriteString(tuiErrStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// tuiProgress forwards narration events to a running Bubble Tea program.
type tuiProgress struct {
	send func(tea.Msg)
}

var _ chains.Progress = tuiProgress{}

func (p tuiProgress) ChapterStarted(chapter int, title string, chunks int) {
	p.send(chapterStartedMsg{chapter: chapter, title: title, chunks: chunks})
}

func (p tuiProgress) ChunkDone(_, _ int, _ string, speech time.Duration, cached bool) {
	p.send(chunkDoneMsg{speech: speech, cached: cached})
}

func (p tuiProgress) ChapterDone(chapter int, path string, _ time.Duration) {
	p.send(chapterDoneMsg{chapter: chapter, path: path})
}

// runWithTUI runs narrate in the background while the live view owns the terminal.
func runWithTUI(ctx context.Context, in io.Reader, out io.Writer, book string, chapters int,
	narrate func(context.Context, chains.Progress) ([]string, error)) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newTUIModel(book, chapters, cancel), tea.WithInput(in), tea.WithOutput(out))

	var (
		paths []string
		err   error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		paths, err = narrate(ctx, tuiProgress{send: p.Send})
		p.Send(narrationDoneMsg{err: err})
	}()

	if _, runErr := p.Run(); runErr != nil {
		cancel()
		<-finished
		return paths, fmt.Errorf("progress view failed: %w", runErr)
	}
	<-finished
	return paths, err
}

package documentloaders

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sevigo/bookpurr/parsers"
	"github.com/sevigo/bookpurr/parsers/text"
	"github.com/sevigo/bookpurr/schema"
)

// CLICommandLoader runs an external converter and reads its stdout as a plain
// text book, e.g. `pandoc -t plain book.docx`.
type CLICommandLoader struct {
	Command string
	Args    []string
	opts    loaderOptions
}

func NewCLICommandLoader(command string, args []string, opts ...Option) *CLICommandLoader {
	return &CLICommandLoader{Command: command, Args: args, opts: applyOptions(opts)}
}

// Book runs the command and splits its output at chapter headings.
func (l *CLICommandLoader) Book(ctx context.Context) (schema.Book, error) {
	l.opts.logger.Info("Running converter", "command", l.Command, "args", l.Args)

	cmd := exec.CommandContext(ctx, l.Command, l.Args...)
	output, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return schema.Book{}, fmt.Errorf("command '%s' failed: %w\nstderr: %s", l.Command, err, string(ee.Stderr))
		}
		return schema.Book{}, err
	}

	content, err := text.Decode(output)
	if err != nil {
		return schema.Book{}, fmt.Errorf("failed to decode output of '%s': %w", l.Command, err)
	}

	book := schema.Book{
		Title:    l.title(),
		Source:   strings.Join(append([]string{l.Command}, l.Args...), " "),
		Chapters: text.SplitChapters(content),
	}

	normalizeBook(&book, l.opts.normalize)
	if len(book.Chapters) == 0 {
		return schema.Book{}, fmt.Errorf("%w: output of '%s'", parsers.ErrNoChapters, l.Command)
	}
	return book, nil
}

// Load returns one document per chapter of the converted book.
func (l *CLICommandLoader) Load(ctx context.Context) ([]schema.Document, error) {
	book, err := l.Book(ctx)
	if err != nil {
		return nil, err
	}
	return book.Documents(), nil
}

// title uses the last argument, usually the input file, and falls back to the command.
func (l *CLICommandLoader) title() string {
	if n := len(l.Args); n > 0 {
		if t := text.TitleFromPath(l.Args[n-1]); t != "" {
			return t
		}
	}
	return text.TitleFromPath(l.Command)
}

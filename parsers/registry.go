package parsers

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sevigo/bookpurr/schema"
)

// ErrParserNotFound is returned when no parser matches a name, extension or file
var ErrParserNotFound = errors.New("book parser not found")

type registry struct {
	parsers    map[string]schema.BookParser // by name
	extensions map[string]schema.BookParser // by lower-case extension with leading dot
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewRegistry creates an empty parser registry
func NewRegistry(logger *slog.Logger) ParserRegistry {
	return &registry{
		parsers:    make(map[string]schema.BookParser),
		extensions: make(map[string]schema.BookParser),
		logger:     logger,
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return ext
}

func (r *registry) RegisterParser(parser schema.BookParser) error {
	if parser == nil {
		return errors.New("cannot register nil parser")
	}

	name := parser.Name()
	if name == "" {
		return errors.New("parser must have a non-empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("parser with name %q already registered", name)
	}
	r.parsers[name] = parser

	for _, ext := range parser.Extensions() {
		if ext == "" {
			continue
		}
		r.extensions[normalizeExt(ext)] = parser
	}

	r.logger.Debug("Registered book parser", "parser", name, "extensions", parser.Extensions())
	return nil
}

func (r *registry) GetParser(name string) (schema.BookParser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parser, ok := r.parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParserNotFound, name)
	}
	return parser, nil
}

// GetParserForFile matches by extension first, then asks each parser.
func (r *registry) GetParserForFile(path string, info fs.FileInfo) (schema.BookParser, error) {
	if ext := filepath.Ext(path); ext != "" {
		if parser, err := r.GetParserForExtension(ext); err == nil {
			return parser, nil
		}
	}

	for _, parser := range r.GetAllParsers() {
		if parser.CanHandle(path, info) {
			return parser, nil
		}
	}

	return nil, fmt.Errorf("%w for file %s", ErrParserNotFound, path)
}

func (r *registry) GetParserForExtension(ext string) (schema.BookParser, error) {
	if ext == "" {
		return nil, fmt.Errorf("%w: empty extension", ErrParserNotFound)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	parser, ok := r.extensions[normalizeExt(ext)]
	if !ok {
		return nil, fmt.Errorf("%w for extension %s", ErrParserNotFound, ext)
	}
	return parser, nil
}

// GetAllParsers returns the registered parsers sorted by name
func (r *registry) GetAllParsers() []schema.BookParser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parsers := make([]schema.BookParser, 0, len(r.parsers))
	for _, parser := range r.parsers {
		parsers = append(parsers, parser)
	}
	sort.Slice(parsers, func(i, j int) bool { return parsers[i].Name() < parsers[j].Name() })
	return parsers
}

package fake

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sevigo/bookpurr/schema"
)

// Parser is a mock book parser for testing purposes.
type Parser struct {
	NameToReturn string
	Exts         []string
	BookToReturn schema.Book
	ErrToReturn  error
	ParsedPaths  []string
}

// NewParser creates a new fake parser handling the given extensions.
func NewParser(name string, exts ...string) *Parser {
	return &Parser{NameToReturn: name, Exts: exts}
}

func (p *Parser) Name() string { return p.NameToReturn }

func (p *Parser) Extensions() []string { return p.Exts }

func (p *Parser) CanHandle(path string, _ fs.FileInfo) bool {
	return slices.Contains(p.Exts, strings.ToLower(filepath.Ext(path)))
}

// Parse returns the pre-configured book and error.
func (p *Parser) Parse(_ context.Context, path string) (schema.Book, error) {
	p.ParsedPaths = append(p.ParsedPaths, path)
	if p.ErrToReturn != nil {
		return schema.Book{}, p.ErrToReturn
	}
	book := p.BookToReturn
	book.Source = path
	book.Chapters = slices.Clone(p.BookToReturn.Chapters)
	return book, nil
}

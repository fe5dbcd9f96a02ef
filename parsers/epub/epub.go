package epub

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/sevigo/bookpurr/parsers/text"
	"github.com/sevigo/bookpurr/schema"
)

const containerPath = "META-INF/container.xml"

var (
	// ErrNoPackage is returned when container.xml names no OPF package document.
	ErrNoPackage = errors.New("epub has no package document")
	// ErrMissingItem is returned when the spine refers to a file absent from the archive.
	ErrMissingItem = errors.New("epub spine item missing")
)

// EPUBParser implements schema.BookParser for EPUB 2 and 3 books
type EPUBParser struct {
	logger *slog.Logger
}

// NewEPUBParser creates a new EPUB book parser
func NewEPUBParser(logger *slog.Logger) schema.BookParser {
	return &EPUBParser{
		logger: logger,
	}
}

func (p *EPUBParser) Name() string {
	return "epub"
}

func (p *EPUBParser) Extensions() []string {
	return []string{".epub"}
}

func (p *EPUBParser) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}
	return strings.ToLower(filepath.Ext(path)) == ".epub"
}

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageDocument struct {
	Metadata struct {
		Titles    []string `xml:"title"`
		Creators  []string `xml:"creator"`
		Languages []string `xml:"language"`
	} `xml:"metadata"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef  string `xml:"idref,attr"`
		Linear string `xml:"linear,attr"`
	} `xml:"spine>itemref"`
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Parse reads the spine in order and turns each XHTML document into a chapter.
func (p *EPUBParser) Parse(ctx context.Context, filePath string) (schema.Book, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return schema.Book{}, fmt.Errorf("failed to open epub %s: %w", filePath, err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := p.packagePath(files)
	if err != nil {
		return schema.Book{}, err
	}

	var pkg packageDocument
	if err := decodeXML(files, opfPath, &pkg); err != nil {
		return schema.Book{}, fmt.Errorf("failed to read package document: %w", err)
	}

	book := schema.Book{
		Title:    first(pkg.Metadata.Titles),
		Author:   first(pkg.Metadata.Creators),
		Language: first(pkg.Metadata.Languages),
		Source:   filePath,
	}
	if book.Title == "" {
		book.Title = text.TitleFromPath(filePath)
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}

	baseDir := path.Dir(opfPath)
	for _, ref := range pkg.Spine {
		if err := ctx.Err(); err != nil {
			return schema.Book{}, err
		}
		if ref.Linear == "no" {
			continue
		}

		href, ok := hrefs[ref.IDRef]
		if !ok {
			p.logger.Warn("Spine item not in manifest", "idref", ref.IDRef, "path", filePath)
			continue
		}

		name := resolveHref(baseDir, href)
		raw, err := readFile(files, name)
		if err != nil {
			return schema.Book{}, err
		}

		title, body, err := extractContent(raw)
		if err != nil {
			return schema.Book{}, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		book.Chapters = append(book.Chapters, schema.Chapter{
			Index: len(book.Chapters) + 1,
			Title: title,
			Text:  body,
		})
	}

	p.logger.Debug("Parsed epub book", "path", filePath, "title", book.Title, "spine", len(pkg.Spine), "chapters", len(book.Chapters))
	return book, nil
}

// packagePath finds the OPF document named by the container.
func (p *EPUBParser) packagePath(files map[string]*zip.File) (string, error) {
	var c container
	if err := decodeXML(files, containerPath, &c); err != nil {
		return "", fmt.Errorf("failed to read container: %w", err)
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "" || rf.MediaType == "application/oebps-package+xml") {
			return rf.FullPath, nil
		}
	}
	return "", ErrNoPackage
}

// resolveHref maps a manifest href to an archive path relative to the OPF directory.
func resolveHref(baseDir, href string) string {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if baseDir == "." {
		return path.Clean(href)
	}
	return path.Join(baseDir, href)
}

func readFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingItem, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func decodeXML(files map[string]*zip.File, name string, v any) error {
	raw, err := readFile(files, name)
	if err != nil {
		return err
	}
	dec := xml.NewDecoder(strings.NewReader(string(raw)))
	dec.CharsetReader = charsetReader
	return dec.Decode(v)
}

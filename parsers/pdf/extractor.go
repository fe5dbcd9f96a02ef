package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when no page of a PDF yields any text.
var ErrNoText = errors.New("no text extracted from PDF")

var (
	spaceRun      = regexp.MustCompile(`[ \t]+`)
	lineEdges     = regexp.MustCompile(`(?m)^[ \t]+|[ \t]+$`)
	blankLine     = regexp.MustCompile(`\n[ \t]*\n`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
	pageNumber    = regexp.MustCompile(`(?m)^[ \t]*(\d{1,4}|- \d{1,4} -)[ \t]*$`)
	hyphenBreak   = regexp.MustCompile(`(\p{L})-\n(\p{Ll})`)

	ligatures = strings.NewReplacer(
		"ï¬‚", "fl",
		"ï¬", "fi",
		"ﬁ", "fi",
		"ﬂ", "fl",
		"ﬀ", "ff",
		"ﬃ", "ffi",
		"ﬄ", "ffl",
	)
)

// pageText holds the cleaned text of one page
type pageText struct {
	Text    string
	PageNum int
}

// extractedDocument is the text and metadata pulled from a PDF
type extractedDocument struct {
	Title  string
	Author string
	Pages  []pageText
}

// extractTextFromPDF extracts text content from a PDF file
func (p *PDFParser) extractTextFromPDF(ctx context.Context, filePath string) (extractedDocument, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return extractedDocument{}, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer f.Close()

	fsInfo, err := f.Stat()
	if err != nil {
		return extractedDocument{}, fmt.Errorf("failed to get file info for %s: %w", filePath, err)
	}

	pdfReader, err := pdf.NewReader(f, fsInfo.Size())
	if err != nil {
		return extractedDocument{}, fmt.Errorf("failed to create PDF reader for %s: %w", filePath, err)
	}

	doc := extractedDocument{}
	if info := pdfReader.Trailer().Key("Info"); !info.IsNull() {
		doc.Title = strings.TrimSpace(info.Key("Title").Text())
		doc.Author = strings.TrimSpace(info.Key("Author").Text())
	}

	numPages := pdfReader.NumPage()
	p.logger.Debug("PDF text extraction starting", "path", filePath, "pages", numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return extractedDocument{}, err
		}

		page := pdfReader.Page(i)
		if page.V.IsNull() {
			p.logger.Warn("Skipping null page", "page", i, "path", filePath)
			continue
		}

		if pageStr := p.extractPageText(page, i, filePath); pageStr != "" {
			doc.Pages = append(doc.Pages, pageText{Text: pageStr, PageNum: i})
		}
	}

	if len(doc.Pages) == 0 {
		return extractedDocument{}, fmt.Errorf("%w: %s", ErrNoText, filePath)
	}

	p.logger.Debug("PDF text extraction finished", "path", filePath, "pages_with_text", len(doc.Pages))
	return doc, nil
}

// extractPageText extracts text from a single PDF page
func (p *PDFParser) extractPageText(page pdf.Page, pageNum int, filePath string) string {
	if pageContent, err := page.GetPlainText(nil); err == nil && strings.TrimSpace(pageContent) != "" {
		return cleanExtractedText(pageContent)
	}

	var textBuilder bytes.Buffer
	content := page.Content()

	for i, token := range content.Text {
		textBuilder.WriteString(token.S)
		if i < len(content.Text)-1 && !strings.HasSuffix(token.S, " ") && !strings.HasSuffix(token.S, "\n") {
			textBuilder.WriteString(" ")
		}
	}

	if extracted := cleanExtractedText(textBuilder.String()); extracted != "" {
		return extracted
	}

	p.logger.Debug("No text extracted from page", "page", pageNum, "path", filePath)
	return ""
}

// cleanExtractedText normalizes whitespace, ligatures, page numbers and words
// hyphenated across line breaks.
func cleanExtractedText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = ligatures.Replace(text)
	text = spaceRun.ReplaceAllString(text, " ")
	text = lineEdges.ReplaceAllString(text, "")
	text = pageNumber.ReplaceAllString(text, "")
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = blankLine.ReplaceAllString(text, "\n\n")
	text = extraNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

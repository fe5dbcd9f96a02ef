// parser.go - front matter and goldmark AST traversal
package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/bookpurr/schema"
)

// FrontMatter holds the book properties a manuscript may declare in YAML
type FrontMatter struct {
	Title    string `yaml:"title"`
	Author   string `yaml:"author"`
	Language string `yaml:"language"`
	Lang     string `yaml:"lang"`
}

func (fm FrontMatter) language() string {
	if fm.Language != "" {
		return fm.Language
	}
	return fm.Lang
}

// splitFrontMatter extracts a leading YAML block delimited by "---" lines.
func (p *MarkdownParser) splitFrontMatter(content string) (FrontMatter, string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != frontMatterSeparator {
		return FrontMatter{}, content, false
	}

	endIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterSeparator {
			endIdx = i
			break
		}
	}
	if endIdx <= 1 {
		p.logger.Debug("Invalid frontmatter structure - no closing separator found")
		return FrontMatter{}, content, false
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:endIdx], "\n")), &fm); err != nil {
		p.logger.Warn("Failed to parse YAML frontmatter", "error", err)
		return FrontMatter{}, content, false
	}

	return fm, strings.Join(lines[endIdx+1:], "\n"), true
}

// chapterLevel picks the heading level that starts chapters. A lone H1 above
// H2 sections is the book title.
func chapterLevel(doc ast.Node) (level int, titleHeading bool) {
	counts := map[int]int{}
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if h, ok := child.(*ast.Heading); ok && h.Level <= 2 {
			counts[h.Level]++
		}
	}

	switch {
	case counts[1] == 1 && counts[2] > 0:
		return 2, true
	case counts[1] > 0:
		return 1, false
	case counts[2] > 0:
		return 2, false
	default:
		return 0, false
	}
}

// splitChapters walks the top level blocks and groups them under chapter headings.
func splitChapters(doc ast.Node, source []byte) (string, []schema.Chapter) {
	level, titleHeading := chapterLevel(doc)

	var (
		bookTitle string
		chapters  []schema.Chapter
		title     string
		parts     []string
	)
	flush := func() {
		body := strings.Join(parts, "\n\n")
		if body != "" || title != "" {
			chapters = append(chapters, schema.Chapter{
				Index: len(chapters) + 1,
				Title: title,
				Text:  body,
			})
		}
		parts = parts[:0]
	}

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if h, ok := child.(*ast.Heading); ok && level > 0 && h.Level <= level {
			if titleHeading && h.Level < level {
				bookTitle = inlineText(h, source)
				continue
			}
			flush()
			title = inlineText(h, source)
			continue
		}
		if t := blockText(child, source); t != "" {
			parts = append(parts, t)
		}
	}
	flush()

	return bookTitle, chapters
}

// blockText returns the speakable text of a block node.
func blockText(n ast.Node, source []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak, *extast.Table, *extast.FootnoteList:
		return ""
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return inlineText(n, source)
	}

	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, source); t != "" {
			parts = append(parts, t)
		}
	}

	sep := "\n\n"
	if _, ok := n.(*ast.List); ok {
		sep = "\n"
	}
	return strings.Join(parts, sep)
}

// inlineText concatenates text leaves, skipping images, raw HTML and bare links.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Image, *ast.RawHTML, *ast.AutoLink, *extast.TaskCheckBox, *extast.FootnoteLink:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(unescape(v.Segment.Value(source)))
			switch {
			case v.HardLineBreak():
				b.WriteByte('\n')
			case v.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// unescape resolves backslash escapes and character references.
func unescape(raw []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(raw)))
}

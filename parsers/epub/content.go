package epub

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

var xmlDeclEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*encoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// sourceBreaks are plain whitespace in markup; only <br> breaks a line.
var sourceBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// blockElements start and end a paragraph.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Blockquote: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Table: true, atom.Tr: true, atom.Dt: true, atom.Dd: true,
	atom.Figcaption: true, atom.Header: true, atom.Footer: true, atom.Aside: true,
	atom.Hr: true, atom.Body: true,
}

// skippedElements never contribute text.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true, atom.Nav: true,
	atom.Noscript: true, atom.Svg: true, atom.Img: true,
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	return charset.NewReaderLabel(label, input)
}

// decodeDocument returns a UTF-8 reader for a content document, honouring the
// XML declaration and then any <meta charset>.
func decodeDocument(raw []byte) (io.Reader, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	if m := xmlDeclEncoding.FindSubmatch(raw); m != nil {
		if enc, name := charset.Lookup(string(m[1])); enc != nil {
			if name == "utf-8" {
				return bytes.NewReader(raw), nil
			}
			return transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()), nil
		}
	}
	if utf8.Valid(raw) {
		return bytes.NewReader(raw), nil
	}
	return charset.NewReader(bytes.NewReader(raw), "text/html")
}

// extractContent returns the chapter title and its paragraphs separated by blank lines.
func extractContent(raw []byte) (string, string, error) {
	r, err := decodeDocument(raw)
	if err != nil {
		return "", "", err
	}
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	c := &collector{}
	c.walk(doc)
	c.flush()

	title := c.title
	if title == "" {
		if t := findFirst(doc, atom.Title); t != nil {
			title = nodeText(t)
		}
	}
	return title, strings.Join(c.paragraphs, "\n\n"), nil
}

type collector struct {
	title      string
	paragraphs []string
	current    strings.Builder
}

func (c *collector) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		c.current.WriteString(sourceBreaks.Replace(n.Data))
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
		switch n.DataAtom {
		case atom.Br:
			c.current.WriteByte('\n')
			return
		case atom.H1, atom.H2, atom.H3:
			// The first heading names the chapter and is not read twice.
			if c.title == "" {
				if c.title = nodeText(n); c.title != "" {
					c.flush()
					return
				}
			}
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		c.flush()
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
	}
	if block {
		c.flush()
	}
}

// flush closes the current paragraph, collapsing whitespace within each line.
func (c *collector) flush() {
	var lines []string
	for line := range strings.SplitSeq(c.current.String(), "\n") {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > 0 {
		c.paragraphs = append(c.paragraphs, strings.Join(lines, "\n"))
	}
	c.current.Reset()
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, a); found != nil {
			return found
		}
	}
	return nil
}

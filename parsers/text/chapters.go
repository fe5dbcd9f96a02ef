package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"

	"github.com/sevigo/bookpurr/schema"
)

// maxHeadingRunes bounds how long a line may be and still count as a heading.
const maxHeadingRunes = 80

var (
	latinHeading    = regexp.MustCompile(`^(?i:chapter|part|book)\s+([0-9]+|[IVXLCDM]+|(?i:one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty))\b(.*)$`)
	bareHeading     = regexp.MustCompile(`^(?i:prologue|epilogue|preface|introduction|afterword)[.:]?$`)
	cjkHeading      = regexp.MustCompile(`^第[0-9０-９零一二三四五六七八九十百千两〇]+[章回节節卷]`)
	markdownHeading = regexp.MustCompile(`^#{1,2}\s+\S`)
	romanNumeral    = regexp.MustCompile(`^[IVXLCDM]+[.:]?$`)
)

// Decode turns raw file bytes into UTF-8. A byte order mark selects UTF-8 or
// UTF-16, other invalid UTF-8 is read as Windows-1252.
func Decode(data []byte) (string, error) {
	fallback := xunicode.UTF8.NewDecoder()
	if !utf8.Valid(data) {
		fallback = charmap.Windows1252.NewDecoder()
	}
	out, _, err := transform.Bytes(xunicode.BOMOverride(fallback), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// IsHeading reports whether a single line looks like a chapter heading.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > maxHeadingRunes {
		return false
	}
	if m := latinHeading.FindStringSubmatch(line); m != nil {
		// "Part I wanted..." is prose, not a heading.
		rest := strings.TrimSpace(m[2])
		if m[1] == "I" && rest != "" {
			r, _ := utf8.DecodeRuneInString(rest)
			return !unicode.IsLower(r)
		}
		return true
	}
	return bareHeading.MatchString(line) || cjkHeading.MatchString(line) || markdownHeading.MatchString(line)
}

// HeadingTitle cleans a heading line for display. Markdown markers are removed
// and shouted titles are converted to title case.
func HeadingTitle(line string) string {
	line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
	if !isShouted(line) {
		return line
	}

	caser := cases.Title(language.Und)
	words := strings.Fields(line)
	for i, w := range words {
		if romanNumeral.MatchString(w) {
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func isShouted(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters > 1
}

// SplitChapters breaks a plain text book at heading lines. Text before the
// first heading becomes an untitled chapter. Without headings the whole text
// is a single chapter.
func SplitChapters(content string) []schema.Chapter {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var (
		chapters []schema.Chapter
		title    string
		body     []string
	)
	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" || title != "" {
			chapters = append(chapters, schema.Chapter{
				Index: len(chapters) + 1,
				Title: title,
				Text:  text,
			})
		}
		body = body[:0]
	}

	for line := range strings.Lines(content) {
		line = strings.TrimRight(line, "\n")
		if IsHeading(line) {
			flush()
			title = HeadingTitle(line)
			continue
		}
		body = append(body, line)
	}
	flush()

	return chapters
}

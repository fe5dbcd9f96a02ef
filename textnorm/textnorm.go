// Package textnorm cleans text extracted from books before it is chunked: it undoes
// the most common UTF-8-read-as-Windows-1252 damage and normalises line endings and
// composition.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

const nbsp = '\u00a0'

// mojibake maps byte sequences of common punctuation, decoded with the wrong codepage,
// back to the intended text. Longer keys come first.
var mojibake = strings.NewReplacer(
	// Windows-1252 rendering
	"â€™", "'",
	"â€˜", "'",
	"â€œ", `"`,
	"â€\u009d", `"`,
	"â€“", "–",
	"â€”", "—",
	"â€¦", "…",
	"ï¬‚", "fl",
	"ï¬\u0081", "fi",
	// Latin-1 rendering, C1 controls left in place
	"â\u0080\u0099", "'",
	"â\u0080\u0098", "'",
	"â\u0080\u009c", `"`,
	"â\u0080\u009d", `"`,
	"â\u0080\u0093", "–",
	"â\u0080\u0094", "—",
	"â\u0080¦", "…",
	"\u0080", "",
	"\u0099", "",
	// unpaired closing quote left by an undefined cp1252 byte
	"â€", `"`,
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// markers that survive Normalize when a whole text was decoded with the wrong charset.
var repairMarkers = []string{"Ã©", "Ã¨", "Ã¶", "Ã¼", "Ã¤", "Ã±", "â€", "Ã"}

// Normalize replaces known mojibake sequences, drops stray Â, unifies line endings,
// turns non-breaking spaces into spaces and applies NFC.
func Normalize(text string) string {
	if text == "" {
		return text
	}

	text = mojibake.Replace(text)
	text = dropStrayCircumflex(text)
	text = lineEndings.Replace(text)
	text = strings.Map(func(r rune) rune {
		if r == nbsp {
			return ' '
		}
		return r
	}, text)

	return norm.NFC.String(text)
}

// dropStrayCircumflex removes Â that is not followed by a letter. Before a
// non-breaking space or punctuation it is the lead byte of a misread two-byte sequence.
func dropStrayCircumflex(text string) string {
	if !strings.ContainsRune(text, 'Â') {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i, r := range runes {
		if r == 'Â' && (i+1 == len(runes) || !unicode.IsLetter(runes[i+1])) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Repair re-encodes text that was decoded with a single-byte charset and decodes it
// again as UTF-8. It reports whether the text changed; text without mojibake markers
// or that does not round-trip is returned unchanged.
func Repair(text string) (string, bool) {
	if !hasMarkers(text) {
		return text, false
	}

	for _, enc := range []encoding.Encoding{charmap.Windows1252, charmap.ISO8859_1} {
		raw, err := enc.NewEncoder().String(text)
		if err != nil || !utf8.ValidString(raw) {
			continue
		}
		if raw != text && markerCount(raw) < markerCount(text) {
			return raw, true
		}
	}
	return text, false
}

func hasMarkers(text string) bool {
	return markerCount(text) > 0
}

func markerCount(text string) int {
	n := 0
	for _, m := range repairMarkers {
		n += strings.Count(text, m)
	}
	return n
}

// ContainsCJK reports whether text has at least one CJK unified ideograph.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

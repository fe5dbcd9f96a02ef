package textsplitter

import (
	"unicode"
)

// span is a half-open rune range [start, end) covering one counted unit.
type span struct {
	start, end int
}

// CountUnits returns the number of speech units in text: each maximal Latin run
// counts once and each CJK ideograph counts once. Punctuation and whitespace are free.
func CountUnits(text string) int {
	return len(unitSpans([]rune(text)))
}

func unitSpans(runes []rune) []span {
	var spans []span
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case isCJK(r):
			spans = append(spans, span{i, i + 1})
			i++
		case isLatin(r):
			end := latinRunEnd(runes, i)
			spans = append(spans, span{i, end})
			i = end
		default:
			i++
		}
	}
	return spans
}

// latinRunEnd returns the index just past the Latin run that starts at i.
func latinRunEnd(runes []rune, i int) int {
	j := scanLatin(runes, i)

	// one embedded decimal point: 3.14
	if j+1 < len(runes) && runes[j] == '.' && isDigit(runes[j-1]) && isDigit(runes[j+1]) {
		j = scanLatin(runes, j+1)
	}

	for j+1 < len(runes) && isJoiner(runes[j]) && isLatin(runes[j+1]) {
		j = scanLatin(runes, j+1)
	}
	return j
}

func scanLatin(runes []rune, i int) int {
	for i < len(runes) && isLatin(runes[i]) {
		i++
	}
	return i
}

func isLatin(r rune) bool {
	if r < unicode.MaxASCII {
		return isDigit(r) || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
	}
	return unicode.Is(unicode.Latin, r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isJoiner(r rune) bool {
	return r == '-' || r == '\'' || r == '’'
}

func isCJK(r rune) bool {
	return r >= cjkIdeographFirst && r <= cjkIdeographLast
}

// isCJKPunct reports CJK symbols and fullwidth/halfwidth punctuation.
func isCJKPunct(r rune) bool {
	if r >= cjkSymbolsFirst && r <= cjkSymbolsLast {
		return true
	}
	if r >= fullwidthFormsLow && r <= fullwidthFormsTop {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}
	return false
}

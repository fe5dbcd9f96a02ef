package textsplitter

import (
	"fmt"
	"strings"
)

// Tier is a punctuation priority level. Lower tiers are coarser and are tried first.
type Tier int

const (
	TierParagraph Tier = iota + 1
	TierSentence
	TierClause
	TierComma
)

// AllTiers lists every tier in the order the splitter tries them.
var AllTiers = []Tier{TierParagraph, TierSentence, TierClause, TierComma}

func (t Tier) String() string {
	switch t {
	case TierParagraph:
		return "paragraph"
	case TierSentence:
		return "sentence"
	case TierClause:
		return "clause"
	case TierComma:
		return "comma"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

const paragraphSeparator = "\n\n"

// SplitAtTier segments text at the boundaries of a single tier. Every segment is
// trimmed and non-empty; the mark that ends a segment stays attached to it.
// A result of length one means the tier found no boundary.
func SplitAtTier(text string, tier Tier) []string {
	switch tier {
	case TierParagraph:
		return splitParagraphs(text)
	case TierSentence:
		return splitAfterMarks(text, isSentenceBoundary, isSentenceTrailer)
	case TierClause:
		return splitAfterMarks(text, markBoundary(isClauseMark), isClauseMark)
	case TierComma:
		return splitAfterMarks(text, markBoundary(isCommaMark), isCommaMark)
	default:
		return appendSegment(nil, text)
	}
}

func splitParagraphs(text string) []string {
	var segments []string
	for _, piece := range strings.Split(text, paragraphSeparator) {
		segments = appendSegment(segments, piece)
	}
	return segments
}

// splitAfterMarks cuts text after every boundary rune. Runes accepted by extend
// (and closing quotes or brackets) directly after a boundary belong to it.
func splitAfterMarks(text string, boundary func([]rune, int) bool, extend func(rune) bool) []string {
	runes := []rune(text)
	var segments []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !boundary(runes, i) {
			continue
		}
		end := i + 1
		for end < len(runes) && (extend(runes[end]) || isClosing(runes[end])) {
			end++
		}
		segments = appendSegment(segments, string(runes[start:end]))
		start = end
		i = end - 1
	}
	return appendSegment(segments, string(runes[start:]))
}

func appendSegment(segments []string, piece string) []string {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return segments
	}
	return append(segments, piece)
}

func isSentenceBoundary(runes []rune, i int) bool {
	switch runes[i] {
	case '?', '!', '？', '！':
		return true
	case '.', '。':
		return !nextToDigit(runes, i)
	default:
		return false
	}
}

func isSentenceTrailer(r rune) bool {
	switch r {
	case '.', '。', '?', '!', '？', '！', '…':
		return true
	default:
		return false
	}
}

// markBoundary turns a mark predicate into a boundary test. Every occurrence counts,
// digits around it included.
func markBoundary(isMark func(rune) bool) func([]rune, int) bool {
	return func(runes []rune, i int) bool {
		return isMark(runes[i])
	}
}

func isClauseMark(r rune) bool {
	switch r {
	case ';', ':', '；', '：':
		return true
	default:
		return false
	}
}

func isCommaMark(r rune) bool {
	switch r {
	case ',', '，', '、':
		return true
	default:
		return false
	}
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '»', '」', '』', '）', '】', '》', '〉', '〕', '］':
		return true
	default:
		return false
	}
}

// nextToDigit reports a digit on either side of runes[i]; such a point is never a
// sentence end (80.79, "He was 30.").
func nextToDigit(runes []rune, i int) bool {
	return (i > 0 && isDigit(runes[i-1])) || (i+1 < len(runes) && isDigit(runes[i+1]))
}

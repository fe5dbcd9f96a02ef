package textsplitter

import (
	"strings"
	"unicode"
)

type scriptRun struct {
	text string
	cjk  bool
}

// SplitMixed cuts text without looking at sentence punctuation. Latin and CJK runs
// never share a chunk; Latin runs are packed by whole words and CJK runs are cut into
// windows of maxUnits ideographs.
func SplitMixed(text string, maxUnits int) ([]string, error) {
	if err := validateMaxUnits(maxUnits); err != nil {
		return nil, err
	}
	return splitMixed(text, maxUnits), nil
}

func splitMixed(text string, maxUnits int) []string {
	var chunks []string
	for _, run := range scriptRuns(text) {
		if run.cjk {
			chunks = append(chunks, cutByUnits(run.text, maxUnits)...)
			continue
		}
		chunks = append(chunks, packWords(run.text, maxUnits)...)
	}
	return chunks
}

// scriptRuns partitions text into maximal runs of one script. CJK punctuation trails
// the open run; opening brackets, and any mark before the first letter, lead the run
// that follows them.
func scriptRuns(text string) []scriptRun {
	var (
		runs   []scriptRun
		cur    strings.Builder
		lead   strings.Builder
		curCJK bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			runs = append(runs, scriptRun{text: s, cjk: curCJK})
		}
		cur.Reset()
	}
	open := func() bool {
		return strings.TrimSpace(cur.String()) != ""
	}
	settleLead := func() {
		cur.WriteString(lead.String())
		lead.Reset()
	}

	for _, r := range text {
		switch {
		case isCJKPunct(r) && (!open() || isOpening(r)):
			lead.WriteRune(r)
			continue
		case unicode.IsSpace(r) && lead.Len() > 0:
			lead.WriteRune(r)
			continue
		case isCJKPunct(r), unicode.IsSpace(r):
			settleLead()
		default:
			if cjk := isCJK(r); cjk != curCJK {
				flush()
				curCJK = cjk
			}
			settleLead()
		}
		cur.WriteRune(r)
	}
	if lead.Len() > 0 {
		if !open() {
			curCJK = true
		}
		settleLead()
	}
	flush()
	return runs
}

func isOpening(r rune) bool {
	switch r {
	case '「', '『', '（', '【', '《', '〈', '〔', '［', '〖', '〘', '｛':
		return true
	default:
		return false
	}
}

func packWords(text string, maxUnits int) []string {
	var (
		chunks []string
		words  []string
		units  int
	)
	flush := func() {
		if len(words) > 0 {
			chunks = append(chunks, strings.Join(words, " "))
		}
		words, units = words[:0], 0
	}

	for _, w := range strings.Fields(text) {
		n := CountUnits(w)
		if n > maxUnits {
			flush()
			chunks = append(chunks, cutByUnits(w, maxUnits)...)
			continue
		}
		if units+n > maxUnits {
			flush()
		}
		words = append(words, w)
		units += n
	}
	flush()
	return chunks
}

// cutByUnits cuts text before every maxUnits-th unit. Runes between units stay with
// the preceding piece, except a leading prefix which stays with the first.
func cutByUnits(text string, maxUnits int) []string {
	runes := []rune(text)
	spans := unitSpans(runes)
	if len(spans) <= maxUnits {
		return appendSegment(nil, text)
	}

	var pieces []string
	start := 0
	for k := maxUnits; k < len(spans); k += maxUnits {
		cut := spans[k].start
		pieces = appendSegment(pieces, string(runes[start:cut]))
		start = cut
	}
	return appendSegment(pieces, string(runes[start:]))
}

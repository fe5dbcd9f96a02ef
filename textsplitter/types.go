package textsplitter

import "errors"

// DefaultMaxUnits is the per-chunk budget used by the narration pipeline when none is configured.
const DefaultMaxUnits = 50

// Unicode ranges used by the unit counter and the fallback splitter.
const (
	cjkIdeographFirst = 0x4E00
	cjkIdeographLast  = 0x9FFF

	cjkSymbolsFirst   = 0x3000
	cjkSymbolsLast    = 0x303F
	fullwidthFormsLow = 0xFF00
	fullwidthFormsTop = 0xFFEF
)

var ErrInvalidMaxUnits = errors.New("invalid max units")

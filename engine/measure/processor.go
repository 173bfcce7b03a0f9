package measure

import (
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/text/segment"
	"golang.org/x/text/language"
)

// CharProcessor walks the characters of a paragraph in logical order and
// keeps track of word breaks, widths and spaces. It is used for finding
// hyphenation points while measuring, and for collecting line-break
// candidates.
//
// Widths are summed as float64 to keep rounding errors from piling up in
// long paragraphs.
type CharProcessor struct {
	RawSpaceCount       int // spaces seen so far
	EffectiveSpaceCount int // spaces seen so far, without trailing line-end spaces

	SumOfCharWidths                float64 // width of all characters seen so far
	EffectiveWidth                 float64 // width without trailing line-end spaces
	SumOfCharWidthsAtPrevWordBreak float64

	PrevWordBreak int // offset of the previous word break
	NextWordBreak int // offset of the next word break

	SpaceWidth float32 // width of the most recent word space

	Hyphenator *hyphenation.Hyphenator // hyphenator for the current locale

	text     []rune
	breaker  *segment.WordBreaker
	registry *hyphenation.Registry
	breaks   []segment.Break
	current  int // index into breaks of NextWordBreak
	seeded   bool
	settings breakSettings
}

// breakSettings are the run settings which influence word breaking.
type breakSettings struct {
	locales   uint32
	style     segment.LineBreakStyle
	wordStyle WordStyle
}

// NewCharProcessor creates a char processor for text. breaker may be nil
// for the default word breaker. registry may be nil, resulting in no
// hyphenators.
func NewCharProcessor(text []rune, breaker *segment.WordBreaker, registry *hyphenation.Registry) *CharProcessor {
	if breaker == nil {
		breaker = segment.DefaultWordBreaker()
	}
	return &CharProcessor{
		text:     text,
		breaker:  breaker,
		registry: registry,
	}
}

// UpdateLocaleIfNecessary has to be called at the start of every run. If
// the run's locale or break settings differ from the previous run, word
// breaks are searched anew, starting at the run.
func (cp *CharProcessor) UpdateLocaleIfNecessary(run *Run) {
	settings := breakSettings{
		locales:   run.LocaleListID(),
		style:     run.LineBreakStyle(),
		wordStyle: run.WordStyle,
	}
	if cp.seeded && settings == cp.settings {
		return
	}
	if !cp.seeded || settings.locales != cp.settings.locales {
		cp.Hyphenator = cp.lookupHyphenator(settings.locales)
	}
	cp.seeded, cp.settings = true, settings
	rest := core.Range{Start: run.Start, End: len(cp.text)}
	cp.breaks = cp.breaker.Breaks(cp.text, rest, settings.style)
	if settings.wordStyle == WordStylePhrase {
		cp.breaks = phraseBreaks(cp.text, cp.breaks)
	}
	cp.current = 0
	cp.NextWordBreak = cp.breakOffset()
	tracer().Debugf("word breaks re-seeded at %d for locales %d", run.Start, settings.locales)
}

func (cp *CharProcessor) lookupHyphenator(locales uint32) *hyphenation.Hyphenator {
	if cp.registry == nil {
		return nil
	}
	lang := language.Und
	if ll := font.LocaleListByID(locales); len(ll.Locales) > 0 {
		lang = ll.Locales[0].Tag
	}
	return cp.registry.Lookup(lang)
}

// phraseBreaks keeps breaks after spaces and mandatory breaks.
func phraseBreaks(text []rune, breaks []segment.Break) []segment.Break {
	kept := breaks[:0:0]
	for i, b := range breaks {
		last := i == len(breaks)-1
		if last || b.Mandatory || IsLineEndSpace(text[b.Offset-1]) {
			kept = append(kept, b)
		}
	}
	return kept
}

func (cp *CharProcessor) breakOffset() int {
	if cp.current < len(cp.breaks) {
		return cp.breaks[cp.current].Offset
	}
	return len(cp.text) + 1
}

// FeedChar processes the character at offset idx, with width w. If
// canBreak is false, a word break at idx is not a valid line-break
// position.
func (cp *CharProcessor) FeedChar(idx int, c rune, w float32, canBreak bool) {
	if idx == cp.NextWordBreak {
		if canBreak {
			cp.PrevWordBreak = cp.NextWordBreak
			cp.SumOfCharWidthsAtPrevWordBreak = cp.SumOfCharWidths
		}
		cp.current++
		cp.NextWordBreak = cp.breakOffset()
	}
	if segment.IsWordSpace(c) {
		cp.RawSpaceCount++
		cp.SpaceWidth = w
	}
	cp.SumOfCharWidths += float64(w)
	// a line-end space disappears at a line break
	if !IsLineEndSpace(c) {
		cp.EffectiveSpaceCount = cp.RawSpaceCount
		cp.EffectiveWidth = cp.SumOfCharWidths
	}
}

// ContextRange is the range between the previous and the next word break.
func (cp *CharProcessor) ContextRange() core.Range {
	return core.Range{Start: cp.PrevWordBreak, End: cp.NextWordBreak}
}

// WordRange is the range of the word before the next word break, without
// surrounding punctuation and spaces.
func (cp *CharProcessor) WordRange() core.Range {
	if b, ok := cp.nextBreak(); ok {
		return b.Word()
	}
	return core.Range{Start: cp.NextWordBreak, End: cp.NextWordBreak}
}

// WidthFromLastWordBreak is the width since the previous word break,
// without trailing line-end spaces.
func (cp *CharProcessor) WidthFromLastWordBreak() float64 {
	return cp.EffectiveWidth - cp.SumOfCharWidthsAtPrevWordBreak
}

// WordBreakBadness is the badness of the next word break, e.g. 1 for breaks
// within e-mail addresses and URLs.
func (cp *CharProcessor) WordBreakBadness() float32 {
	if b, ok := cp.nextBreak(); ok {
		return float32(b.Badness)
	}
	return 0
}

func (cp *CharProcessor) nextBreak() (segment.Break, bool) {
	if cp.current < len(cp.breaks) {
		return cp.breaks[cp.current], true
	}
	return segment.Break{}, false
}

// --- Line-end spaces -------------------------------------------------------

// IsLineEndSpace is true for spaces which are dropped at the end of a line.
// Figure spaces (U+2007) are not, as they are used for aligning digits.
func IsLineEndSpace(c rune) bool {
	return c == '\n' || c == ' ' || c == 0x1680 ||
		(0x2000 <= c && c <= 0x200A && c != 0x2007) ||
		c == 0x205F || c == 0x3000
}

// TrimTrailingLineEndSpaces shortens rng by the line-end spaces at its end.
func TrimTrailingLineEndSpaces(text []rune, rng core.Range) core.Range {
	for rng.End > rng.Start && IsLineEndSpace(text[rng.End-1]) {
		rng.End--
	}
	return rng
}

package segment

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/segmenter"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	uaxseg "github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
)

// Opportunity is a line-break opportunity reported by a backend, relative
// to the start of the text handed to the backend. A break at Offset is
// between the characters at Offset-1 and Offset.
type Opportunity struct {
	Offset    int
	Mandatory bool
}

// Backend finds line-break opportunities after UAX#14. The end of the text
// is always reported as an opportunity.
type Backend interface {
	Opportunities(text []rune) []Opportunity
}

// BackendFunc adapts a function to a Backend.
type BackendFunc func(text []rune) []Opportunity

// Opportunities calls f.
func (f BackendFunc) Opportunities(text []rune) []Opportunity {
	return f(text)
}

// --- UAX#14 backend --------------------------------------------------------

// UAX14Backend returns a backend which uses the UAX#14 line wrapper of
// npillmayer/uax. This is the default backend.
func UAX14Backend() Backend {
	return BackendFunc(uax14Opportunities)
}

// Segmenters of package uax are not safe for concurrent use.
var lineWrappers = sync.Pool{
	New: func() any {
		return uaxseg.NewSegmenter(uax14.NewLineWrap())
	},
}

func uax14Opportunities(text []rune) []Opportunity {
	if len(text) == 0 {
		return nil
	}
	seg := lineWrappers.Get().(*uaxseg.Segmenter)
	defer lineWrappers.Put(seg)
	seg.Init(strings.NewReader(string(text)))
	var opps []Opportunity
	pos := 0
	for seg.Next() {
		pos += len([]rune(seg.Text()))
		p1, _ := seg.Penalties()
		if pos < len(text) && p1 >= uax14.PenaltyToSuppressBreak {
			continue
		}
		opps = append(opps, Opportunity{
			Offset:    pos,
			Mandatory: p1 <= uax14.PenaltyForMustBreak,
		})
	}
	if pos != len(text) {
		tracer().Errorf("UAX#14 segments cover %d of %d characters", pos, len(text))
	}
	return closeOpportunities(opps, len(text))
}

// --- go-text backend -------------------------------------------------------

// GoTextBackend returns a backend which uses the line segmenter of
// go-text/typesetting.
func GoTextBackend() Backend {
	return BackendFunc(gotextOpportunities)
}

func gotextOpportunities(text []rune) []Opportunity {
	if len(text) == 0 {
		return nil
	}
	var seg segmenter.Segmenter
	seg.Init(text)
	var opps []Opportunity
	iter := seg.LineIterator()
	for iter.Next() {
		line := iter.Line()
		opps = append(opps, Opportunity{
			Offset:    line.Offset + len(line.Text),
			Mandatory: line.IsMandatoryBreak,
		})
	}
	return closeOpportunities(opps, len(text))
}

// closeOpportunities makes sure the end of text is reported exactly once,
// as the last opportunity.
func closeOpportunities(opps []Opportunity, n int) []Opportunity {
	for len(opps) > 0 && opps[len(opps)-1].Offset >= n {
		opps = opps[:len(opps)-1]
	}
	return append(opps, Opportunity{Offset: n})
}

// --- Word breaker ----------------------------------------------------------

// LineBreakStyle selects the strictness of line breaking.
type LineBreakStyle uint8

// Line-break styles. Loose, normal and strict are recorded for backends
// supporting them; NoBreak suppresses every break within a range.
const (
	LineBreakStyleNone LineBreakStyle = iota
	LineBreakStyleLoose
	LineBreakStyleNormal
	LineBreakStyleStrict
	LineBreakStyleNoBreak
)

// Break is a line-break opportunity within a paragraph, together with the
// word preceding it. Positions are paragraph positions.
type Break struct {
	Offset    int // break is before the character at Offset
	WordStart int // start of the word before the break, leading punctuation stripped
	WordEnd   int // end of the word before the break, trailing spaces and punctuation stripped
	Badness   int // 0 for regular breaks, 1 for breaks within e-mail addresses or URLs
	Mandatory bool
}

// Word returns the range of the word preceding the break.
func (b Break) Word() core.Range {
	return core.Range{Start: b.WordStart, End: max(b.WordStart, b.WordEnd)}
}

// WordBreaker finds line-break opportunities in paragraph text. It
// corrects the results of its backend for hyphens, emoji sequences and
// Myanmar kinzi, and applies special rules to e-mail addresses and URLs.
//
// A WordBreaker is safe for concurrent use.
type WordBreaker struct {
	backend Backend
}

// NewWordBreaker creates a word breaker. If backend is nil, the UAX#14
// backend is used.
func NewWordBreaker(backend Backend) *WordBreaker {
	if backend == nil {
		backend = UAX14Backend()
	}
	return &WordBreaker{backend: backend}
}

var defaultBreaker = NewWordBreaker(nil)

// DefaultWordBreaker returns a word breaker with the UAX#14 backend.
func DefaultWordBreaker() *WordBreaker {
	return defaultBreaker
}

// Breaks returns the line-break opportunities within text[rng], in
// increasing order. The end of rng is always the last break.
func (wb *WordBreaker) Breaks(text []rune, rng core.Range, style LineBreakStyle) []Break {
	core.Assert(rng.Start >= 0 && rng.End <= len(text) && rng.Start <= rng.End,
		"word-break range %v out of text bounds", rng)
	if rng.IsEmpty() {
		return nil
	}
	if style == LineBreakStyleNoBreak {
		return []Break{{Offset: rng.End, WordStart: rng.Start, WordEnd: rng.End}}
	}
	w := walker{text: text, rng: rng}
	for _, opp := range wb.backend.Opportunities(text[rng.Start:rng.End]) {
		offset := rng.Start + opp.Offset
		if offset <= rng.Start || offset > rng.End {
			continue
		}
		if offset < rng.End && !opp.Mandatory && !isValidBreak(text, rng, offset) {
			continue
		}
		w.opps = append(w.opps, Opportunity{Offset: offset, Mandatory: opp.Mandatory})
	}
	if len(w.opps) == 0 || w.opps[len(w.opps)-1].Offset != rng.End {
		w.opps = append(w.opps, Opportunity{Offset: rng.End})
	}
	return w.walk()
}

// isValidBreak filters break opportunities we do not want.
func isValidBreak(text []rune, rng core.Range, i int) bool {
	prev := text[i-1]
	// Hard and soft hyphens are handled by hyphenation.
	if IsLineBreakingHyphen(prev) || prev == SoftHyphen {
		return false
	}
	// Myanmar virama is a pure stacker.
	if prev == 0x1039 {
		return false
	}
	next := text[i]
	if prev == zwj && font.IsEmoji(next) {
		return false
	}
	if font.IsEmojiModifier(next) {
		if prev == font.EmojiStyleVS && i-2 >= rng.Start {
			prev = text[i-2]
		}
		if font.IsEmojiBase(prev) {
			return false
		}
	}
	return true
}

// Characters with special meaning for line breaking.
const (
	SoftHyphen rune = 0x00AD
	zwj        rune = 0x200D
)

// IsLineBreakingHyphen is true for hyphens after which a line may be broken
// without inserting an additional hyphen.
func IsLineBreakingHyphen(r rune) bool {
	switch r {
	case '-', 0x058A, 0x05BE, 0x1400, 0x2010, 0x2013, 0x2027, 0x2E17, 0x2E1A:
		return true
	}
	return false
}

// walker iterates over break opportunities and detects e-mail addresses
// and URLs on the way.
type walker struct {
	text       []rune
	rng        core.Range
	opps       []Opportunity // sorted, last one is rng.End
	last       int
	current    int
	scanOffset int
	inEmailURL bool
}

func (w *walker) walk() []Break {
	w.last, w.current, w.scanOffset = w.rng.Start, w.rng.Start, w.rng.Start
	var breaks []Break
	for w.current < w.rng.End {
		w.last = w.current
		w.detectEmailOrURL()
		mandatory := false
		if w.inEmailURL {
			w.current = w.nextInEmailOrURL()
		} else {
			opp := w.following(w.current)
			w.current, mandatory = opp.Offset, opp.Mandatory
		}
		b := Break{
			Offset:    w.current,
			WordStart: w.wordStart(),
			WordEnd:   w.wordEnd(),
			Mandatory: mandatory,
		}
		if w.inEmailURL && w.current < w.scanOffset {
			b.Badness = 1
		}
		breaks = append(breaks, b)
	}
	tracer().Debugf("found %d break opportunities in %v", len(breaks), w.rng)
	return breaks
}

// following returns the first opportunity after position i.
func (w *walker) following(i int) Opportunity {
	for _, opp := range w.opps {
		if opp.Offset > i {
			return opp
		}
	}
	return Opportunity{Offset: w.rng.End}
}

func (w *walker) isBoundary(i int) bool {
	if i == w.rng.End {
		return true
	}
	for _, opp := range w.opps {
		if opp.Offset == i {
			return true
		}
		if opp.Offset > i {
			break
		}
	}
	return false
}

type scanState int

const (
	scanStart scanState = iota
	sawAt
	sawColon
	sawColonSlash
	sawColonSlashSlash
)

// detectEmailOrURL scans forward from the last break for an e-mail
// address or URL. Only printable ASCII is scanned, and scanning stops at a
// space.
func (w *walker) detectEmailOrURL() {
	if w.last < w.scanOffset {
		return
	}
	state := scanStart
	i := w.last
	for ; i < w.rng.End; i++ {
		c := w.text[i]
		if !(' ' < c && c <= 0x7E) {
			break
		}
		switch {
		case state == scanStart && c == '@':
			state = sawAt
		case state == scanStart && c == ':':
			state = sawColon
		case state == sawColon || state == sawColonSlash:
			if c == '/' {
				state++
			} else {
				state = scanStart
			}
		}
	}
	if state == sawAt || state == sawColonSlashSlash {
		if !w.isBoundary(i) {
			// trailing marks belong to the address
			i = w.following(i).Offset
		}
		w.inEmailURL = true
	} else {
		w.inEmailURL = false
	}
	w.scanOffset = i
}

// nextInEmailOrURL finds the next break within an e-mail address or URL.
func (w *walker) nextInEmailOrURL() int {
	lastChar := w.text[w.last]
	i := w.last + 1
	for ; i < w.scanOffset; i++ {
		if breakAfterInURL(lastChar) {
			break
		}
		if lastChar == '/' && i >= w.last+2 && w.text[i-2] == '/' {
			break // after double slash
		}
		thisChar := w.text[i]
		if lastChar != '-' { // never after a hyphen
			if breakBeforeInURL(thisChar) {
				break
			}
			if thisChar == '/' && lastChar != '/' &&
				!(i+1 < w.scanOffset && w.text[i+1] == '/') {
				break // before a single slash
			}
		}
		lastChar = thisChar
	}
	return i
}

func breakAfterInURL(c rune) bool {
	return c == ':' || c == '=' || c == '&'
}

func breakBeforeInURL(c rune) bool {
	switch c {
	case '~', '.', ',', '-', '_', '?', '#', '%', '=', '&':
		return true
	}
	return false
}

func (w *walker) wordStart() int {
	if w.inEmailURL {
		return w.last
	}
	i := w.last
	for i < w.current && isOpeningPunct(w.text[i]) {
		i++
	}
	return i
}

func (w *walker) wordEnd() int {
	if w.inEmailURL {
		return w.last
	}
	i := w.current
	for i > w.last && isTrailing(w.text[i-1]) {
		i--
	}
	return i
}

// isOpeningPunct is true for opening punctuation and quotation marks
// (UAX#14 classes OP and QU).
func isOpeningPunct(r rune) bool {
	c := uax14.ClassForRune(r)
	return c == uax14.OPClass || c == uax14.QUClass
}

func isTrailing(r rune) bool {
	return unicode.In(r, unicode.Zs, unicode.P, unicode.Cc)
}

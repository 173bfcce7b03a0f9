package paragraph

import (
	"fmt"

	"github.com/npillmayer/cords"
	"github.com/npillmayer/cords/styled"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/engine/measure"
	"github.com/npillmayer/parashape/engine/shaping"
	"github.com/npillmayer/parashape/engine/text/segment"
	"github.com/npillmayer/uax/bidi"
)

// TextStyle is the style of a run of styled text.
type TextStyle struct {
	Paint     *shaping.Paint
	RTL       bool
	Hyphenate bool
	LineBreak segment.LineBreakStyle
	WordStyle measure.WordStyle
}

// String is part of interface cords.styled.Style.
func (ts TextStyle) String() string {
	return fmt.Sprintf("style{%v rtl=%v hyph=%v}", ts.Paint, ts.RTL, ts.Hyphenate)
}

// Equals is part of interface cords.styled.Style.
func (ts TextStyle) Equals(other styled.Style) bool {
	o, ok := other.(TextStyle)
	if !ok {
		return false
	}
	return ts.Paint.Equal(o.Paint) && ts.RTL == o.RTL && ts.Hyphenate == o.Hyphenate &&
		ts.LineBreak == o.LineBreak && ts.WordStyle == o.WordStyle
}

var _ styled.Style = TextStyle{}

// run creates a style run for rng.
func (ts TextStyle) run(rng core.Range) measure.Run {
	r := measure.StyleRun(rng, ts.Paint, ts.RTL)
	r.Hyphenation = ts.Hyphenate
	r.LineBreak = ts.LineBreak
	r.WordStyle = ts.WordStyle
	return r
}

// TextBuilder assembles styled text from fragments.
type TextBuilder struct {
	b *styled.TextBuilder
}

// NewTextBuilder creates an empty builder.
func NewTextBuilder() *TextBuilder {
	return &TextBuilder{b: styled.NewTextBuilder()}
}

// Append adds a fragment of text in a style.
func (tb *TextBuilder) Append(s string, style TextStyle) *TextBuilder {
	if s != "" {
		tb.b.Append(fragment(s), style)
	}
	return tb
}

// Text returns the styled text built so far.
func (tb *TextBuilder) Text() *StyledText {
	return &StyledText{text: tb.b.Text()}
}

// StyledText is text with styles attached to runs of it, held in a cord.
type StyledText struct {
	text *styled.Text
}

// Runs returns the characters of st together with a style run for every
// run of equal style. rtl sets the embedding direction of the paragraph.
func (st *StyledText) Runs(rtl bool) ([]rune, []measure.Run, error) {
	length := st.text.Raw().Len()
	if length == 0 {
		return nil, nil, nil
	}
	dir := bidi.LeftToRight
	if rtl {
		dir = bidi.RightToLeft
	}
	para, err := styled.ParagraphFromText(st.text, 0, length, dir, noBidiMarkup)
	if err != nil {
		return nil, nil, core.WrapError(err, core.EINVALID, "cannot create paragraph from styled text")
	}
	var text []rune
	var runs []measure.Run
	err = para.EachStyleRun(func(content string, sty styled.Style, pos, n uint64) error {
		ts, ok := sty.(TextStyle)
		if !ok || ts.Paint == nil {
			tracer().Errorf("styled text has unstyled run at byte position %d", pos)
			return cords.ErrIllegalArguments
		}
		start := len(text)
		text = append(text, []rune(content)...)
		runs = append(runs, ts.run(core.Range{Start: start, End: len(text)}))
		return nil
	})
	if err != nil {
		return nil, nil, core.WrapError(err, core.EINVALID, "cannot collect style runs")
	}
	return text, runs, nil
}

// String returns the plain text of st.
func (st *StyledText) String() string {
	return st.text.Raw().String()
}

// noBidiMarkup tells the bidi resolver that there are no isolating runs
// outside of the text.
func noBidiMarkup(pos uint64) int {
	return 0
}

// ---------------------------------------------------------------------------

// fragment is the leaf type for cords of styled text.
type fragment string

// Weight is part of interface cords.Leaf.
func (f fragment) Weight() uint64 {
	return uint64(len(f))
}

// String is part of interface cords.Leaf.
func (f fragment) String() string {
	return string(f)
}

// Split is part of interface cords.Leaf.
func (f fragment) Split(i uint64) (cords.Leaf, cords.Leaf) {
	return f[:i], f[i:]
}

// Substring is part of interface cords.Leaf.
func (f fragment) Substring(i, j uint64) []byte {
	return []byte(f[i:j])
}

var _ cords.Leaf = fragment("")

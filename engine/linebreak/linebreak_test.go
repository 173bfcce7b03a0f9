package linebreak

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/coverage"
	"github.com/npillmayer/parashape/core/font/fallback"
	"github.com/npillmayer/parashape/core/font/fonttest"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/measure"
	"github.com/npillmayer/parashape/engine/shaping"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// Every character of the test font is 5 units wide at size 10.

var ascii = coverage.Range{Start: 0x20, End: 0x7F}

func testPaint(t *testing.T, tf *fonttest.Typeface) *shaping.Paint {
	if tf == nil {
		tf = fonttest.New("test", ascii)
	}
	fam, err := font.NewFamily([]*font.Font{font.NewFont(tf)}, font.FamilyConfig{})
	require.NoError(t, err)
	c, err := fallback.NewCollection([]*font.Family{fam})
	require.NoError(t, err)
	return shaping.NewPaint(c, 10)
}

const liangPatterns = `\patterns{
hy3ph he2n hena4 hen5at 1na n2at 1tio 2io o2n
}
`

type fixture struct {
	t        *testing.T
	paint    *shaping.Paint
	measurer *measure.Measurer
}

func newFixture(t *testing.T, tf *fonttest.Typeface) *fixture {
	h, err := hyphenation.LoadPatterns(language.English, strings.NewReader(liangPatterns))
	require.NoError(t, err)
	reg := hyphenation.NewRegistry(nil)
	reg.Register(h)
	paint := testPaint(t, tf)
	paint.LocaleListID = font.RegisterLocaleList("en")
	return &fixture{
		t:        t,
		paint:    paint,
		measurer: measure.NewMeasurer(shaping.NewCache(glyphing.NominalShaper()), nil, reg),
	}
}

func (f *fixture) measure(s string, opts measure.Options) *measure.Paragraph {
	text := []rune(s)
	run := measure.StyleRun(core.Range{Start: 0, End: len(text)}, f.paint, false)
	run.Hyphenation = opts.Hyphenation
	return f.measurer.Measure(text, []measure.Run{run}, opts)
}

func (f *fixture) breakLines(s string, strategy Strategy, width float32) *Result {
	para := f.measure(s, measure.Options{})
	return BreakIntoLines(para.Text, strategy, HyphenationNone, false, para, ConstantWidth(width),
		TabStops{}, false)
}

func TestGreedyBreaking(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	result := f.breakLines("AAAA BBBB CCCC", Greedy, 45)
	assert.Equal(t, []int{10, 14}, result.BreakPoints)
	assert.Equal(t, []float32{45, 20}, result.Widths)
	assert.Equal(t, []float32{-8, -8}, result.Ascents)
	assert.Equal(t, []float32{2, 2}, result.Descents)
	assert.Equal(t, font.Rect{Left: 0, Top: -8, Right: 20, Bottom: 2}, result.Bounds[1])
	assert.Equal(t, hyphenation.Edit(0), result.Flags[0].Edit())
	//
	result = f.breakLines("AAAA BBBB CCCC", Greedy, 40)
	assert.Equal(t, []int{5, 10, 14}, result.BreakPoints)
	assert.Equal(t, []float32{20, 20, 20}, result.Widths)
	assert.Equal(t, core.Range{Start: 5, End: 10}, result.Line(1))
}

func TestOptimalBreaking(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	result := f.breakLines("AAAA BBBB CCCC", HighQuality, 45)
	assert.Equal(t, []int{10, 14}, result.BreakPoints)
	assert.Equal(t, []float32{45, 20}, result.Widths)
	// the same input gives the same output
	again := f.breakLines("AAAA BBBB CCCC", HighQuality, 45)
	assert.Equal(t, result, again)
}

func TestOverfullSingleCharacter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	for _, strategy := range []Strategy{Greedy, HighQuality, Balanced} {
		result := f.breakLines("W", strategy, 3)
		assert.Equal(t, []int{1}, result.BreakPoints, "strategy %s", strategy)
		assert.Equal(t, []float32{5}, result.Widths, "strategy %s", strategy)
	}
	// greedy puts at least one cluster on every line
	result := f.breakLines("WW", Greedy, 3)
	assert.Equal(t, []int{1, 2}, result.BreakPoints)
	assert.Equal(t, []float32{5, 5}, result.Widths)
	assert.Equal(t, hyphenation.NoEndEdit, result.Flags[0].Edit().End())
	// for the optimizer, two overfull lines are worse than one
	result = f.breakLines("WW", HighQuality, 3)
	assert.Equal(t, []int{2}, result.BreakPoints)
}

func TestJustifiedLinesShrink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	para := f.measure("aa bb cc dd", measure.Options{})
	ragged := BreakIntoLines(para.Text, HighQuality, HyphenationNone, false, para, ConstantWidth(38),
		TabStops{}, false)
	assert.Equal(t, []int{6, 11}, ragged.BreakPoints)
	justified := BreakIntoLines(para.Text, HighQuality, HyphenationNone, true, para, ConstantWidth(38),
		TabStops{}, false)
	assert.Equal(t, []int{9, 11}, justified.BreakPoints)
	assert.Equal(t, float32(40), justified.Widths[0])
}

func TestBalancedBreaking(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	assert.Equal(t, []int{9, 11}, f.breakLines("aa bb cc dd", HighQuality, 45).BreakPoints)
	assert.Equal(t, []int{6, 11}, f.breakLines("aa bb cc dd", Balanced, 45).BreakPoints)
}

func TestHyphenatedBreaks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	para := f.measure("a hyphenation", measure.Options{Hyphenation: true})
	require.Len(t, para.HyphenBreaks, 2)
	result := BreakIntoLines(para.Text, HighQuality, HyphenationFull, false, para, ConstantWidth(50),
		TabStops{}, false)
	assert.Equal(t, []int{8, 13}, result.BreakPoints)
	assert.Equal(t, []float32{45, 25}, result.Widths)
	insert := hyphenation.PackEdit(hyphenation.NoStartEdit, hyphenation.InsertHyphen)
	assert.Equal(t, insert, result.Flags[0].Edit())
	assert.Equal(t, hyphenation.Edit(0), result.Flags[1].Edit())
	// hyphenation points are ignored without hyphenation
	result = BreakIntoLines(para.Text, HighQuality, HyphenationNone, false, para, ConstantWidth(50),
		TabStops{}, false)
	assert.NotContains(t, result.BreakPoints, 8)
	//
	result = BreakIntoLines(para.Text, Greedy, HyphenationNormal, false, para, ConstantWidth(50),
		TabStops{}, false)
	assert.Equal(t, []int{2, 8, 13}, result.BreakPoints)
	assert.Equal(t, []float32{5, 35, 25}, result.Widths)
	assert.Equal(t, insert, result.Flags[1].Edit())
}

func TestDesperateBreaks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	for _, strategy := range []Strategy{Greedy, HighQuality} {
		result := f.breakLines("abcdefgh", strategy, 20)
		assert.Equal(t, []int{4, 8}, result.BreakPoints, "strategy %s", strategy)
		assert.Equal(t, []float32{20, 20}, result.Widths, "strategy %s", strategy)
	}
}

func TestTabsBreakGreedily(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	para := f.measure("a\tb", measure.Options{})
	result := BreakIntoLines(para.Text, HighQuality, HyphenationNone, false, para, ConstantWidth(100),
		TabStops{TabWidth: 20}, false)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, float32(25), result.Widths[0])
	assert.True(t, result.Flags[0].HasTab())
	//
	ts := TabStops{Stops: []float32{8, 30}, TabWidth: 20}
	assert.Equal(t, float32(8), ts.NextTab(5))
	assert.Equal(t, float32(30), ts.NextTab(8))
	assert.Equal(t, float32(40), ts.NextTab(31))
	assert.Equal(t, float32(60), ts.NextTab(40))
}

func TestBoundsForWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	tf := fonttest.New("test", ascii)
	tf.Overhangs = map[rune]font.Rect{'f': {Left: 0, Top: -0.8, Right: 0.7, Bottom: 0}}
	f := newFixture(t, tf)
	para := f.measure("of of", measure.Options{Bounds: true})
	result := BreakIntoLines(para.Text, HighQuality, HyphenationNone, false, para, ConstantWidth(26),
		TabStops{}, false)
	assert.Equal(t, []int{5}, result.BreakPoints)
	assert.Equal(t, font.Rect{Left: 0, Top: -8, Right: 25, Bottom: 2}, result.Bounds[0])
	result = BreakIntoLines(para.Text, HighQuality, HyphenationNone, false, para, ConstantWidth(26),
		TabStops{}, true)
	assert.Equal(t, []int{3, 5}, result.BreakPoints)
	assert.Equal(t, font.Rect{Left: 0, Top: -8, Right: 12, Bottom: 0}, result.Bounds[0])
	result = BreakIntoLines(para.Text, HighQuality, HyphenationNone, false, para, ConstantWidth(30),
		TabStops{}, true)
	assert.Equal(t, []int{5}, result.BreakPoints)
	assert.Equal(t, font.Rect{Left: 0, Top: -8, Right: 27, Bottom: 0}, result.Bounds[0])
}

func TestIndentedWidth(t *testing.T) {
	iw := IndentedWidth{FirstWidth: 50, FirstLines: 2, RestWidth: 80, Indents: []float32{10, 0}}
	assert.Equal(t, float32(40), iw.At(0))
	assert.Equal(t, float32(50), iw.At(1))
	assert.Equal(t, float32(80), iw.At(2))
	assert.Equal(t, float32(80), iw.At(100))
	assert.Equal(t, float32(40), iw.Min())
	assert.Equal(t, float32(33), ConstantWidth(33).Min())
}

func TestVaryingLineWidths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	para := f.measure("aa bb cc dd ee", measure.Options{})
	lw := IndentedWidth{FirstWidth: 30, FirstLines: 1, RestWidth: 60}
	result := BreakIntoLines(para.Text, Greedy, HyphenationNone, false, para, lw, TabStops{}, false)
	assert.Equal(t, []int{6, 14}, result.BreakPoints)
}

// --- Best-hope pruning versus exhaustive search ----------------------------

// bruteForce returns the least total score of all break sequences. It
// scores lines the way the optimizer does.
func bruteForce(opt *optimizer) float64 {
	cands := opt.cands.list
	n := len(cands)
	width := float64(opt.lineWidth.At(0))
	best := float64(scoreInfinity)
	var walk func(j int, acc float64)
	walk = func(j int, acc float64) {
		for i := j + 1; i < n; i++ {
			atEnd := i == n-1
			delta := cands[j].preBreak - (cands[i].postBreak - width)
			var widthScore, additional float64
			if delta < 0 {
				widthScore = scoreOverfull
			} else if atEnd && opt.strategy != Balanced {
				additional = lastLinePenaltyMultiplier * cands[j].penalty
			} else {
				widthScore = delta * delta
			}
			score := acc + widthScore + additional + cands[i].penalty + opt.cands.linePenalty
			if atEnd {
				best = min(best, score)
			} else {
				walk(i, score)
			}
		}
	}
	walk(0, 0)
	return best
}

func randomText(rnd *rand.Rand, words int) string {
	var b strings.Builder
	for w := 0; w < words; w++ {
		if w > 0 {
			b.WriteByte(' ')
		}
		for c := 1 + rnd.Intn(6); c > 0; c-- {
			b.WriteByte(byte('a' + rnd.Intn(26)))
		}
	}
	return b.String()
}

func TestOptimizerMatchesExhaustiveSearch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.linebreak")
	defer teardown()
	//
	f := newFixture(t, nil)
	rnd := rand.New(rand.NewSource(4711))
	for round := 0; round < 50; round++ {
		text := randomText(rnd, 3+rnd.Intn(7))
		para := f.measure(text, measure.Options{})
		lw := ConstantWidth(5 * float32(6+rnd.Intn(15))) // no word is wider than a line
		for _, strategy := range []Strategy{HighQuality, Balanced} {
			opt := &optimizer{
				para:      para,
				cands:     populateCandidates(para, lw, HyphenationNone, false),
				lineWidth: lw,
				strategy:  strategy,
			}
			data := opt.computeBreaks()
			dp := data[len(data)-1].score
			assert.InDelta(t, bruteForce(opt), dp, 1e-6*dp, "%q at width %g, %s", text, float32(lw), strategy)
		}
	}
}

package shaping

import (
	"errors"
	"sync"
	"testing"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/coverage"
	"github.com/npillmayer/parashape/core/font/fallback"
	"github.com/npillmayer/parashape/core/font/fonttest"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/text/segment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ascii = coverage.Range{Start: 0x20, End: 0x7F}

func testPaint(t *testing.T, ranges ...coverage.Range) *Paint {
	tf := fonttest.New("test", ranges...)
	fam, err := font.NewFamily([]*font.Font{font.NewFont(tf)}, font.FamilyConfig{})
	require.NoError(t, err)
	c, err := fallback.NewCollection([]*font.Family{fam})
	require.NoError(t, err)
	return NewPaint(c, 10)
}

func rng(start, end int) core.Range {
	return core.Range{Start: start, End: end}
}

func TestShapePiece(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	text := []rune("hello world")
	p := Shape(glyphing.NominalShaper(), text, rng(0, 5), paint, false, 0)
	assert.Equal(t, []float32{5, 5, 5, 5, 5}, p.Advances)
	assert.Equal(t, float32(25), p.Advance)
	assert.Equal(t, font.Extent{Ascent: -8, Descent: 2}, p.Extent)
	require.Len(t, p.Glyphs, 5)
	assert.Equal(t, font.GlyphID('l'), p.Glyphs[2].GID)
	assert.Equal(t, float32(10), p.Glyphs[2].X)
	assert.Equal(t, 2, p.Glyphs[2].Cluster)
	//
	assert.Equal(t, font.Rect{Left: 0, Top: -8, Right: 25, Bottom: 0}, p.Bounds(paint))
	paint.SkewX = -0.25
	assert.Equal(t, font.Rect{Left: 0, Top: -8, Right: 27, Bottom: 0}, p.Bounds(paint))
}

func TestShapeWithHyphenEdits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	text := []rune("hyphen")
	// no glyph for U+2010: falls back to hyphen-minus
	paint := testPaint(t, ascii)
	edit := hyphenation.PackEdit(hyphenation.NoStartEdit, hyphenation.InsertHyphen)
	p := Shape(glyphing.NominalShaper(), text, rng(0, 2), paint, false, edit)
	assert.Equal(t, []float32{5, 10}, p.Advances)
	require.Len(t, p.Glyphs, 3)
	assert.Equal(t, font.GlyphID('-'), p.Glyphs[2].GID)
	assert.Equal(t, 1, p.Glyphs[2].Cluster)
	assert.Equal(t, []rune("hyphen"), text, "input must not change")
	//
	paint = testPaint(t, ascii, coverage.Range{Start: 0x2010, End: 0x2011})
	p = Shape(glyphing.NominalShaper(), text, rng(0, 2), paint, false, edit)
	require.Len(t, p.Glyphs, 3)
	assert.Equal(t, font.GlyphID(hyphenation.Hyphen), p.Glyphs[2].GID)
	//
	edit = hyphenation.PackEdit(hyphenation.StartInsertHyphen, hyphenation.NoEndEdit)
	p = Shape(glyphing.NominalShaper(), text, rng(2, 6), paint, false, edit)
	assert.Equal(t, []float32{10, 5, 5, 5}, p.Advances)
	assert.Equal(t, 0, p.Glyphs[0].Cluster)
	assert.Equal(t, 0, p.Glyphs[1].Cluster)
}

func TestShaperFailureGivesZeroWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	failing := glyphing.ShaperFunc(func(req glyphing.Request) (glyphing.Result, error) {
		return glyphing.Result{}, errors.New("broken font")
	})
	p := Shape(failing, []rune("abc"), rng(0, 3), testPaint(t, ascii), false, 0)
	assert.Equal(t, []float32{0, 0, 0}, p.Advances)
	assert.Zero(t, p.Advance)
	assert.Equal(t, font.Extent{}, p.Extent)
}

func TestCacheHitAndBoundsUpgrade(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	cache := NewCache(glyphing.NominalShaper())
	text := []rune("word")
	var first, second *Piece
	var bounds font.Rect
	cache.GetOrCreate(text, rng(0, 4), paint, false, 0, 0, false, func(p *Piece, _ *Paint, b font.Rect) {
		first = p
		assert.False(t, b.IsValid())
	})
	cache.GetOrCreate(text, rng(0, 4), paint, false, 0, 0, true, func(p *Piece, _ *Paint, b font.Rect) {
		second, bounds = p, b
	})
	assert.Same(t, first, second)
	assert.True(t, bounds.IsValid())
	assert.Equal(t, float32(20), bounds.Width())
	st := cache.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Len)
	// a different paint is a different piece
	other := *paint
	other.LetterSpacing = 0.1
	cache.GetOrCreate(text, rng(0, 4), &other, false, 0, 0, false, func(p *Piece, _ *Paint, _ font.Rect) {
		assert.NotSame(t, first, p)
		assert.InDelta(t, 24, p.Advance, 0.001)
	})
	assert.Equal(t, 2, cache.Len())
}

func TestCacheBypass(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	cache := NewCache(glyphing.NominalShaper(), WithMaxLength(4))
	text := []rune("abcdef")
	calls := 0
	cache.GetOrCreate(text, rng(0, 5), paint, false, 0, 0, false, func(p *Piece, _ *Paint, _ font.Rect) {
		calls++
		assert.Equal(t, float32(25), p.Advance)
	})
	noCache := *paint
	noCache.SkipCache = true
	cache.GetOrCreate(text, rng(0, 2), &noCache, false, 0, 0, false, func(*Piece, *Paint, font.Rect) {
		calls++
	})
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, uint64(2), cache.Stats().Bypasses)
}

func TestCacheEviction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	var evicted []*Piece
	cache := NewCache(glyphing.NominalShaper(), WithCapacity(2), WithEvictHook(func(p *Piece) {
		evicted = append(evicted, p)
	}))
	pieces := make(map[string]*Piece)
	for _, w := range []string{"a", "bb", "a", "ccc"} {
		word := w
		cache.GetOrCreate([]rune(word), rng(0, len(word)), paint, false, 0, 0, false,
			func(p *Piece, _ *Paint, _ font.Rect) { pieces[word] = p })
	}
	// "a" has been used more recently than "bb"
	require.Len(t, evicted, 1)
	assert.Same(t, pieces["bb"], evicted[0])
	assert.Equal(t, 2, cache.Len())
	cache.Clear()
	assert.Len(t, evicted, 3)
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, uint64(3), cache.Stats().Evictions)
}

func TestCacheKeepsInvalidCodePointsApart(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	cache := NewCache(glyphing.NominalShaper())
	surrogate := []rune{'x', 0xD800}
	replacement := []rune{'x', 0xFFFD}
	beyond := []rune{'x', 0x110000}
	assert.NotEqual(t, runeKey(surrogate), runeKey(replacement))
	assert.NotEqual(t, runeKey(beyond), runeKey(replacement))
	var pieces []*Piece
	for _, text := range [][]rune{surrogate, replacement, beyond} {
		cache.GetOrCreate(text, rng(0, 2), paint, false, 0, 0, false,
			func(p *Piece, _ *Paint, _ font.Rect) { pieces = append(pieces, p) })
	}
	require.Len(t, pieces, 3)
	assert.NotSame(t, pieces[0], pieces[1])
	assert.NotSame(t, pieces[1], pieces[2])
	assert.Equal(t, 3, cache.Len())
	assert.Equal(t, uint64(3), cache.Stats().Misses)
	assert.Zero(t, cache.Stats().Hits)
}

func TestCacheResultsSurviveEviction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	cache := NewCache(glyphing.NominalShaper(), WithCapacity(1))
	text := []rune("stable text")
	fetch := func(r core.Range) *Piece {
		var piece *Piece
		cache.GetOrCreate(text, r, paint, false, 0, 0, false,
			func(p *Piece, _ *Paint, _ font.Rect) { piece = p })
		require.NotNil(t, piece)
		return piece
	}
	first := fetch(rng(0, 6))
	fetch(rng(7, 11)) // evicts the first piece
	assert.Equal(t, uint64(1), cache.Stats().Evictions)
	again := fetch(rng(0, 6))
	assert.NotSame(t, first, again)
	assert.Equal(t, first.Advances, again.Advances)
	assert.Equal(t, first.Glyphs, again.Glyphs)
	assert.Equal(t, first.Extent, again.Extent)
	assert.Equal(t, first.Advance, again.Advance)
	//
	cache.Clear()
	afterClear := fetch(rng(0, 6))
	assert.NotSame(t, again, afterClear)
	assert.Equal(t, first.Advances, afterClear.Advances)
	assert.Equal(t, first.Glyphs, afterClear.Glyphs)
	assert.Equal(t, first.Extent, afterClear.Extent)
}

func TestCacheConcurrentUse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	cache := NewCache(glyphing.NominalShaper())
	text := []rune("concurrent")
	var wg sync.WaitGroup
	advances := make([]float32, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cache.GetOrCreate(text, rng(0, len(text)), paint, false, 0, 0, i%2 == 0,
				func(p *Piece, _ *Paint, _ font.Rect) { advances[i] = p.Advance })
		}(i)
	}
	wg.Wait()
	for _, a := range advances {
		assert.Equal(t, float32(50), a)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestMeasureText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	cache := NewCache(glyphing.NominalShaper())
	text := []rune("ab cd ef")
	advances := make([]float32, 5)
	var bounds font.Rect
	w := cache.MeasureText(text, rng(0, 5), segment.DefaultLTR, paint, 0, 0, advances, &bounds)
	assert.Equal(t, float32(25), w)
	assert.Equal(t, []float32{5, 5, 5, 5, 5}, advances)
	assert.Equal(t, float32(25), bounds.Width())
	// additivity
	w1 := cache.MeasureText(text, rng(0, 3), segment.DefaultLTR, paint, 0, 0, nil, nil)
	w2 := cache.MeasureText(text, rng(3, 5), segment.DefaultLTR, paint, 0, 0, nil, nil)
	assert.Equal(t, w, w1+w2)
	//
	paint.WordSpacing = 3
	w = cache.MeasureText(text, rng(0, 8), segment.DefaultLTR, paint, 0, 0, nil, nil)
	assert.Equal(t, float32(46), w)
}

func TestLayoutText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	paint := testPaint(t, ascii)
	cache := NewCache(glyphing.NominalShaper())
	text := []rune("ab cd")
	l := cache.LayoutText(text, rng(0, 5), segment.DefaultLTR, paint,
		hyphenation.NoStartEdit, hyphenation.InsertHyphen)
	require.Len(t, l.Glyphs, 6)
	assert.Equal(t, float32(30), l.Advance)
	assert.Equal(t, []float32{5, 5, 5, 5, 10}, l.Advances)
	for i, g := range l.Glyphs {
		assert.Equal(t, float32(5*i), g.X)
	}
	assert.Equal(t, 4, l.Glyphs[5].Index)
}

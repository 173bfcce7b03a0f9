package gotext

import (
	"testing"

	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/fonttest"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
)

func goRegular() font.FakedFont {
	return font.FakedFont{Font: font.NewFont(font.FallbackTypeface()), Fakery: font.NoFakery()}
}

func TestShapeGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	text := []rune("Hello World")
	res, err := New().Shape(glyphing.Request{
		Text: text, Start: 0, End: len(text),
		Font: goRegular(), Size: 16, NeedsBounds: true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Glyphs, len(text))
	assert.Len(t, res.Advances, len(text))
	var sum float32
	for _, a := range res.Advances {
		sum += a
	}
	assert.InDelta(t, sum, res.Advance, 1e-3)
	assert.Greater(t, res.Advance, float32(0))
	assert.True(t, res.Bounds.IsValid())
	assert.LessOrEqual(t, res.Bounds.Right, res.Advance+1)
}

func TestShapeSubrangeKeepsClusters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	text := []rune("one two")
	res, err := New().Shape(glyphing.Request{Text: text, Start: 4, End: 7, Font: goRegular(), Size: 10})
	require.NoError(t, err)
	for _, g := range res.Glyphs {
		assert.True(t, g.Cluster >= 4 && g.Cluster < 7, "cluster %d outside of range", g.Cluster)
	}
	assert.Len(t, res.Advances, 3)
}

func TestLetterSpacing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	text := []rune("abc")
	shaper := New()
	plain, err := shaper.Shape(glyphing.Request{Text: text, End: 3, Font: goRegular(), Size: 10})
	require.NoError(t, err)
	spaced, err := shaper.Shape(glyphing.Request{Text: text, End: 3, Font: goRegular(), Size: 10,
		LetterSpacing: 0.1})
	require.NoError(t, err)
	assert.InDelta(t, plain.Advance+3, spaced.Advance, 1e-3)
}

func TestBoldIsWider(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	bold, err := font.ParseTypeface("gofont:gobold", gobold.TTF)
	require.NoError(t, err)
	text := []rune("Typesetting")
	shaper := New()
	r1, err := shaper.Shape(glyphing.Request{Text: text, End: len(text), Font: goRegular(), Size: 12})
	require.NoError(t, err)
	r2, err := shaper.Shape(glyphing.Request{Text: text, End: len(text),
		Font: font.FakedFont{Font: font.NewFont(bold), Fakery: font.NoFakery()}, Size: 12})
	require.NoError(t, err)
	assert.Greater(t, r2.Advance, r1.Advance)
}

func TestUnsupportedTypeface(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.shaping")
	defer teardown()
	//
	ff := font.FakedFont{Font: font.NewFont(fonttest.New("synthetic")), Fakery: font.NoFakery()}
	_, err := New().Shape(glyphing.Request{Text: []rune("x"), End: 1, Font: ff, Size: 10})
	assert.ErrorIs(t, err, glyphing.ErrUnsupportedTypeface)
}

func TestDetectScript(t *testing.T) {
	assert.Equal(t, "Cyrillic", detectScript([]rune("  «мир»")).String())
}

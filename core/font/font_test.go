package font_test

import (
	"sync"
	"testing"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/flatbuf"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/coverage"
	"github.com/npillmayer/parashape/core/font/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
)

var latin = coverage.Range{Start: 0x20, End: 0x7F}

func TestFakeBold(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	regular := font.NewFont(fonttest.New("Regular", latin))
	fam, err := font.NewFamily([]*font.Font{regular}, font.FamilyConfig{})
	require.NoError(t, err)
	ff := fam.ClosestMatch(font.Style{Weight: font.WeightBold})
	if ff.Font != regular {
		t.Errorf("expected regular font to be selected")
	}
	if !ff.Fakery.FakeBold {
		t.Errorf("expected fake bold for weight 700 with a 400 font, have %v", ff.Fakery)
	}
	assert.False(t, ff.Fakery.FakeItalic)
	//
	ff = fam.ClosestMatch(font.Style{Weight: font.WeightMedium, Slant: font.SlantItalic})
	assert.False(t, ff.Fakery.FakeBold, "500 is not bold enough for faking")
	assert.True(t, ff.Fakery.FakeItalic)
}

func TestComputeFakery(t *testing.T) {
	regular := font.Style{Weight: 400}
	assert.True(t, font.ComputeFakery(font.Style{Weight: 600}, regular).FakeBold)
	assert.False(t, font.ComputeFakery(font.Style{Weight: 500}, regular).FakeBold)
	assert.False(t, font.ComputeFakery(font.Style{Weight: 700}, font.Style{Weight: 600}).FakeBold)
	italic := font.Style{Weight: 400, Slant: font.SlantItalic}
	assert.False(t, font.ComputeFakery(italic, italic).FakeItalic)
	assert.False(t, font.ComputeFakery(regular, italic).FakeItalic)
}

func TestClosestMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	fonts := []*font.Font{
		font.NewFont(fonttest.New("R", latin)),
		font.NewFont(fonttest.New("B", latin).WithStyle(font.WeightBold, font.SlantUpright)),
		font.NewFont(fonttest.New("I", latin).WithStyle(font.WeightNormal, font.SlantItalic)),
		font.NewFont(fonttest.New("BI", latin).WithStyle(font.WeightBold, font.SlantItalic)),
	}
	fam, err := font.NewFamily(fonts, font.FamilyConfig{})
	require.NoError(t, err)
	cases := []struct {
		style font.Style
		font  int
	}{
		{font.Style{Weight: 400}, 0},
		{font.Style{Weight: 700}, 1},
		{font.Style{Weight: 400, Slant: font.SlantItalic}, 2},
		{font.Style{Weight: 800, Slant: font.SlantItalic}, 3},
		{font.Style{Weight: 500}, 0}, // first of equally distant fonts
		{font.Style{Weight: 600}, 1},
	}
	for i, c := range cases {
		ff := fam.ClosestMatch(c.style)
		if ff.Font != fonts[c.font] {
			t.Errorf("case %d: expected font %d for style %v, have %v", i, c.font, c.style,
				ff.Font.Typeface().Name())
		}
		assert.False(t, ff.Fakery.FakeBold || ff.Fakery.FakeItalic, "case %d", i)
	}
	assert.Equal(t, 0, font.MatchDistance(font.Style{Weight: 400}, font.Style{Weight: 450}))
	assert.Equal(t, 3, font.MatchDistance(font.Style{Weight: 400}, font.Style{Weight: 500, Slant: font.SlantItalic}))
}

func TestEmptyFamily(t *testing.T) {
	_, err := font.NewFamily(nil, font.FamilyConfig{})
	require.Error(t, err)
	assert.Equal(t, core.EMISSING, core.Code(err))
	assert.True(t, core.IsConfigurationError(err))
}

func TestVariationFamilyTypes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	upright := font.NewFont(fonttest.New("V", latin).WithAxes("wght"))
	italic := font.NewFont(fonttest.New("VI", latin).WithAxes("wght").
		WithStyle(font.WeightNormal, font.SlantItalic))
	boldItalic := font.Style{Weight: 700, Slant: font.SlantItalic}
	//
	fam, err := font.NewFamily([]*font.Font{upright}, font.FamilyConfig{VariationType: font.SingleFontWeightOnly})
	require.NoError(t, err)
	ff := fam.ClosestMatch(boldItalic)
	assert.Equal(t, upright, ff.Font)
	assert.Equal(t, int16(700), ff.Fakery.WeightAdjust)
	assert.Equal(t, int8(-1), ff.Fakery.ItalAdjust)
	assert.True(t, ff.Fakery.FakeItalic)
	assert.False(t, ff.Fakery.FakeBold)
	//
	fam, err = font.NewFamily([]*font.Font{upright}, font.FamilyConfig{VariationType: font.SingleFontWeightItalic})
	require.NoError(t, err)
	ff = fam.ClosestMatch(boldItalic)
	assert.Equal(t, int8(1), ff.Fakery.ItalAdjust)
	assert.False(t, ff.Fakery.FakeItalic)
	//
	fam, err = font.NewFamily([]*font.Font{upright, italic}, font.FamilyConfig{VariationType: font.TwoFontWeight})
	require.NoError(t, err)
	ff = fam.ClosestMatch(boldItalic)
	assert.Equal(t, italic, ff.Font)
	assert.Equal(t, int16(700), ff.Fakery.WeightAdjust)
	ff = fam.ClosestMatch(font.DefaultStyle())
	assert.Equal(t, upright, ff.Font)
}

func TestAdjustedTypefaceIsCached(t *testing.T) {
	f := font.NewFont(fonttest.New("V", latin).WithAxes("ital", "wght"))
	a := f.AdjustedTypeface(700, 1)
	b := f.AdjustedTypeface(700, 1)
	assert.Same(t, a, b)
	vars := a.Variations()
	require.Len(t, vars, 2)
	assert.Equal(t, font.Variation{Tag: font.TagWght, Value: 700}, vars[0])
	assert.Equal(t, font.Variation{Tag: font.TagItal, Value: 1}, vars[1])
	assert.Same(t, f.Typeface(), f.AdjustedTypeface(-1, -1))
	c := f.AdjustedTypeface(700, -1)
	assert.NotSame(t, a, c)
	//
	ff := font.FakedFont{Font: f, Fakery: font.NoFakery()}
	ff.Fakery.WeightAdjust = 700
	ff.Fakery.ItalAdjust = 1
	assert.Same(t, a, ff.Typeface())
}

func TestLazyTypefaceFirstWriterWins(t *testing.T) {
	tf := fonttest.New("Lazy", latin)
	factory := fonttest.NewFactory(tf)
	f := font.NewLazyFont(tf.Source(), nil, font.DefaultStyle(), font.EmptyLocaleListID, factory)
	assert.False(t, f.IsLoaded())
	var wg sync.WaitGroup
	results := make([]font.Typeface, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Typeface()
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.True(t, f.IsLoaded())
	assert.GreaterOrEqual(t, factory.Loads(), 1)
	f.Typeface()
	loads := factory.Loads()
	f.Typeface()
	assert.Equal(t, loads, factory.Loads())
}

func TestLazyTypefaceFallsBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	f := font.NewLazyFont("test:missing", nil, font.DefaultStyle(), 0, fonttest.NewFactory())
	assert.Same(t, font.FallbackTypeface(), f.Typeface())
}

func TestFamilyVariations(t *testing.T) {
	static, err := font.NewFamily([]*font.Font{font.NewFont(fonttest.New("S", latin))}, font.FamilyConfig{})
	require.NoError(t, err)
	_, ok := static.WithVariations([]font.Variation{{Tag: font.TagWght, Value: 300}})
	assert.False(t, ok, "static family must not accept variations")
	//
	vfam, err := font.NewFamily([]*font.Font{font.NewFont(fonttest.New("V", latin).WithAxes("wght"))},
		font.FamilyConfig{VariationType: font.SingleFontWeightOnly})
	require.NoError(t, err)
	_, ok = vfam.WithVariations(nil)
	assert.False(t, ok)
	_, ok = vfam.WithVariations([]font.Variation{{Tag: font.MakeTag("wdth"), Value: 80}})
	assert.False(t, ok, "unsupported axis only")
	derived, ok := vfam.WithVariations([]font.Variation{{Tag: font.TagWght, Value: 300}})
	require.True(t, ok)
	assert.Equal(t, font.NoVariationFamily, derived.VariationType())
	assert.Equal(t, []font.Variation{{Tag: font.TagWght, Value: 300}}, derived.Font(0).Typeface().Variations())
	assert.Equal(t, vfam.Coverage(), derived.Coverage())
}

func TestHasGlyphWithVariationSelector(t *testing.T) {
	tf := fonttest.New("E", coverage.Range{Start: 0x2600, End: 0x2700}).
		WithVS(font.EmojiStyleVS, coverage.Range{Start: 0x2600, End: 0x2602})
	fam, err := font.NewFamily([]*font.Font{font.NewFont(tf)}, font.FamilyConfig{})
	require.NoError(t, err)
	assert.True(t, fam.HasVSTable())
	assert.True(t, fam.HasGlyph(0x2601, 0))
	assert.True(t, fam.HasGlyph(0x2601, font.EmojiStyleVS))
	assert.False(t, fam.HasGlyph(0x2603, font.EmojiStyleVS))
	assert.False(t, fam.HasGlyph(0x2601, font.TextStyleVS))
	assert.False(t, fam.HasGlyph(0x2601, 'x'))
}

func TestFamilySerialization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	tfR := fonttest.New("R", latin).WithVS(0xFE00, coverage.Range{Start: 0x30, End: 0x3A})
	tfB := fonttest.New("B", latin).WithStyle(font.WeightBold, font.SlantUpright)
	fonts := []*font.Font{
		font.NewFont(tfR, font.WithLocaleList(font.RegisterLocaleList("de-DE"))),
		font.NewFont(tfB),
	}
	fam, err := font.NewFamily(fonts, font.FamilyConfig{
		LocaleListID: font.RegisterLocaleList("und-Zsye"),
		Variant:      font.VariantCompact,
	})
	require.NoError(t, err)
	assert.True(t, fam.IsColorEmoji())
	//
	w := &flatbuf.Writer{}
	for _, f := range fonts {
		f.WriteTo(w)
	}
	fam.WriteTo(w, func(f *font.Font) uint32 {
		if f == fonts[0] {
			return 0
		}
		return 1
	})
	//
	factory := fonttest.NewFactory(tfR, tfB)
	r := flatbuf.NewReader(w.Bytes())
	var read []*font.Font
	for i := 0; i < 2; i++ {
		f, err := font.ReadFont(r, factory)
		require.NoError(t, err)
		read = append(read, f)
	}
	assert.Equal(t, font.WeightBold, read[1].Style().Weight)
	assert.Equal(t, "de-DE", font.LocaleListByID(read[0].LocaleListID()).String())
	fam2, err := font.ReadFamily(r, func(i uint32) (*font.Font, error) {
		return read[i], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, factory.Loads(), "reading must not load typefaces")
	assert.Equal(t, 2, fam2.NumFonts())
	assert.Equal(t, font.VariantCompact, fam2.Variant())
	assert.True(t, fam2.IsColorEmoji())
	assert.Equal(t, fam.Coverage().Ranges(), fam2.Coverage().Ranges())
	assert.True(t, fam2.HasGlyph('5', 0xFE00))
	assert.False(t, fam2.HasGlyph('A', 0xFE00))
	assert.Equal(t, read[1], fam2.ClosestMatch(font.Style{Weight: 700}).Font)
}

func TestGoFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	regular := font.FallbackTypeface()
	style, ok := regular.Style()
	require.True(t, ok)
	assert.Equal(t, font.DefaultStyle(), style)
	assert.True(t, regular.Coverage().ContainsRune('A'))
	assert.False(t, regular.Coverage().ContainsRune(0x4E00))
	gid, ok := regular.NominalGlyph('A')
	require.True(t, ok)
	assert.Greater(t, regular.HorizontalAdvance(gid, 12, font.NoFakery()), float32(0))
	ext := regular.Extent(12, font.NoFakery())
	assert.Less(t, ext.Ascent, float32(0))
	assert.Greater(t, ext.Descent, float32(0))
	bounds := regular.GlyphBounds(gid, 12, font.NoFakery())
	assert.Less(t, bounds.Top, float32(0), "capital A rises above the baseline")
	bold := font.NoFakery()
	bold.FakeBold = true
	assert.Less(t, regular.GlyphBounds(gid, 12, bold).Left, bounds.Left)
	_, err := regular.WithVariations([]font.Variation{{Tag: font.TagWght, Value: 700}})
	assert.Error(t, err, "Go fonts are not variable")
	//
	b, err := font.ParseTypeface("gofont:gobold", gobold.TTF)
	require.NoError(t, err)
	style, _ = b.Style()
	assert.Equal(t, font.WeightBold, style.Weight)
	i, err := font.ParseTypeface("gofont:goitalic", goitalic.TTF)
	require.NoError(t, err)
	style, _ = i.Style()
	assert.Equal(t, font.SlantItalic, style.Slant)
	//
	_, err = font.ParseTypeface("garbage", []byte("no font"))
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestLocales(t *testing.T) {
	loc, ok := font.ParseLocale("ja-Jpan")
	require.True(t, ok)
	assert.Equal(t, font.EmojiStyleEmpty, loc.Emoji)
	emoji, ok := font.ParseLocale("und-Zsye")
	require.True(t, ok)
	assert.Equal(t, font.EmojiStyleEmoji, emoji.Emoji)
	text, _ := font.ParseLocale("en-u-em-text")
	assert.Equal(t, font.EmojiStyleText, text.Emoji)
	_, ok = font.ParseLocale("!!")
	assert.False(t, ok)
	//
	id := font.RegisterLocaleList("ja-Jpan,en-Latn")
	assert.Equal(t, id, font.RegisterLocaleList("ja-Jpan, en-Latn"))
	ll := font.LocaleListByID(id)
	require.Len(t, ll.Locales, 2)
	assert.Equal(t, 3, loc.ScoreFor(ll))
	fr, _ := font.ParseLocale("fr-Latn")
	assert.Equal(t, 1, fr.ScoreFor(ll))
	assert.Equal(t, 0, emoji.ScoreFor(ll))
	assert.Equal(t, font.EmptyLocaleListID, font.RegisterLocaleList(""))
	assert.Contains(t, font.RegisteredLocaleLists(), "ja-Jpan,en-Latn")
}

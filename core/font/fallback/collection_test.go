package fallback

import (
	"testing"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/flatbuf"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/coverage"
	"github.com/npillmayer/parashape/core/font/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ascii    = coverage.Range{Start: 0x20, End: 0x7F}
	greek    = coverage.Range{Start: 0x370, End: 0x400}
	cyrillic = coverage.Range{Start: 0x400, End: 0x500}
	han      = coverage.Range{Start: 0x4E00, End: 0x5000}
)

func makeFamily(t *testing.T, tf *fonttest.Typeface, config font.FamilyConfig) *font.Family {
	fam, err := font.NewFamily([]*font.Font{font.NewFont(tf)}, config)
	require.NoError(t, err)
	return fam
}

func simpleFamily(t *testing.T, name string, ranges ...coverage.Range) *font.Family {
	return makeFamily(t, fonttest.New(name, ranges...), font.FamilyConfig{})
}

func makeCollection(t *testing.T, families ...*font.Family) *Collection {
	c, err := NewCollection(families)
	require.NoError(t, err)
	return c
}

func TestEqualScoreTiePicksFirstFamily(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	latin := simpleFamily(t, "Latin", ascii)
	cyrA := simpleFamily(t, "CyrA", cyrillic)
	cyrB := simpleFamily(t, "CyrB", cyrillic)
	c := makeCollection(t, latin, cyrA, cyrB)
	text := []rune("Жж")
	runs := c.Itemize(text, font.DefaultStyle(), font.EmptyLocaleListID, font.VariantDefault, 0)
	require.Len(t, runs, 1)
	if runs[0].Families.At(0) != 1 {
		t.Errorf("expected family 1 to win a tie, have %v", runs[0].Families)
	}
	assert.Equal(t, []int{1, 2}, runs[0].Families.Indexes())
	ff := c.BestFont(text, runs[0], font.DefaultStyle())
	assert.Same(t, cyrA.Font(0), ff.Font)
}

func TestItemizeScripts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), simpleFamily(t, "Greek", greek))
	runs := c.Itemize([]rune("abc αβγ"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 2)
	assert.Equal(t, 0, runs[0].Start)
	assert.Equal(t, 4, runs[0].End)
	assert.Equal(t, 0, runs[0].Families.At(0))
	assert.Equal(t, 4, runs[1].Start)
	assert.Equal(t, 7, runs[1].End)
	assert.Equal(t, 1, runs[1].Families.At(0))
}

// checkRunsAreStable re-itemizes every run in isolation. Each must come
// back as a single run spanning the whole of it.
func checkRunsAreStable(t *testing.T, c *Collection, text []rune, runs []Run) {
	t.Helper()
	for _, r := range runs {
		sub := text[r.Start:r.End]
		again := c.Itemize(sub, font.DefaultStyle(), 0, font.VariantDefault, 0)
		if assert.Len(t, again, 1, "run %v of %q split up", r, string(text)) {
			assert.Equal(t, 0, again[0].Start)
			assert.Equal(t, len(sub), again[0].End)
		}
	}
}

func TestItemizeIsDeterministicAndContiguous(t *testing.T) {
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), simpleFamily(t, "Greek", greek),
		simpleFamily(t, "Cyrillic", cyrillic))
	text := []rune("Hello, κόσμε! Привет мир; ok?\u200f")
	runs := c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
	again := c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
	assert.Equal(t, runs, again)
	pos := 0
	for _, r := range runs {
		assert.Equal(t, pos, r.Start)
		assert.Less(t, r.Start, r.End)
		pos = r.End
	}
	assert.Equal(t, len(text), pos)
	checkRunsAreStable(t, c, text, runs)
}

func TestStickyPunctuation(t *testing.T) {
	greekWithComma := simpleFamily(t, "Greek", coverage.Range{Start: ',', End: ',' + 1}, greek)
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), greekWithComma)
	runs := c.Itemize([]rune("αβ,γ"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 1, "comma sticks to the greek family")
	checkRunsAreStable(t, c, []rune("αβ,γ"), runs)
	runs = c.Itemize([]rune("αβ γ"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	assert.Len(t, runs, 3, "space does not stick")
	checkRunsAreStable(t, c, []rune("αβ γ"), runs)
}

func TestFormatCharacters(t *testing.T) {
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), simpleFamily(t, "Greek", greek))
	runs := c.Itemize([]rune("\u200eαβ"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{Families: MatchOf(1), Start: 0, End: 3}, runs[0])
	runs = c.Itemize([]rune("\u200e\u200f"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{Families: MatchOf(0), Start: 0, End: 2}, runs[0])
	assert.Nil(t, c.Itemize(nil, font.DefaultStyle(), 0, font.VariantDefault, 0))
}

func TestCombiningMarkPullsBaseCharacter(t *testing.T) {
	marks := simpleFamily(t, "Marks", coverage.Range{Start: 'e', End: 'e' + 1},
		coverage.Range{Start: 0x301, End: 0x302})
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), marks)
	text := []rune("xe\u0301")
	runs := c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 2)
	assert.Equal(t, Run{Families: MatchOf(0), Start: 0, End: 1}, runs[0])
	assert.Equal(t, Run{Families: MatchOf(1), Start: 1, End: 3}, runs[1])
	checkRunsAreStable(t, c, text, runs)
}

func emojiFamily(t *testing.T, name string, ranges ...coverage.Range) *font.Family {
	return makeFamily(t, fonttest.New(name, ranges...), font.FamilyConfig{
		LocaleListID: font.RegisterLocaleList("und-Zsye"),
	})
}

func TestVariationSelectors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	dingbats := coverage.Range{Start: 0x2700, End: 0x27C0}
	text := simpleFamily(t, "Symbols", dingbats)
	emojiTf := fonttest.New("Emoji", dingbats).WithVS(font.EmojiStyleVS, dingbats)
	emoji := makeFamily(t, emojiTf, font.FamilyConfig{LocaleListID: font.RegisterLocaleList("und-Zsye")})
	require.True(t, emoji.IsColorEmoji())
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), text, emoji)
	//
	runs := c.Itemize([]rune("\u2764\ufe0f"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{Families: MatchOf(2), Start: 0, End: 2}, runs[0])
	runs = c.Itemize([]rune("\u2764\ufe0e"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{Families: MatchOf(1), Start: 0, End: 2}, runs[0])
	runs = c.Itemize([]rune("a\u2764"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 2)
	assert.Equal(t, []int{1, 2}, runs[1].Families.Indexes())
	//
	assert.True(t, c.HasVariationSelector(0x2764, font.EmojiStyleVS))
	assert.True(t, c.HasVariationSelector(0x2764, font.TextStyleVS))
	assert.False(t, c.HasVariationSelector('a', 0xFE00))
	assert.False(t, c.HasVariationSelector(0x2764, 'x'))
	assert.False(t, c.HasVariationSelector(0x10000, font.EmojiStyleVS))
}

func TestEmojiFamiliesIntersect(t *testing.T) {
	faces := coverage.Range{Start: 0x1F600, End: 0x1F650}
	transport := coverage.Range{Start: 0x1F680, End: 0x1F6C0}
	e1 := emojiFamily(t, "E1", faces, transport)
	e2 := emojiFamily(t, "E2", faces)
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), e2, e1)
	text := []rune("\U0001F600\U0001F680")
	runs := c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 1)
	assert.Equal(t, []int{2}, runs[0].Families.Indexes())
	ff := c.BestFont(text, runs[0], font.DefaultStyle())
	assert.Same(t, e1.Font(0), ff.Font)
	// the family covering most of a run wins among emoji candidates
	run := Run{Families: MatchOf(1, 2), Start: 0, End: 2}
	assert.Same(t, e1.Font(0), c.BestFont(text, run, font.DefaultStyle()).Font)
}

func TestMaxRuns(t *testing.T) {
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), simpleFamily(t, "Greek", greek))
	text := []rune("aαaαaα")
	runs := c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
	assert.Len(t, runs, 6)
	runs = c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 2)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[1].End)
}

func TestDecompositionFallback(t *testing.T) {
	c := makeCollection(t, simpleFamily(t, "Greek", greek), simpleFamily(t, "ASCII", ascii))
	runs := c.Itemize([]rune("\u00e9"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Families.At(0), "é should decompose to e")
	runs = c.Itemize([]rune("一"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	assert.Equal(t, 0, runs[0].Families.At(0), "unsupported characters go to family 0")
}

func TestLocaleAndVariantScoring(t *testing.T) {
	zh := makeFamily(t, fonttest.New("zh", han), font.FamilyConfig{LocaleListID: font.RegisterLocaleList("zh-Hans")})
	ja := makeFamily(t, fonttest.New("ja", han), font.FamilyConfig{LocaleListID: font.RegisterLocaleList("ja-Jpan")})
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), zh, ja)
	text := []rune("一")
	runs := c.Itemize(text, font.DefaultStyle(), font.RegisterLocaleList("ja-Jpan"), font.VariantDefault, 0)
	assert.Equal(t, []int{2}, runs[0].Families.Indexes())
	runs = c.Itemize(text, font.DefaultStyle(), font.RegisterLocaleList("zh-Hans"), font.VariantDefault, 0)
	assert.Equal(t, []int{1}, runs[0].Families.Indexes())
	runs = c.Itemize(text, font.DefaultStyle(), font.RegisterLocaleList("en,ja-Jpan"), font.VariantDefault, 0)
	assert.Equal(t, []int{2}, runs[0].Families.Indexes())
	runs = c.Itemize(text, font.DefaultStyle(), font.EmptyLocaleListID, font.VariantDefault, 0)
	assert.Equal(t, []int{1, 2}, runs[0].Families.Indexes())
	//
	compact := makeFamily(t, fonttest.New("compact", greek), font.FamilyConfig{Variant: font.VariantCompact})
	elegant := makeFamily(t, fonttest.New("elegant", greek), font.FamilyConfig{Variant: font.VariantElegant})
	c = makeCollection(t, simpleFamily(t, "Latin", ascii), compact, elegant)
	runs = c.Itemize([]rune("α"), font.DefaultStyle(), 0, font.VariantElegant, 0)
	assert.Equal(t, []int{2}, runs[0].Families.Indexes())
	runs = c.Itemize([]rune("α"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	assert.Equal(t, []int{1, 2}, runs[0].Families.Indexes())
}

func TestCustomFallbackIsPrimary(t *testing.T) {
	custom := font.FamilyConfig{CustomFallback: true}
	c := makeCollection(t,
		makeFamily(t, fonttest.New("Latin", ascii), custom),
		makeFamily(t, fonttest.New("CyrCustom", cyrillic), custom),
		simpleFamily(t, "Cyr", cyrillic))
	runs := c.Itemize([]rune("Ж"), font.DefaultStyle(), 0, font.VariantDefault, 0)
	assert.Equal(t, []int{1}, runs[0].Families.Indexes())
}

func TestBestFontFakery(t *testing.T) {
	c := makeCollection(t, simpleFamily(t, "Latin", ascii))
	text := []rune("abc")
	runs := c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
	ff := c.BestFont(text, runs[0], font.Style{Weight: font.WeightBold})
	assert.True(t, ff.Fakery.FakeBold)
	assert.Equal(t, ff, c.BaseFontFaked(font.Style{Weight: font.WeightBold}))
	assert.Panics(t, func() {
		c.BestFont(text, Run{Families: MatchOf(0), Start: 2, End: 5}, font.DefaultStyle())
	})
}

func TestConfigurationErrors(t *testing.T) {
	_, err := NewCollection(nil)
	assert.Equal(t, core.EINVALID, core.Code(err))
	fam := simpleFamily(t, "Latin", ascii)
	families := make([]*font.Family, MaxFamilyCount)
	for i := range families {
		families[i] = fam
	}
	c, err := NewCollection(families)
	require.NoError(t, err)
	_, err = c.CreateWithFamilies([]*font.Family{fam})
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = NewCollection([]*font.Family{fam, nil})
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestCreateWithFamilies(t *testing.T) {
	latin := simpleFamily(t, "Latin", ascii)
	greekFam := simpleFamily(t, "Greek", greek)
	c := makeCollection(t, latin)
	c2, err := c.CreateWithFamilies([]*font.Family{greekFam})
	require.NoError(t, err)
	assert.Equal(t, 2, c2.NumFamilies())
	assert.Same(t, greekFam, c2.Family(0))
	assert.Same(t, c.Arena(), c2.Arena())
	assert.NotEqual(t, c.ID(), c2.ID())
}

func TestVariationCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	static := makeCollection(t, simpleFamily(t, "Latin", ascii))
	_, ok := static.CreateWithVariation([]font.Variation{{Tag: font.TagWght, Value: 300}})
	assert.False(t, ok, "no family supports 'wght'")
	assert.Empty(t, static.SupportedAxes())
	//
	vf := makeFamily(t, fonttest.New("Var", greek).WithAxes("wght", "opsz"), font.FamilyConfig{})
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), vf)
	assert.Equal(t, []font.AxisTag{font.MakeTag("opsz"), font.TagWght}, c.SupportedAxes())
	_, ok = c.CreateWithVariation(nil)
	assert.False(t, ok)
	_, ok = c.CreateWithVariation([]font.Variation{{Tag: font.MakeTag("wdth"), Value: 75}})
	assert.False(t, ok)
	derived, ok := c.CreateWithVariation([]font.Variation{{Tag: font.TagWght, Value: 300}})
	require.True(t, ok)
	assert.Same(t, c.Family(0), derived.Family(0), "static families are kept")
	assert.NotSame(t, c.Family(1), derived.Family(1))
	vars := derived.Family(1).Font(0).Typeface().Variations()
	assert.Equal(t, []font.Variation{{Tag: font.TagWght, Value: 300}}, vars)
}

func TestReferenceExtent(t *testing.T) {
	tall := fonttest.New("tall", han)
	tall.Ascent, tall.Descent = 1.0, 0.3
	ja := makeFamily(t, tall, font.FamilyConfig{LocaleListID: font.RegisterLocaleList("ja-Jpan")})
	c := makeCollection(t, simpleFamily(t, "Latin", ascii), ja)
	ext := c.ReferenceExtent(font.DefaultStyle(), 10, font.EmptyLocaleListID)
	assert.InDelta(t, -8, ext.Ascent, 1e-4)
	assert.InDelta(t, 2, ext.Descent, 1e-4)
	ext = c.ReferenceExtent(font.DefaultStyle(), 10, font.RegisterLocaleList("ja-Jpan"))
	assert.InDelta(t, -10, ext.Ascent, 1e-4)
	assert.InDelta(t, 3, ext.Descent, 1e-4)
}

func TestCollectionSerialization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	tfLatin := fonttest.New("Latin", ascii)
	tfGreek := fonttest.New("Greek", greek, coverage.Range{Start: 0x1F00, End: 0x2000})
	tfCyr := fonttest.New("Cyr", cyrillic)
	latin := makeFamily(t, tfLatin, font.FamilyConfig{})
	greekFam := makeFamily(t, tfGreek, font.FamilyConfig{})
	cyr := makeFamily(t, tfCyr, font.FamilyConfig{Variant: font.VariantCompact})
	c1 := makeCollection(t, latin, greekFam, cyr)
	c2, err := c1.CreateWithFamilies([]*font.Family{cyr})
	require.NoError(t, err)
	//
	w := &flatbuf.Writer{}
	WriteCollections(w, []*Collection{c1, c2})
	factory := fonttest.NewFactory(tfLatin, tfGreek, tfCyr)
	read, err := ReadCollections(flatbuf.NewReader(w.Bytes()), factory)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, 3, read[0].Arena().NumFamilies(), "families are written once")
	assert.Same(t, read[0].Arena(), read[1].Arena())
	assert.Equal(t, 4, read[1].NumFamilies())
	assert.NotEqual(t, c1.ID(), read[0].ID())
	assert.Equal(t, c1.ranges, read[0].ranges)
	assert.Equal(t, c1.familyVec, read[0].familyVec)
	assert.Equal(t, c1.maxChar, read[0].maxChar)
	text := []rune("Hi ἀβγ Жизнь, ok")
	for i, c := range []*Collection{c1, c2} {
		want := c.Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
		have := read[i].Itemize(text, font.DefaultStyle(), 0, font.VariantDefault, 0)
		assert.Equal(t, want, have, "collection %d", i)
	}
	assert.Equal(t, 0, factory.Loads())
	//
	corrupt := append([]byte(nil), w.Bytes()...)
	corrupt = corrupt[:len(corrupt)-3]
	_, err = ReadCollections(flatbuf.NewReader(corrupt), factory)
	assert.Error(t, err)
}

package fontregistry

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

func TestKey(t *testing.T) {
	n := Key("Go Regular.ttf", font.DefaultStyle())
	if n != "go_regular" {
		t.Errorf("expected key 'go_regular', is %q", n)
	}
	n = Key("Gentium", font.Style{Weight: font.WeightBold, Slant: font.SlantItalic})
	assert.Equal(t, "gentium-italic-bold", n)
	n = Key("Gentium", font.Style{Weight: font.WeightThin})
	assert.Equal(t, "gentium-light", n)
}

func TestRegistry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	fr := NewRegistry()
	tf := fonttest.New("Test", coverage.Range{Start: 0x20, End: 0x7F})
	assert.Same(t, tf, fr.StoreTypeface("test", tf))
	other := fonttest.New("Other")
	assert.Same(t, tf, fr.StoreTypeface("test", other), "first typeface wins")
	assert.Same(t, other, fr.StoreTypeface("other", other))
	assert.Nil(t, fr.StoreTypeface("nil", nil))
	found, ok := fr.Typeface("test")
	require.True(t, ok)
	assert.Same(t, tf, found)
	_, ok = fr.Typeface("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"other", "test"}, fr.Names())
	fr.LogFontList()
	assert.Same(t, GlobalRegistry(), GlobalRegistry())
}

func TestArenaHandles(t *testing.T) {
	a := NewArena()
	r := font.NewFont(fonttest.New("R", coverage.Range{Start: 0x20, End: 0x7F}))
	b := font.NewFont(fonttest.New("B", coverage.Range{Start: 0x20, End: 0x7F}).
		WithStyle(font.WeightBold, font.SlantUpright))
	fam1, err := font.NewFamily([]*font.Font{r, b}, font.FamilyConfig{})
	require.NoError(t, err)
	fam2, err := font.NewFamily([]*font.Font{b}, font.FamilyConfig{Variant: font.VariantElegant})
	require.NoError(t, err)
	h1 := a.AddFamily(fam1)
	h2 := a.AddFamily(fam2)
	assert.Equal(t, h1, a.AddFamily(fam1))
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, a.NumFonts(), "fonts are shared between families")
	assert.Same(t, fam2, a.Family(h2))
	assert.Same(t, b, a.Font(a.AddFont(b)))
	h, ok := a.FamilyHandleOf(fam2)
	assert.True(t, ok)
	assert.Equal(t, h2, h)
}

func TestArenaSerialization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parashape.fonts")
	defer teardown()
	//
	tfR := fonttest.New("R", coverage.Range{Start: 0x20, End: 0x7F})
	tfG := fonttest.New("G", coverage.Range{Start: 0x370, End: 0x400})
	r, g := font.NewFont(tfR), font.NewFont(tfG)
	fam1, _ := font.NewFamily([]*font.Font{r}, font.FamilyConfig{})
	fam2, _ := font.NewFamily([]*font.Font{g, r}, font.FamilyConfig{CustomFallback: true})
	a := NewArena()
	a.AddFamily(fam1)
	a.AddFamily(fam2)
	w := &flatbuf.Writer{}
	a.WriteTo(w)
	//
	factory := fonttest.NewFactory(tfR, tfG)
	a2, err := ReadArena(flatbuf.NewReader(w.Bytes()), factory)
	require.NoError(t, err)
	assert.Equal(t, 2, a2.NumFonts())
	require.Equal(t, 2, a2.NumFamilies())
	f2 := a2.Family(1)
	assert.True(t, f2.IsCustomFallback())
	assert.Same(t, a2.Family(0).Font(0), f2.Font(1), "fonts are shared after reading")
	assert.True(t, f2.Coverage().ContainsRune('α'))
	assert.Equal(t, 0, factory.Loads())
	assert.Equal(t, "G", f2.Font(0).Typeface().Name())
	assert.Equal(t, 1, factory.Loads())
	//
	_, err = ReadArena(flatbuf.NewReader([]byte{1, 2, 3, 4}), factory)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

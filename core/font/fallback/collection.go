package fallback

import (
	"sync/atomic"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/coverage"
	"github.com/npillmayer/parashape/core/font/fontregistry"
	"golang.org/x/text/unicode/norm"
)

// MaxFamilyCount is the maximum number of families of a collection.
const MaxFamilyCount = 254

const (
	logCharsPerPage = 8
	pageMask        = 1<<logCharsPerPage - 1
	firstFontScore  = ^uint32(0)
	unsupported     = uint32(0)
	localeLimit     = 3 // requested locales considered for scoring
)

var collectionIDs atomic.Uint32

// Collection is an ordered list of font families, used for font fallback.
// Collections are immutable.
type Collection struct {
	id           uint32
	arena        *fontregistry.Arena
	handles      []fontregistry.FamilyHandle
	families     []*font.Family
	primaryCount int // family 0 plus leading custom fallback families
	maxChar      uint32
	ranges       []pageRange
	familyVec    []uint8
	vsFamilies   []int
	axes         *treeset.Set
}

// pageRange holds the indexes into familyVec for the families covering a page.
type pageRange struct {
	start, end uint32
}

// Option configures a collection.
type Option func(*Collection)

// WithArena makes a collection register its families in arena a.
func WithArena(a *fontregistry.Arena) Option {
	return func(c *Collection) {
		c.arena = a
	}
}

// NewCollection creates a collection from a list of families. The list
// must contain at least one and at most MaxFamilyCount families.
func NewCollection(families []*font.Family, opts ...Option) (*Collection, error) {
	c := &Collection{}
	for _, opt := range opts {
		opt(c)
	}
	if c.arena == nil {
		c.arena = fontregistry.NewArena()
	}
	if len(families) == 0 {
		return nil, core.Error(core.EINVALID, "font collection needs at least one family")
	}
	if len(families) > MaxFamilyCount {
		return nil, core.Error(core.EINVALID, "font collection may have at most %d families, has %d",
			MaxFamilyCount, len(families))
	}
	for _, fam := range families {
		if fam == nil || fam.NumFonts() == 0 {
			return nil, core.Error(core.EMISSING, "font collection contains family without fonts")
		}
	}
	c.families = append([]*font.Family(nil), families...)
	c.handles = make([]fontregistry.FamilyHandle, len(families))
	for i, fam := range families {
		c.handles[i] = c.arena.AddFamily(fam)
	}
	c.prepare()
	c.buildPageIndex()
	tracer().Debugf("font collection #%d with %d families, max char %#x", c.id, len(families), c.maxChar)
	return c, nil
}

// prepare computes everything derived from the list of families except the
// page index.
func (c *Collection) prepare() {
	c.id = collectionIDs.Add(1)
	c.axes = treeset.NewWith(axisComparator)
	c.maxChar = 0
	c.vsFamilies = c.vsFamilies[:0]
	for i, fam := range c.families {
		if fam.HasVSTable() {
			c.vsFamilies = append(c.vsFamilies, i)
		}
		if n := fam.Coverage().Len(); n > c.maxChar {
			c.maxChar = n
		}
		for _, a := range fam.SupportedAxes() {
			c.axes.Add(a)
		}
	}
	c.primaryCount = 1
	for i := 0; i < len(c.families) && c.families[i].IsCustomFallback(); i++ {
		c.primaryCount = i + 1
	}
}

func axisComparator(a, b interface{}) int {
	x, y := a.(font.AxisTag), b.(font.AxisTag)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// buildPageIndex creates, for every page of 256 characters, the list of
// families having coverage for at least one character of the page.
func (c *Collection) buildPageIndex() {
	nPages := (c.maxChar + pageMask) >> logCharsPerPage
	lastChar := make([]uint32, len(c.families))
	for i, fam := range c.families {
		lastChar[i] = fam.Coverage().NextSetBit(0)
	}
	c.ranges = make([]pageRange, nPages)
	c.familyVec = c.familyVec[:0]
	for page := uint32(0); page < nPages; page++ {
		c.ranges[page].start = uint32(len(c.familyVec))
		pageEnd := (page + 1) << logCharsPerPage
		for j, fam := range c.families {
			if lastChar[j] < pageEnd {
				c.familyVec = append(c.familyVec, uint8(j))
				lastChar[j] = fam.Coverage().NextSetBit(pageEnd)
			}
		}
		c.ranges[page].end = uint32(len(c.familyVec))
	}
}

// ID returns a process-unique id of the collection.
func (c *Collection) ID() uint32 { return c.id }

// NumFamilies returns the number of families.
func (c *Collection) NumFamilies() int { return len(c.families) }

// Family returns the family at index i.
func (c *Collection) Family(i int) *font.Family { return c.families[i] }

// Handle returns the arena handle of the family at index i.
func (c *Collection) Handle(i int) fontregistry.FamilyHandle { return c.handles[i] }

// Arena returns the arena holding the collection's families.
func (c *Collection) Arena() *fontregistry.Arena { return c.arena }

// SupportedAxes returns the variation axes supported by any family, sorted.
func (c *Collection) SupportedAxes() []font.AxisTag {
	values := c.axes.Values()
	axes := make([]font.AxisTag, len(values))
	for i, v := range values {
		axes[i] = v.(font.AxisTag)
	}
	return axes
}

// --- Scoring ---------------------------------------------------------------

// familyForChar returns the families scoring best for character ch, followed
// by variation selector vs (if not 0).
//
// If none of the families supports ch, the canonical decomposition of ch is
// tried. If this does not help either, family 0 is used.
func (c *Collection) familyForChar(ch rune, vs rune, localeListID uint32, variant font.Variant) FamilyMatch {
	if uint32(ch) >= c.maxChar {
		return MatchOf(0)
	}
	var start, end uint32
	if vs == 0 {
		r := c.ranges[uint32(ch)>>logCharsPerPage]
		start, end = r.start, r.end
	} else {
		start, end = 0, uint32(len(c.families))
	}
	bestScore := unsupported
	var match FamilyMatch
	for i := start; i < end; i++ {
		inx := int(i)
		if vs == 0 {
			inx = int(c.familyVec[i])
		}
		score := c.familyScore(ch, vs, localeListID, variant, inx)
		if score == firstFontScore {
			return MatchOf(inx)
		}
		if score != unsupported && score >= bestScore {
			if score > bestScore {
				match.reset()
				bestScore = score
			}
			match.add(uint8(inx))
		}
	}
	if match.Len() == 0 {
		if d := norm.NFD.PropertiesString(string(ch)).Decomposition(); len(d) > 0 {
			if base := []rune(string(d)); len(base) > 0 && base[0] != ch {
				return c.familyForChar(base[0], vs, localeListID, variant)
			}
		}
		return MatchOf(0)
	}
	return match
}

// familyScore packs coverage, locale and variant scores into a single value:
//
//	coverage << 29 | locale << 1 | variant
func (c *Collection) familyScore(ch, vs rune, localeListID uint32, variant font.Variant, inx int) uint32 {
	cov := c.coverageScore(ch, vs, inx)
	if cov == firstFontScore || cov == unsupported {
		return cov
	}
	fam := c.families[inx]
	loc := localeScore(localeListID, fam)
	var v uint32
	if fam.Variant() == font.VariantDefault || fam.Variant() == variant {
		v = 1
	}
	return cov<<29 | loc<<1 | v
}

// coverageScore rates a family's support of ch (followed by vs):
//
//	0    no support
//	max  primary family supports it
//	3    family supports the variation sequence
//	2/1  family supports ch only, and vs asks for emoji or text presentation
//	1    family supports ch only
func (c *Collection) coverageScore(ch, vs rune, inx int) uint32 {
	fam := c.families[inx]
	hasVSGlyph := vs != 0 && fam.HasGlyph(ch, vs)
	if !hasVSGlyph && !fam.Coverage().ContainsRune(ch) {
		return unsupported
	}
	if (vs == 0 || hasVSGlyph) && inx < c.primaryCount {
		return firstFontScore
	}
	if vs == 0 {
		return 1
	}
	if hasVSGlyph {
		return 3
	}
	if vs == font.EmojiStyleVS || vs == font.TextStyleVS {
		emojiFamily := fam.IsColorEmoji()
		if vs == font.EmojiStyleVS {
			if emojiFamily {
				return 2
			}
			return 1
		}
		if emojiFamily {
			return 1
		}
		return 2
	}
	return 1
}

// localeScore folds the scores of up to 3 requested locales, in base 5.
func localeScore(localeListID uint32, fam *font.Family) uint32 {
	requested := font.LocaleListByID(localeListID)
	supported := font.LocaleListByID(fam.LocaleListID())
	n := len(requested.Locales)
	if n > localeLimit {
		n = localeLimit
	}
	score := uint32(0)
	for i := 0; i < n; i++ {
		score = score*5 + uint32(requested.Locales[i].ScoreFor(supported))
	}
	return score
}

// --- Fonts -----------------------------------------------------------------

// BestFont selects the font to render a run with style. The run's preferred
// family is used, except for color emoji runs with more than one candidate
// family: in this case the family covering most characters of the run wins.
func (c *Collection) BestFont(text []rune, run Run, style font.Style) font.FakedFont {
	core.Assert(run.Start >= 0 && run.Start <= run.End && run.End <= len(text),
		"run %v out of text range [0…%d)", run, len(text))
	if run.Families.Len() == 0 {
		return c.BaseFontFaked(style)
	}
	fam := c.families[run.Families.At(0)]
	if fam.IsColorEmoji() && run.Families.Len() > 1 {
		best := -1
		for i := 0; i < run.Families.Len(); i++ {
			candidate := c.families[run.Families.At(i)]
			n := countCovered(candidate.Coverage(), text[run.Start:run.End])
			if n > best {
				fam, best = candidate, n
			}
		}
	}
	return fam.ClosestMatch(style)
}

func countCovered(set *coverage.CodePointSet, text []rune) int {
	n := 0
	for _, r := range text {
		if set.ContainsRune(r) {
			n++
		}
	}
	return n
}

// BaseFontFaked returns the closest match of the first family.
func (c *Collection) BaseFontFaked(style font.Style) font.FakedFont {
	return c.families[0].ClosestMatch(style)
}

// ReferenceExtent returns the extent of the first family's font for style,
// enlarged by the extents of the families serving a requested locale.
func (c *Collection) ReferenceExtent(style font.Style, size float32, localeListID uint32) font.Extent {
	ext := c.BaseFontFaked(style).Extent(size)
	requested := font.LocaleListByID(localeListID)
	for _, fam := range c.families[1:] {
		if fam.LocaleListID() == font.EmptyLocaleListID {
			continue
		}
		supported := font.LocaleListByID(fam.LocaleListID())
		for _, loc := range requested.Locales {
			if loc.ScoreFor(supported) >= 3 {
				ext.ExtendBy(fam.ClosestMatch(style).Extent(size))
				break
			}
		}
	}
	return ext
}

// HasVariationSelector is true if any family is able to render the
// variation sequence base+vs.
func (c *Collection) HasVariationSelector(base rune, vs rune) bool {
	if !font.IsVariationSelector(vs) || uint32(base) >= c.maxChar {
		return false
	}
	for _, inx := range c.vsFamilies {
		if c.families[inx].HasGlyph(base, vs) {
			return true
		}
	}
	// text presentation may be rendered by any non-emoji family
	if vs == font.TextStyleVS {
		for _, fam := range c.families {
			if !fam.IsColorEmoji() && fam.HasGlyph(base, 0) {
				return true
			}
		}
	}
	return false
}

// --- Derived collections ---------------------------------------------------

// CreateWithVariation creates a collection with variation axes set for all
// families supporting them. It returns false if no family supports any of
// the variations; this is not an error.
func (c *Collection) CreateWithVariation(vars []font.Variation) (*Collection, bool) {
	if len(vars) == 0 || c.axes.Empty() {
		return nil, false
	}
	applicable := false
	for _, v := range vars {
		if c.axes.Contains(v.Tag) {
			applicable = true
			break
		}
	}
	if !applicable {
		return nil, false
	}
	families := make([]*font.Family, len(c.families))
	for i, fam := range c.families {
		families[i] = fam
		if derived, ok := fam.WithVariations(vars); ok {
			families[i] = derived
		}
	}
	derived, err := NewCollection(families, WithArena(c.arena))
	core.Assert(err == nil, "derived collection invalid: %v", err)
	return derived, true
}

// CreateWithFamilies creates a collection with families put in front of the
// families of c.
func (c *Collection) CreateWithFamilies(families []*font.Family) (*Collection, error) {
	all := make([]*font.Family, 0, len(families)+len(c.families))
	all = append(all, families...)
	all = append(all, c.families...)
	return NewCollection(all, WithArena(c.arena))
}

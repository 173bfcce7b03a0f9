package font

import (
	"sync"
	"sync/atomic"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/flatbuf"
)

// Font is a single typeface together with the nominal style it serves in a
// family and the locales it is meant for. Fonts are immutable and may be
// shared between families and goroutines.
//
// A font may be created from a source string only, in which case the
// typeface is loaded on first use.
type Font struct {
	style    Style
	localeID uint32
	source   string
	vars     []Variation
	factory  TypefaceFactory
	typeface atomic.Pointer[typefaceBox]

	mu       sync.Mutex // guards adjusted
	adjusted map[uint32]Typeface
}

type typefaceBox struct {
	tf Typeface
}

// FontOption configures a font at creation time.
type FontOption func(*Font)

// WithStyle overrides the style reported by the typeface.
func WithStyle(s Style) FontOption {
	return func(f *Font) {
		f.style = s
	}
}

// WithLocaleList sets the locale list id of a font.
func WithLocaleList(id uint32) FontOption {
	return func(f *Font) {
		f.localeID = id
	}
}

// NewFont wraps a loaded typeface. Without a style option, the style is
// taken from the font's metadata.
func NewFont(tf Typeface, opts ...FontOption) *Font {
	core.Assert(tf != nil, "font needs a typeface")
	f := &Font{
		style:  DefaultStyle(),
		source: tf.Source(),
		vars:   tf.Variations(),
	}
	if s, ok := tf.Style(); ok {
		f.style = s
	}
	f.typeface.Store(&typefaceBox{tf: tf})
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewLazyFont creates a font whose typeface will be loaded by factory on
// first use.
func NewLazyFont(source string, vars []Variation, style Style, localeID uint32,
	factory TypefaceFactory) *Font {
	//
	core.Assert(factory != nil, "lazy font needs a typeface factory")
	return &Font{
		style:    style,
		localeID: localeID,
		source:   source,
		vars:     vars,
		factory:  factory,
	}
}

// Style returns the nominal style of the font.
func (f *Font) Style() Style { return f.style }

// LocaleListID returns the id of the font's locale list.
func (f *Font) LocaleListID() uint32 { return f.localeID }

// Source returns the source the typeface has been loaded from.
func (f *Font) Source() string { return f.source }

// Typeface returns the typeface of f, loading it if necessary. If more than
// one goroutine loads concurrently, the first one to finish wins and all
// callers get the same typeface. If loading fails, the fallback typeface
// is used.
func (f *Font) Typeface() Typeface {
	if box := f.typeface.Load(); box != nil {
		return box.tf
	}
	tf, err := f.factory.LoadTypeface(f.source, f.vars)
	if err != nil || tf == nil {
		tracer().Errorf("cannot load typeface %s, using fallback: %v", f.source, err)
		tf = FallbackTypeface()
	}
	f.typeface.CompareAndSwap(nil, &typefaceBox{tf: tf})
	return f.typeface.Load().tf
}

// IsLoaded is true if the typeface has been materialized.
func (f *Font) IsLoaded() bool {
	return f.typeface.Load() != nil
}

// Axes returns the variation axes of the typeface.
func (f *Font) Axes() []AxisTag {
	return f.Typeface().Axes()
}

// SupportsAxis is true if the typeface has axis tag.
func (f *Font) SupportsAxis(tag AxisTag) bool {
	for _, a := range f.Axes() {
		if a == tag {
			return true
		}
	}
	return false
}

// AdjustedTypeface returns the typeface with 'wght' and 'ital' set. Values of
// -1 leave an axis alone. Instances are cached per font.
func (f *Font) AdjustedTypeface(wght int, ital int) Typeface {
	base := f.Typeface()
	if wght == -1 && ital == -1 {
		return base
	}
	key := adjustmentKey(wght, ital)
	f.mu.Lock()
	defer f.mu.Unlock()
	if tf, ok := f.adjusted[key]; ok {
		return tf
	}
	var vars []Variation
	if wght != -1 && f.SupportsAxis(TagWght) {
		vars = append(vars, Variation{Tag: TagWght, Value: float32(wght)})
	}
	if ital != -1 && f.SupportsAxis(TagItal) {
		vars = append(vars, Variation{Tag: TagItal, Value: float32(ital)})
	}
	tf := base
	if len(vars) > 0 {
		var err error
		if tf, err = base.WithVariations(vars); err != nil {
			tracer().Errorf("cannot adjust font %s: %v", f.source, err)
			tf = base
		}
	}
	if f.adjusted == nil {
		f.adjusted = make(map[uint32]Typeface)
	}
	f.adjusted[key] = tf
	return tf
}

func adjustmentKey(wght, ital int) uint32 {
	var key uint32
	if wght != -1 {
		key |= 1 | uint32(wght)<<3
	}
	if ital != -1 {
		key |= 1 << 1
		if ital == 1 {
			key |= 1 << 2
		}
	}
	return key
}

// WriteTo serializes the font's description. The typeface itself is
// represented by its source.
func (f *Font) WriteTo(w *flatbuf.Writer) {
	w.U16(f.style.Pack())
	w.String(LocaleListByID(f.localeID).String())
	w.String(f.source)
	w.U32(uint32(len(f.vars)))
	for _, v := range f.vars {
		w.U32(uint32(v.Tag))
		w.F32(v.Value)
	}
}

// ReadFont deserializes a font written by WriteTo. The typeface is loaded
// lazily by factory.
func ReadFont(r *flatbuf.Reader, factory TypefaceFactory) (*Font, error) {
	style := UnpackStyle(r.U16())
	locales := r.String()
	source := r.String()
	n := r.U32()
	if r.Err() != nil {
		return nil, core.WrapError(r.Err(), core.EINVALID, "cannot read font")
	}
	if int(n) > r.Remaining()/8 {
		return nil, core.Error(core.EINVALID, "font %s: bad variation count %d", source, n)
	}
	var vars []Variation
	for i := uint32(0); i < n; i++ {
		tag := AxisTag(r.U32())
		vars = append(vars, Variation{Tag: tag, Value: r.F32()})
	}
	if r.Err() != nil {
		return nil, core.WrapError(r.Err(), core.EINVALID, "cannot read font %s", source)
	}
	return NewLazyFont(source, vars, style, RegisterLocaleList(locales), factory), nil
}

// --- Faked fonts -----------------------------------------------------------

// FakedFont is a font selected for a requested style, together with the
// fakery necessary to emulate that style.
type FakedFont struct {
	Font   *Font
	Fakery Fakery
}

// Typeface returns the typeface to use for rendering, with variation axes
// adjusted if the fakery asks for it.
func (ff FakedFont) Typeface() Typeface {
	if ff.Fakery.HasAdjustment() {
		return ff.Font.AdjustedTypeface(int(ff.Fakery.WeightAdjust), int(ff.Fakery.ItalAdjust))
	}
	return ff.Font.Typeface()
}

// Extent returns the font-wide extent at a size.
func (ff FakedFont) Extent(size float32) Extent {
	return ff.Typeface().Extent(size, ff.Fakery)
}

// IsValid is false for the zero value.
func (ff FakedFont) IsValid() bool {
	return ff.Font != nil
}

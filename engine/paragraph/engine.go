package paragraph

import (
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/fallback"
	"github.com/npillmayer/parashape/core/locate/resources"
	"github.com/npillmayer/parashape/core/parameters"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/linebreak"
	"github.com/npillmayer/parashape/engine/measure"
	"github.com/npillmayer/parashape/engine/shaping"
	"github.com/npillmayer/parashape/engine/text/segment"
)

// Engine takes paragraphs from text to lines. An Engine is safe for
// concurrent use, whereas each Paragraph is processed by one goroutine at
// a time.
type Engine struct {
	collection  *fallback.Collection
	cache       *shaping.Cache
	breaker     *segment.WordBreaker
	hyphenators *hyphenation.Registry
	regs        *parameters.TypesettingRegisters
	measurer    *measure.Measurer
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the shaped piece cache. The default is the process-wide
// cache.
func WithCache(cache *shaping.Cache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithShaper makes the engine use a cache of its own, with pieces shaped
// by shaper.
func WithShaper(shaper glyphing.Shaper) Option {
	return func(e *Engine) {
		e.cache = shaping.NewCache(shaper)
	}
}

// WithWordBreaker sets the word breaker.
func WithWordBreaker(breaker *segment.WordBreaker) Option {
	return func(e *Engine) {
		e.breaker = breaker
	}
}

// WithHyphenators sets the hyphenators. The default registry loads
// patterns from the locations known to package resources.
func WithHyphenators(reg *hyphenation.Registry) Option {
	return func(e *Engine) {
		e.hyphenators = reg
	}
}

// WithRegisters sets the typesetting registers which provide the defaults
// for paints and hyphenation.
func WithRegisters(regs *parameters.TypesettingRegisters) Option {
	return func(e *Engine) {
		e.regs = regs
	}
}

// NewEngine creates an engine for a font collection.
func NewEngine(collection *fallback.Collection, opts ...Option) (*Engine, error) {
	if collection == nil {
		return nil, core.Error(core.EMISSING, "engine needs a font collection")
	}
	e := &Engine{collection: collection}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = shaping.DefaultCache()
	}
	if e.breaker == nil {
		e.breaker = segment.DefaultWordBreaker()
	}
	if e.hyphenators == nil {
		e.hyphenators = hyphenation.NewRegistry(resources.OpenHyphenationPatterns)
	}
	if e.regs == nil {
		e.regs = parameters.NewTypesettingRegisters()
	}
	e.measurer = measure.NewMeasurer(e.cache, e.breaker, e.hyphenators)
	return e, nil
}

// Collection returns the font collection of e.
func (e *Engine) Collection() *fallback.Collection {
	return e.collection
}

// Cache returns the shaped piece cache of e.
func (e *Engine) Cache() *shaping.Cache {
	return e.cache
}

// Registers returns the typesetting registers of e.
func (e *Engine) Registers() *parameters.TypesettingRegisters {
	return e.regs
}

// Strategy returns the line-breaking strategy set in the registers.
func (e *Engine) Strategy() linebreak.Strategy {
	return linebreak.Strategy(e.regs.N(parameters.P_LINEBREAKSTRATEGY))
}

// HyphenationFrequency returns the hyphenation frequency set in the
// registers.
func (e *Engine) HyphenationFrequency() linebreak.HyphenationFrequency {
	return linebreak.HyphenationFrequency(e.regs.N(parameters.P_HYPHENATIONFREQUENCY))
}

// NewParagraph creates a paragraph for text. Justification is taken from
// the registers.
func (e *Engine) NewParagraph(text []rune) *Paragraph {
	return &Paragraph{
		Text:      text,
		Justified: e.regs.B(parameters.P_JUSTIFIED),
	}
}

// NewPaint creates a paint for the collection of e, with size, scaling and
// spacing taken from the registers. An empty locales string selects the
// language register.
func (e *Engine) NewPaint(style font.Style, locales string, variant font.Variant) *shaping.Paint {
	regs := e.regs
	paint := shaping.NewPaint(e.collection, regs.D(parameters.P_FONTSIZE).Pixels())
	paint.Style = style
	paint.ScaleX = regs.F(parameters.P_SCALEX)
	paint.SkewX = regs.F(parameters.P_SKEWX)
	paint.LetterSpacing = regs.F(parameters.P_LETTERSPACING)
	paint.WordSpacing = regs.D(parameters.P_WORDSPACING).Pixels()
	if locales == "" {
		locales = regs.S(parameters.P_LANGUAGE)
	}
	paint.LocaleListID = font.RegisterLocaleList(locales)
	paint.Variant = variant
	return paint
}

// Itemize splits the text of p into runs of characters rendered by the
// same font families. It also sets the base paint of p, which is used for
// measuring if no style runs are given.
func (e *Engine) Itemize(p *Paragraph, style font.Style, locales string, variant font.Variant) ([]fallback.Run, error) {
	if err := p.enter(Itemizing, Idle); err != nil {
		return nil, err
	}
	p.paint = e.NewPaint(style, locales, variant)
	p.items = e.collection.Itemize(p.Text, style, p.paint.LocaleListID, variant, 0)
	tracer().Debugf("itemized %v into %d font runs", p, len(p.items))
	return p.items, nil
}

// Measure measures p with the given style runs, which have to cover the
// text of p without gaps. If runs is nil, the whole text is measured as a
// single run with the base paint of p. A paragraph may be measured again,
// e.g. with other styles, which drops its lines.
func (e *Engine) Measure(p *Paragraph, runs []measure.Run) (*measure.Paragraph, error) {
	if err := p.requireOneOf("measure", Itemizing, Measuring, Done); err != nil {
		return nil, err
	}
	if runs == nil && len(p.Text) > 0 {
		run := measure.StyleRun(core.Range{Start: 0, End: len(p.Text)}, p.paint, false)
		run.Hyphenation = e.HyphenationFrequency() != linebreak.HyphenationNone
		runs = []measure.Run{run}
	}
	if err := checkRuns(p.Text, runs); err != nil {
		return nil, err
	}
	opts := measure.Options{
		Layout: true,
		Bounds: p.UseBoundsForWidth,
		Hint:   p.measured,
	}
	if err := p.enter(Measuring, Itemizing, Measuring, Done); err != nil {
		return nil, err
	}
	for i := range runs {
		tracer().Debugf("%v: run %v", p, runs[i])
		opts.Hyphenation = opts.Hyphenation || runs[i].CanHyphenate()
	}
	p.runs = runs
	p.measured = e.measurer.Measure(p.Text, runs, opts)
	p.lines = nil
	return p.measured, nil
}

// checkRuns checks that runs cover text in order and without gaps.
func checkRuns(text []rune, runs []measure.Run) error {
	pos := 0
	for i := range runs {
		r := &runs[i]
		if r.Start != pos || r.End < r.Start || r.End > len(text) {
			return core.Error(core.EINVALID, "run %v does not continue at position %d", r, pos)
		}
		if r.Kind == measure.StyleRunKind && r.Paint == nil {
			return core.Error(core.EINVALID, "style run %v has no paint", r)
		}
		pos = r.End
	}
	if pos != len(text) {
		return core.Error(core.EINVALID, "runs end at %d, text at %d", pos, len(text))
	}
	return nil
}

// BreakLines breaks a measured paragraph into lines. It may be called
// repeatedly, e.g. for different line widths.
func (e *Engine) BreakLines(p *Paragraph, width linebreak.LineWidth, strategy linebreak.Strategy,
	frequency linebreak.HyphenationFrequency) (*linebreak.Result, error) {
	//
	if width == nil {
		return nil, core.Error(core.EINVALID, "line breaking needs a line width")
	}
	if err := p.enter(Breaking, Measuring, Done); err != nil {
		return nil, err
	}
	p.lines = linebreak.BreakIntoLines(p.Text, strategy, frequency, p.Justified, p.measured, width,
		p.TabStops, p.UseBoundsForWidth)
	p.state = Done
	tracer().Debugf("%v: %d lines", p, p.lines.Len())
	return p.lines, nil
}

// BuildShapedLayout positions the glyphs for a range of a measured
// paragraph. If rng is a line of p, the line's hyphen edits are applied.
func (e *Engine) BuildShapedLayout(p *Paragraph, rng core.Range) (*shaping.Layout, error) {
	if err := p.requireOneOf("build a layout", Measuring, Done); err != nil {
		return nil, err
	}
	if rng.Start < 0 || rng.End > len(p.Text) || rng.Start > rng.End {
		return nil, core.Error(core.EINVALID, "range %v outside of paragraph [0…%d)", rng, len(p.Text))
	}
	se, ee := hyphenation.NoStartEdit, hyphenation.NoEndEdit
	if isLine, flags := p.lineEdits(rng); isLine {
		se, ee = flags.Edit().Start(), flags.Edit().End()
	}
	return p.measured.BuildLayout(rng, rng, nil, se, ee), nil
}

package linebreak

import (
	"sort"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/measure"
)

// greedyBreaker fills lines one after the other.
type greedyBreaker struct {
	para              *measure.Paragraph
	lineWidth         LineWidth
	tabs              TabStops
	hyphenate         bool
	useBoundsForWidth bool
	breaks            []int // word-break candidates, ending with the paragraph's length
}

// lineFit is the outcome of filling a line.
type lineFit struct {
	end    int
	width  float64
	typ    hyphenation.Type
	hasTab bool
}

func breakGreedy(para *measure.Paragraph, lineWidth LineWidth, tabs TabStops, hyphenate,
	useBoundsForWidth bool) *Result {
	//
	g := &greedyBreaker{
		para:              para,
		lineWidth:         lineWidth,
		tabs:              tabs,
		hyphenate:         hyphenate,
		useBoundsForWidth: useBoundsForWidth,
		breaks:            wordBreaks(para),
	}
	result := &Result{}
	prev := hyphenation.DontBreak
	for start, line := 0, 0; start < para.Len(); line++ {
		fit := g.fillLine(start, float64(lineWidth.At(line)), prev)
		result.appendLine(para, start, fit.end, float32(fit.width), prev, fit.typ, fit.hasTab,
			useBoundsForWidth)
		start, prev = fit.end, fit.typ
	}
	return result
}

// wordBreaks collects the offsets of word breaks which are candidates for
// line breaks.
func wordBreaks(para *measure.Paragraph) []int {
	var breaks []int
	proc := para.CharProcessor()
	for r := range para.Runs {
		run := &para.Runs[r]
		proc.UpdateLocaleIfNecessary(run)
		for i := run.Start; i < run.End; i++ {
			proc.FeedChar(i, para.Text[i], para.Widths[i], run.CanBreak() || i+1 == run.End)
			next := i + 1
			if next != proc.NextWordBreak {
				continue
			}
			if run.Kind == measure.StyleRunKind || next == run.End || para.Widths[next] > 0 {
				breaks = append(breaks, next)
			}
		}
	}
	if len(breaks) == 0 || breaks[len(breaks)-1] != para.Len() {
		breaks = append(breaks, para.Len())
	}
	return breaks
}

// fillLine puts as much text as fits into a line starting at start. The
// line breaks at the last word break which fits. If there is none, it
// breaks at a hyphenation point, and if there is none either, between two
// grapheme clusters. At least one cluster is put on every line.
func (g *greedyBreaker) fillLine(start int, limit float64, prev hyphenation.Type) lineFit {
	text, widths := g.para.Text, g.para.Widths
	n := len(text)
	x := 0.0
	if se := hyphenation.EditForNextLine(prev); se != hyphenation.NoStartEdit {
		x = float64(g.para.MeasureWithEdits(core.Range{Start: start, End: start + 1}, se,
			hyphenation.NoEndEdit) - widths[start])
	}
	xs := make([]float64, 0, 64) // xs[k] is the width of the line before character start+k
	effective, hasTab := x, false
	best := lineFit{end: -1}
	b := sort.SearchInts(g.breaks, start+1)
	for i := start; i < n; i++ {
		xs = append(xs, x)
		c := text[i]
		if c == '\t' {
			x = float64(g.tabs.NextTab(float32(x)))
			hasTab = true
		} else {
			x += float64(widths[i])
		}
		if !measure.IsLineEndSpace(c) {
			effective = x
		}
		overflow := effective > limit
		if !overflow && b < len(g.breaks) && g.breaks[b] == i+1 {
			b++
			if g.fitsByBounds(start, i+1, limit) {
				best = lineFit{end: i + 1, width: effective, typ: hyphenation.DontBreak, hasTab: hasTab}
				continue
			}
			overflow = true
		}
		if !overflow {
			continue
		}
		if best.end > start {
			return best
		}
		if g.hyphenate {
			if fit, ok := g.hyphenFit(start, i, limit, xs); ok {
				fit.hasTab = hasTab
				return fit
			}
		}
		return g.desperateFit(start, i, limit, xs, hasTab)
	}
	return lineFit{end: n, width: effective, typ: hyphenation.DontBreak, hasTab: hasTab}
}

// fitsByBounds checks the ink bounds of line start…end against limit, if
// glyphs at the line's ends overhang.
func (g *greedyBreaker) fitsByBounds(start, end int, limit float64) bool {
	if !g.useBoundsForWidth {
		return true
	}
	trimmed := measure.TrimTrailingLineEndSpaces(g.para.Text, core.Range{Start: start, End: end})
	if trimmed.IsEmpty() || !g.para.HasOverhang(trimmed) {
		return true
	}
	return float64(g.para.Bounds(trimmed).Width()) <= limit
}

// hyphenFit finds the last hyphenation point after start and at or before
// i, where the line including the hyphen fits.
func (g *greedyBreaker) hyphenFit(start, i int, limit float64, xs []float64) (lineFit, bool) {
	hyphens := g.para.HyphenBreaks
	h := sort.Search(len(hyphens), func(k int) bool { return hyphens[k].Offset > i }) - 1
	for ; h >= 0 && hyphens[h].Offset > start; h-- {
		hb := hyphens[h]
		// re-measure the part of the word on this line, as the hyphen may kern
		ws := start
		if k := sort.SearchInts(g.breaks, hb.Offset) - 1; k >= 0 && g.breaks[k] > start {
			ws = g.breaks[k]
		}
		word := core.Range{Start: ws, End: hb.Offset}
		plain := float64(g.para.Advance(word))
		edited := float64(g.para.MeasureWithEdits(word, hyphenation.NoStartEdit,
			hyphenation.EditForThisLine(hb.Type)))
		if w := xs[hb.Offset-start] + edited - plain; w <= limit {
			return lineFit{end: hb.Offset, width: w, typ: hb.Type}, true
		}
	}
	return lineFit{}, false
}

// desperateFit breaks before the last cluster starting at or before i
// which fits, or after the first cluster if none fits.
func (g *greedyBreaker) desperateFit(start, i int, limit float64, xs []float64, hasTab bool) lineFit {
	widths := g.para.Widths
	for k := i; k > start; k-- {
		if widths[k] != 0 && xs[k-start] <= limit {
			return lineFit{end: k, width: xs[k-start], typ: hyphenation.BreakAndDontInsertHyphen, hasTab: hasTab}
		}
	}
	k := start + 1
	for k < len(widths) && widths[k] == 0 {
		k++
	}
	w := xs[0] + float64(g.para.Advance(core.Range{Start: start, End: k}))
	if k-start < len(xs) {
		w = xs[k-start]
	}
	typ := hyphenation.BreakAndDontInsertHyphen
	if k == len(widths) {
		typ = hyphenation.DontBreak
	}
	return lineFit{end: k, width: w, typ: typ, hasTab: hasTab}
}

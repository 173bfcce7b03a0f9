package linebreak

import (
	"math"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/measure"
)

// Scores. Overfull lines are worse than desperate breaks, which in turn are
// worse than anything else.
const (
	scoreInfinity  = math.MaxFloat32
	scoreOverfull  = 1e12
	scoreDesperate = 1e10
)

const (
	lastLinePenaltyMultiplier = 4.0
	linePenaltyMultiplier     = 2.0
	shrinkPenaltyMultiplier   = 4.0
	shrinkability             = 1.0 / 3.0 // of the width of a space
)

// candidate is a possible break. preBreak is the width of the paragraph up
// to the break, including characters which vanish at a break; postBreak
// excludes them but includes an inserted hyphen.
type candidate struct {
	offset         int
	preBreak       float64
	postBreak      float64
	penalty        float64
	preSpaceCount  int
	postSpaceCount int
	hyphenType     hyphenation.Type
	rtl            bool
}

// candidates holds the break candidates of a paragraph, in increasing
// order of offset, starting with a candidate at offset 0.
type candidates struct {
	list        []candidate
	spaceWidth  float32
	linePenalty float64
}

func newCandidates() *candidates {
	return &candidates{list: []candidate{{}}}
}

func (cs *candidates) pushWordBreak(offset int, preBreak, postBreak, penalty float64,
	spaceCount, postSpaceCount int, rtl bool) {
	//
	cs.list = append(cs.list, candidate{
		offset:         offset,
		preBreak:       preBreak,
		postBreak:      postBreak,
		penalty:        penalty,
		preSpaceCount:  spaceCount,
		postSpaceCount: postSpaceCount,
		hyphenType:     hyphenation.DontBreak,
		rtl:            rtl,
	})
}

func (cs *candidates) pushDesperate(offset int, width, score float64, spaceCount int, rtl bool) {
	cs.list = append(cs.list, candidate{
		offset:         offset,
		preBreak:       width,
		postBreak:      width,
		penalty:        score,
		preSpaceCount:  spaceCount,
		postSpaceCount: spaceCount,
		hyphenType:     hyphenation.BreakAndDontInsertHyphen,
		rtl:            rtl,
	})
}

func (cs *candidates) pushHyphenation(offset int, preBreak, postBreak, penalty float64,
	spaceCount int, t hyphenation.Type, rtl bool) {
	//
	cs.list = append(cs.list, candidate{
		offset:         offset,
		preBreak:       preBreak,
		postBreak:      postBreak,
		penalty:        penalty,
		preSpaceCount:  spaceCount,
		postSpaceCount: spaceCount,
		hyphenType:     t,
		rtl:            rtl,
	})
}

// desperateBreak is a break between grapheme clusters of a long word. width
// is measured from the start of the word.
type desperateBreak struct {
	offset int
	width  float64
	score  float64
}

// desperatePoints returns a break before every character of rng except the
// first, skipping characters of zero width, which are not at a cluster
// boundary.
func desperatePoints(para *measure.Paragraph, rng core.Range) []desperateBreak {
	var points []desperateBreak
	width := float64(para.Widths[rng.Start])
	for i := rng.Start + 1; i < rng.End; i++ {
		w := para.Widths[i]
		if w == 0 {
			continue
		}
		points = append(points, desperateBreak{offset: i, width: width, score: scoreDesperate})
		width += float64(w)
	}
	return points
}

// appendWithMerging adds hyphenation and desperate breaks of a word in
// increasing order of offset. At equal offsets, desperate breaks go first.
func (cs *candidates) appendWithMerging(hyphens []measure.HyphenBreak, desperates []desperateBreak,
	proc *measure.CharProcessor, hyphenPenalty float64, rtl bool) {
	//
	h, d := 0, 0
	for h < len(hyphens) || d < len(desperates) {
		if h == len(hyphens) || (d < len(desperates) && desperates[d].offset <= hyphens[h].Offset) {
			dp := desperates[d]
			cs.pushDesperate(dp.offset, proc.SumOfCharWidthsAtPrevWordBreak+dp.width, dp.score,
				proc.EffectiveSpaceCount, rtl)
			d++
			continue
		}
		hb := hyphens[h]
		cs.pushHyphenation(hb.Offset, proc.SumOfCharWidths-float64(hb.Second),
			proc.SumOfCharWidthsAtPrevWordBreak+float64(hb.First), hyphenPenalty,
			proc.EffectiveSpaceCount, hb.Type, rtl)
		h++
	}
}

// penalties computes the hyphen penalty and the line penalty for a run.
func penalties(r *measure.Run, lineWidth LineWidth, frequency HyphenationFrequency,
	justified bool) (hyphenPenalty, linePenalty float64) {
	//
	paint := r.Paint
	// a heuristic that seems to perform well
	hyphenPenalty = 0.5 * float64(paint.Size) * float64(paint.Scale()) * float64(lineWidth.At(0))
	if frequency == HyphenationNormal {
		hyphenPenalty *= 4
	}
	if justified {
		// hyphenate eagerly, "normal" in justified text is "full" in ragged text
		hyphenPenalty *= 0.25
	} else {
		linePenalty = hyphenPenalty * linePenaltyMultiplier
	}
	return
}

// populateCandidates collects the break candidates of a paragraph.
func populateCandidates(para *measure.Paragraph, lineWidth LineWidth, frequency HyphenationFrequency,
	justified bool) *candidates {
	//
	cs := newCandidates()
	minWidth := float64(lineWidth.Min())
	proc := para.CharProcessor()
	hyphens := para.HyphenBreaks
	hy := 0
	for r := range para.Runs {
		run := &para.Runs[r]
		rtl := run.RTL
		var hyphenPenalty float64
		if run.Kind == measure.StyleRunKind && run.CanBreak() {
			var linePenalty float64
			hyphenPenalty, linePenalty = penalties(run, lineWidth, frequency, justified)
			cs.linePenalty = math.Max(cs.linePenalty, linePenalty)
		}
		proc.UpdateLocaleIfNecessary(run)
		for i := run.Start; i < run.End; i++ {
			core.Assert(para.Text[i] != '\t', "TAB at %d not supported by optimal line breaking", i)
			// lines may break at the end of a run, even if the run forbids breaks
			canBreak := run.CanBreak() || i+1 == run.End
			proc.FeedChar(i, para.Text[i], para.Widths[i], canBreak)
			next := i + 1
			if next != proc.NextWordBreak {
				continue
			}
			ctx := proc.ContextRange()
			from := hy
			for hy < len(hyphens) && hyphens[hy].Offset < ctx.End {
				hy++
			}
			var desperates []desperateBreak
			if proc.WidthFromLastWordBreak() > minWidth {
				desperates = desperatePoints(para, ctx)
			}
			to := from
			if frequency != HyphenationNone && run.CanHyphenate() {
				to = hy
			}
			cs.appendWithMerging(hyphens[from:to], desperates, proc, hyphenPenalty, rtl)
			// zero-width characters within replacement runs are no break candidates
			if run.Kind == measure.StyleRunKind || next == run.End || para.Widths[next] > 0 {
				penalty := hyphenPenalty * float64(proc.WordBreakBadness())
				cs.pushWordBreak(next, proc.SumOfCharWidths, proc.EffectiveWidth, penalty,
					proc.RawSpaceCount, proc.EffectiveSpaceCount, rtl)
			}
		}
	}
	cs.spaceWidth = proc.SpaceWidth
	return cs
}

// --- Dynamic programming ---------------------------------------------------

// breakData is the best way found to break before a candidate.
type breakData struct {
	score float64 // of the best break sequence ending here
	prev  int     // index of the previous break candidate
	line  int     // number of lines before this break
}

type optimizer struct {
	para              *measure.Paragraph
	cands             *candidates
	lineWidth         LineWidth
	strategy          Strategy
	justified         bool
	useBoundsForWidth bool
}

// computeBreaks finds the break sequence of least total score. For every
// candidate i, all candidates j since the first one which gives a line
// j…i that is not overfull are considered. The search for j stops early if
// no remaining j can beat the best score found so far; this relies on the
// width score growing with the free space of a line. Of equal scores, the
// one with the earliest predecessor wins.
func (opt *optimizer) computeBreaks() []breakData {
	cands := opt.cands.list
	n := len(cands)
	data := make([]breakData, 0, n)
	data = append(data, breakData{score: 0, prev: 0, line: 0})
	maxShrink := 0.0
	if opt.justified {
		maxShrink = shrinkability * float64(opt.cands.spaceWidth)
	}
	active := 0
	for i := 1; i < n; i++ {
		atEnd := i == n-1
		best, bestPrev := float64(scoreInfinity), 0
		lastLine := data[active].line
		width := float64(opt.lineWidth.At(lastLine))
		leftEdge := cands[i].postBreak - width
		bestHope := 0.0
		for j := active; j < i; j++ {
			if line := data[j].line; line != lastLine {
				if w := float64(opt.lineWidth.At(line)); w != width {
					width = w
					leftEdge = cands[i].postBreak - width
					bestHope = 0
				}
				lastLine = line
			}
			jScore := data[j].score
			if jScore+bestHope >= best {
				continue
			}
			delta := cands[j].preBreak - leftEdge
			if opt.useBoundsForWidth && delta >= 0 {
				delta = opt.boundsDelta(j, i, width, delta)
			}
			var widthScore, additional float64
			if (atEnd || !opt.justified) && delta < 0 {
				widthScore = scoreOverfull
			} else if atEnd && opt.strategy != Balanced {
				// increase the penalty for a hyphen on the last line
				additional = lastLinePenaltyMultiplier * cands[j].penalty
			} else {
				widthScore = delta * delta
				if delta < 0 {
					spaces := float64(cands[i].postSpaceCount - cands[j].preSpaceCount)
					if -delta < maxShrink*spaces {
						widthScore *= shrinkPenaltyMultiplier
					} else {
						widthScore = scoreOverfull
					}
				}
			}
			if delta < 0 {
				active = j + 1
			} else {
				bestHope = widthScore
			}
			if score := jScore + widthScore + additional; score < best {
				best, bestPrev = score, j
			}
		}
		data = append(data, breakData{
			score: best + cands[i].penalty + opt.cands.linePenalty,
			prev:  bestPrev,
			line:  data[bestPrev].line + 1,
		})
	}
	return data
}

// boundsDelta replaces the free space of line j…i by the space left by its
// ink bounds, if glyphs at the line's ends overhang and the line is not
// hyphenated.
func (opt *optimizer) boundsDelta(j, i int, width, delta float64) float64 {
	cands := opt.cands.list
	if cands[i].hyphenType != hyphenation.DontBreak || cands[j].hyphenType != hyphenation.DontBreak {
		return delta
	}
	rng := core.Range{Start: cands[j].offset, End: cands[i].offset}
	trimmed := measure.TrimTrailingLineEndSpaces(opt.para.Text, rng)
	if trimmed.IsEmpty() || !opt.para.HasOverhang(trimmed) {
		return delta
	}
	if d := width - float64(opt.para.Bounds(trimmed).Width()); d < 0 {
		return d
	}
	return delta
}

// finishBreaks follows the chain of best predecessors back from the end of
// the paragraph.
func (opt *optimizer) finishBreaks(data []breakData) *Result {
	cands := opt.cands.list
	result := &Result{}
	for i := len(cands) - 1; i > 0; i = data[i].prev {
		this, prev := cands[i], cands[data[i].prev]
		w := float32(this.postBreak - prev.preBreak)
		result.appendLine(opt.para, prev.offset, this.offset, w, prev.hyphenType, this.hyphenType,
			false, opt.useBoundsForWidth)
	}
	result.reverse()
	return result
}

func breakOptimal(para *measure.Paragraph, strategy Strategy, frequency HyphenationFrequency,
	justified bool, lineWidth LineWidth, useBoundsForWidth bool) *Result {
	//
	opt := &optimizer{
		para:              para,
		cands:             populateCandidates(para, lineWidth, frequency, justified),
		lineWidth:         lineWidth,
		strategy:          strategy,
		justified:         justified,
		useBoundsForWidth: useBoundsForWidth,
	}
	tracer().Debugf("optimal line breaking with %d candidates", len(opt.cands.list))
	return opt.finishBreaks(opt.computeBreaks())
}

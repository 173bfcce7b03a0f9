package measure

import (
	"math"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/engine/text/segment"
)

// Cursor positioning. Within a cluster of several graphemes, e.g. a
// ligature, every grapheme gets an equal share of the cluster's advance.

// RunAdvance returns the horizontal distance from the start of rng to
// offset.
func (para *Paragraph) RunAdvance(rng core.Range, offset int) float32 {
	para.checkRange(rng)
	core.Assert(offset >= rng.Start && offset <= rng.End, "offset %d outside of %v", offset, rng)
	graphemes := segment.GraphemeBoundaries(para.Text, rng)
	return para.runAdvance(rng, graphemes, rng.Start, offset)
}

// runAdvance sums advances from start to offset. start has to start a
// cluster.
func (para *Paragraph) runAdvance(rng core.Range, graphemes []bool, start, offset int) float32 {
	var advance, clusterWidth float32
	lastCluster := start
	for i := start; i < offset; i++ {
		if w := para.Widths[i]; w != 0 {
			advance += w
			lastCluster = i
			clusterWidth = w
		}
	}
	if offset >= rng.End || isControl(para.Text[offset]) || para.Widths[offset] != 0 {
		return advance
	}
	// offset is within a cluster
	next := offset + 1
	for next < rng.End && para.Widths[next] == 0 && !isControl(para.Text[next]) {
		next++
	}
	var count, after int
	for i := lastCluster; i < next; i++ {
		if graphemes[i-rng.Start] {
			count++
			if i >= offset {
				after++
			}
		}
	}
	if count > 0 {
		advance -= clusterWidth * float32(after) / float32(count)
	}
	return advance
}

// OffsetForAdvance returns the grapheme boundary within rng closest to a
// horizontal distance from the start of rng.
func (para *Paragraph) OffsetForAdvance(rng core.Range, advance float32) int {
	para.checkRange(rng)
	if rng.IsEmpty() {
		return rng.Start
	}
	graphemes := segment.GraphemeBoundaries(para.Text, rng)
	isBoundary := func(i int) bool {
		return i >= rng.End || graphemes[i-rng.Start]
	}
	var x, xLastClusterStart, xSearchStart float32
	lastClusterStart, searchStart := rng.Start, rng.Start
	for i := rng.Start; i < rng.End; i++ {
		if isBoundary(i) {
			searchStart, xSearchStart = lastClusterStart, xLastClusterStart
		}
		if w := para.Widths[i]; w != 0 {
			lastClusterStart, xLastClusterStart = i, x
			x += w
			if x > advance {
				break
			}
		}
	}
	best, bestDist := searchStart, float32(math.MaxFloat32)
	for i := searchStart; i <= rng.End; i++ {
		if !isBoundary(i) {
			continue
		}
		delta := para.runAdvance(rng, graphemes, searchStart, i) + xSearchStart - advance
		if dist := abs32(delta); dist < bestDist {
			best, bestDist = i, dist
		}
		if delta >= 0 {
			break
		}
	}
	return best
}

// isControl is true for ASCII control and bidi formatting characters.
func isControl(c rune) bool {
	return c <= 0x1F || c == 0x061C || c == 0x200E || c == 0x200F ||
		(0x202A <= c && c <= 0x202E) || (0x2066 <= c && c <= 0x2069)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

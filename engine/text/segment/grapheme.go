package segment

import (
	"github.com/go-text/typesetting/segmenter"
	"github.com/npillmayer/parashape/core"
)

// GraphemeBoundaries reports for every position of text[rng] whether a
// grapheme cluster starts there. Index 0 of the result belongs to
// rng.Start, which always starts a cluster.
func GraphemeBoundaries(text []rune, rng core.Range) []bool {
	core.Assert(rng.Start >= 0 && rng.End <= len(text) && rng.Start <= rng.End,
		"grapheme range %v out of text bounds", rng)
	bounds := make([]bool, rng.Len())
	if rng.IsEmpty() {
		return bounds
	}
	var seg segmenter.Segmenter
	seg.Init(text[rng.Start:rng.End])
	iter := seg.GraphemeIterator()
	for iter.Next() {
		g := iter.Grapheme()
		if g.Offset < len(bounds) {
			bounds[g.Offset] = true
		}
	}
	bounds[0] = true
	return bounds
}

// IsGraphemeBoundary is true if position offset of text[rng] is between
// two grapheme clusters. The start and end of rng are always boundaries.
func IsGraphemeBoundary(text []rune, rng core.Range, offset int) bool {
	if offset <= rng.Start || offset >= rng.End {
		return true
	}
	// Clusters never span a space or a line separator, which keeps the
	// context small.
	start, end := offset-1, offset+1
	for start > rng.Start && !isClusterStop(text[start]) {
		start--
	}
	for end < rng.End && !isClusterStop(text[end-1]) {
		end++
	}
	return GraphemeBoundaries(text, core.Range{Start: start, End: end})[offset-start]
}

func isClusterStop(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

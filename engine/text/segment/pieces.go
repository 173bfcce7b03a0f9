package segment

import (
	"github.com/npillmayer/parashape/core"
)

// Piece is a part of a directional run which is shaped on its own.
// Context is the surrounding text handed to the shaper, Range is the part
// to be shaped.
type Piece struct {
	Context core.Range
	core.Range
}

// Pieces splits a directional run text[rng] into word-sized pieces. Piece
// boundaries are positions where no kerning or complex script processing
// is expected: after spaces and before CJK ideographs. This is a heuristic,
// but accurate most of the time, and it keeps pieces short enough to be
// cached.
//
// For right-to-left runs, pieces are returned from the end of rng
// backwards, i.e. in visual order. Piece contexts do not reach beyond rng.
func Pieces(text []rune, rng core.Range, rtl bool) []Piece {
	return ClippedPieces(text, rng, rng, rtl)
}

// ClippedPieces is like Pieces, but lets piece contexts extend to clip,
// which has to contain rng. Use it to shape part of a run in the context of
// the whole run.
func ClippedPieces(text []rune, rng, clip core.Range, rtl bool) []Piece {
	core.Assert(rng.Start >= 0 && rng.End <= len(text) && rng.Start <= rng.End,
		"piece range %v out of text bounds", rng)
	core.Assert(clip.ContainsRange(rng), "piece range %v outside of clip range %v", rng, clip)
	var pieces []Piece
	mk := func(start, end int) Piece {
		ctx := core.Range{Start: PrevPieceBoundary(text, start), End: NextPieceBoundary(text, end)}
		return Piece{Context: ctx.Intersect(clip), Range: core.Range{Start: start, End: end}}
	}
	if rtl {
		for end := rng.End; end > rng.Start; {
			start := max(PrevPieceBoundary(text, end), rng.Start)
			pieces = append(pieces, mk(start, end))
			end = start
		}
		return pieces
	}
	for start := rng.Start; start < rng.End; {
		end := min(NextPieceBoundary(text, start), rng.End)
		pieces = append(pieces, mk(start, end))
		start = end
	}
	return pieces
}

// PrevPieceBoundary returns the piece boundary before offset. It is either
// less than offset or 0.
func PrevPieceBoundary(text []rune, offset int) int {
	if offset == 0 {
		return 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	if isPieceBreakBefore(text[offset-1]) {
		return offset - 1
	}
	for i := offset - 1; i > 0; i-- {
		if isPieceBreakBefore(text[i]) || isPieceBreakAfter(text[i-1]) {
			return i
		}
	}
	return 0
}

// NextPieceBoundary returns the piece boundary after offset. It is either
// greater than offset or len(text).
func NextPieceBoundary(text []rune, offset int) int {
	if offset >= len(text) {
		return len(text)
	}
	if isPieceBreakAfter(text[offset]) {
		return offset + 1
	}
	for i := offset + 1; i < len(text); i++ {
		// isPieceBreakAfter(text[i-1]) has been checked in the previous step
		if isPieceBreakBefore(text[i]) {
			return i
		}
	}
	return len(text)
}

func isPieceBreakAfter(r rune) bool {
	return r == ' ' || (0x2000 <= r && r <= 0x200A) || r == 0x3000
}

// Kana is not included, as sophisticated fonts may kern it.
func isPieceBreakBefore(r rune) bool {
	return isPieceBreakAfter(r) || (0x3400 <= r && r <= 0x9FFF)
}

// IsWordSpace is true for characters receiving word spacing.
func IsWordSpace(r rune) bool {
	return r == ' ' || r == 0x00A0
}

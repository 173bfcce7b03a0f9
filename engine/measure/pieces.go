package measure

import (
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/shaping"
	"github.com/npillmayer/parashape/engine/text/segment"
)

// Pieces is a record of the shaped pieces of a paragraph, keyed by their
// position within the paragraph. Paints are stored once and referenced by
// index.
//
// Pieces are filled while measuring and are read-only afterwards.
type Pieces struct {
	paints  []*shaping.Paint
	entries map[recordKey]recorded
}

type recordKey struct {
	rng   core.Range
	rtl   bool
	edit  hyphenation.Edit
	paint int
}

type recorded struct {
	piece  *shaping.Piece
	bounds font.Rect
}

func newPieces() *Pieces {
	return &Pieces{entries: make(map[recordKey]recorded)}
}

// Len returns the number of recorded pieces.
func (ps *Pieces) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.entries)
}

// findPaint returns the index of a paint equal to p, or -1.
func (ps *Pieces) findPaint(p *shaping.Paint) int {
	for i, q := range ps.paints {
		if q.Equal(p) {
			return i
		}
	}
	return -1
}

func (ps *Pieces) add(rng core.Range, rtl bool, edit hyphenation.Edit, paint *shaping.Paint,
	piece *shaping.Piece, bounds font.Rect) {
	//
	id := ps.findPaint(paint)
	if id < 0 {
		id = len(ps.paints)
		ps.paints = append(ps.paints, paint)
	}
	key := recordKey{rng: rng, rtl: rtl, edit: edit, paint: id}
	if old, ok := ps.entries[key]; ok && old.bounds.IsValid() && !bounds.IsValid() {
		bounds = old.bounds
	}
	ps.entries[key] = recorded{piece: piece, bounds: bounds}
}

func (ps *Pieces) find(rng core.Range, rtl bool, edit hyphenation.Edit, paint *shaping.Paint,
	needsBounds bool) (*shaping.Piece, font.Rect, bool) {
	//
	if ps == nil {
		return nil, font.Rect{}, false
	}
	id := ps.findPaint(paint)
	if id < 0 {
		return nil, font.Rect{}, false
	}
	rec, ok := ps.entries[recordKey{rng: rng, rtl: rtl, edit: edit, paint: id}]
	if !ok {
		return nil, font.Rect{}, false
	}
	bounds := rec.bounds
	if needsBounds && !bounds.IsValid() {
		bounds = rec.piece.Bounds(paint)
	}
	return rec.piece, bounds, true
}

// --- Piece source ----------------------------------------------------------

// pieceSource delivers the shaped pieces of a paragraph, looking them up in
// recorded pieces first and in the cache second. If record is set, pieces
// are recorded.
type pieceSource struct {
	cache  *shaping.Cache
	text   []rune
	known  *Pieces
	record *Pieces
}

// pieceFunc receives a piece covering rng of the paragraph. extra is the
// word spacing to add to it.
type pieceFunc func(p *shaping.Piece, rng core.Range, extra float32, bounds font.Rect)

// each delivers the pieces of text[rng], shaped with the settings of style
// run r. Piece contexts are clipped to clip. Hyphen edits apply to the
// start and the end of rng only.
func (src pieceSource) each(r *Run, paint *shaping.Paint, rng, clip core.Range,
	startEdit hyphenation.StartEdit, endEdit hyphenation.EndEdit, needsBounds bool, fn pieceFunc) {
	//
	if rng.IsEmpty() {
		return
	}
	for _, pc := range segment.ClippedPieces(src.text, rng, clip, r.RTL) {
		se, ee := hyphenation.NoStartEdit, hyphenation.NoEndEdit
		if pc.Start == rng.Start {
			se = startEdit
		}
		if pc.End == rng.End {
			ee = endEdit
		}
		edit := hyphenation.PackEdit(se, ee)
		var extra float32
		if pc.Len() == 1 && segment.IsWordSpace(src.text[pc.Start]) {
			extra = paint.WordSpacing
		}
		piece := pc.Range
		if p, bounds, ok := src.known.find(piece, r.RTL, edit, paint, needsBounds); ok {
			if src.record != nil && src.record != src.known {
				src.record.add(piece, r.RTL, edit, paint, p, bounds)
			}
			fn(p, piece, extra, bounds)
			continue
		}
		ctx := pc.Context
		src.cache.GetOrCreate(src.text[ctx.Start:ctx.End], piece.Shift(-ctx.Start), paint, r.RTL,
			se, ee, needsBounds, func(p *shaping.Piece, _ *shaping.Paint, bounds font.Rect) {
				if src.record != nil {
					src.record.add(piece, r.RTL, edit, paint, p, bounds)
				}
				fn(p, piece, extra, bounds)
			})
	}
}

// measure returns the advance of text[rng] in the style of run r.
func (src pieceSource) measure(r *Run, rng core.Range, startEdit hyphenation.StartEdit,
	endEdit hyphenation.EndEdit) float32 {
	//
	var advance float32
	src.each(r, r.Paint, rng, r.Range, startEdit, endEdit, false,
		func(p *shaping.Piece, _ core.Range, extra float32, _ font.Rect) {
			advance += p.Advance + extra
		})
	return advance
}

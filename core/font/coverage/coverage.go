/*
Package coverage holds compact sets of Unicode code-points, used to record
which characters a font is able to render.

A CodePointSet is a two-level index: code-points are grouped into pages of
256 values, each page is either the shared all-zero page or a bitmap of
8 elements of 32 bits. Pages are indexed by a table of uint16 values, thus
membership tests and next-set-bit queries never touch more than one page
bitmap plus the page table. Sets are immutable after construction.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package coverage

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/flatbuf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.fonts")
}

// NotFound is returned from NextSetBit if no further code-point is contained.
const NotFound = ^uint32(0)

// MaxCapacity is the exclusive upper bound for values in a set.
const MaxCapacity = 0xFFFFFF

const (
	logValuesPerPage = 8
	pageMask         = 1<<logValuesPerPage - 1
	logBitsPerEl     = 5
	elMask           = 1<<logBitsPerEl - 1
	elsPerPage       = 1 << (logValuesPerPage - logBitsPerEl)
	elAllOnes        = ^uint32(0)
	elFirst          = uint32(1) << elMask
	noZeroPage       = 0xFFFF
)

// Range is a half-open interval [Start, End) of code-points.
type Range struct {
	Start, End uint32
}

func (r Range) String() string {
	return fmt.Sprintf("[%#x,%#x)", r.Start, r.End)
}

// CodePointSet is an immutable set of code-points.
// The zero value is an empty set.
type CodePointSet struct {
	maxVal   uint32
	zeroPage uint16
	indices  []uint16
	bitmaps  []uint32
}

// New creates a set from a list of ranges. Ranges have to be sorted in
// ascending order and must not overlap. Values at or beyond MaxCapacity
// make the set empty, and so does an empty list of ranges.
func New(ranges []Range) *CodePointSet {
	set := &CodePointSet{}
	if len(ranges) == 0 {
		return set
	}
	maxVal := ranges[len(ranges)-1].End
	if maxVal >= MaxCapacity {
		tracer().Errorf("code-point set exceeds capacity: %#x", maxVal)
		return set
	}
	for i, r := range ranges {
		core.Assert(r.Start <= r.End, "range %v has negative size", r)
		if i > 0 {
			core.Assert(ranges[i-1].End <= r.Start, "ranges %v and %v out of order", ranges[i-1], r)
		}
	}
	set.maxVal = maxVal
	set.indices = make([]uint16, (maxVal+pageMask)>>logValuesPerPage)
	set.bitmaps = make([]uint32, numPages(ranges)*elsPerPage)
	set.zeroPage = noZeroPage
	var nonzeroPageEnd, currentPage uint32
	for _, r := range ranges {
		if r.Start == r.End {
			continue
		}
		startPage := r.Start >> logValuesPerPage
		endPage := (r.End - 1) >> logValuesPerPage
		if startPage >= nonzeroPageEnd {
			if startPage > nonzeroPageEnd {
				if set.zeroPage == noZeroPage {
					set.zeroPage = uint16(currentPage * elsPerPage)
					currentPage++
				}
				for j := nonzeroPageEnd; j < startPage; j++ {
					set.indices[j] = set.zeroPage
				}
			}
			set.indices[startPage] = uint16(currentPage * elsPerPage)
			currentPage++
		}
		index := (currentPage-1)*elsPerPage + (r.Start&pageMask)>>logBitsPerEl
		nElements := (r.End - (r.Start &^ elMask) + elMask) >> logBitsPerEl
		lastMask := elAllOnes << ((^r.End + 1) & elMask)
		if nElements == 1 {
			set.bitmaps[index] |= (elAllOnes >> (r.Start & elMask)) & lastMask
		} else {
			set.bitmaps[index] |= elAllOnes >> (r.Start & elMask)
			for j := uint32(1); j < nElements-1; j++ {
				set.bitmaps[index+j] = elAllOnes
			}
			set.bitmaps[index+nElements-1] |= lastMask
		}
		for j := startPage + 1; j < endPage+1; j++ {
			set.indices[j] = uint16(currentPage * elsPerPage)
			currentPage++
		}
		nonzeroPageEnd = endPage + 1
	}
	return set
}

// numPages counts the bitmap pages needed for ranges, including a single
// shared zero page if any gap exists.
func numPages(ranges []Range) uint32 {
	haveZeroPage := false
	var nonzeroPageEnd, n uint32
	for _, r := range ranges {
		if r.Start == r.End {
			continue
		}
		startPage := r.Start >> logValuesPerPage
		endPage := (r.End - 1) >> logValuesPerPage
		if startPage >= nonzeroPageEnd {
			if startPage > nonzeroPageEnd && !haveZeroPage {
				haveZeroPage = true
				n++
			}
			n++
		}
		n += endPage - startPage
		nonzeroPageEnd = endPage + 1
	}
	return n
}

// FromRunes creates a set from a list of sorted, inclusive rune intervals.
func FromRunes(intervals [][2]rune) *CodePointSet {
	ranges := make([]Range, 0, len(intervals))
	for _, iv := range intervals {
		if iv[0] < 0 || iv[1] < iv[0] {
			continue
		}
		r := Range{Start: uint32(iv[0]), End: uint32(iv[1]) + 1}
		if n := len(ranges); n > 0 && ranges[n-1].End >= r.Start {
			if r.End > ranges[n-1].End {
				ranges[n-1].End = r.End
			}
			continue
		}
		ranges = append(ranges, r)
	}
	return New(ranges)
}

// Contains returns true if ch is a member of the set.
func (set *CodePointSet) Contains(ch uint32) bool {
	if set == nil || ch >= set.maxVal {
		return false
	}
	page := set.bitmaps[set.indices[ch>>logValuesPerPage]:]
	index := ch & pageMask
	return page[index>>logBitsPerEl]&(elFirst>>(index&elMask)) != 0
}

// ContainsRune is a convenience variant of Contains.
func (set *CodePointSet) ContainsRune(r rune) bool {
	if r < 0 {
		return false
	}
	return set.Contains(uint32(r))
}

// Len is one more than the largest value in the set, or 0 for an empty set.
func (set *CodePointSet) Len() uint32 {
	if set == nil {
		return 0
	}
	return set.maxVal
}

// IsEmpty returns true if the set does not contain any value.
func (set *CodePointSet) IsEmpty() bool {
	return set == nil || set.maxVal == 0
}

// NextSetBit returns the smallest member ≥ from, or NotFound.
func (set *CodePointSet) NextSetBit(from uint32) uint32 {
	if set == nil || from >= set.maxVal {
		return NotFound
	}
	fromPage := from >> logValuesPerPage
	bitmap := set.bitmaps[set.indices[fromPage]:]
	offset := (from & pageMask) >> logBitsPerEl
	if e := bitmap[offset] & (elAllOnes >> (from & elMask)); e != 0 {
		return from&^elMask + uint32(bits.LeadingZeros32(e))
	}
	for j := offset + 1; j < elsPerPage; j++ {
		if e := bitmap[j]; e != 0 {
			return from&^pageMask + j<<logBitsPerEl + uint32(bits.LeadingZeros32(e))
		}
	}
	maxPage := (set.maxVal + pageMask) >> logValuesPerPage
	for page := fromPage + 1; page < maxPage; page++ {
		index := set.indices[page]
		if index == set.zeroPage {
			continue
		}
		bitmap = set.bitmaps[index:]
		for j := uint32(0); j < elsPerPage; j++ {
			if e := bitmap[j]; e != 0 {
				return page<<logValuesPerPage + j<<logBitsPerEl + uint32(bits.LeadingZeros32(e))
			}
		}
	}
	return NotFound
}

// Ranges reconstructs the list of maximal ranges contained in the set.
func (set *CodePointSet) Ranges() []Range {
	var ranges []Range
	if set.IsEmpty() {
		return ranges
	}
	for ch := set.NextSetBit(0); ch != NotFound; {
		end := ch + 1
		for end < set.maxVal && set.Contains(end) {
			end++
		}
		ranges = append(ranges, Range{Start: ch, End: end})
		ch = set.NextSetBit(end)
	}
	return ranges
}

func (set *CodePointSet) String() string {
	if set.IsEmpty() {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{")
	for i, r := range set.Ranges() {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(r.String())
	}
	b.WriteString("}")
	return b.String()
}

// --- Serialization ---------------------------------------------------------

// WriteTo appends the set to a flat buffer.
func (set *CodePointSet) WriteTo(w *flatbuf.Writer) {
	if set.IsEmpty() {
		w.U32(0)
		return
	}
	w.U32(set.maxVal)
	w.U16(set.zeroPage)
	w.U16Array(set.indices)
	w.U32Array(set.bitmaps)
}

// ReadFrom decodes a set written by WriteTo. The bitmap pages of the
// returned set may share memory with the reader's buffer.
func ReadFrom(r *flatbuf.Reader) (*CodePointSet, error) {
	set := &CodePointSet{}
	if set.maxVal = r.U32(); set.maxVal == 0 {
		return set, r.Err()
	}
	set.zeroPage = r.U16()
	set.indices = r.U16Array()
	set.bitmaps = r.U32Array()
	if err := r.Err(); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read code-point set")
	}
	if uint32(len(set.indices)) != (set.maxVal+pageMask)>>logValuesPerPage {
		return nil, core.Error(core.EINVALID, "code-point set: page table has %d entries for max %#x",
			len(set.indices), set.maxVal)
	}
	for _, ix := range set.indices {
		if int(ix)+elsPerPage > len(set.bitmaps) {
			return nil, core.Error(core.EINVALID, "code-point set: page index %d out of range", ix)
		}
	}
	return set, nil
}

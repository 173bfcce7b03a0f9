package fallback

import (
	"fmt"
	"strings"
)

// MaxFamilyMatches is the number of equally good families kept per run.
const MaxFamilyMatches = 7

// FamilyMatch is an ordered set of family indexes, all of which scored
// equally well for the characters of a run. The first entry is the
// preferred family.
type FamilyMatch struct {
	indexes [MaxFamilyMatches]uint8
	n       uint8
}

// MatchOf creates a family match from family indexes. Indexes beyond
// MaxFamilyMatches are dropped.
func MatchOf(indexes ...int) FamilyMatch {
	var m FamilyMatch
	for _, inx := range indexes {
		m.add(uint8(inx))
	}
	return m
}

func (m *FamilyMatch) add(inx uint8) {
	if int(m.n) < MaxFamilyMatches {
		m.indexes[m.n] = inx
		m.n++
	}
}

func (m *FamilyMatch) reset() {
	*m = FamilyMatch{}
}

// Len returns the number of families in m.
func (m FamilyMatch) Len() int {
	return int(m.n)
}

// At returns the i-th family index.
func (m FamilyMatch) At(i int) int {
	if i >= int(m.n) {
		panic(fmt.Sprintf("family match index out of range: %d", i))
	}
	return int(m.indexes[i])
}

// Contains is true if family index inx is part of m.
func (m FamilyMatch) Contains(inx int) bool {
	for i := 0; i < int(m.n); i++ {
		if int(m.indexes[i]) == inx {
			return true
		}
	}
	return false
}

// Intersect returns the family indexes of m which are also part of o, in
// the order of m.
func (m FamilyMatch) Intersect(o FamilyMatch) FamilyMatch {
	var r FamilyMatch
	for i := 0; i < int(m.n); i++ {
		if o.Contains(int(m.indexes[i])) {
			r.add(m.indexes[i])
		}
	}
	return r
}

// Indexes returns the family indexes as a slice.
func (m FamilyMatch) Indexes() []int {
	r := make([]int, m.n)
	for i := range r {
		r[i] = int(m.indexes[i])
	}
	return r
}

func (m FamilyMatch) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < int(m.n); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", m.indexes[i])
	}
	b.WriteByte(']')
	return b.String()
}

// Run is a range of text [Start…End), measured in runes, together with the
// families able to render it.
type Run struct {
	Families FamilyMatch
	Start    int
	End      int
}

func (r Run) String() string {
	return fmt.Sprintf("run[%d…%d)%v", r.Start, r.End, r.Families)
}

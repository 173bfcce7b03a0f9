package fontregistry

import (
	"sync"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/flatbuf"
	"github.com/npillmayer/parashape/core/font"
)

// FontHandle identifies a font within an arena.
type FontHandle uint32

// FamilyHandle identifies a family within an arena.
type FamilyHandle uint32

// arenaMagic starts every serialized arena.
const arenaMagic = 0x70617261 // "para"

// Arena owns fonts and families and refers to them by handle. Adding the
// same font or family twice returns the same handle. Arenas only grow and
// are safe for concurrent use.
type Arena struct {
	mu          sync.RWMutex
	fonts       []*font.Font
	families    []*font.Family
	fontIndex   map[*font.Font]FontHandle
	familyIndex map[*font.Family]FamilyHandle
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		fontIndex:   make(map[*font.Font]FontHandle),
		familyIndex: make(map[*font.Family]FamilyHandle),
	}
}

// AddFont adds a font, if not yet present, and returns its handle.
func (a *Arena) AddFont(f *font.Font) FontHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addFont(f)
}

func (a *Arena) addFont(f *font.Font) FontHandle {
	if h, ok := a.fontIndex[f]; ok {
		return h
	}
	h := FontHandle(len(a.fonts))
	a.fonts = append(a.fonts, f)
	a.fontIndex[f] = h
	return h
}

// AddFamily adds a family and its fonts, if not yet present, and returns
// the family's handle.
func (a *Arena) AddFamily(fam *font.Family) FamilyHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if h, ok := a.familyIndex[fam]; ok {
		return h
	}
	for _, f := range fam.Fonts() {
		a.addFont(f)
	}
	h := FamilyHandle(len(a.families))
	a.families = append(a.families, fam)
	a.familyIndex[fam] = h
	return h
}

// Font returns the font for a handle. Unknown handles panic.
func (a *Arena) Font(h FontHandle) *font.Font {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fonts[h]
}

// Family returns the family for a handle. Unknown handles panic.
func (a *Arena) Family(h FamilyHandle) *font.Family {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.families[h]
}

// FamilyHandleOf returns the handle of a family, if it is contained.
func (a *Arena) FamilyHandleOf(fam *font.Family) (FamilyHandle, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	h, ok := a.familyIndex[fam]
	return h, ok
}

// NumFonts returns the number of fonts in the arena.
func (a *Arena) NumFonts() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.fonts)
}

// NumFamilies returns the number of families in the arena.
func (a *Arena) NumFamilies() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.families)
}

// WriteTo serializes all fonts, then all families of the arena.
func (a *Arena) WriteTo(w *flatbuf.Writer) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	w.U32(arenaMagic)
	w.U32(uint32(len(a.fonts)))
	for _, f := range a.fonts {
		f.WriteTo(w)
	}
	w.U32(uint32(len(a.families)))
	for _, fam := range a.families {
		fam.WriteTo(w, func(f *font.Font) uint32 {
			return uint32(a.fontIndex[f])
		})
	}
	tracer().Debugf("arena wrote %d fonts and %d families", len(a.fonts), len(a.families))
}

// ReadArena deserializes an arena written by WriteTo. Typefaces will be
// loaded lazily by factory.
func ReadArena(r *flatbuf.Reader, factory font.TypefaceFactory) (*Arena, error) {
	if r.U32() != arenaMagic || r.Err() != nil {
		return nil, core.Error(core.EINVALID, "buffer does not contain a font arena")
	}
	a := NewArena()
	n := r.U32()
	if int(n) > r.Remaining() {
		return nil, core.Error(core.EINVALID, "corrupt font arena: %d fonts", n)
	}
	for i := uint32(0); i < n; i++ {
		f, err := font.ReadFont(r, factory)
		if err != nil {
			return nil, err
		}
		a.addFont(f)
	}
	fontAt := func(inx uint32) (*font.Font, error) {
		if int(inx) >= len(a.fonts) {
			return nil, core.Error(core.EINVALID, "corrupt font arena: font index %d", inx)
		}
		return a.fonts[inx], nil
	}
	n = r.U32()
	if int(n) > r.Remaining() {
		return nil, core.Error(core.EINVALID, "corrupt font arena: %d families", n)
	}
	for i := uint32(0); i < n; i++ {
		fam, err := font.ReadFamily(r, fontAt)
		if err != nil {
			return nil, err
		}
		a.familyIndex[fam] = FamilyHandle(len(a.families))
		a.families = append(a.families, fam)
	}
	return a, nil
}

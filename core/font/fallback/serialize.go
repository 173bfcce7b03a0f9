package fallback

import (
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/flatbuf"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/fontregistry"
)

// WriteCollections serializes a list of collections. Fonts and families are
// written once, even if shared between collections.
func WriteCollections(w *flatbuf.Writer, collections []*Collection) {
	arena := fontregistry.NewArena()
	handles := make([][]uint32, len(collections))
	for i, c := range collections {
		handles[i] = make([]uint32, len(c.families))
		for j, fam := range c.families {
			handles[i][j] = uint32(arena.AddFamily(fam))
		}
	}
	arena.WriteTo(w)
	w.U32(uint32(len(collections)))
	for i, c := range collections {
		w.U32Array(handles[i])
		w.U32(c.maxChar)
		ranges := make([]uint32, 0, 2*len(c.ranges))
		for _, r := range c.ranges {
			ranges = append(ranges, r.start, r.end)
		}
		w.U32Array(ranges)
		w.U8Array(c.familyVec)
	}
	tracer().Debugf("wrote %d collections, %d bytes", len(collections), w.Len())
}

// ReadCollections deserializes collections written by WriteCollections.
// Typefaces are loaded lazily by factory. The collections share an arena.
func ReadCollections(r *flatbuf.Reader, factory font.TypefaceFactory) ([]*Collection, error) {
	arena, err := fontregistry.ReadArena(r, factory)
	if err != nil {
		return nil, err
	}
	n := r.U32()
	if r.Err() != nil || int(n) > r.Remaining() {
		return nil, core.Error(core.EINVALID, "corrupt collection buffer")
	}
	collections := make([]*Collection, 0, n)
	for i := uint32(0); i < n; i++ {
		c, err := readCollection(r, arena)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, nil
}

func readCollection(r *flatbuf.Reader, arena *fontregistry.Arena) (*Collection, error) {
	handles := r.U32Array()
	maxChar := r.U32()
	ranges := r.U32Array()
	familyVec := r.U8Array()
	if r.Err() != nil {
		return nil, core.WrapError(r.Err(), core.EINVALID, "cannot read font collection")
	}
	if len(handles) == 0 || len(handles) > MaxFamilyCount || len(ranges)%2 != 0 {
		return nil, core.Error(core.EINVALID, "corrupt font collection")
	}
	c := &Collection{arena: arena, maxChar: maxChar}
	for _, h := range handles {
		if int(h) >= arena.NumFamilies() {
			return nil, core.Error(core.EINVALID, "corrupt font collection: family handle %d", h)
		}
		c.handles = append(c.handles, fontregistry.FamilyHandle(h))
		c.families = append(c.families, arena.Family(fontregistry.FamilyHandle(h)))
	}
	if uint32(len(ranges)/2) != (maxChar+pageMask)>>logCharsPerPage {
		return nil, core.Error(core.EINVALID, "corrupt font collection: page index size")
	}
	c.ranges = make([]pageRange, len(ranges)/2)
	for i := range c.ranges {
		c.ranges[i] = pageRange{start: ranges[2*i], end: ranges[2*i+1]}
		if c.ranges[i].start > c.ranges[i].end || c.ranges[i].end > uint32(len(familyVec)) {
			return nil, core.Error(core.EINVALID, "corrupt font collection: page range")
		}
	}
	for _, inx := range familyVec {
		if int(inx) >= len(c.families) {
			return nil, core.Error(core.EINVALID, "corrupt font collection: family index %d", inx)
		}
	}
	c.familyVec = append([]uint8(nil), familyVec...)
	c.prepare()
	if c.maxChar != maxChar {
		return nil, core.Error(core.EINVALID, "corrupt font collection: coverage mismatch")
	}
	return c, nil
}

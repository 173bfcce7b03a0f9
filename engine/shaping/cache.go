package shaping

import (
	"container/list"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/parameters"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/parashape/engine/glyphing/gotext"
	"github.com/npillmayer/parashape/engine/hyphenation"
)

// PieceFunc receives a shaped piece from a cache. bounds is invalid unless
// bounds have been requested. Pieces handed out by a cache are shared and
// must not be modified.
type PieceFunc func(piece *Piece, paint *Paint, bounds font.Rect)

// Cache is a least-recently-used cache of shaped pieces. Text is shaped
// outside of the cache's lock, so concurrent requests for the same piece may
// both shape it; the first one to finish wins.
//
// Cache is safe for concurrent use. PieceFuncs are called without holding
// the lock.
type Cache struct {
	mx        sync.Mutex
	shaper    glyphing.Shaper
	capacity  int
	maxLength int
	entries   map[pieceKey]*list.Element
	lru       *list.List // of *slot, most recently used at the front
	onEvict   func(*Piece)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	bypasses  atomic.Uint64
}

type slot struct {
	key    pieceKey
	piece  *Piece
	bounds font.Rect
}

// pieceKey identifies a piece. chars is an owned copy of the context.
type pieceKey struct {
	chars         string
	start, count  int
	collection    uint32
	style         font.Style
	size          float32
	scaleX        float32
	skewX         float32
	letterSpacing float32
	wordSpacing   float32
	localeListID  uint32
	variant       font.Variant
	edit          hyphenation.Edit
	rtl           bool
	features      string
}

func makeKey(text []rune, rng core.Range, paint *Paint, rtl bool, edit hyphenation.Edit) pieceKey {
	return pieceKey{
		chars:         runeKey(text),
		start:         rng.Start,
		count:         rng.Len(),
		collection:    paint.collectionID(),
		style:         paint.Style,
		size:          paint.Size,
		scaleX:        paint.Scale(),
		skewX:         paint.SkewX,
		letterSpacing: paint.LetterSpacing,
		wordSpacing:   paint.WordSpacing,
		localeListID:  paint.LocaleListID,
		variant:       paint.Variant,
		edit:          edit,
		rtl:           rtl,
		features:      paint.featureKey(),
	}
}

// runeKey encodes text with 4 bytes per rune. Unlike a string conversion it
// keeps invalid code points (e.g. lone surrogates) apart from U+FFFD.
func runeKey(text []rune) string {
	b := make([]byte, 4*len(text))
	for i, r := range text {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(r))
	}
	return string(b)
}

// CacheOption configures a cache.
type CacheOption func(*Cache)

// WithCapacity sets the maximum number of pieces to keep.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithMaxLength sets the length of the longest range to be cached. Longer
// ranges are shaped anew on every request.
func WithMaxLength(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// WithEvictHook sets a function to be called for every piece leaving the
// cache. It is called with the cache's lock held and must not call back
// into the cache.
func WithEvictHook(hook func(*Piece)) CacheOption {
	return func(c *Cache) {
		c.onEvict = hook
	}
}

// NewCache creates a cache for pieces shaped by shaper. Capacity and maximum
// range length default to the configured values (see package parameters).
func NewCache(shaper glyphing.Shaper, opts ...CacheOption) *Cache {
	c := &Cache{
		shaper:    shaper,
		capacity:  parameters.CacheCapacity(),
		maxLength: parameters.CacheMaxLength(),
		entries:   make(map[pieceKey]*list.Element),
		lru:       list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCache struct {
	once  sync.Once
	cache *Cache
}

// DefaultCache returns a process-wide cache using the go-text shaper.
func DefaultCache() *Cache {
	defaultCache.once.Do(func() {
		defaultCache.cache = NewCache(gotext.New())
	})
	return defaultCache.cache
}

// Shaper returns the shaper of c.
func (c *Cache) Shaper() glyphing.Shaper {
	return c.shaper
}

// GetOrCreate finds or creates the piece for text[rng.Start:rng.End], with
// text as its context, and hands it to fn. If needsBounds is set, fn
// receives a valid bounding box; cached pieces without bounds are upgraded.
//
// Ranges longer than the cache's maximum length and paints with SkipCache
// set bypass the cache.
func (c *Cache) GetOrCreate(text []rune, rng core.Range, paint *Paint, rtl bool,
	startEdit hyphenation.StartEdit, endEdit hyphenation.EndEdit, needsBounds bool, fn PieceFunc) {
	//
	edit := hyphenation.PackEdit(startEdit, endEdit)
	if paint.SkipCache || rng.Len() > c.maxLength {
		c.bypasses.Add(1)
		piece := Shape(c.shaper, text, rng, paint, rtl, edit)
		fn(piece, paint, boundsIf(needsBounds, piece, paint))
		return
	}
	key := makeKey(text, rng, paint, rtl, edit)
	c.mx.Lock()
	if elem, ok := c.entries[key]; ok {
		s := elem.Value.(*slot)
		c.lru.MoveToFront(elem)
		if needsBounds && !s.bounds.IsValid() {
			s.bounds = s.piece.Bounds(paint)
		}
		piece, bounds := s.piece, s.bounds
		c.mx.Unlock()
		c.hits.Add(1)
		fn(piece, paint, bounds)
		return
	}
	c.mx.Unlock()
	c.misses.Add(1)
	s := &slot{key: key, piece: Shape(c.shaper, text, rng, paint, rtl, edit)}
	s.bounds = boundsIf(needsBounds, s.piece, paint)
	c.mx.Lock()
	if elem, ok := c.entries[key]; ok { // lost a race
		winner := elem.Value.(*slot)
		c.lru.MoveToFront(elem)
		if needsBounds && !winner.bounds.IsValid() {
			winner.bounds = s.bounds
		}
		s = winner
	} else {
		c.entries[key] = c.lru.PushFront(s)
		for c.lru.Len() > c.capacity {
			c.evictOldest()
		}
	}
	piece, bounds := s.piece, s.bounds
	c.mx.Unlock()
	fn(piece, paint, bounds)
}

func boundsIf(needsBounds bool, piece *Piece, paint *Paint) font.Rect {
	if needsBounds {
		return piece.Bounds(paint)
	}
	return font.InvalidRect()
}

// evictOldest removes the least recently used piece. c must be locked.
func (c *Cache) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	s := c.lru.Remove(elem).(*slot)
	delete(c.entries, s.key)
	c.evictions.Add(1)
	if c.onEvict != nil {
		c.onEvict(s.piece)
	}
}

// Clear removes all pieces from the cache.
func (c *Cache) Clear() {
	c.mx.Lock()
	defer c.mx.Unlock()
	for c.lru.Len() > 0 {
		c.evictOldest()
	}
	tracer().Debugf("piece cache cleared")
}

// Len returns the number of pieces in the cache.
func (c *Cache) Len() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.lru.Len()
}

// CacheStats are counters of cache activity.
type CacheStats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Bypasses  uint64
}

// HitRate returns hits / (hits + misses), or 0.
func (st CacheStats) HitRate() float64 {
	if st.Hits+st.Misses == 0 {
		return 0
	}
	return float64(st.Hits) / float64(st.Hits+st.Misses)
}

// Stats returns the current counters of c.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Bypasses:  c.bypasses.Load(),
	}
}

package hyphenation

import (
	"io"
	"sync"

	"github.com/npillmayer/parashape/core"
	"golang.org/x/text/language"
)

// PatternLoader opens the pattern file for a language. It returns an error
// with code core.EMISSING if there are no patterns for the language.
type PatternLoader func(lang language.Tag) (io.ReadCloser, error)

// Registry holds hyphenators per language. Hyphenators are loaded on first
// use; languages without patterns get a hyphenator which breaks at
// explicit hyphens only.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mx     sync.RWMutex
	byLang map[string]*Hyphenator
	load   PatternLoader
}

// NewRegistry creates a registry loading patterns with loader. loader may
// be nil, resulting in pattern-less hyphenators.
func NewRegistry(loader PatternLoader) *Registry {
	return &Registry{
		byLang: make(map[string]*Hyphenator),
		load:   loader,
	}
}

// Register adds a hyphenator, replacing any previous one for its language.
func (reg *Registry) Register(h *Hyphenator) {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	reg.byLang[h.lang.String()] = h
}

// Lookup returns the hyphenator for a language. If there is none for the
// exact tag, the base language is tried, e.g. "en" for "en-US".
func (reg *Registry) Lookup(lang language.Tag) *Hyphenator {
	keys := []string{lang.String()}
	if base, conf := lang.Base(); conf != language.No && base.String() != keys[0] {
		keys = append(keys, base.String())
	}
	reg.mx.RLock()
	for _, k := range keys {
		if h, ok := reg.byLang[k]; ok {
			reg.mx.RUnlock()
			return h
		}
	}
	reg.mx.RUnlock()
	h := reg.loadFirst(keys)
	reg.mx.Lock()
	defer reg.mx.Unlock()
	if existing, ok := reg.byLang[keys[0]]; ok { // lost a race
		return existing
	}
	reg.byLang[keys[0]] = h
	return h
}

func (reg *Registry) loadFirst(keys []string) *Hyphenator {
	if reg.load != nil {
		for _, k := range keys {
			tag, err := language.Parse(k)
			if err != nil {
				continue
			}
			h, err := reg.loadPatterns(tag)
			if err == nil {
				return h
			}
			if core.Code(err) != core.EMISSING {
				tracer().Errorf("hyphenation patterns for %s: %v", k, err)
			}
		}
	}
	tag, _ := language.Parse(keys[0])
	tracer().Debugf("no hyphenation patterns for %s", keys[0])
	return NewHyphenator(tag)
}

func (reg *Registry) loadPatterns(tag language.Tag) (*Hyphenator, error) {
	rc, err := reg.load(tag)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return LoadPatterns(tag, rc)
}

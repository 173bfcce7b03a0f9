package fontregistry

import (
	"sort"
	"strings"
	"sync"

	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/schuko/tracing"
)

// Registry is a type for holding loaded typefaces, to avoid parsing font
// files more than once.
type Registry struct {
	sync.Mutex
	typefaces map[string]font.Typeface
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded typefaces.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		typefaces: make(map[string]font.Typeface),
	}
}

// StoreTypeface pushes a typeface into the registry if it isn't contained
// yet, and returns the typeface stored under key.
//
// If key is already associated with a typeface, that typeface will not be
// overridden. This way concurrent loaders of the same font agree on one
// typeface.
func (fr *Registry) StoreTypeface(key string, tf font.Typeface) font.Typeface {
	if tf == nil {
		tracer().Errorf("registry cannot store null typeface")
		return nil
	}
	fr.Lock()
	defer fr.Unlock()
	if known, ok := fr.typefaces[key]; ok {
		return known
	}
	tracer().Debugf("registry stores font %s as %s", tf.Name(), key)
	fr.typefaces[key] = tf
	return tf
}

// Typeface returns a typeface previously stored under key.
func (fr *Registry) Typeface(key string) (font.Typeface, bool) {
	fr.Lock()
	defer fr.Unlock()
	tf, ok := fr.typefaces[key]
	if ok {
		tracer().Debugf("registry found font %s", key)
	}
	return tf, ok
}

// Names returns the keys of all stored typefaces, sorted.
func (fr *Registry) Names() []string {
	fr.Lock()
	defer fr.Unlock()
	names := make([]string, 0, len(fr.typefaces))
	for k := range fr.typefaces {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LogFontList is a helper function to dump the list of known typefaces
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for _, k := range fr.Names() {
		tf, _ := fr.Typeface(k)
		tracer().Infof("font [%s] = %v", k, tf.Name())
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}

// Key creates a registry key from a font name and a style, e.g.
// "gentium-italic-bold" for Gentium in bold italic.
func Key(fname string, style font.Style) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	if style.Slant == font.SlantItalic {
		fname += "-italic"
	}
	switch {
	case style.Weight <= font.WeightLight:
		fname += "-light"
	case style.Weight >= font.WeightSemiBold:
		fname += "-bold"
	}
	return fname
}

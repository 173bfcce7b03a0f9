package parameters

import (
	"strconv"

	"github.com/npillmayer/schuko/gconf"
)

// Keys of the global configuration used by the engine.
const (
	KeyPieceCacheCapacity  = "piece-cache-capacity"   // # of entries in the shaped piece cache
	KeyPieceCacheMaxLength = "piece-cache-max-length" // longer pieces bypass the cache
	KeyHyphenationPatterns = "hyphenation-patterns"   // prefix, e.g. "hyphenation-patterns.en"
	KeyFontconfig          = "fontconfig"             // path of the fc-list binary
	KeyAppKey              = "app-key"                // name of the user config folder
	KeyLanguage            = "language"               // default for P_LANGUAGE
	KeyFontSize            = "font-size"              // default for P_FONTSIZE
)

// Defaults of engine tunables.
const (
	PieceCacheCapacity  = 5000
	PieceCacheMaxLength = 128
)

// lookup reads a string from the global configuration. The configuration may
// not have been initialized, e.g. for library clients which never call
// gconf.Initialize; we treat that as an unset key.
func lookup(key string) (value string) {
	defer func() {
		if r := recover(); r != nil {
			value = ""
		}
	}()
	return gconf.GetString(key)
}

func lookupInt(key string, dflt int) int {
	s := lookup(key)
	if s == "" {
		return dflt
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		tracer().Errorf("config[%s] = %q is not a positive number, using %d", key, s, dflt)
		return dflt
	}
	return n
}

// CacheCapacity returns the configured capacity of the shaped piece cache.
func CacheCapacity() int {
	return lookupInt(KeyPieceCacheCapacity, PieceCacheCapacity)
}

// CacheMaxLength returns the configured maximum length of text ranges to be
// cached. Longer ranges are always shaped anew.
func CacheMaxLength() int {
	return lookupInt(KeyPieceCacheMaxLength, PieceCacheMaxLength)
}

// HyphenationPatterns returns the path of a pattern file for a language, or
// the empty string if none is configured.
func HyphenationPatterns(lang string) string {
	return lookup(KeyHyphenationPatterns + "." + lang)
}

// FontconfigBinary returns the path of the fc-list binary, or the empty
// string if fontconfig is not to be used. A name without a path is
// searched for on the search path.
func FontconfigBinary() string {
	return lookup(KeyFontconfig)
}

// AppKey returns the application key used for per-user folders.
func AppKey() string {
	if key := lookup(KeyAppKey); key != "" {
		return key
	}
	return "parashape"
}

package resources

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// goSourcePrefix marks typeface sources of packaged Go fonts.
const goSourcePrefix = "gofont:"

var goFonts = map[string][]byte{
	"goregular":         goregular.TTF,
	"goitalic":          goitalic.TTF,
	"gomedium":          gomedium.TTF,
	"gomediumitalic":    gomediumitalic.TTF,
	"gobold":            gobold.TTF,
	"gobolditalic":      gobolditalic.TTF,
	"gomono":            gomono.TTF,
	"gomonoitalic":      gomonoitalic.TTF,
	"gomonobold":        gomonobold.TTF,
	"gomonobolditalic":  gomonobolditalic.TTF,
	"gosmallcaps":       gosmallcaps.TTF,
	"gosmallcapsitalic": gosmallcapsitalic.TTF,
}

// NormalizeFontname strips a font name or file name of everything which
// does not help to identify a font: case, extension, blanks and dashes.
// "Go-Bold.ttf" becomes "gobold".
func NormalizeFontname(name string) string {
	name = strings.ToLower(name)
	switch ext := filepath.Ext(name); ext {
	case ".ttf", ".otf", ".ttc":
		name = strings.TrimSuffix(name, ext)
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, name)
}

// GoFontNames lists the packaged Go fonts.
func GoFontNames() []string {
	names := make([]string, 0, len(goFonts))
	for n := range goFonts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GoFont returns the data of a packaged Go font, e.g. "Go Bold".
func GoFont(name string) ([]byte, bool) {
	data, ok := goFonts[NormalizeFontname(name)]
	return data, ok
}

// loadGoFont parses a packaged Go font. Its source is "gofont:<name>".
func loadGoFont(name string) (*font.OpenTypeface, error) {
	name = NormalizeFontname(name)
	data, ok := goFonts[name]
	if !ok {
		return nil, NotFound(name)
	}
	return font.ParseTypeface(goSourcePrefix+name, data)
}

// GoFamily creates a font family from packaged Go fonts. Without names, the
// proportional Go fonts are used.
func GoFamily(config font.FamilyConfig, names ...string) (*font.Family, error) {
	if len(names) == 0 {
		names = []string{"goregular", "goitalic", "gomedium", "gomediumitalic", "gobold", "gobolditalic"}
	}
	fonts := make([]*font.Font, 0, len(names))
	for _, n := range names {
		tf, err := loadGoFont(n)
		if err != nil {
			return nil, core.WrapError(err, core.Code(err), "cannot create Go font family")
		}
		fonts = append(fonts, font.NewFont(tf, font.WithLocaleList(config.LocaleListID)))
	}
	return font.NewFamily(fonts, config)
}

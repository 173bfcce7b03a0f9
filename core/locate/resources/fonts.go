package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/fontregistry"
)

// NotFound returns an application error for a missing resource.
func NotFound(res string) error {
	e := fmt.Errorf("resource missing: %v", res)
	return core.WrapError(e, core.EMISSING, "resource not found: %s", res)
}

// TypefacePromise is the result of ResolveTypeface. Calling Typeface blocks
// until the typeface has been loaded.
type TypefacePromise interface {
	Typeface() (font.Typeface, error)
	TypefaceContext(ctx context.Context) (font.Typeface, error)
}

type typefacePlusErr struct {
	tf  font.Typeface
	err error
}

type typefaceLoader struct {
	await func(ctx context.Context) (font.Typeface, error)
}

func (loader typefaceLoader) Typeface() (font.Typeface, error) {
	return loader.await(context.Background())
}

func (loader typefaceLoader) TypefaceContext(ctx context.Context) (font.Typeface, error) {
	return loader.await(ctx)
}

// ResolveTypeface starts loading a typeface by name. The name may be the
// name of a packaged Go font, a font file name or a family name known to
// the system. style is used to choose between the fonts of a family listed
// by fontconfig.
func ResolveTypeface(name string, style font.Style) TypefacePromise {
	ch := make(chan typefacePlusErr, 1)
	go func(ch chan<- typefacePlusErr) {
		tf, err := findTypeface(name, style)
		ch <- typefacePlusErr{tf: tf, err: err}
		close(ch)
	}(ch)
	return typefaceLoader{
		await: func(ctx context.Context) (font.Typeface, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.tf, r.err
			}
		},
	}
}

func findTypeface(name string, style font.Style) (font.Typeface, error) {
	key := fontregistry.Key(name, style)
	if tf, ok := fontregistry.GlobalRegistry().Typeface(key); ok {
		return tf, nil
	}
	tf, err := locateTypeface(name, style)
	if err != nil {
		return nil, err
	}
	return fontregistry.GlobalRegistry().StoreTypeface(key, tf), nil
}

func locateTypeface(name string, style font.Style) (font.Typeface, error) {
	if _, ok := GoFont(name); ok {
		tracer().Debugf("%s is a packaged Go font", name)
		return loadGoFont(name)
	}
	if fpath, err := findfont.Find(name); err == nil && fpath != "" {
		tracer().Debugf("%s is a system font: %s", name, fpath)
		return font.LoadTypeface(fpath)
	}
	if fpath, ok := findFontconfigFont(name, style); ok {
		tracer().Debugf("fontconfig knows %s: %s", name, fpath)
		return font.LoadTypeface(fpath)
	}
	return nil, NotFound(name)
}

// Factory loads typefaces for sources reported by typefaces loaded through
// this package: file paths and packaged Go fonts. Use it to read font
// collections from a flat buffer.
var Factory font.TypefaceFactory = font.TypefaceFactoryFunc(loadSource)

func loadSource(source string, vars []font.Variation) (font.Typeface, error) {
	var tf font.Typeface
	var err error
	if strings.HasPrefix(source, goSourcePrefix) {
		tf, err = loadGoFont(strings.TrimPrefix(source, goSourcePrefix))
	} else {
		tf, err = font.LoadTypeface(source)
	}
	if err != nil {
		return nil, err
	}
	if len(vars) > 0 {
		return tf.WithVariations(vars)
	}
	return tf, nil
}

package resources

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/parameters"
	"golang.org/x/text/language"
)

var downloadMx sync.Mutex

// OpenHyphenationPatterns opens the hyphenation pattern file for a language.
// Its location is configured with key "hyphenation-patterns.<lang>" and may
// be a file path or a http(s) URL. Pattern files given by URL are downloaded
// once into the user's cache directory.
//
// If no patterns are configured for lang, an error with code core.EMISSING
// is returned.
func OpenHyphenationPatterns(lang language.Tag) (io.ReadCloser, error) {
	loc := parameters.HyphenationPatterns(lang.String())
	if loc == "" {
		return nil, NotFound("hyphenation patterns for " + lang.String())
	}
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		local, err := cachedPatterns(lang, loc)
		if err != nil {
			return nil, err
		}
		loc = local
	}
	f, err := os.Open(loc)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.WrapError(err, core.EMISSING, "hyphenation patterns for %s not found: %s", lang, loc)
	} else if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot open hyphenation patterns %s", loc)
	}
	tracer().Debugf("hyphenation patterns for %s: %s", lang, loc)
	return f, nil
}

func cachedPatterns(lang language.Tag, url string) (string, error) {
	dir, err := CacheDirPath("hyphenation")
	if err != nil {
		return "", core.WrapError(err, core.EINVALID, "no cache folder for hyphenation patterns")
	}
	local := filepath.Join(dir, lang.String()+"-"+path.Base(url))
	downloadMx.Lock()
	defer downloadMx.Unlock()
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	tracer().Infof("downloading hyphenation patterns for %s from %s", lang, url)
	if err := DownloadCachedFile(local, url); err != nil {
		return "", err
	}
	return local, nil
}

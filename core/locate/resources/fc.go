package resources

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/parameters"
)

// fcEntry is a font listed by fontconfig.
type fcEntry struct {
	family string // normalized
	path   string
	style  font.Style
}

var fontconfigList struct {
	once    sync.Once
	entries []fcEntry
}

// findFontconfigFont searches for a locally installed font using the
// fontconfig system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// fontconfig has to be configured in the global configuration by setting
// the path of the 'fc-list' binary.
//
// The output of fc-list is copied to the user's config folder once.
// Subsequent searches use the copy. We call the binary instead of using
// the C library because of possible version issues. If fontconfig is not
// configured, no font is found.
func findFontconfigFont(pattern string, style font.Style) (string, bool) {
	fontconfigList.once.Do(func() {
		if fclist, ok := cacheFontconfigList(false); ok {
			fontconfigList.entries = loadFontconfigList(fclist)
			tracer().Infof("loaded fontconfig list with %d fonts", len(fontconfigList.entries))
		}
	})
	return closestFontconfigMatch(fontconfigList.entries, pattern, style)
}

// closestFontconfigMatch selects the font of family pattern closest to
// style.
func closestFontconfigMatch(entries []fcEntry, pattern string, style font.Style) (string, bool) {
	pattern = NormalizeFontname(pattern)
	best, bestDist := -1, 0
	for i, e := range entries {
		if e.family != pattern {
			continue
		}
		if d := font.MatchDistance(style, e.style); best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return "", false
	}
	return entries[best].path, true
}

// cacheFontconfigList runs fc-list and stores its output in the user's
// config folder, unless it is already there and update is false.
func cacheFontconfigList(update bool) (string, bool) {
	fcpath := parameters.FontconfigBinary()
	if fcpath == "" {
		tracer().Debugf("fontconfig not configured: key '%s' should point to the 'fc-list' binary",
			parameters.KeyFontconfig)
		return "", false
	}
	uconfdir, err := os.UserConfigDir()
	if err != nil {
		tracer().Errorf("user config directory not set")
		return "", false
	}
	dir := filepath.Join(uconfdir, parameters.AppKey())
	fcListFilename := filepath.Join(dir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil && !update {
		return fcListFilename, true
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		err = core.WrapError(err, core.EINVALID, "user configuration path cannot be created: %s", dir)
		core.UserError(err)
		return "", false
	}
	if fcpath, err = exec.LookPath(fcpath); err != nil {
		err = core.WrapError(err, core.EINVALID, "fontconfig configuration points to an invalid binary: %s",
			parameters.FontconfigBinary())
		core.UserError(err)
		return "", false
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		defer fontlistFile.Close()
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
	}
	if err != nil {
		err = core.WrapError(err, core.EINVALID, "fontconfig output file cannot be created: %s", fcListFilename)
		core.UserError(err)
		return "", false
	}
	return fcListFilename, true
}

func loadFontconfigList(fclist string) []fcEntry {
	fc, err := os.Open(fclist)
	if err != nil {
		err = core.WrapError(err, core.EINVALID, "fontconfig font list cannot be opened: %s", fclist)
		core.UserError(err)
		return nil
	}
	defer fc.Close()
	entries, ttc, err := parseFontconfigList(fc)
	if err != nil {
		err = core.WrapError(err, core.EINVALID, "cannot read fontconfig font list %s", fclist)
		core.UserError(err)
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return entries
}

// parseFontconfigList reads lines of fc-list output, i.e.
//
//	/usr/share/fonts/TTF/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
//
// A family may be given in more than one language, separated by commas;
// we use the first one.
func parseFontconfigList(r io.Reader) (entries []fcEntry, ttc int, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(fontpath, ".ttc") {
			ttc++
			continue
		}
		family, _, _ := strings.Cut(fields[1], ",")
		family = strings.TrimPrefix(strings.TrimSpace(family), ".")
		entries = append(entries, fcEntry{
			family: NormalizeFontname(family),
			path:   fontpath,
			style:  styleFromVariant(strings.ToLower(fields[2])),
		})
	}
	return entries, ttc, scanner.Err()
}

// styleFromVariant derives a font style from a fontconfig style name.
func styleFromVariant(variant string) font.Style {
	style := font.DefaultStyle()
	switch {
	case strings.Contains(variant, "black"), strings.Contains(variant, "heavy"):
		style.Weight = font.WeightBlack
	case strings.Contains(variant, "semibold"), strings.Contains(variant, "demibold"):
		style.Weight = font.WeightSemiBold
	case strings.Contains(variant, "bold"):
		style.Weight = font.WeightBold
	case strings.Contains(variant, "medium"):
		style.Weight = font.WeightMedium
	case strings.Contains(variant, "light"):
		style.Weight = font.WeightLight
	case strings.Contains(variant, "thin"):
		style.Weight = font.WeightThin
	}
	if strings.Contains(variant, "italic") || strings.Contains(variant, "oblique") {
		style.Slant = font.SlantItalic
	}
	return style
}

package hyphenation

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/derekparker/trie"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/engine/text/segment"
	"golang.org/x/text/language"
)

// MaxWordLength is the length of the longest word hyphenated with
// patterns. Longer words are only broken at explicit hyphens.
const MaxWordLength = 45

// Hyphenator hyphenates words of a language. A Hyphenator without
// patterns breaks words at hard hyphens and soft hyphens only.
//
// Hyphenators are immutable after loading and safe for concurrent use.
type Hyphenator struct {
	lang       language.Tag
	patterns   *trie.Trie
	maxPattern int                // length of the longest pattern, in runes
	exceptions map[string][]uint8 // lower-case word → levels
	LeftMin    int                // minimum # of characters before a break
	RightMin   int                // minimum # of characters after a break
}

// NewHyphenator creates a hyphenator for a language, without patterns.
func NewHyphenator(lang language.Tag) *Hyphenator {
	return &Hyphenator{
		lang:       lang,
		patterns:   trie.New(),
		exceptions: make(map[string][]uint8),
		LeftMin:    2,
		RightMin:   3,
	}
}

// LoadPatterns creates a hyphenator for a language from a pattern file.
func LoadPatterns(lang language.Tag, r io.Reader) (*Hyphenator, error) {
	h := NewHyphenator(lang)
	scanner := bufio.NewScanner(r)
	inExceptions := false
	count := 0
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '%'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Fields(line) {
			switch {
			case strings.HasPrefix(field, `\hyphenation{`):
				inExceptions = true
				field = strings.TrimPrefix(field, `\hyphenation{`)
			case strings.HasPrefix(field, `\patterns{`):
				field = strings.TrimPrefix(field, `\patterns{`)
			}
			closing := strings.HasSuffix(field, "}")
			field = strings.TrimSuffix(field, "}")
			if field != "" {
				if inExceptions {
					h.AddException(field)
				} else {
					h.AddPattern(field)
					count++
				}
			}
			if closing {
				inExceptions = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read hyphenation patterns for %s", lang)
	}
	tracer().Infof("loaded %d hyphenation patterns for %s", count, lang)
	return h, nil
}

// HasPatterns is true if h knows any pattern.
func (h *Hyphenator) HasPatterns() bool {
	return h.maxPattern > 0
}

// Language returns the language of h.
func (h *Hyphenator) Language() language.Tag {
	return h.lang
}

// AddPattern adds a Liang pattern, e.g. "hy3ph" or ".ach4".
func (h *Hyphenator) AddPattern(pattern string) {
	letters, levels := splitPattern(pattern)
	if len(letters) == 0 {
		return
	}
	h.patterns.Add(string(letters), levels)
	if len(letters) > h.maxPattern {
		h.maxPattern = len(letters)
	}
}

// splitPattern separates letters and inter-letter levels of a pattern.
// levels[i] is the level before letters[i].
func splitPattern(pattern string) ([]rune, []uint8) {
	var letters []rune
	levels := []uint8{0}
	for _, r := range pattern {
		if r >= '0' && r <= '9' {
			levels[len(letters)] = uint8(r - '0')
			continue
		}
		letters = append(letters, unicode.ToLower(r))
		levels = append(levels, 0)
	}
	return letters, levels
}

// AddException adds a word with explicit hyphenation points, e.g.
// "ta-ble".
func (h *Hyphenator) AddException(word string) {
	var letters []rune
	levels := []uint8{0}
	for _, r := range word {
		if r == '-' {
			levels[len(letters)] = 1
			continue
		}
		letters = append(letters, unicode.ToLower(r))
		levels = append(levels, 0)
	}
	h.exceptions[string(letters)] = levels
}

// Hyphenate returns a hyphenation type for every character of word. The
// type at position i tells if a break is possible before word[i].
func (h *Hyphenator) Hyphenate(word []rune) []Type {
	result := make([]Type, len(word))
	if len(word) == 0 {
		return result
	}
	if len(word) >= h.LeftMin+h.RightMin && len(word) <= MaxWordLength && h.isAlphabetic(word) {
		if levels, ok := h.levels(word); ok {
			for i := h.LeftMin; i <= len(word)-h.RightMin; i++ {
				if levels[i]%2 == 1 {
					result[i] = TypeForScript(word[i])
				}
			}
			return result
		}
	}
	h.hyphenateWithoutPatterns(word, result)
	return result
}

// levels computes the maximum pattern level between adjacent characters.
// levels[i] belongs to the position before word[i].
func (h *Hyphenator) levels(word []rune) ([]uint8, bool) {
	lower := make([]rune, len(word))
	for i, r := range word {
		lower[i] = unicode.ToLower(r)
	}
	if exc, ok := h.exceptions[string(lower)]; ok {
		return exc, true
	}
	if !h.HasPatterns() {
		return nil, false
	}
	w := make([]rune, 0, len(word)+2)
	w = append(w, '.')
	w = append(w, lower...)
	w = append(w, '.')
	values := make([]uint8, len(w)+1)
	for i := 0; i < len(w); i++ {
		for j := i + 1; j <= len(w) && j-i <= h.maxPattern; j++ {
			node, ok := h.patterns.Find(string(w[i:j]))
			if !ok {
				continue
			}
			for k, v := range node.Meta().([]uint8) {
				if v > values[i+k] {
					values[i+k] = v
				}
			}
		}
	}
	// values[k] is before w[k], and w[k] is word[k-1]
	return values[1 : len(word)+1], true
}

func (h *Hyphenator) isAlphabetic(word []rune) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.M, r) {
			return false
		}
	}
	return true
}

// hyphenateWithoutPatterns allows breaks after hard hyphens and soft
// hyphens, which do not start the word.
func (h *Hyphenator) hyphenateWithoutPatterns(word []rune, result []Type) {
	for i := 1; i < len(word); i++ {
		prev := word[i-1]
		switch {
		case i > 1 && segment.IsLineBreakingHyphen(prev):
			if h.repeatsHyphen() && (prev == HyphenMinus || prev == Hyphen) &&
				unicode.Is(unicode.Latin, word[i]) {
				result[i] = BreakAndInsertHyphenAtNextLine
			} else {
				result[i] = BreakAndDontInsertHyphen
			}
		case prev == segment.SoftHyphen:
			result[i] = TypeForScript(word[i])
		default:
			result[i] = DontBreak
		}
	}
}

var (
	polish    = language.MustParse("pl")
	slovenian = language.MustParse("sl")
)

// In Polish and Slovenian, hyphens get repeated at the start of the next
// line.
func (h *Hyphenator) repeatsHyphen() bool {
	base, _ := h.lang.Base()
	pl, _ := polish.Base()
	sl, _ := slovenian.Base()
	return base == pl || base == sl
}

// HyphenateText hyphenates text which may contain no-break spaces. The
// parts between no-break spaces are hyphenated on their own.
func (h *Hyphenator) HyphenateText(text []rune) []Type {
	result := make([]Type, 0, len(text))
	start := 0
	for i, r := range text {
		if r == 0x00A0 {
			result = append(result, h.Hyphenate(text[start:i])...)
			result = append(result, DontBreak)
			start = i + 1
		}
	}
	return append(result, h.Hyphenate(text[start:])...)
}

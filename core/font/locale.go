package font

import (
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"golang.org/x/text/language"
)

// EmojiStyle is the emoji presentation a locale asks for, either by
// script subtag (Zsye, Zsym) or by Unicode extension (-u-em-emoji).
type EmojiStyle uint8

// Emoji styles.
const (
	EmojiStyleEmpty EmojiStyle = iota
	EmojiStyleDefault
	EmojiStyleEmoji
	EmojiStyleText
)

// Locale is a parsed BCP 47 tag.
type Locale struct {
	Tag   language.Tag
	Emoji EmojiStyle
}

var (
	scriptZsye, _ = language.ParseScript("Zsye")
	scriptZsym, _ = language.ParseScript("Zsym")
)

// ParseLocale parses a BCP 47 tag. Malformed tags result in false.
func ParseLocale(s string) (Locale, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return Locale{}, false
	}
	loc := Locale{Tag: tag}
	if script, conf := tag.Script(); conf == language.Exact {
		switch script {
		case scriptZsye:
			loc.Emoji = EmojiStyleEmoji
		case scriptZsym:
			loc.Emoji = EmojiStyleText
		}
	}
	switch tag.TypeForKey("em") {
	case "emoji":
		loc.Emoji = EmojiStyleEmoji
	case "text":
		loc.Emoji = EmojiStyleText
	case "default":
		loc.Emoji = EmojiStyleDefault
	}
	return loc, true
}

// ScoreFor rates how well a list of supported locales serves loc:
//
//	4  emoji style and language match
//	3  language and script match
//	2  emoji style matches
//	1  script matches
//	0  no match
func (loc Locale) ScoreFor(supported LocaleList) int {
	base, _ := loc.Tag.Base()
	script, _ := loc.Tag.Script()
	subtagMatch, scriptMatch, languageScriptMatch := false, false, false
	for _, s := range supported.Locales {
		sbase, _ := s.Tag.Base()
		if loc.Emoji != EmojiStyleEmpty && loc.Emoji == s.Emoji {
			subtagMatch = true
			if base == sbase {
				return 4
			}
		}
		if sscript, _ := s.Tag.Script(); sscript == script {
			scriptMatch = true
			if base == sbase {
				languageScriptMatch = true
			}
		}
	}
	if languageScriptMatch {
		return 3
	} else if subtagMatch {
		return 2
	} else if scriptMatch {
		return 1
	}
	return 0
}

// LocaleList is an ordered list of locales, identified by a process-wide id.
type LocaleList struct {
	ID      uint32
	Locales []Locale
	str     string
}

// EmptyLocaleListID is the id of the list without any locale.
const EmptyLocaleListID uint32 = 0

func (ll LocaleList) String() string {
	return ll.str
}

// EmojiStyle returns the first emoji style requested by a locale of the list.
func (ll LocaleList) EmojiStyle() EmojiStyle {
	for _, l := range ll.Locales {
		if l.Emoji != EmojiStyleEmpty {
			return l.Emoji
		}
	}
	return EmojiStyleEmpty
}

// --- Locale list registry --------------------------------------------------

type localeRegistry struct {
	sync.RWMutex
	byName *treemap.Map // normalized string → id
	lists  []LocaleList
}

var locales = &localeRegistry{
	byName: treemap.NewWithStringComparator(),
	lists:  []LocaleList{{ID: EmptyLocaleListID}},
}

func init() {
	locales.byName.Put("", EmptyLocaleListID)
}

// RegisterLocaleList returns the id for a comma-separated list of BCP 47 tags,
// registering it if necessary. Malformed tags are skipped.
func RegisterLocaleList(s string) uint32 {
	var parsed []Locale
	var names []string
	for _, part := range strings.Split(s, ",") {
		if loc, ok := ParseLocale(part); ok && part != "" {
			parsed = append(parsed, loc)
			names = append(names, loc.Tag.String())
		}
	}
	key := strings.Join(names, ",")
	locales.RLock()
	id, found := locales.byName.Get(key)
	locales.RUnlock()
	if found {
		return id.(uint32)
	}
	locales.Lock()
	defer locales.Unlock()
	if id, found := locales.byName.Get(key); found {
		return id.(uint32)
	}
	ll := LocaleList{ID: uint32(len(locales.lists)), Locales: parsed, str: key}
	locales.lists = append(locales.lists, ll)
	locales.byName.Put(key, ll.ID)
	tracer().Debugf("registered locale list %q as %d", key, ll.ID)
	return ll.ID
}

// LocaleListByID returns a registered locale list. Unknown ids yield the
// empty list.
func LocaleListByID(id uint32) LocaleList {
	locales.RLock()
	defer locales.RUnlock()
	if int(id) >= len(locales.lists) {
		return locales.lists[EmptyLocaleListID]
	}
	return locales.lists[id]
}

// RegisteredLocaleLists returns the string forms of all registered lists,
// sorted.
func RegisteredLocaleLists() []string {
	locales.RLock()
	defer locales.RUnlock()
	keys := locales.byName.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.(string))
	}
	return out
}

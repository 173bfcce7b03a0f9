package fallback

import (
	"unicode"

	"github.com/npillmayer/parashape/core/font"
)

// Itemize splits text into runs of characters to be rendered by the same
// families. style is currently not taken into account for family selection;
// it is accepted to select fonts later on (see BestFont).
//
// Characters which do not need font support (e.g., bidi controls) and
// sticky characters (e.g., punctuation, combining marks) covered by the
// current family never start a new run. A base character and a following
// variation selector always end up in the same run.
//
// If maxRuns is greater than 0, itemization stops as soon as maxRuns runs
// have been finalized.
func (c *Collection) Itemize(text []rune, style font.Style, localeListID uint32,
	variant font.Variant, maxRuns int) []Run {
	//
	if len(text) == 0 {
		return nil
	}
	var runs []Run
	var last FamilyMatch
	var prev rune
	for i, ch := range text {
		next := rune(-1)
		if i+1 < len(text) {
			next = text[i+1]
		}
		continueRun := false
		if doesNotNeedFontSupport(ch) {
			continueRun = true
		} else if last.Len() > 0 && (isStickyWhitelisted(ch) || isCombining(ch)) {
			lastFamily := c.families[last.At(0)]
			if lastFamily.IsColorEmoji() {
				continueRun = true
				for k := 0; k < last.Len(); k++ {
					continueRun = continueRun && c.families[last.At(k)].Coverage().ContainsRune(ch)
				}
			} else {
				continueRun = lastFamily.Coverage().ContainsRune(ch)
			}
		}
		if !continueRun {
			vs := rune(0)
			if next >= 0 && font.IsVariationSelector(next) {
				vs = next
			}
			match := c.familyForChar(ch, vs, localeListID, variant)
			breakRun := false
			if i == 0 || last.Len() == 0 {
				breakRun = true
			} else if lastFamily := c.families[last.At(0)]; lastFamily.IsColorEmoji() {
				if common := match.Intersect(last); common.Len() == 0 {
					breakRun = true
				} else {
					last = common
					runs[len(runs)-1].Families = common
				}
			} else {
				breakRun = match.At(0) != last.At(0)
			}
			if breakRun {
				start := i
				// Move a base character to the new run if it is followed by a
				// combining mark or emoji modifier, and the new family supports it.
				if i > 0 && (isCombining(ch) || (font.IsEmojiModifier(ch) && font.IsEmojiBase(prev))) &&
					c.families[match.At(0)].Coverage().ContainsRune(prev) {
					if len(runs) > 0 {
						runs[len(runs)-1].End--
						if r := runs[len(runs)-1]; r.Start == r.End {
							runs = runs[:len(runs)-1]
						}
					}
					start--
				}
				if last.Len() == 0 {
					// first family ever assigned; leading characters did not need any font
					start = 0
				}
				runs = append(runs, Run{Families: match, Start: start})
				last = match
			}
		}
		prev = ch
		if len(runs) > 0 {
			runs[len(runs)-1].End = i + 1
		}
		// With maxRuns+2 runs, the first maxRuns runs are final.
		if maxRuns > 0 && len(runs) >= maxRuns+2 {
			break
		}
	}
	if last.Len() == 0 {
		tracer().Debugf("itemize: no character needs font support")
		return []Run{{Families: MatchOf(0), Start: 0, End: len(text)}}
	}
	if maxRuns > 0 && len(runs) > maxRuns {
		runs = runs[:maxRuns]
	}
	return runs
}

// doesNotNeedFontSupport is true for characters which will not be rendered
// by a glyph, such as format controls and variation selectors.
func doesNotNeedFontSupport(ch rune) bool {
	switch {
	case ch == 0x00AD: // soft hyphen
		return true
	case ch == 0x034F: // combining grapheme joiner
		return true
	case ch == 0x061C: // arabic letter mark
		return true
	case 0x200C <= ch && ch <= 0x200F: // ZWNJ, ZWJ, LRM, RLM
		return true
	case 0x202A <= ch && ch <= 0x202E: // bidi embeddings and overrides
		return true
	case 0x2066 <= ch && ch <= 0x2069: // bidi isolates
		return true
	case ch == 0xFEFF: // zero width no-break space
		return true
	}
	return font.IsVariationSelector(ch)
}

// isStickyWhitelisted is true for characters which should stay in the font
// of the preceding character, if possible. This avoids switching fonts for
// common punctuation.
func isStickyWhitelisted(ch rune) bool {
	switch ch {
	case '!', ',', '-', '.', ':', ';', '?',
		0x00A0,                         // no-break space
		0x2010, 0x2011, 0x2012, 0x2013, // hyphens and dashes
		0x2014, 0x2026, // em dash, ellipsis
		0x202F,                 // narrow no-break space
		0x2640, 0x2642, 0x2695: // female, male, staff of aesculapius
		return true
	}
	return false
}

func isCombining(ch rune) bool {
	return unicode.Is(unicode.M, ch)
}

package hyphenation

import (
	"fmt"
	"unicode"
)

// Type is the kind of break at a hyphenation point.
type Type uint8

// Hyphenation types.
const (
	DontBreak                      Type = iota // no break possible
	BreakAndInsertHyphen                       // break, and end the line with a hyphen
	BreakAndInsertArmenianHyphen               // break, and end the line with U+058A
	BreakAndInsertMaqaf                        // break, and end the line with U+05BE
	BreakAndInsertUCASHyphen                   // break, and end the line with U+1400
	BreakAndDontInsertHyphen                   // break without any change, e.g. after a hard hyphen
	BreakAndReplaceWithHyphen                  // replace the character before the break by a hyphen
	BreakAndInsertHyphenAtNextLine             // break, and repeat the hyphen at the next line
	BreakAndInsertHyphenAndZWJ                 // break with hyphen, keeping Arabic joining intact
)

var typeNames = [...]string{
	"none", "hyphen", "armenian-hyphen", "maqaf", "ucas-hyphen", "no-hyphen",
	"replace-with-hyphen", "hyphen-at-next-line", "hyphen-and-zwj",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// EndEdit is a modification of the end of a line.
type EndEdit uint8

// End-of-line edits.
const (
	NoEndEdit EndEdit = iota
	ReplaceWithHyphen
	InsertHyphen
	InsertArmenianHyphen
	InsertMaqaf
	InsertUCASHyphen
	InsertZWJAndHyphen
)

// StartEdit is a modification of the start of a line.
type StartEdit uint8

// Start-of-line edits.
const (
	NoStartEdit StartEdit = iota
	StartInsertHyphen
	StartInsertZWJ
)

// Edit packs a start edit and an end edit. The zero value means no edit.
type Edit uint8

// PackEdit packs a start and an end edit.
func PackEdit(start StartEdit, end EndEdit) Edit {
	return Edit(start)<<3 | Edit(end)
}

// Start returns the start-of-line part of e.
func (e Edit) Start() StartEdit {
	return StartEdit(e >> 3)
}

// End returns the end-of-line part of e.
func (e Edit) End() EndEdit {
	return EndEdit(e & 0x7)
}

func (e Edit) String() string {
	return fmt.Sprintf("edit(start=%d,end=%d)", e.Start(), e.End())
}

// EditForThisLine returns the edit of the line ending at a break of type t.
func EditForThisLine(t Type) EndEdit {
	switch t {
	case BreakAndInsertHyphen:
		return InsertHyphen
	case BreakAndInsertArmenianHyphen:
		return InsertArmenianHyphen
	case BreakAndInsertMaqaf:
		return InsertMaqaf
	case BreakAndInsertUCASHyphen:
		return InsertUCASHyphen
	case BreakAndReplaceWithHyphen:
		return ReplaceWithHyphen
	case BreakAndInsertHyphenAndZWJ:
		return InsertZWJAndHyphen
	}
	return NoEndEdit
}

// EditForNextLine returns the edit of the line starting at a break of type t.
func EditForNextLine(t Type) StartEdit {
	switch t {
	case BreakAndInsertHyphenAtNextLine:
		return StartInsertHyphen
	case BreakAndInsertHyphenAndZWJ:
		return StartInsertZWJ
	}
	return NoStartEdit
}

// Characters inserted by edits.
const (
	Hyphen         rune = 0x2010
	HyphenMinus    rune = '-'
	ArmenianHyphen rune = 0x058A
	Maqaf          rune = 0x05BE
	UCASHyphen     rune = 0x1400
	ZWJ            rune = 0x200D
)

// EndString returns the characters an end edit appends to a line. For
// ReplaceWithHyphen, the last character of the line is to be replaced by
// the result.
func EndString(e EndEdit) []rune {
	switch e {
	case ReplaceWithHyphen, InsertHyphen:
		return []rune{Hyphen}
	case InsertArmenianHyphen:
		return []rune{ArmenianHyphen}
	case InsertMaqaf:
		return []rune{Maqaf}
	case InsertUCASHyphen:
		return []rune{UCASHyphen}
	case InsertZWJAndHyphen:
		return []rune{ZWJ, Hyphen}
	}
	return nil
}

// StartString returns the characters a start edit prepends to a line.
func StartString(e StartEdit) []rune {
	switch e {
	case StartInsertHyphen:
		return []rune{Hyphen}
	case StartInsertZWJ:
		return []rune{ZWJ}
	}
	return nil
}

// ApplyEdit returns text[start:end] with edit e applied. The result shares
// no memory with text.
func ApplyEdit(text []rune, start, end int, e Edit) []rune {
	pre, post := StartString(e.Start()), EndString(e.End())
	out := make([]rune, 0, len(pre)+end-start+len(post))
	out = append(out, pre...)
	out = append(out, text[start:end]...)
	if e.End() == ReplaceWithHyphen && len(out) > len(pre) {
		out = out[:len(out)-1]
	}
	return append(out, post...)
}

// TypeForScript returns the type of an ordinary hyphenation point before
// character r, which depends on the script of r.
func TypeForScript(r rune) Type {
	switch {
	case unicode.Is(unicode.Armenian, r):
		return BreakAndInsertArmenianHyphen
	case unicode.Is(unicode.Hebrew, r):
		return BreakAndInsertMaqaf
	case unicode.Is(unicode.Canadian_Aboriginal, r):
		return BreakAndInsertUCASHyphen
	case unicode.In(r, unicode.Bengali, unicode.Devanagari, unicode.Gujarati,
		unicode.Gurmukhi, unicode.Kannada, unicode.Malayalam, unicode.Oriya,
		unicode.Tamil, unicode.Telugu):
		// these scripts break without visible hyphens
		return BreakAndDontInsertHyphen
	}
	return BreakAndInsertHyphen
}

package segment

import (
	gtlang "github.com/go-text/typesetting/language"
	"github.com/npillmayer/parashape/core"
	"golang.org/x/text/language"
)

// ScriptRun is a range of text written in one script.
type ScriptRun struct {
	core.Range
	Script language.Script
}

// ScriptRuns splits text[rng] into runs of a single script. Characters of
// the Common and Inherited scripts stay in the current run; a run starting
// with such characters adopts the first real script following.
func ScriptRuns(text []rune, rng core.Range) []ScriptRun {
	core.Assert(rng.Start >= 0 && rng.End <= len(text) && rng.Start <= rng.End,
		"script range %v out of text bounds", rng)
	if rng.IsEmpty() {
		return nil
	}
	var runs []ScriptRun
	start := rng.Start
	current := gtlang.Common
	for i := rng.Start; i < rng.End; i++ {
		s := gtlang.LookupScript(text[i])
		if s == gtlang.Common || s == gtlang.Inherited || s == current {
			continue
		}
		if current == gtlang.Common {
			current = s
			continue
		}
		runs = append(runs, ScriptRun{Range: core.Range{Start: start, End: i}, Script: isoScript(current)})
		start, current = i, s
	}
	runs = append(runs, ScriptRun{Range: core.Range{Start: start, End: rng.End}, Script: isoScript(current)})
	return runs
}

// ScriptOf returns the first script of text[rng] which is neither Common
// nor Inherited, or Zyyy (Common) if there is none.
func ScriptOf(text []rune, rng core.Range) language.Script {
	for i := rng.Start; i < rng.End; i++ {
		if s := gtlang.LookupScript(text[i]); s != gtlang.Common && s != gtlang.Inherited {
			return isoScript(s)
		}
	}
	return isoScript(gtlang.Common)
}

// isoScript converts a go-text script, which is an ISO 15924 tag packed
// into 32 bits, to an x/text script.
func isoScript(s gtlang.Script) language.Script {
	code := string([]byte{byte(s >> 24), byte(s >> 16), byte(s >> 8), byte(s)})
	script, err := language.ParseScript(code)
	if err != nil {
		tracer().Debugf("unknown script code %q", code)
		return language.MustParseScript("Zzzz")
	}
	return script
}

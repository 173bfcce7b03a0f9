package paragraph

import (
	"fmt"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font/fallback"
	"github.com/npillmayer/parashape/engine/linebreak"
	"github.com/npillmayer/parashape/engine/measure"
	"github.com/npillmayer/parashape/engine/shaping"
)

// State is the processing stage of a paragraph.
type State uint8

// Processing stages, in order.
const (
	Idle      State = iota // created, nothing computed yet
	Itemizing              // font runs are known
	Measuring              // character widths are known
	Breaking               // line breaking in progress
	Done                   // lines are known
)

var stateNames = [...]string{"idle", "itemizing", "measuring", "breaking", "done"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Paragraph is a paragraph of text on its way through an Engine. It is
// owned by a single client and must not be processed concurrently.
type Paragraph struct {
	Text              []rune
	Justified         bool               // lines may shrink, hyphenation is favoured
	TabStops          linebreak.TabStops // for text containing TABs
	UseBoundsForWidth bool               // fit lines by ink bounds where glyphs overhang
	state             State
	paint             *shaping.Paint // base paint, set by itemization
	items             []fallback.Run
	runs              []measure.Run
	measured          *measure.Paragraph
	lines             *linebreak.Result
}

// State returns the processing stage of p.
func (p *Paragraph) State() State {
	return p.state
}

// Len returns the number of characters of p.
func (p *Paragraph) Len() int {
	return len(p.Text)
}

// FontRuns returns the result of itemization.
func (p *Paragraph) FontRuns() []fallback.Run {
	return p.items
}

// Paint returns the base paint of p, as set by itemization.
func (p *Paragraph) Paint() *shaping.Paint {
	return p.paint
}

// Runs returns the style runs p has been measured with.
func (p *Paragraph) Runs() []measure.Run {
	return p.runs
}

// Measured returns the measurement of p, or nil if p has not been measured.
func (p *Paragraph) Measured() *measure.Paragraph {
	return p.measured
}

// Lines returns the line breaks of p, or nil if p has not been broken into
// lines.
func (p *Paragraph) Lines() *linebreak.Result {
	return p.lines
}

func (p *Paragraph) String() string {
	return fmt.Sprintf("para[%d chars, %s]", len(p.Text), p.state)
}

// enter moves p to state s, if p currently is in one of the states given.
func (p *Paragraph) enter(s State, from ...State) error {
	for _, f := range from {
		if p.state == f {
			tracer().Debugf("%v: %s → %s", p, p.state, s)
			p.state = s
			return nil
		}
	}
	return core.Error(core.ESTATE, "paragraph is %s, cannot start %s", p.state, s)
}

// requireOneOf checks that p is in one of the given states.
func (p *Paragraph) requireOneOf(op string, states ...State) error {
	for _, s := range states {
		if p.state == s {
			return nil
		}
	}
	return core.Error(core.ESTATE, "paragraph is %s, cannot %s", p.state, op)
}

// lineEdits finds line rng among the lines of p and returns its hyphen
// edits. Ranges which are not a line get no edits.
func (p *Paragraph) lineEdits(rng core.Range) (bool, linebreak.Flags) {
	if p.lines == nil {
		return false, 0
	}
	for l := 0; l < p.lines.Len(); l++ {
		if p.lines.Line(l) == rng {
			return true, p.lines.Flags[l]
		}
	}
	return false, 0
}

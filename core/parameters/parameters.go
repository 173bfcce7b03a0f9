/*
Package parameters holds typesetting registers and engine tunables.

Registers are grouped: settings pushed inside a group are dropped when the
group ends, as in TeX. Paragraph drivers open a group per paragraph and push
what differs from the defaults.

Defaults of the registers and the engine tunables may be overridden by the
global configuration (schuko/gconf).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package parameters

import (
	"github.com/npillmayer/parashape/core/dimen"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.core'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.core")
}

type TypesettingParameter int

const (
	none TypesettingParameter = iota
	P_LANGUAGE
	P_FONTSIZE
	P_SCALEX
	P_SKEWX
	P_LETTERSPACING
	P_WORDSPACING
	P_HYPHENCHAR
	P_MINHYPHENLENGTH
	P_LINEBREAKSTRATEGY
	P_HYPHENATIONFREQUENCY
	P_JUSTIFIED
	P_STOPPER
)

var parameterNames = [...]string{
	"none", "P_LANGUAGE", "P_FONTSIZE", "P_SCALEX", "P_SKEWX", "P_LETTERSPACING",
	"P_WORDSPACING", "P_HYPHENCHAR", "P_MINHYPHENLENGTH", "P_LINEBREAKSTRATEGY",
	"P_HYPHENATIONFREQUENCY", "P_JUSTIFIED", "P_STOPPER",
}

func (p TypesettingParameter) String() string {
	if p < 0 || int(p) >= len(parameterNames) {
		return "P_UNKNOWN"
	}
	return parameterNames[p]
}

type ParameterGroup struct {
	params map[TypesettingParameter]interface{}
	level  int
	next   *ParameterGroup
}

type TypesettingRegisters struct {
	base       [P_STOPPER]interface{}
	groups     *ParameterGroup
	grouplevel int
}

// ----------------------------------------------------------------------

// NewTypesettingRegisters creates registers with default values. Defaults
// for language and font size are taken from the global configuration, if set.
func NewTypesettingRegisters() *TypesettingRegisters {
	regs := &TypesettingRegisters{}
	initParameters(&regs.base)
	if lang := lookup(KeyLanguage); lang != "" {
		regs.base[P_LANGUAGE] = lang
	}
	if size := lookup(KeyFontSize); size != "" {
		if d, ispcnt, err := dimen.ParseDimen(size); err == nil && !ispcnt && d > 0 {
			regs.base[P_FONTSIZE] = d
		} else {
			tracer().Errorf("config[%s]: cannot use font size %q", KeyFontSize, size)
		}
	}
	return regs
}

func initParameters(p *[P_STOPPER]interface{}) {
	p[P_LANGUAGE] = "en-US"         // a locale list string
	p[P_FONTSIZE] = 12 * dimen.PX   // dimension
	p[P_SCALEX] = float32(1)        // horizontal scale factor
	p[P_SKEWX] = float32(0)         // horizontal skew factor
	p[P_LETTERSPACING] = float32(0) // in em
	p[P_WORDSPACING] = dimen.Zero   // dimension
	p[P_HYPHENCHAR] = int('-')      // a rune
	p[P_MINHYPHENLENGTH] = 5        // # of runes of a word
	p[P_LINEBREAKSTRATEGY] = 1      // high quality
	p[P_HYPHENATIONFREQUENCY] = 1   // normal
	p[P_JUSTIFIED] = false          //
}

func (regs *TypesettingRegisters) Begingroup() {
	regs.grouplevel++
}

func (regs *TypesettingRegisters) Endgroup() {
	if regs.grouplevel > 0 {
		if regs.groups != nil && regs.groups.level == regs.grouplevel {
			regs.groups = regs.groups.next
		}
		regs.grouplevel--
	}
}

func (regs *TypesettingRegisters) Push(key TypesettingParameter, value interface{}) {
	if key <= 0 || key >= P_STOPPER {
		panic("parameter key outside range of typesetting parameters")
	}
	if regs.grouplevel > 0 {
		var g *ParameterGroup
		if regs.groups == nil || regs.groups.level < regs.grouplevel {
			g = &ParameterGroup{}
			g.params = make(map[TypesettingParameter]interface{})
			g.level = regs.grouplevel
			g.next = regs.groups
			regs.groups = g
		} else {
			g = regs.groups
		}
		g.params[key] = value
	} else {
		regs.base[key] = value
	}
}

func (regs *TypesettingRegisters) Get(key TypesettingParameter) interface{} {
	if key <= 0 || key >= P_STOPPER {
		panic("parameter key outside range of typesetting parameters")
	}
	var value interface{}
	if regs.grouplevel > 0 {
		for g := regs.groups; g != nil; g = g.next {
			value = g.params[key]
			if value != nil {
				break
			}
		}
	}
	if value == nil {
		value = regs.base[key]
	}
	return value
}

func (regs *TypesettingRegisters) S(key TypesettingParameter) string {
	return regs.Get(key).(string)
}

func (regs *TypesettingRegisters) N(key TypesettingParameter) int {
	return regs.Get(key).(int)
}

func (regs *TypesettingRegisters) D(key TypesettingParameter) dimen.Dimen {
	return regs.Get(key).(dimen.Dimen)
}

func (regs *TypesettingRegisters) F(key TypesettingParameter) float32 {
	return regs.Get(key).(float32)
}

func (regs *TypesettingRegisters) B(key TypesettingParameter) bool {
	return regs.Get(key).(bool)
}

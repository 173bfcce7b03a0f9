// Package dimen implements typographic dimensions and units.
//
// The shaping engine measures in pixels (float32), with one pixel being one
// big point. Dimensions are used where users specify sizes, e.g. font sizes
// and line widths given to the paragraph engine or the command line tool.
//
/*
BSD License

Copyright (c) 2017–21, Norbert Pillmayer (norbert@pillmayer.com)

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.  */
package dimen

import (
	"math"
	"regexp"
	"strconv"

	"github.com/npillmayer/parashape/core"
)

// Dimen is a dimension type.
// Values are in scaled big points (different from TeX).
type Dimen int32

// Some pre-defined dimensions
const (
	Zero Dimen = 0
	SP   Dimen = 1       // scaled point = BP / 65536
	BP   Dimen = 65536   // big point (PDF) = 1/72 inch
	PX   Dimen = 65536   // "pixels"
	PT   Dimen = 65291   // printers point 1/72.27 inch
	MM   Dimen = 185771  // millimeters
	CM   Dimen = 1857710 // centimeters
	IN   Dimen = 4718592 // inch
)

// Infinity is the largest possible dimension
const Infinity = math.MaxInt32

// Stringer implementation.
func (d Dimen) String() string {
	return strconv.FormatFloat(float64(d.Pixels()), 'f', -1, 32) + "px"
}

// Pixels returns a dimension in pixels, as used by font metrics and shaping.
func (d Dimen) Pixels() float32 {
	return float32(float64(d) / float64(PX))
}

// FromPixels converts a pixel value to a dimension, rounding to the nearest
// scaled point.
func FromPixels(px float32) Dimen {
	return Dimen(math.Round(float64(px) * float64(PX)))
}

// ---------------------------------------------------------------------------

var dimenPattern = regexp.MustCompile(`^([+\-]?[0-9]+(?:\.[0-9]+)?)(%|[cminpxtsb]{2})?$`)

// ParseDimen parses a string to return a dimension. Syntax is CSS Unit,
// with fractional numbers allowed ("10.5pt"). A number without a unit is
// taken as scaled points.
// If a percentage value is given (`80%`), the second return value will be
// true and the dimension holds the percentage.
func ParseDimen(s string) (Dimen, bool, error) {
	d := dimenPattern.FindStringSubmatch(s)
	if len(d) < 2 {
		return 0, false, core.Error(core.EINVALID, "format error parsing dimension %q", s)
	}
	scale := SP
	ispcnt := false
	if len(d) > 2 {
		switch d[2] {
		case "pt", "PT":
			scale = PT
		case "mm", "MM":
			scale = MM
		case "bp", "px", "BP", "PX":
			scale = BP
		case "cm", "CM":
			scale = CM
		case "in", "IN":
			scale = IN
		case "sp", "SP", "":
			scale = SP
		case "%":
			scale, ispcnt = 1, true
		default:
			return 0, false, core.Error(core.EINVALID, "unknown unit in dimension %q", s)
		}
	}
	n, err := strconv.ParseFloat(d[1], 64)
	if err != nil {
		return 0, false, core.WrapError(err, core.EINVALID, "format error parsing dimension %q", s)
	}
	v := math.Round(n * float64(scale))
	if math.Abs(v) >= Infinity {
		return 0, false, core.Error(core.EINVALID, "dimension %q out of range", s)
	}
	return Dimen(v), ispcnt, nil
}

// ParseLength parses a positive length, e.g. a line width. Percentages are
// taken relative to base.
func ParseLength(s string, base Dimen) (Dimen, error) {
	d, ispcnt, err := ParseDimen(s)
	if err != nil {
		return 0, err
	}
	if ispcnt {
		d = Dimen(math.Round(float64(base) * float64(d) / 100))
	}
	if d <= 0 {
		return 0, core.Error(core.EINVALID, "length %q is not positive", s)
	}
	return d, nil
}

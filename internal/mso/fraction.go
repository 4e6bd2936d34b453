package mso

import (
	"math"
	"strings"
)

// DefaultTableWidth is the conventional email body width in pixels
const DefaultTableWidth = 600

type fraction struct {
	class string
	value float64
}

// width utility classes and the share of the table they take, checked in this
// order
var fractions = []fraction{
	{"w-full", 1},
	{"w-1/2", 0.5},
	{"w-1/3", 1.0 / 3},
	{"w-2/3", 2.0 / 3},
	{"w-1/4", 0.25},
	{"w-3/4", 0.75},
	{"w-1/5", 0.2},
	{"w-2/5", 0.4},
	{"w-3/5", 0.6},
	{"w-4/5", 0.8},
	{"w-1/6", 1.0 / 6},
	{"w-5/6", 5.0 / 6},
}

// Fraction returns the share of the first known width class contained in
// classAttr. The test is a plain substring test, so "md:w-1/2" counts.
func Fraction(classAttr string) (float64, bool) {
	for _, f := range fractions {
		if strings.Contains(classAttr, f.class) {
			return f.value, true
		}
	}
	return 0, false
}

// ColumnWidth returns the pixel width of a column out of total, rounded down.
// Unknown widths take the whole table.
func ColumnWidth(classAttr string, total int) int {
	f, ok := Fraction(classAttr)
	if !ok {
		return total
	}
	// the epsilon keeps thirds and sixths from landing one pixel short
	return int(math.Floor(float64(total)*f + 1e-9))
}

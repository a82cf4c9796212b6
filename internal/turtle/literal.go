// Package turtle carries the Turtle wire-format primitives both halves of
// the converter share: literal formatting with the exact lexical rules the
// output contract pins down, the ordered namespace table, and a term
// model with a focused reader for re-ingesting machine-generated Turtle.
package turtle

import (
	"strconv"
	"strings"
)

// FloatStyle selects the lexical form of xsd:double literals.
type FloatStyle int

const (
	// ScientificFloats renders a 15-digit mantissa with a normalized
	// exponent (no plus sign, no leading zeros).
	ScientificFloats FloatStyle = iota
	// PlainFloats renders the shortest decimal form that round-trips.
	PlainFloats
)

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// FormatString renders an untyped Turtle string literal.
func FormatString(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

// FormatBool renders an xsd:boolean literal, lexical form lowercase.
func FormatBool(b bool) string {
	if b {
		return `"true"^^xsd:boolean`
	}
	return `"false"^^xsd:boolean`
}

// FormatInt renders an xsd:integer literal.
func FormatInt(v int64) string {
	return `"` + strconv.FormatInt(v, 10) + `"^^xsd:integer`
}

// FormatFloat renders an xsd:double literal. Scientific style formats a
// 15-digit mantissa and then strips the exponent's plus sign and leading
// zero: 0.584 becomes 5.840000000000000E-1, 5.0 becomes
// 5.000000000000000E0, 1e10 becomes 1.000000000000000E10.
func FormatFloat(v float64, style FloatStyle) string {
	if style == PlainFloats {
		return `"` + strconv.FormatFloat(v, 'g', -1, 64) + `"^^xsd:double`
	}
	m := strconv.FormatFloat(v, 'E', 15, 64)
	m = strings.Replace(m, "E+", "E", 1)
	m = strings.Replace(m, "E-0", "E-", 1)
	m = strings.Replace(m, "E0", "E", 1)
	return `"` + m + `"^^xsd:double`
}

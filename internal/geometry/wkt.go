package geometry

import (
	"regexp"
	"strconv"
	"strings"
)

// wktPrecision is how many decimal places survive in replayed WKT
// coordinates.
const wktPrecision = 6

var wktNumber = regexp.MustCompile(`[-+]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`)

// roundWKT normalizes every numeric token in a WKT lexical form: fixed
// precision, trailing zeros and a bare trailing point stripped, negative
// zero folded to "0". Geometry kernels disagree in the last digits; the
// replayed form must not.
func roundWKT(lex string) string {
	return wktNumber.ReplaceAllStringFunc(lex, func(tok string) string {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return tok
		}
		s := strconv.FormatFloat(v, 'f', wktPrecision, 64)
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
		if s == "" || s == "-0" {
			return "0"
		}
		return s
	})
}

// Package report renders conversion run summaries as canonical JSON.
//
// The encoding follows RFC 8785: object keys ordered by UTF-16 code
// units, NFC-normalized strings with minimal escaping, and integers
// only. Two runs over the same model produce byte-identical reports,
// so golden tests and plain diffing work on the output.
package report

import (
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Report describes one conversion run.
type Report struct {
	Input     string
	Output    string
	Converter string
	Schema    string

	Entities int64
	Skipped  int64
	Triples  int64
	Flushes  int64

	// Timings in integer milliseconds.
	LoadMS  int64
	WriteMS int64
	TotalMS int64
}

// member is one encoded object member.
type member struct {
	key string
	raw []byte
}

// MarshalCanonical renders the report as canonical JSON.
// Counters and timings must be non-negative.
func (r *Report) MarshalCanonical() ([]byte, error) {
	counters := []struct {
		key string
		v   int64
	}{
		{"entities", r.Entities},
		{"skipped", r.Skipped},
		{"triples", r.Triples},
		{"flushes", r.Flushes},
		{"load_ms", r.LoadMS},
		{"write_ms", r.WriteMS},
		{"total_ms", r.TotalMS},
	}
	for _, c := range counters {
		if c.v < 0 {
			return nil, fmt.Errorf("canonical report: %s is negative: %d", c.key, c.v)
		}
	}

	members := []member{
		{"input", appendCanonicalString(nil, r.Input)},
		{"output", appendCanonicalString(nil, r.Output)},
		{"converter", appendCanonicalString(nil, r.Converter)},
		{"schema", appendCanonicalString(nil, r.Schema)},
	}
	for _, c := range counters {
		members = append(members, member{c.key, strconv.AppendInt(nil, c.v, 10)})
	}

	// RFC 8785 key order: UTF-16 code units, not UTF-8 bytes
	slices.SortFunc(members, func(a, b member) int {
		return compareUTF16(a.key, b.key)
	})

	buf := make([]byte, 0, 256)
	buf = append(buf, '{')
	for i, m := range members {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendCanonicalString(buf, m.key)
		buf = append(buf, ':')
		buf = append(buf, m.raw...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// compareUTF16 orders strings by UTF-16 code units. Go's native string
// comparison orders by UTF-8 bytes, which differs once supplementary
// characters appear.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// appendCanonicalString appends s as a JSON string with RFC 8785
// escaping: backslash, quote, and control characters only. HTML
// characters, U+2028, and U+2029 stay literal, unlike encoding/json's
// defaults.
func appendCanonicalString(buf []byte, s string) []byte {
	s = norm.NFC.String(s)
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, fmt.Sprintf(`\u%04x`, r)...)
			} else {
				buf = utf8.AppendRune(buf, r)
			}
		}
	}
	return append(buf, '"')
}

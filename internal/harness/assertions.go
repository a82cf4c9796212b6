package harness

import (
	"fmt"

	"github.com/roach88/ifc2lbd/internal/report"
)

// Check compares a run report against the expectation and returns one
// message per mismatch. An empty slice means the report satisfies the
// expectation.
//
// Messages carry both values so a failing scenario reads without
// re-running: "triples: expected 14, got 12".
func (e Expect) Check(rep *report.Report) []string {
	var mismatches []string

	if e.Schema != "" && rep.Schema != e.Schema {
		mismatches = append(mismatches,
			fmt.Sprintf("schema: expected %s, got %s", e.Schema, rep.Schema))
	}

	counts := []struct {
		field string
		want  int64
		got   int64
	}{
		{"entities", e.Entities, rep.Entities},
		{"skipped", e.Skipped, rep.Skipped},
		{"triples", e.Triples, rep.Triples},
		{"flushes", e.Flushes, rep.Flushes},
	}
	for _, c := range counts {
		if c.got != c.want {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: expected %d, got %d", c.field, c.want, c.got))
		}
	}

	return mismatches
}

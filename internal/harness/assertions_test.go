package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ifc2lbd/internal/report"
)

func TestExpectCheckAllMatch(t *testing.T) {
	expect := Expect{Schema: "IFC4", Entities: 2, Skipped: 0, Triples: 7, Flushes: 1}
	rep := &report.Report{Schema: "IFC4", Entities: 2, Skipped: 0, Triples: 7, Flushes: 1}

	assert.Empty(t, expect.Check(rep))
}

func TestExpectCheckReportsEveryMismatch(t *testing.T) {
	expect := Expect{Schema: "IFC4", Entities: 2, Skipped: 0, Triples: 14, Flushes: 1}
	rep := &report.Report{Schema: "IFC2X3", Entities: 1, Skipped: 0, Triples: 12, Flushes: 1}

	assert.Equal(t, []string{
		"schema: expected IFC4, got IFC2X3",
		"entities: expected 2, got 1",
		"triples: expected 14, got 12",
	}, expect.Check(rep))
}

func TestExpectCheckSchemaOptional(t *testing.T) {
	// An empty expected schema accepts any effective schema id.
	expect := Expect{Entities: 1, Triples: 3, Flushes: 1}
	rep := &report.Report{Schema: "IFC4X3_ADD2", Entities: 1, Triples: 3, Flushes: 1}

	assert.Empty(t, expect.Check(rep))
}

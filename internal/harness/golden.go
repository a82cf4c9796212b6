package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden loads a scenario, executes it, checks the report
// expectations, and compares the produced document against the golden
// file named by expect.golden.
//
// The golden file is stored in testdata/golden/{expect.golden}.golden.
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Several scenarios may point at one golden file; the serializer
// guarantees output bytes independent of the flush threshold, and the
// shared golden proves it.
func RunWithGolden(t *testing.T, path string) {
	t.Helper()

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}

	outcome, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	for _, mismatch := range scenario.Expect.Check(outcome.Report) {
		t.Errorf("scenario %q: %s", scenario.Name, mismatch)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Expect.Golden, outcome.Document)
}

// AssertReport compares a report's canonical JSON rendering against a
// golden file. Canonical encoding is byte-stable, so the comparison
// needs no normalization pass.
func AssertReport(t *testing.T, name string, outcome *Outcome) {
	t.Helper()

	data, err := outcome.Report.MarshalCanonical()
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

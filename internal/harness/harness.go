package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/ifc2lbd/internal/convert"
	"github.com/roach88/ifc2lbd/internal/report"
	"github.com/roach88/ifc2lbd/internal/testutil"
)

// Outcome is the result of one scenario execution: the run report and
// the produced Turtle document.
type Outcome struct {
	Report   *report.Report
	Document []byte
}

// Run executes a scenario through the real conversion pipeline.
//
// Each scenario runs in a fresh temporary directory for isolation, with
// the clock pinned to testutil.ReferenceTime so the document bytes are
// reproducible.
//
// Execution flow:
//  1. Stage the records in a scratch directory (inline records only;
//     records_file is read in place)
//  2. Run the conversion with the scenario's strategy knobs
//  3. Read back the produced document
//
// Expectation checking is separate: see Expect.Check and RunWithGolden.
func Run(scenario *Scenario) (*Outcome, error) {
	dir, err := os.MkdirTemp("", "harness-"+scenario.Name+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	input := scenario.RecordsFile
	if input == "" {
		input = filepath.Join(dir, "records.jsonl")
		if err := os.WriteFile(input, []byte(scenario.Records), 0o644); err != nil {
			return nil, fmt.Errorf("failed to stage records: %w", err)
		}
	}
	output := filepath.Join(dir, scenario.Name+".ttl")

	clock := testutil.NewClock(testutil.ReferenceTime)
	rep, err := convert.Run(convert.Options{
		Input:      input,
		Output:     output,
		Schema:     scenario.Schema,
		Converter:  scenario.Converter,
		Floats:     scenario.Floats,
		FlushEvery: scenario.FlushEvery,
		MapFile:    scenario.Map,
		Now:        clock.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %q: conversion failed: %w", scenario.Name, err)
	}

	doc, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: read output: %w", scenario.Name, err)
	}

	return &Outcome{Report: rep, Document: doc}, nil
}

// Package harness provides scenario-driven end-to-end testing for the
// converter.
//
// The harness loads a YAML scenario, runs the real conversion pipeline
// over its records with a pinned clock, checks the run report against
// the scenario's expectations, and compares the produced Turtle document
// against a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario covers"
//	schema: IFC4            # optional stream schema override
//	converter: mini         # optional registry entry, default mini
//	floats: plain           # optional float style override
//	flush_every: 1          # optional flush threshold
//	map: custom-map.json    # optional collection map override
//	records: |
//	  {"schema": "IFC4"}
//	  {"id": 1, "type": "IfcWall"}
//	expect:
//	  schema: IFC4
//	  entities: 1
//	  skipped: 0
//	  triples: 3
//	  flushes: 1
//	  golden: scenario_name
//
// Records can live inline under records or in a sibling file named by
// records_file; exactly one of the two must be set. The map and
// records_file paths resolve relative to the scenario file.
//
// # Deterministic Runs
//
// Every scenario executes with a clock pinned to testutil.ReferenceTime,
// so the document header timestamp and the timing fields of the report
// are identical across runs. Output bytes are independent of the flush
// threshold, which lets scenarios with different flush_every values
// share one golden document.
//
// # Usage
//
// Run a scenario and compare against its golden file:
//
//	func TestScenarios(t *testing.T) {
//		harness.RunWithGolden(t, "testdata/scenarios/basic-entities.yaml")
//	}
//
// Golden files live under testdata/golden and are regenerated with:
//
//	go test ./internal/harness -update
package harness

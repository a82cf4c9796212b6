package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end conversion case: the records going in,
// the strategy knobs, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Schema optionally overrides the stream's own schema header.
	Schema string `yaml:"schema,omitempty"`

	// Converter names the registry entry to run. Empty selects the
	// default converter.
	Converter string `yaml:"converter,omitempty"`

	// Floats optionally overrides the converter's float style.
	Floats string `yaml:"floats,omitempty"`

	// FlushEvery optionally sets the writer flush threshold.
	FlushEvery int `yaml:"flush_every,omitempty"`

	// Map optionally names a collection map file overriding the
	// embedded one, relative to the scenario file.
	Map string `yaml:"map,omitempty"`

	// Records holds the JSONL input inline.
	Records string `yaml:"records,omitempty"`

	// RecordsFile names a JSONL input file relative to the scenario
	// file. Exactly one of Records and RecordsFile must be set.
	RecordsFile string `yaml:"records_file,omitempty"`

	// Expect states the required outcome.
	Expect Expect `yaml:"expect"`
}

// Expect is the outcome a scenario requires: report counts and the
// golden document to compare the output against.
type Expect struct {
	// Schema is the expected effective schema id. Empty skips the check.
	Schema string `yaml:"schema,omitempty"`

	// Entities is the expected serialized entity count.
	Entities int64 `yaml:"entities"`

	// Skipped is the expected dropped record count.
	Skipped int64 `yaml:"skipped"`

	// Triples is the expected exact triple count, header included.
	Triples int64 `yaml:"triples"`

	// Flushes is the expected writer flush count.
	Flushes int64 `yaml:"flushes"`

	// Golden names the golden document under testdata/golden, without
	// extension. Scenarios may share one golden file.
	Golden string `yaml:"golden"`
}

// LoadScenario reads and parses a scenario YAML file. The map and
// records_file paths come back resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	if scenario.Map != "" && !filepath.IsAbs(scenario.Map) {
		scenario.Map = filepath.Join(base, scenario.Map)
	}
	if scenario.RecordsFile != "" && !filepath.IsAbs(scenario.RecordsFile) {
		scenario.RecordsFile = filepath.Join(base, scenario.RecordsFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Records == "" && s.RecordsFile == "" {
		return fmt.Errorf("one of records or records_file is required")
	}
	if s.Records != "" && s.RecordsFile != "" {
		return fmt.Errorf("records and records_file are mutually exclusive")
	}

	if s.RecordsFile != "" {
		if _, err := os.Stat(s.RecordsFile); os.IsNotExist(err) {
			return fmt.Errorf("records file not found: %s", s.RecordsFile)
		}
	}
	if s.Map != "" {
		if _, err := os.Stat(s.Map); os.IsNotExist(err) {
			return fmt.Errorf("map file not found: %s", s.Map)
		}
	}

	if s.FlushEvery < 0 {
		return fmt.Errorf("flush_every must be non-negative")
	}

	if s.Expect.Golden == "" {
		return fmt.Errorf("expect.golden is required")
	}
	counts := []struct {
		field string
		v     int64
	}{
		{"expect.entities", s.Expect.Entities},
		{"expect.skipped", s.Expect.Skipped},
		{"expect.triples", s.Expect.Triples},
		{"expect.flushes", s.Expect.Flushes},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%s must be non-negative", c.field)
		}
	}

	return nil
}

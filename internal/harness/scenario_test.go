package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/basic-entities.yaml")
	require.NoError(t, err)

	assert.Equal(t, "basic-entities", scenario.Name)
	assert.NotEmpty(t, scenario.Description)
	assert.Contains(t, scenario.Records, `"type": "IfcWall"`)
	assert.Empty(t, scenario.RecordsFile)

	assert.Equal(t, "IFC4", scenario.Expect.Schema)
	assert.Equal(t, int64(2), scenario.Expect.Entities)
	assert.Equal(t, int64(0), scenario.Expect.Skipped)
	assert.Equal(t, int64(7), scenario.Expect.Triples)
	assert.Equal(t, int64(1), scenario.Expect.Flushes)
	assert.Equal(t, "basic-entities", scenario.Expect.Golden)
}

func TestLoadScenarioResolvesRelativePaths(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/custom-map.yaml")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "scenarios", "custom-map.json"), scenario.Map)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "custom.jsonl"), scenario.RecordsFile)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioUnknownField(t *testing.T) {
	path := writeScenarioFile(t, `name: typo
description: "typo in the expect key"
records: |
  {"schema": "IFC4"}
expects:
  golden: typo
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `description: "d"
records: |
  {"schema": "IFC4"}
expect:
  golden: x
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `name: x
records: |
  {"schema": "IFC4"}
expect:
  golden: x
`,
			wantErr: "description is required",
		},
		{
			name: "no records",
			content: `name: x
description: "d"
expect:
  golden: x
`,
			wantErr: "one of records or records_file is required",
		},
		{
			name: "both record forms",
			content: `name: x
description: "d"
records: |
  {"schema": "IFC4"}
records_file: also.jsonl
expect:
  golden: x
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "records file missing",
			content: `name: x
description: "d"
records_file: nowhere.jsonl
expect:
  golden: x
`,
			wantErr: "records file not found",
		},
		{
			name: "map file missing",
			content: `name: x
description: "d"
map: nowhere.json
records: |
  {"schema": "IFC4"}
expect:
  golden: x
`,
			wantErr: "map file not found",
		},
		{
			name: "negative flush threshold",
			content: `name: x
description: "d"
flush_every: -1
records: |
  {"schema": "IFC4"}
expect:
  golden: x
`,
			wantErr: "flush_every must be non-negative",
		},
		{
			name: "missing golden",
			content: `name: x
description: "d"
records: |
  {"schema": "IFC4"}
expect:
  entities: 1
`,
			wantErr: "expect.golden is required",
		},
		{
			name: "negative triple count",
			content: `name: x
description: "d"
records: |
  {"schema": "IFC4"}
expect:
  triples: -3
  golden: x
`,
			wantErr: "expect.triples must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenarioFile(t, tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

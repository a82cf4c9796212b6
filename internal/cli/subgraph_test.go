package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ifc2lbd/internal/guid"
)

const wallHex = "9f41a9a1297b4732a0f38d29692efc84"

func wallGeometryDoc() string {
	return `BASE <http://example.org/geom/>
PREFIX geo: <http://www.opengis.net/ont/geosparql#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX ex: <http://example.org/geom/>

<IfcWall_` + wallHex + `_body> a geo:Feature ;
	rdfs:label "wall body" ;
	geo:hasGeometry <IfcWall_` + wallHex + `_body_geometry> ;
	geo:hasGeometry <IfcWall_` + wallHex + `_body_footprint_geometry> .

<IfcWall_` + wallHex + `_body_geometry> a geo:Geometry ;
	geo:asWKT "POLYGON ((0 0, 4.1 0, 4.1 3))"^^geo:wktLiteral .
`
}

func wallGUID() string {
	return guid.Compress(uuid.MustParse(wallHex))
}

func TestSubgraphCommand(t *testing.T) {
	docPath := writeFixture(t, "geometry.ttl", wallGeometryDoc())

	stdout, _, err := executeCommand(t, "subgraph", "--label", "inst:wall_a", docPath, wallGUID())
	require.NoError(t, err)

	assert.Contains(t, stdout, "inst:wall_a a geo:Feature .")
	assert.Contains(t, stdout, "inst:wall_a geo:hasGeometry ex:IfcWall_"+wallHex+"_body_geometry .")
	assert.NotContains(t, stdout, "footprint", "derived geometry stays out of the replay")
	assert.NotContains(t, stdout, "rdfs:label", "annotations stay out of the replay")
}

func TestSubgraphCommandDefaultLabel(t *testing.T) {
	docPath := writeFixture(t, "geometry.ttl", wallGeometryDoc())
	id := wallGUID()

	stdout, _, err := executeCommand(t, "subgraph", docPath, id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "inst:"+id+" a geo:Feature .")
}

func TestSubgraphCommandOutFile(t *testing.T) {
	docPath := writeFixture(t, "geometry.ttl", wallGeometryDoc())
	out := filepath.Join(t.TempDir(), "wall.ttl")

	stdout, _, err := executeCommand(t, "subgraph", "--label", "inst:wall_a", "--out", out, docPath, wallGUID())
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inst:wall_a a geo:Feature .")
}

func TestSubgraphCommandUnknownGUID(t *testing.T) {
	docPath := writeFixture(t, "geometry.ttl", wallGeometryDoc())

	_, _, err := executeCommand(t, "subgraph", docPath, "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "missing")
}

func TestSubgraphCommandUnknownGUIDJSONEnvelope(t *testing.T) {
	docPath := writeFixture(t, "geometry.ttl", wallGeometryDoc())

	stdout, _, err := executeCommand(t, "--format", "json", "subgraph", docPath, "missing")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeGUID, resp.Error.Code)
}

func TestSubgraphCommandBadDocument(t *testing.T) {
	docPath := writeFixture(t, "geometry.ttl", "this is not turtle {{{")

	_, _, err := executeCommand(t, "subgraph", docPath, "anything")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSubgraphCommandMissingDocument(t *testing.T) {
	_, _, err := executeCommand(t, "subgraph", filepath.Join(t.TempDir(), "absent.ttl"), "anything")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

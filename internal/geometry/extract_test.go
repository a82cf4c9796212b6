package geometry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ifc2lbd/internal/guid"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

const (
	wallHex = "9f41a9a1297b4732a0f38d29692efc84"
	slabHex = "1c7a3b9e84d24f56a2b8c91d3e5f7a90"
)

func wallDoc() string {
	return `BASE <http://example.org/geom/>
PREFIX geo: <http://www.opengis.net/ont/geosparql#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX dcterms: <http://purl.org/dc/terms/>
PREFIX ex: <http://example.org/geom/>

<IfcWall_` + wallHex + `_body> a geo:Feature ;
	rdfs:label "wall body" ;
	dcterms:identifier "2O2Fr$t4X7Zf8NOew3FLOH" ;
	geo:hasGeometry <IfcWall_` + wallHex + `_body_geometry> ;
	geo:hasGeometry <IfcWall_` + wallHex + `_body_footprint_geometry> .

<IfcWall_` + wallHex + `_body_geometry> a geo:Geometry ;
	geo:asWKT "POLYGON ((0.00000001 0, 4.123456789 0, 4.123456789 2.9999999))"^^geo:wktLiteral .
`
}

func buildExtractor(t *testing.T, doc string, logger *slog.Logger) *Extractor {
	t.Helper()
	parsed, err := turtle.Parse([]byte(doc))
	require.NoError(t, err)
	return NewExtractor(parsed.Graph, parsed.Namespaces(), logger)
}

type emitted struct{ s, p, o string }

func replay(t *testing.T, x *Extractor, id, label string) []emitted {
	t.Helper()
	var out []emitted
	require.NoError(t, x.Lookup(id, label, func(s, p, o string) bool {
		out = append(out, emitted{s, p, o})
		return true
	}))
	return out
}

func TestExtractorReplaysFeatureSubgraph(t *testing.T) {
	wallGUID := guid.Compress(uuid.MustParse(wallHex))
	x := buildExtractor(t, wallDoc(), nil)
	require.Equal(t, []string{wallGUID}, x.GUIDs())

	got := replay(t, x, wallGUID, "inst:wall_a")

	geom := "ex:IfcWall_" + wallHex + "_body_geometry"
	assert.Equal(t, []emitted{
		{"inst:wall_a", "a", "geo:Feature"},
		{"inst:wall_a", "geo:hasGeometry", geom},
		{geom, "a", "geo:Geometry"},
		{geom, "geo:asWKT", `"POLYGON ((0 0, 4.123457 0, 4.123457 3))"^^geo:wktLiteral`},
	}, got)

	for _, tr := range got {
		assert.NotContains(t, tr.o, derivedMarker)
	}
}

func TestExtractorSharesNodesAcrossFeatures(t *testing.T) {
	doc := `BASE <http://example.org/geom/>
PREFIX geo: <http://www.opengis.net/ont/geosparql#>
PREFIX ex: <http://example.org/geom/>

<IfcSlab_` + slabHex + `_axis> a geo:Feature ;
	geo:hasGeometry <shared> .

<IfcSlab_` + slabHex + `_body> a geo:Feature ;
	geo:hasGeometry <shared> .

<shared> a geo:Geometry .
`
	slabGUID := guid.Compress(uuid.MustParse(slabHex))
	x := buildExtractor(t, doc, nil)
	require.Equal(t, []string{slabGUID}, x.GUIDs(), "both features share one GUID")

	got := replay(t, x, slabGUID, "inst:slab")

	assert.Equal(t, []emitted{
		{"inst:slab", "a", "geo:Feature"},
		{"inst:slab", "geo:hasGeometry", "ex:shared"},
		{"inst:slab", "a", "geo:Feature"},
		{"inst:slab", "geo:hasGeometry", "ex:shared"},
		{"ex:shared", "a", "geo:Geometry"},
	}, got, "the shared node must replay exactly once")
}

func TestExtractorRendersBlankNodes(t *testing.T) {
	beamHex := "77e1b2c3d4e5f60718293a4b5c6d7e8f"
	doc := `PREFIX geo: <http://www.opengis.net/ont/geosparql#>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>

<http://example.org/geom/IfcBeam_` + beamHex + `_body> a geo:Feature ;
	geo:param [ geo:depth "2.50"^^xsd:double ] .
`
	x := buildExtractor(t, doc, nil)
	got := replay(t, x, guid.Compress(uuid.MustParse(beamHex)), "inst:beam")

	assert.Equal(t, []emitted{
		{"inst:beam", "a", "geo:Feature"},
		{"inst:beam", "geo:param", "_:gen0"},
		{"_:gen0", "geo:depth", `"2.50"^^xsd:double`},
	}, got)
}

func TestExtractorUnknownGUID(t *testing.T) {
	x := buildExtractor(t, wallDoc(), nil)

	err := x.Lookup("0000000000000000000000", "inst:x", func(s, p, o string) bool { return true })
	assert.ErrorIs(t, err, ErrUnknownGUID)

	_, err = x.Turtle("0000000000000000000000", "inst:x")
	assert.ErrorIs(t, err, ErrUnknownGUID)
}

func TestExtractorLookupStopsEarly(t *testing.T) {
	wallGUID := guid.Compress(uuid.MustParse(wallHex))
	x := buildExtractor(t, wallDoc(), nil)

	calls := 0
	err := x.Lookup(wallGUID, "inst:wall_a", func(s, p, o string) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExtractorTurtleRendering(t *testing.T) {
	wallGUID := guid.Compress(uuid.MustParse(wallHex))
	x := buildExtractor(t, wallDoc(), nil)

	out, err := x.Turtle(wallGUID, "inst:wall_a")
	require.NoError(t, err)

	geom := "ex:IfcWall_" + wallHex + "_body_geometry"
	want := strings.Join([]string{
		"inst:wall_a a geo:Feature .",
		"inst:wall_a geo:hasGeometry " + geom + " .",
		geom + " a geo:Geometry .",
		geom + ` geo:asWKT "POLYGON ((0 0, 4.123457 0, 4.123457 3))"^^geo:wktLiteral .`,
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestExtractorSkipsUndecodableSubjects(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	doc := `PREFIX geo: <http://www.opengis.net/ont/geosparql#>

<http://example.org/geom/broken> a geo:Feature .
<http://example.org/geom/IfcWall_nothexatall_body> a geo:Feature .
`
	x := buildExtractor(t, doc, logger)

	assert.Empty(t, x.GUIDs())
	assert.Contains(t, buf.String(), "without decodable GUID")
}

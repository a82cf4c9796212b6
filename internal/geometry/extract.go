package geometry

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gammazero/deque"

	"github.com/roach88/ifc2lbd/internal/guid"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// GeoSPARQL vocabulary of the raw geometry documents.
const (
	geoNamespace = "http://www.opengis.net/ont/geosparql#"
	featureClass = geoNamespace + "Feature"
	wktDatatype  = geoNamespace + "wktLiteral"
)

// derivedMarker tags objects the upstream serializer computes rather
// than models; they never belong in a replayed subgraph.
const derivedMarker = "body_footprint_geometry"

// maxSubgraphNodes bounds a single replay against pathological
// documents.
const maxSubgraphNodes = 1 << 20

// ErrUnknownGUID reports a lookup for a GUID no feature subject carries.
var ErrUnknownGUID = errors.New("no feature for GUID")

// Extractor indexes a raw geometry Turtle document by feature GUID and
// replays per-feature subgraphs. Build once; afterwards concurrent
// read-only lookups are safe.
type Extractor struct {
	graph    *turtle.Graph
	ns       turtle.Namespaces
	features map[string][]turtle.Term
	guids    []string
}

// NewExtractor indexes every subject typed geo:Feature under the
// compressed GUID encoded in its IRI. One GUID can map to several
// feature subjects (a body and an axis, say); subjects whose name does
// not carry a decodable GUID segment are skipped. A nil logger discards
// the skip reports.
func NewExtractor(g *turtle.Graph, ns turtle.Namespaces, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	x := &Extractor{graph: g, ns: ns, features: make(map[string][]turtle.Term)}
	for _, s := range g.SubjectsOfType(turtle.IRI(featureClass)) {
		if s.Kind != turtle.IRITerm {
			continue
		}
		id, err := guid.FromSubject(s.Value)
		if err != nil {
			logger.Debug("feature subject without decodable GUID",
				"subject", s.Value,
				"error", err)
			continue
		}
		if _, ok := x.features[id]; !ok {
			x.guids = append(x.guids, id)
		}
		x.features[id] = append(x.features[id], s)
	}
	return x
}

// GUIDs returns the indexed GUIDs in document order.
func (x *Extractor) GUIDs() []string { return x.guids }

// Lookup replays the subgraph of one GUID breadth-first, invoking fn for
// every surviving triple as rendered Turtle terms. Feature subjects are
// emitted under label instead of their own IRIs; every other IRI
// compacts to prefix:local when the namespace table matches, else stays
// bracketed. fn returning false stops the replay early.
//
// Annotation triples (rdfs:label, dcterms:identifier) and triples whose
// object mentions derived-only geometry are left out, and no node is
// visited twice. WKT coordinates are rounded on the way through.
func (x *Extractor) Lookup(id, label string, fn func(s, p, o string) bool) error {
	roots := x.features[id]
	if len(roots) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownGUID, id)
	}

	var queue deque.Deque[turtle.Term]
	visited := make(map[turtle.Term]bool, len(roots))
	rooted := make(map[turtle.Term]bool, len(roots))
	for _, s := range roots {
		visited[s] = true
		rooted[s] = true
		queue.PushBack(s)
	}

	for queue.Len() > 0 {
		s := queue.PopFront()
		subj := label
		if !rooted[s] {
			subj = x.resource(s)
		}
		for _, po := range x.graph.PredicateObjects(s) {
			switch po.Predicate.Value {
			case turtle.RDFSLabel, turtle.DCTermsIdentifier:
				continue
			}
			if strings.Contains(po.Object.Value, derivedMarker) {
				continue
			}
			if !fn(subj, x.predicate(po.Predicate), x.object(po.Object)) {
				return nil
			}
			if po.Object.IsResource() && !visited[po.Object] {
				if len(visited) >= maxSubgraphNodes {
					return fmt.Errorf("subgraph for %s exceeds %d nodes", id, maxSubgraphNodes)
				}
				visited[po.Object] = true
				queue.PushBack(po.Object)
			}
		}
	}
	return nil
}

// Turtle renders one GUID's subgraph as Turtle statement lines.
func (x *Extractor) Turtle(id, label string) (string, error) {
	var b strings.Builder
	err := x.Lookup(id, label, func(s, p, o string) bool {
		b.WriteString(s)
		b.WriteByte(' ')
		b.WriteString(p)
		b.WriteByte(' ')
		b.WriteString(o)
		b.WriteString(" .\n")
		return true
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// resource renders an IRI or blank node for a triple position.
func (x *Extractor) resource(t turtle.Term) string {
	if t.Kind == turtle.BlankTerm {
		return "_:" + t.Value
	}
	if c, ok := x.ns.Compact(t.Value); ok {
		return c
	}
	return "<" + t.Value + ">"
}

// predicate renders a predicate, folding rdf:type to its keyword form.
func (x *Extractor) predicate(t turtle.Term) string {
	if t.Value == turtle.RDFType {
		return "a"
	}
	return x.resource(t)
}

// object renders an object term, rounding WKT literal payloads.
func (x *Extractor) object(t turtle.Term) string {
	if t.Kind != turtle.LiteralTerm {
		return x.resource(t)
	}
	if t.Datatype == wktDatatype {
		t.Value = roundWKT(t.Value)
	}
	return t.N3(x.ns)
}

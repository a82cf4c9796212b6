package turtle

import "fmt"

// Prefix binds a namespace prefix to its expansion.
type Prefix struct {
	Name string
	URI  string
}

// Namespaces is an ordered prefix table plus the document base URI. Order
// is load-bearing: header PREFIX lines are emitted in table order and
// compaction picks the first matching entry.
type Namespaces struct {
	Base     string
	Prefixes []Prefix
}

// Default returns the conversion namespace table, splicing the schema
// version into the model namespace.
func Default(schemaID string) Namespaces {
	return Namespaces{
		Base: "http://example.org/base#",
		Prefixes: []Prefix{
			{Name: "ifc", URI: fmt.Sprintf("https://mini-ifc.ifc/%s/#", schemaID)},
			{Name: "inst", URI: "https://lbd-lbd.lbd/ifc/instances#"},
			{Name: "rdf", URI: "http://www.w3.org/1999/02/22-rdf#"},
			{Name: "xsd", URI: "http://www.w3.org/2001/XMLSchema#"},
			{Name: "owl", URI: "http://www.w3.org/2002/07/owl#"},
		},
	}
}

// URI returns the expansion bound to a prefix name, or "".
func (n Namespaces) URI(name string) string {
	for _, p := range n.Prefixes {
		if p.Name == name {
			return p.URI
		}
	}
	return ""
}

// Compact folds an IRI into prefix:local form using the first table entry
// whose URI prefixes it. The local part is taken verbatim; ok reports
// whether any entry matched.
func (n Namespaces) Compact(iri string) (string, bool) {
	for _, p := range n.Prefixes {
		if len(iri) >= len(p.URI) && iri[:len(p.URI)] == p.URI {
			return p.Name + ":" + iri[len(p.URI):], true
		}
	}
	return iri, false
}

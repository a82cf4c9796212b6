package serializer

import (
	"strings"
	"time"

	"github.com/roach88/ifc2lbd/internal/turtle"
)

// headerTripleCount is what the fixed ontology statement accounts for:
// the type assertion and the imports arc.
const headerTripleCount = 2

// Header renders the fixed document header: banner and metadata
// comments, the BASE directive, one PREFIX line per table entry in
// table order, and the ontology declaration.
func Header(ns turtle.Namespaces, now time.Time) string {
	modelURI := ns.URI("ifc")
	if modelURI == "" && len(ns.Prefixes) > 0 {
		modelURI = ns.Prefixes[0].URI
	}

	var b strings.Builder
	b.WriteString("# Turtle TTL output generated by the ifc2lbd stream writer.\n")
	b.WriteString("# Generated on: ")
	b.WriteString(now.Format("2006-01-02T15:04:05"))
	b.WriteString("\n# baseURI: ")
	b.WriteString(ns.Base)
	b.WriteString("\n# imports: ")
	b.WriteString(modelURI)
	b.WriteString("\n\nBASE <")
	b.WriteString(ns.Base)
	b.WriteString(">\n")
	for _, p := range ns.Prefixes {
		b.WriteString("PREFIX ")
		b.WriteString(p.Name)
		b.WriteString(": <")
		b.WriteString(p.URI)
		b.WriteString(">\n")
	}
	b.WriteString("\ninst:\ta\towl:Ontology ;\n\towl:imports\tifc: .\n\n")
	return b.String()
}

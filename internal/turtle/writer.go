package turtle

import (
	"fmt"
	"io"
	"strings"
)

// WriteDocument re-emits a parsed document: directives first, then one
// block per subject in graph order with predicate-object pairs joined
// the way the stream writer joins them. Terms compact against the
// document's own prefix table.
func WriteDocument(w io.Writer, d *Document) error {
	ns := d.Namespaces()

	var b strings.Builder
	if d.Base != "" {
		b.WriteString("BASE <")
		b.WriteString(d.Base)
		b.WriteString(">\n")
	}
	for _, p := range d.Prefixes {
		b.WriteString("PREFIX ")
		b.WriteString(p.Name)
		b.WriteString(": <")
		b.WriteString(p.URI)
		b.WriteString(">\n")
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	for _, s := range d.Graph.Subjects() {
		b.WriteString(renderResource(s, ns))
		for i, po := range d.Graph.PredicateObjects(s) {
			if i > 0 {
				b.WriteString(" ;\n\t")
			} else {
				b.WriteByte(' ')
			}
			b.WriteString(renderPredicate(po.Predicate, ns))
			b.WriteByte(' ')
			b.WriteString(renderObject(po.Object, ns))
		}
		b.WriteString(" .\n\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write turtle document: %w", err)
	}
	return nil
}

func renderResource(t Term, ns Namespaces) string {
	if t.Kind == BlankTerm {
		return "_:" + t.Value
	}
	if c, ok := ns.Compact(t.Value); ok {
		return c
	}
	return "<" + t.Value + ">"
}

func renderPredicate(t Term, ns Namespaces) string {
	if t.Kind == IRITerm && t.Value == RDFType {
		return "a"
	}
	return renderResource(t, ns)
}

func renderObject(t Term, ns Namespaces) string {
	if t.Kind != LiteralTerm {
		return renderResource(t, ns)
	}
	return t.N3(ns)
}

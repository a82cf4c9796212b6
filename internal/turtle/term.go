package turtle

// Well-known IRIs the reader and the geometry traversal need.
const (
	RDFType  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFFirst = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	RDFRest  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	RDFNil   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"

	RDFSLabel         = "http://www.w3.org/2000/01/rdf-schema#label"
	DCTermsIdentifier = "http://purl.org/dc/terms/identifier"

	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble  = "http://www.w3.org/2001/XMLSchema#double"
	XSDBoolean = "http://www.w3.org/2001/XMLSchema#boolean"
)

// TermKind discriminates the three term shapes.
type TermKind int

const (
	IRITerm TermKind = iota
	BlankTerm
	LiteralTerm
)

// Term is one RDF term. A single comparable struct instead of an
// interface: terms key visited-sets and the subject index, so value
// equality has to be cheap and structural.
type Term struct {
	Kind     TermKind
	Value    string // IRI, blank label, or literal lexical form
	Datatype string // literal datatype IRI, "" for plain literals
	Lang     string // literal language tag, "" for none
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: IRITerm, Value: v} }

// Blank returns a blank-node term with the given label (no "_:").
func Blank(label string) Term { return Term{Kind: BlankTerm, Value: label} }

// Literal returns a literal term. Datatype and lang are mutually
// exclusive in Turtle; callers pass at most one.
func Literal(lex, datatype, lang string) Term {
	return Term{Kind: LiteralTerm, Value: lex, Datatype: datatype, Lang: lang}
}

// IsResource reports whether the term can appear in subject position and
// be traversed into (IRIs and blank nodes, never literals).
func (t Term) IsResource() bool { return t.Kind != LiteralTerm }

// N3 renders the term in Turtle syntax. Literal datatypes compact to
// prefix:local form when the table knows their namespace; IRIs render
// bracketed (subject/object compaction is the caller's concern).
func (t Term) N3(ns Namespaces) string {
	switch t.Kind {
	case BlankTerm:
		return "_:" + t.Value
	case LiteralTerm:
		out := `"` + stringEscaper.Replace(t.Value) + `"`
		if t.Lang != "" {
			return out + "@" + t.Lang
		}
		if t.Datatype != "" {
			if c, ok := ns.Compact(t.Datatype); ok {
				return out + "^^" + c
			}
			return out + "^^<" + t.Datatype + ">"
		}
		return out
	default:
		return "<" + t.Value + ">"
	}
}

// Triple is one parsed statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

package turtle

// PredicateObject is one (predicate, object) pair under a subject.
type PredicateObject struct {
	Predicate Term
	Object    Term
}

// Graph is an in-memory triple set indexed by subject. Insertion order is
// preserved per subject and across subjects so traversals and re-emission
// are deterministic. Built once, then read-only queries are safe from
// multiple goroutines.
type Graph struct {
	subjects []Term
	index    map[Term][]PredicateObject
	size     int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[Term][]PredicateObject)}
}

// Add appends one triple.
func (g *Graph) Add(s, p, o Term) {
	if _, ok := g.index[s]; !ok {
		g.subjects = append(g.subjects, s)
	}
	g.index[s] = append(g.index[s], PredicateObject{Predicate: p, Object: o})
	g.size++
}

// Len returns the triple count.
func (g *Graph) Len() int { return g.size }

// Subjects returns the distinct subjects in first-seen order. The slice
// is shared; callers must not mutate it.
func (g *Graph) Subjects() []Term { return g.subjects }

// PredicateObjects returns the pairs under a subject in insertion order.
func (g *Graph) PredicateObjects(s Term) []PredicateObject { return g.index[s] }

// SubjectsOfType returns the subjects carrying an rdf:type assertion for
// the given class, in first-seen order.
func (g *Graph) SubjectsOfType(class Term) []Term {
	rdfType := IRI(RDFType)
	var out []Term
	for _, s := range g.subjects {
		for _, po := range g.index[s] {
			if po.Predicate == rdfType && po.Object == class {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// RemoveSubject drops every triple under a subject and returns how many
// went away. Triples pointing at the subject from elsewhere are kept;
// dangling references are the caller's decision to make.
func (g *Graph) RemoveSubject(s Term) int {
	pos, ok := g.index[s]
	if !ok {
		return 0
	}
	delete(g.index, s)
	for i, sub := range g.subjects {
		if sub == s {
			g.subjects = append(g.subjects[:i], g.subjects[i+1:]...)
			break
		}
	}
	g.size -= len(pos)
	return len(pos)
}

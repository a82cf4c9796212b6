package geometry

import (
	"log/slog"
	"sort"
	"strconv"

	"github.com/gammazero/deque"

	"github.com/roach88/ifc2lbd/internal/schema"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// Anchor attributes tying the model proper to its geometry subtrees:
// type products reach representation maps through the first, products
// reach their shape definition through the second. Neither edge kind
// counts when deciding who still references a geometry entity.
const (
	anchorRepresentationMaps = "RepresentationMaps"
	anchorRepresentation     = "Representation"

	typeProductRoot  = "IfcTypeProduct"
	productShapeRoot = "IfcProductDefinitionShape"
)

// CycleAnomaly records one strongly connected component found among the
// geometry dependencies. Cycles are reported and resolved, never fatal:
// models occasionally carry mutually referencing representation items.
type CycleAnomaly struct {
	Members []int64 `json:"members"` // ascending entity ids
}

// Result is one dependency resolution outcome.
type Result struct {
	// Obsolete lists prunable entity ids, referenced entities before
	// their referencers, so removal in order never breaks a surviving
	// reference inside the set.
	Obsolete []int64
	// Retained lists candidate ids kept because something outside the
	// candidate set still references them, ascending.
	Retained []int64
	// Anomalies holds one entry per dependency cycle, in resolution
	// order.
	Anomalies []CycleAnomaly
	// Candidates is the size of the geometry candidate set.
	Candidates int
}

// Resolver classifies geometry-describing entities as obsolete or
// retained once their shapes live in a side channel.
type Resolver struct {
	idx    *ModelIndex
	reg    *schema.Registry
	logger *slog.Logger
}

// NewResolver builds a resolver over a fully fed index and the schema
// registry its subtype tests run against. A nil logger discards cycle
// reports.
func NewResolver(idx *ModelIndex, reg *schema.Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{idx: idx, reg: reg, logger: logger}
}

// Resolve computes the obsolete partition of the geometry candidate set.
//
// An entity is obsolete when every reference still pointing at it comes
// from inside the candidate set itself, anchor edges set aside. Entities
// in a dependency cycle are classified jointly: the whole component is
// obsolete only when the rule holds for every member.
func (r *Resolver) Resolve() *Result {
	candidates := r.collect()

	ids := make([]int64, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Depth-1 dependency edges between members, deduplicated.
	deps := make(map[int64][]int64, len(ids))
	for _, id := range ids {
		seen := make(map[int64]bool)
		for _, ref := range r.idx.Refs(id) {
			if !candidates[ref.Target] || seen[ref.Target] {
				continue
			}
			seen[ref.Target] = true
			deps[id] = append(deps[id], ref.Target)
		}
	}

	units, unitOf := condense(ids, deps)
	order := kahnOrder(units, unitOf, deps)

	result := &Result{Candidates: len(ids)}
	for _, u := range order {
		unit := units[u]
		if unit.cyclic {
			result.Anomalies = append(result.Anomalies, CycleAnomaly{Members: unit.members})
			r.logger.Warn("geometry dependency cycle, classifying members jointly",
				"size", len(unit.members),
				"members", unit.members)
		}
		obsolete := true
		for _, m := range unit.members {
			if !r.unreferenced(m, candidates) {
				obsolete = false
				break
			}
		}
		if obsolete {
			result.Obsolete = append(result.Obsolete, unit.members...)
		} else {
			result.Retained = append(result.Retained, unit.members...)
		}
	}
	sort.Slice(result.Retained, func(i, j int) bool { return result.Retained[i] < result.Retained[j] })
	return result
}

// collect builds the candidate set: the forward closure of every
// representation map a type product carries, plus the closure of every
// product definition shape including the shape itself.
func (r *Resolver) collect() map[int64]bool {
	candidates := make(map[int64]bool)
	for _, id := range r.idx.IDs() {
		t := r.idx.Type(id)
		if r.reg.IsSubtype(t, typeProductRoot) {
			for _, ref := range r.idx.Refs(id) {
				if ref.Attr == anchorRepresentationMaps {
					r.closure(ref.Target, candidates)
				}
			}
		}
		if r.reg.IsSubtype(t, productShapeRoot) {
			r.closure(id, candidates)
		}
	}
	return candidates
}

// closure adds seed and everything reachable from it to the set.
func (r *Resolver) closure(seed int64, into map[int64]bool) {
	if into[seed] {
		return
	}
	into[seed] = true
	var queue deque.Deque[int64]
	queue.PushBack(seed)
	for queue.Len() > 0 {
		id := queue.PopFront()
		for _, ref := range r.idx.Refs(id) {
			if into[ref.Target] {
				continue
			}
			into[ref.Target] = true
			queue.PushBack(ref.Target)
		}
	}
}

// unreferenced reports whether nothing outside the candidate set still
// references the entity once anchor edges are set aside.
func (r *Resolver) unreferenced(id int64, candidates map[int64]bool) bool {
	for _, b := range r.idx.Backrefs(id) {
		if r.severed(b, id) {
			continue
		}
		if !candidates[b.Source] {
			return false
		}
	}
	return true
}

// severed reports whether an inverse edge is one of the two anchor
// kinds.
func (r *Resolver) severed(b Backref, target int64) bool {
	switch b.Attr {
	case anchorRepresentationMaps:
		return r.reg.IsSubtype(r.idx.Type(b.Source), typeProductRoot)
	case anchorRepresentation:
		return r.reg.IsSubtype(r.idx.Type(target), productShapeRoot)
	}
	return false
}

// sccUnit is one strongly connected component, members ascending. A unit
// is cyclic when it has more than one member or a self reference.
type sccUnit struct {
	members []int64
	cyclic  bool
}

// condense collapses the dependency graph into its strongly connected
// components and maps every id to its unit.
func condense(ids []int64, deps map[int64][]int64) ([]sccUnit, map[int64]int) {
	sccs := tarjanSCC(ids, deps)
	units := make([]sccUnit, len(sccs))
	unitOf := make(map[int64]int, len(ids))
	for i, scc := range sccs {
		sort.Slice(scc, func(a, b int) bool { return scc[a] < scc[b] })
		units[i] = sccUnit{members: scc, cyclic: len(scc) > 1}
		for _, id := range scc {
			unitOf[id] = i
		}
	}
	for i := range units {
		if units[i].cyclic {
			continue
		}
		only := units[i].members[0]
		for _, dep := range deps[only] {
			if dep == only {
				units[i].cyclic = true
				break
			}
		}
	}
	return units, unitOf
}

// tarjanSCC finds strongly connected components over the candidate ids.
// Roots are visited in ascending id order so the output is deterministic
// for a given graph.
func tarjanSCC(ids []int64, deps map[int64][]int64) [][]int64 {
	var (
		index   int
		stack   []int64
		indices = make(map[int64]int, len(ids))
		lowlink = make(map[int64]int, len(ids))
		onStack = make(map[int64]bool, len(ids))
		sccs    [][]int64
	)

	var strongConnect func(int64)
	strongConnect = func(v int64) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range deps[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int64
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range ids {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return sccs
}

// kahnOrder sorts the condensed units dependencies-first. Units become
// ready level by level and each level is emitted in ascending order of
// its smallest member id, so equal graphs always order equally.
func kahnOrder(units []sccUnit, unitOf map[int64]int, deps map[int64][]int64) []int {
	remaining := make([]int, len(units))
	dependents := make([][]int, len(units))
	seen := make(map[[2]int]bool)
	for u := range units {
		for _, m := range units[u].members {
			for _, d := range deps[m] {
				v := unitOf[d]
				if v == u {
					continue
				}
				key := [2]int{u, v}
				if seen[key] {
					continue
				}
				seen[key] = true
				remaining[u]++
				dependents[v] = append(dependents[v], u)
			}
		}
	}

	var level []int
	for u := range units {
		if remaining[u] == 0 {
			level = append(level, u)
		}
	}

	var frontier deque.Deque[int]
	order := make([]int, 0, len(units))
	for len(level) > 0 {
		sort.Slice(level, func(a, b int) bool {
			return units[level[a]].members[0] < units[level[b]].members[0]
		})
		for _, u := range level {
			frontier.PushBack(u)
		}
		level = level[:0]
		for frontier.Len() > 0 {
			u := frontier.PopFront()
			order = append(order, u)
			for _, d := range dependents[u] {
				remaining[d]--
				if remaining[d] == 0 {
					level = append(level, d)
				}
			}
		}
	}
	return order
}

// Prune drops the Turtle blocks of obsolete entities from a serialized
// model graph. Subjects are located through the instance namespace; the
// removed triple count is returned. Resolve decides, Prune applies:
// nothing is removed until a caller asks.
func Prune(g *turtle.Graph, ns turtle.Namespaces, obsolete []int64) int {
	base := ns.URI("inst")
	if base == "" {
		return 0
	}
	removed := 0
	for _, id := range obsolete {
		removed += g.RemoveSubject(turtle.IRI(base + "ref_" + strconv.FormatInt(id, 10)))
	}
	return removed
}

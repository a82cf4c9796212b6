package geometry

import "github.com/roach88/ifc2lbd/internal/model"

// Ref is one forward reference: the attribute it travels under and the
// referenced entity id.
type Ref struct {
	Attr   string
	Target int64
}

// Backref is one inverse reference: the referencing entity and the
// attribute it references through.
type Backref struct {
	Source int64
	Attr   string
}

// ModelIndex holds the reference structure of a decoded model: per
// entity its type, its depth-1 forward references in attribute order,
// and the references pointing back at it. Feed every entity once with
// Add; afterwards the index is read-only and safe for concurrent
// queries.
type ModelIndex struct {
	order []int64
	types map[int64]string
	fwd   map[int64][]Ref
	inv   map[int64][]Backref
}

// NewModelIndex returns an empty index.
func NewModelIndex() *ModelIndex {
	return &ModelIndex{
		types: make(map[int64]string),
		fwd:   make(map[int64][]Ref),
		inv:   make(map[int64][]Backref),
	}
}

// Add records one entity. Records without a usable id or type are
// ignored, as is a second record carrying an already-indexed id.
func (x *ModelIndex) Add(e *model.Entity) {
	if e == nil || e.ID == 0 || e.Type == "" {
		return
	}
	if _, ok := x.types[e.ID]; ok {
		return
	}
	x.order = append(x.order, e.ID)
	x.types[e.ID] = e.Type
	var refs []Ref
	for _, attr := range e.Attrs {
		collectRefs(attr.Name, attr.Value, &refs)
	}
	if len(refs) == 0 {
		return
	}
	x.fwd[e.ID] = refs
	for _, r := range refs {
		x.inv[r.Target] = append(x.inv[r.Target], Backref{Source: e.ID, Attr: r.Attr})
	}
}

// collectRefs walks one attribute value gathering entity references.
// Collections and opaque maps are transparent at any depth and typed
// wrappers contribute their inner value; a reference buried in an
// unencodable shape still keeps its target alive.
func collectRefs(attr string, v model.Value, out *[]Ref) {
	switch val := v.(type) {
	case model.Ref:
		*out = append(*out, Ref{Attr: attr, Target: int64(val)})
	case model.Collection:
		for _, item := range val.Items {
			collectRefs(attr, item, out)
		}
	case model.Typed:
		collectRefs(attr, val.Inner, out)
	case model.Map:
		for _, f := range val.Fields {
			collectRefs(attr, f.Value, out)
		}
	}
}

// Len returns how many entities the index holds.
func (x *ModelIndex) Len() int { return len(x.order) }

// IDs returns the indexed ids in feed order. The slice is shared;
// callers must not mutate it.
func (x *ModelIndex) IDs() []int64 { return x.order }

// Type returns the entity type of an id, "" when the id is unknown.
func (x *ModelIndex) Type(id int64) string { return x.types[id] }

// Refs returns the depth-1 forward references of an entity in attribute
// order.
func (x *ModelIndex) Refs(id int64) []Ref { return x.fwd[id] }

// Backrefs returns the references pointing at an entity, in the feed
// order of their sources.
func (x *ModelIndex) Backrefs(id int64) []Backref { return x.inv[id] }

// Package schema resolves collection semantics for entity attributes.
//
// IFC delivers most attributes as scalars, but the EXPRESS schemas declare
// some as LIST, SET or ARRAY aggregates, and the Turtle encoding differs
// per kind. Those declarations are extracted offline into per-version
// collection maps; this package loads a map, flattens the inheritance
// hierarchy it carries, and answers (entity type, attribute) lookups.
//
// Lookups are permissive: a type or attribute the map does not know is
// reported as KindNone rather than an error, so unknown entities degrade
// to scalar handling instead of failing a conversion.
package schema

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:embed maps/*.json
var mapFS embed.FS

// ErrUnknownSchema reports a schema version no embedded collection map
// covers.
var ErrUnknownSchema = errors.New("no collection map for schema version")

// MapError wraps a failure to load or validate a collection map.
type MapError struct {
	Source string
	Err    error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("collection map %s: %v", e.Source, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// mapFile is the on-disk shape of a collection map. The supertype table
// holds direct parent links; inheritance is flattened at load time.
type mapFile struct {
	Schema      string                       `json:"schema"`
	Supertype   map[string]string            `json:"supertype"`
	Collections map[string]map[string]string `json:"collections"`
}

// AttributeKind pairs an attribute name with its resolved kind, for
// inspection output.
type AttributeKind struct {
	Attribute string
	Kind      CollectionKind
}

// Registry answers collection-kind lookups for one schema version. It is
// built once and read-only afterwards, safe for concurrent use.
type Registry struct {
	schema string
	kinds  map[string]map[string]CollectionKind
	super  map[string]string
}

// families maps a lowercase version marker to an embedded map file. Order
// matters: 4x3 must match before the bare 4.
var families = []struct {
	marker string
	file   string
}{
	{"4x3", "maps/ifc4x3_add2.json"},
	{"4", "maps/ifc4.json"},
	{"2x3", "maps/ifc2x3.json"},
}

// Load builds a registry from the embedded map whose family matches the
// given schema version string ("IFC4X3_ADD2", "IFC4", "ifc2x3", ...).
func Load(schemaID string) (*Registry, error) {
	lower := strings.ToLower(schemaID)
	for _, f := range families {
		if strings.Contains(lower, f.marker) {
			data, err := mapFS.ReadFile(f.file)
			if err != nil {
				return nil, &MapError{Source: f.file, Err: err}
			}
			return New(data)
		}
	}
	return nil, fmt.Errorf("%w: %q (known families: IFC2X3, IFC4, IFC4X3)", ErrUnknownSchema, schemaID)
}

// New builds a registry from raw collection-map JSON. The data is checked
// against the map schema before anything is parsed, and the supertype
// hierarchy is flattened so later lookups are a single map access.
func New(data []byte) (*Registry, error) {
	if err := validateMap(data); err != nil {
		return nil, &MapError{Source: "map data", Err: err}
	}
	var mf mapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, &MapError{Source: "map data", Err: err}
	}
	kinds, err := flatten(&mf)
	if err != nil {
		return nil, &MapError{Source: mf.Schema, Err: err}
	}
	return &Registry{schema: mf.Schema, kinds: kinds, super: mf.Supertype}, nil
}

// flatten resolves every type's collection attributes through its
// supertype chain, child entries overriding ancestors.
func flatten(mf *mapFile) (map[string]map[string]CollectionKind, error) {
	out := make(map[string]map[string]CollectionKind, len(mf.Collections))
	seen := make(map[string][]string) // memoized root-down lineages

	lineage := func(t string) ([]string, error) {
		if l, ok := seen[t]; ok {
			return l, nil
		}
		var chain []string
		onPath := make(map[string]bool)
		for cur := t; cur != ""; cur = mf.Supertype[cur] {
			if onPath[cur] {
				return nil, fmt.Errorf("supertype cycle through %s", cur)
			}
			onPath[cur] = true
			chain = append(chain, cur)
		}
		// reverse to root-down order
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
		seen[t] = chain
		return chain, nil
	}

	types := make(map[string]bool, len(mf.Collections)+len(mf.Supertype))
	for t := range mf.Collections {
		types[t] = true
	}
	for t := range mf.Supertype {
		types[t] = true
	}

	for t := range types {
		chain, err := lineage(t)
		if err != nil {
			return nil, err
		}
		var merged map[string]CollectionKind
		for _, ancestor := range chain {
			for attr, raw := range mf.Collections[ancestor] {
				kind, err := ParseKind(raw)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", ancestor, attr, err)
				}
				if merged == nil {
					merged = make(map[string]CollectionKind)
				}
				merged[attr] = kind
			}
		}
		if merged != nil {
			out[t] = merged
		}
	}
	return out, nil
}

// Schema returns the version identifier the loaded map declares.
func (r *Registry) Schema() string { return r.schema }

// Kind reports the declared collection kind of an attribute on a type.
// Unknown types and unlisted attributes report KindNone.
func (r *Registry) Kind(entityType, attribute string) CollectionKind {
	attrs, ok := r.kinds[entityType]
	if !ok {
		return KindNone
	}
	kind, ok := attrs[attribute]
	if !ok {
		return KindNone
	}
	return kind
}

// IsSubtype reports whether entityType equals ancestor or inherits from it
// through the map's supertype chain. Types the map does not know have no
// ancestors.
func (r *Registry) IsSubtype(entityType, ancestor string) bool {
	for t := entityType; t != ""; t = r.super[t] {
		if t == ancestor {
			return true
		}
	}
	return false
}

// Collections returns the flattened collection attributes of a type,
// sorted by attribute name. Empty for types without collection semantics.
func (r *Registry) Collections(entityType string) []AttributeKind {
	attrs := r.kinds[entityType]
	if len(attrs) == 0 {
		return nil
	}
	out := make([]AttributeKind, 0, len(attrs))
	for a, k := range attrs {
		out = append(out, AttributeKind{Attribute: a, Kind: k})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attribute < out[j].Attribute })
	return out
}

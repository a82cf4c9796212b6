package serializer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/ifc2lbd/internal/model"
	"github.com/roach88/ifc2lbd/internal/schema"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// ifcPrefix is the prefix every type and attribute predicate is emitted
// under. The default namespace table binds it.
const ifcPrefix = "ifc:"

// UnsupportedShapeError reports an attribute value no Turtle encoding
// exists for. The serializer omits the attribute and keeps going.
type UnsupportedShapeError struct {
	Entity int64
	Attr   string
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("entity %d attribute %q: unsupported value shape: %s",
		e.Entity, e.Attr, e.Reason)
}

// Encoded is one attribute value rendered for object position.
type Encoded struct {
	// Object is the Turtle object text.
	Object string
	// Count is the number of triples the attribute statement accounts
	// for. Auxiliary statements carry their own counts separately.
	Count int
}

// Aux is one pending auxiliary typed-entity statement.
type Aux struct {
	Text  string // complete statement line, trailing newline included
	Count int    // triples the statement accounts for
}

// Encoder turns attribute values into Turtle object syntax with exact
// triple counts. One encoder serves one output document; Begin scopes
// the typed-entity sequence to the current entity.
type Encoder struct {
	reg    *schema.Registry
	floats turtle.FloatStyle
	origin int64
	seq    int
	aux    []Aux
}

// NewEncoder returns an encoder resolving collection kinds against reg.
func NewEncoder(reg *schema.Registry, floats turtle.FloatStyle) *Encoder {
	return &Encoder{reg: reg, floats: floats}
}

// Begin starts a new owning entity: the typed-entity sequence restarts
// at 1 and any unclaimed auxiliaries are discarded.
func (enc *Encoder) Begin(origin int64) {
	enc.origin = origin
	enc.seq = 0
	enc.aux = nil
}

// Flush hands over the auxiliary statements accumulated since Begin, in
// the order their inner values finished encoding.
func (enc *Encoder) Flush() []Aux {
	out := enc.aux
	enc.aux = nil
	return out
}

// Attribute encodes one attribute of the current entity. entityType
// resolves declared collection kinds through the registry; values with
// no encoding return an *UnsupportedShapeError.
func (enc *Encoder) Attribute(entityType, name string, v model.Value) (Encoded, error) {
	switch val := v.(type) {
	case model.Collection:
		kind := enc.reg.Kind(entityType, name)
		if kind == schema.KindNone {
			kind = val.Kind
		}
		obj, count, err := enc.collection(val.Items, kind, name)
		if err != nil {
			return Encoded{}, err
		}
		return Encoded{Object: obj, Count: count}, nil
	case model.Ref:
		return Encoded{Object: refName(int64(val)), Count: 1}, nil
	case model.Typed:
		id, err := enc.allocTyped(val, name)
		if err != nil {
			return Encoded{}, err
		}
		return Encoded{Object: id, Count: 1}, nil
	default:
		lit, ok := enc.literal(v)
		if !ok {
			return Encoded{}, enc.unsupported(name, v)
		}
		return Encoded{Object: lit, Count: 1}, nil
	}
}

func refName(id int64) string {
	return "inst:ref_" + strconv.FormatInt(id, 10)
}

// collection renders a top-level collection attribute. Sets become a
// comma-separated object list costing one triple per item; lists and
// arrays become a parenthesized RDF collection costing 1 + 2n plus 2
// per directly nested item. An empty collection of any kind renders as
// the () marker and costs exactly 1.
func (enc *Encoder) collection(items []model.Value, kind schema.CollectionKind, attr string) (string, int, error) {
	if len(items) == 0 {
		return "()", 1, nil
	}
	parts := make([]string, 0, len(items))
	var nested []int
	for _, item := range items {
		text, size, err := enc.item(item, attr)
		if err != nil {
			return "", 0, err
		}
		parts = append(parts, text)
		if size > 0 {
			nested = append(nested, size)
		}
	}
	switch kind {
	case schema.KindSet:
		return strings.Join(parts, ", "), len(parts), nil
	case schema.KindList, schema.KindArray:
		return renderList(parts), listCount(len(parts), nested), nil
	default:
		// No declared kind. All-reference collections read as sets,
		// anything mixed as an ordered list.
		allRefs := true
		for _, p := range parts {
			if !strings.HasPrefix(p, "inst:ref_") {
				allRefs = false
				break
			}
		}
		if allRefs {
			return strings.Join(parts, ", "), len(parts), nil
		}
		return renderList(parts), listCount(len(parts), nested), nil
	}
}

func renderList(parts []string) string {
	return "( " + strings.Join(parts, " ") + " )"
}

func listCount(n int, nested []int) int {
	count := 1 + 2*n
	for _, size := range nested {
		count += 2 * size
	}
	return count
}

// item renders one direct member of a top-level collection. The second
// result is the member's own length when it is a nested collection, the
// list count formula charges 2 triples per nested item.
func (enc *Encoder) item(v model.Value, attr string) (string, int, error) {
	switch val := v.(type) {
	case model.Ref:
		return refName(int64(val)), 0, nil
	case model.Typed:
		id, err := enc.allocTyped(val, attr)
		return id, 0, err
	case model.Collection:
		text, err := enc.deep(val.Items, attr, 1)
		return text, len(val.Items), err
	default:
		lit, ok := enc.literal(v)
		if !ok {
			return "", 0, enc.unsupported(attr, v)
		}
		return lit, 0, nil
	}
}

// deep renders a collection nested below the top level. Only
// references, primitives, and further collections exist down here;
// typed values have no synthetic-id slot this deep and are rejected.
func (enc *Encoder) deep(items []model.Value, attr string, depth int) (string, error) {
	if depth > model.MaxDepth {
		return "", fmt.Errorf("attribute %q: collection nesting deeper than %d", attr, model.MaxDepth)
	}
	if len(items) == 0 {
		return "()", nil
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case model.Ref:
			parts = append(parts, refName(int64(val)))
		case model.Collection:
			text, err := enc.deep(val.Items, attr, depth+1)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
		case model.Typed:
			return "", &UnsupportedShapeError{
				Entity: enc.origin,
				Attr:   attr,
				Reason: "typed value below the top collection level",
			}
		default:
			lit, ok := enc.literal(item)
			if !ok {
				return "", enc.unsupported(attr, item)
			}
			parts = append(parts, lit)
		}
	}
	return "( " + strings.Join(parts, " ") + " )", nil
}

// allocTyped assigns the next synthetic id for the current entity and
// queues the auxiliary statement declaring the inner value under the
// wrapped type.
func (enc *Encoder) allocTyped(v model.Typed, attr string) (string, error) {
	enc.seq++
	id := refName(enc.origin) + "_t" + strconv.Itoa(enc.seq)
	obj, count, err := enc.typedInner(v.Inner, attr)
	if err != nil {
		return "", err
	}
	enc.aux = append(enc.aux, Aux{
		Text:  id + " " + ifcPrefix + v.Type + " " + obj + " .\n",
		Count: count,
	})
	return id, nil
}

// typedInner encodes the value wrapped by a typed entity, following the
// same rules as any object position.
func (enc *Encoder) typedInner(v model.Value, attr string) (string, int, error) {
	switch val := v.(type) {
	case model.Collection:
		text, err := enc.deep(val.Items, attr, 1)
		if err != nil {
			return "", 0, err
		}
		var nested []int
		for _, item := range val.Items {
			if inner, ok := item.(model.Collection); ok {
				nested = append(nested, len(inner.Items))
			}
		}
		if len(val.Items) == 0 {
			return text, 1, nil
		}
		return text, listCount(len(val.Items), nested), nil
	case model.Ref:
		return refName(int64(val)), 1, nil
	case model.Typed:
		id, err := enc.allocTyped(val, attr)
		return id, 1, err
	default:
		lit, ok := enc.literal(v)
		if !ok {
			return "", 0, enc.unsupported(attr, v)
		}
		return lit, 1, nil
	}
}

// literal renders a primitive value, reporting false for anything that
// is not one.
func (enc *Encoder) literal(v model.Value) (string, bool) {
	switch val := v.(type) {
	case model.String:
		return turtle.FormatString(string(val)), true
	case model.Int:
		return turtle.FormatInt(int64(val)), true
	case model.Float:
		return turtle.FormatFloat(float64(val), enc.floats), true
	case model.Bool:
		return turtle.FormatBool(bool(val)), true
	}
	return "", false
}

func (enc *Encoder) unsupported(attr string, v model.Value) error {
	reason := "unrecognized object shape"
	if _, isNull := v.(model.Null); isNull {
		reason = "null value"
	}
	return &UnsupportedShapeError{Entity: enc.origin, Attr: attr, Reason: reason}
}

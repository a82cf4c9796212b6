// Package model is the in-memory shape of one engineering-model stream:
// entities in delivery order, each carrying ordered attributes whose
// values form a small sealed union. Decoding preserves attribute and
// collection order exactly as delivered; nothing here interprets values,
// that is the serializer's job.
package model

import "github.com/roach88/ifc2lbd/internal/schema"

// Value is a sealed interface over the attribute value shapes a stream
// record can carry. Only Null, String, Int, Float, Bool, Ref, Typed,
// Collection, and Map implement it.
type Value interface {
	attrValue() // sealed
}

// Null is an explicit JSON null. Top-level null attributes are dropped
// during decode; Null only survives inside collections and typed
// wrappers, where the encoder rejects it by name.
type Null struct{}

func (Null) attrValue() {}

// String is a plain string value.
type String string

func (String) attrValue() {}

// Int is an integer value. Always int64; numbers that do not fit decode
// as Float.
type Int int64

func (Int) attrValue() {}

// Float is a floating-point value.
type Float float64

func (Float) attrValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) attrValue() {}

// Ref points at another entity of the same model by numeric id.
type Ref int64

func (Ref) attrValue() {}

// Typed wraps an inner value in a schema type name, the
// {"type": ..., "value": ...} wire shape.
type Typed struct {
	Type  string
	Inner Value
}

func (Typed) attrValue() {}

// Collection is an ordered multi-value. Kind is KindUnknown when the
// wire gave no hint; the encoder refines it against the schema registry
// for top-level attributes.
type Collection struct {
	Kind  schema.CollectionKind
	Items []Value
}

func (Collection) attrValue() {}

// Map preserves an object that is neither a reference nor a typed
// value. No Turtle encoding exists for it; encoders reject it so the
// offending attribute can be named and skipped.
type Map struct {
	Fields []Attribute
}

func (Map) attrValue() {}

// Attribute is one named value under an entity, in delivery order.
type Attribute struct {
	Name  string
	Value Value
}

// Entity is one stream record. ID zero means the record carried no
// usable id; such records are skipped by the serializer.
type Entity struct {
	ID    int64
	Type  string
	Attrs []Attribute
}

// Attr returns the named attribute value, if present.
func (e *Entity) Attr(name string) (Value, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

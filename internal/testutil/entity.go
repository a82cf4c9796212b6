package testutil

import (
	"github.com/roach88/ifc2lbd/internal/model"
	"github.com/roach88/ifc2lbd/internal/schema"
)

// EntityBuilder assembles model entities without a JSONL round trip.
//
// Attributes keep the order they are added in, matching how the stream
// decoder preserves wire order. Builders are single-use: Build returns
// the one entity the builder holds.
type EntityBuilder struct {
	entity model.Entity
}

// Entity starts a builder for one record.
func Entity(id int64, entityType string) *EntityBuilder {
	return &EntityBuilder{entity: model.Entity{ID: id, Type: entityType}}
}

// Attr appends one attribute value.
func (b *EntityBuilder) Attr(name string, v model.Value) *EntityBuilder {
	b.entity.Attrs = append(b.entity.Attrs, model.Attribute{Name: name, Value: v})
	return b
}

// Str appends a string attribute.
func (b *EntityBuilder) Str(name, v string) *EntityBuilder {
	return b.Attr(name, model.String(v))
}

// Ref appends a reference attribute.
func (b *EntityBuilder) Ref(name string, target int64) *EntityBuilder {
	return b.Attr(name, model.Ref(target))
}

// Refs appends a collection attribute holding only references. The kind
// is left to the schema registry, as on the wire.
func (b *EntityBuilder) Refs(name string, targets ...int64) *EntityBuilder {
	items := make([]model.Value, len(targets))
	for i, t := range targets {
		items[i] = model.Ref(t)
	}
	return b.Attr(name, model.Collection{Kind: schema.KindUnknown, Items: items})
}

// Typed appends a typed-wrapper attribute.
func (b *EntityBuilder) Typed(name, wrapperType string, inner model.Value) *EntityBuilder {
	return b.Attr(name, model.Typed{Type: wrapperType, Inner: inner})
}

// Build returns the assembled entity.
func (b *EntityBuilder) Build() *model.Entity {
	return &b.entity
}

package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeRecord renders an entity back to its stream record form: id,
// type, then every attribute in delivery order. Inverse of DecodeRecord
// for every value DecodeRecord can produce.
func EncodeRecord(e *Entity) ([]byte, error) {
	b := append([]byte(nil), `{"id":`...)
	b = strconv.AppendInt(b, e.ID, 10)
	b = append(b, `,"type":`...)
	b, err := appendString(b, e.Type)
	if err != nil {
		return nil, err
	}
	for _, a := range e.Attrs {
		b = append(b, ',')
		if b, err = appendMember(b, a); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
	}
	return append(b, '}'), nil
}

// EncodeAttrs renders an ordered attribute list as a bare JSON object,
// key order preserved. DecodeAttrs reads it back.
func EncodeAttrs(attrs []Attribute) ([]byte, error) {
	b := []byte{'{'}
	for i, a := range attrs {
		if i > 0 {
			b = append(b, ',')
		}
		var err error
		if b, err = appendMember(b, a); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
	}
	return append(b, '}'), nil
}

func appendMember(b []byte, a Attribute) ([]byte, error) {
	b, err := appendString(b, a.Name)
	if err != nil {
		return nil, err
	}
	b = append(b, ':')
	return appendValue(b, a.Value)
}

func appendString(b []byte, s string) ([]byte, error) {
	quoted, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(b, quoted...), nil
}

func appendValue(b []byte, v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return append(b, "null"...), nil
	case String:
		return appendString(b, string(val))
	case Int:
		return strconv.AppendInt(b, int64(val), 10), nil
	case Float:
		f := float64(val)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("float %v has no JSON form", f)
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		// keep float-ness through a decode round trip
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return append(b, s...), nil
	case Bool:
		return strconv.AppendBool(b, bool(val)), nil
	case Ref:
		b = append(b, `{"ref":`...)
		b = strconv.AppendInt(b, int64(val), 10)
		return append(b, '}'), nil
	case Typed:
		b = append(b, `{"type":`...)
		b, err := appendString(b, val.Type)
		if err != nil {
			return nil, err
		}
		b = append(b, `,"value":`...)
		if b, err = appendValue(b, val.Inner); err != nil {
			return nil, err
		}
		return append(b, '}'), nil
	case Collection:
		b = append(b, '[')
		for i, item := range val.Items {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = appendValue(b, item); err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	case Map:
		b = append(b, '{')
		for i, f := range val.Fields {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = appendMember(b, f); err != nil {
				return nil, err
			}
		}
		return append(b, '}'), nil
	default:
		return nil, fmt.Errorf("unencodable value %T", v)
	}
}

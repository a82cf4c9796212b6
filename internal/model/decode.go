package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ifc2lbd/internal/schema"
)

// MaxDepth bounds value nesting during decode so adversarial input
// cannot blow the stack. Real model streams nest two or three levels.
const MaxDepth = 64

// DecodeRecord decodes one stream record. Attribute order follows key
// order in the input; "id" and "type" fill the entity header and never
// appear as attributes; top-level null attributes are dropped.
func DecodeRecord(data []byte) (*Entity, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	e := &Entity{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("record key is %T, want string", tok)
		}
		switch key {
		case "id":
			n, err := decodeValue(dec, 0)
			if err != nil {
				return nil, fmt.Errorf("id: %w", err)
			}
			id, ok := n.(Int)
			if !ok {
				return nil, fmt.Errorf("id is %T, want integer", n)
			}
			e.ID = int64(id)
		case "type":
			n, err := decodeValue(dec, 0)
			if err != nil {
				return nil, fmt.Errorf("type: %w", err)
			}
			s, ok := n.(String)
			if !ok {
				return nil, fmt.Errorf("type is %T, want string", n)
			}
			e.Type = string(s)
		default:
			v, err := decodeValue(dec, 0)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", key, err)
			}
			if _, isNull := v.(Null); isNull {
				continue
			}
			e.Attrs = append(e.Attrs, Attribute{Name: key, Value: v})
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after record")
	}
	return e, nil
}

// DecodeAttrs decodes a bare attribute object, the shape EncodeAttrs
// writes. Key order is preserved; null members are dropped the same way
// DecodeRecord drops them.
func DecodeAttrs(data []byte) ([]Attribute, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var attrs []Attribute
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("attribute key is %T, want string", tok)
		}
		v, err := decodeValue(dec, 0)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		if _, isNull := v.(Null); isNull {
			continue
		}
		attrs = append(attrs, Attribute{Name: key, Value: v})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after attributes")
	}
	return attrs, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("unexpected token %v, want %q", tok, want)
	}
	return nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("value nesting deeper than %d", MaxDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec, depth)
		case '{':
			return decodeObject(dec, depth)
		default:
			return nil, fmt.Errorf("unexpected %q", t)
		}
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("unparseable number %q", t)
		}
		return Float(f), nil
	case nil:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	col := Collection{Kind: schema.KindUnknown}
	for dec.More() {
		item, err := decodeValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		col.Items = append(col.Items, item)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return col, nil
}

// decodeObject reads a full object and classifies it. A "ref" member
// with an integer value wins, then the type/value pair, then the object
// falls through as an opaque Map.
func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	var fields []Attribute
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, want string", tok)
		}
		v, err := decodeValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Attribute{Name: key, Value: v})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	get := func(name string) (Value, bool) {
		for _, f := range fields {
			if f.Name == name {
				return f.Value, true
			}
		}
		return nil, false
	}
	if v, ok := get("ref"); ok {
		if id, ok := v.(Int); ok {
			return Ref(id), nil
		}
		return Map{Fields: fields}, nil
	}
	typ, hasType := get("type")
	inner, hasValue := get("value")
	if hasType && hasValue {
		if name, ok := typ.(String); ok {
			return Typed{Type: string(name), Inner: inner}, nil
		}
	}
	return Map{Fields: fields}, nil
}

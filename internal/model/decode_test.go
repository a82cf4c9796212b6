package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ifc2lbd/internal/schema"
)

func TestDecodeRecordBasic(t *testing.T) {
	e, err := DecodeRecord([]byte(`{"id": 42, "type": "IfcWall", "name": "N1", "height": 2.5, "count": 3, "loadBearing": true}`))
	require.NoError(t, err)
	assert.Equal(t, int64(42), e.ID)
	assert.Equal(t, "IfcWall", e.Type)
	require.Len(t, e.Attrs, 4)
	assert.Equal(t, Attribute{Name: "name", Value: String("N1")}, e.Attrs[0])
	assert.Equal(t, Attribute{Name: "height", Value: Float(2.5)}, e.Attrs[1])
	assert.Equal(t, Attribute{Name: "count", Value: Int(3)}, e.Attrs[2])
	assert.Equal(t, Attribute{Name: "loadBearing", Value: Bool(true)}, e.Attrs[3])
}

func TestDecodeRecordOrderAndNulls(t *testing.T) {
	// id and type can appear anywhere; attribute order follows the
	// remaining keys, nulls drop out
	e, err := DecodeRecord([]byte(`{"type": "IfcDoor", "b": 1, "id": 9, "a": null, "c": 2}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9), e.ID)
	assert.Equal(t, "IfcDoor", e.Type)
	require.Len(t, e.Attrs, 2)
	assert.Equal(t, "b", e.Attrs[0].Name)
	assert.Equal(t, "c", e.Attrs[1].Name)
}

func TestDecodeRecordObjectShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{
			name: "reference",
			in:   `{"id":1,"type":"T","v":{"ref":7}}`,
			want: Ref(7),
		},
		{
			name: "typed value",
			in:   `{"id":1,"type":"T","v":{"type":"IfcLabel","value":"Oak"}}`,
			want: Typed{Type: "IfcLabel", Inner: String("Oak")},
		},
		{
			name: "typed value keys reversed",
			in:   `{"id":1,"type":"T","v":{"value":5,"type":"IfcInteger"}}`,
			want: Typed{Type: "IfcInteger", Inner: Int(5)},
		},
		{
			name: "ref wins over typed shape",
			in:   `{"id":1,"type":"T","v":{"ref":3,"type":"X","value":1}}`,
			want: Ref(3),
		},
		{
			name: "non integer ref is opaque",
			in:   `{"id":1,"type":"T","v":{"ref":"x"}}`,
			want: Map{Fields: []Attribute{{Name: "ref", Value: String("x")}}},
		},
		{
			name: "unrecognized object is opaque",
			in:   `{"id":1,"type":"T","v":{"x":1}}`,
			want: Map{Fields: []Attribute{{Name: "x", Value: Int(1)}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := DecodeRecord([]byte(tt.in))
			require.NoError(t, err)
			require.Len(t, e.Attrs, 1)
			assert.Equal(t, tt.want, e.Attrs[0].Value)
		})
	}
}

func TestDecodeRecordCollections(t *testing.T) {
	e, err := DecodeRecord([]byte(`{"id":1,"type":"T","pts":[[1,2],[3,4]],"mixed":["a",null,{"ref":5}]}`))
	require.NoError(t, err)
	require.Len(t, e.Attrs, 2)

	pts, ok := e.Attrs[0].Value.(Collection)
	require.True(t, ok)
	assert.Equal(t, schema.KindUnknown, pts.Kind)
	require.Len(t, pts.Items, 2)
	assert.Equal(t,
		Collection{Kind: schema.KindUnknown, Items: []Value{Int(1), Int(2)}},
		pts.Items[0])

	mixed := e.Attrs[1].Value.(Collection)
	assert.Equal(t, []Value{String("a"), Null{}, Ref(5)}, mixed.Items)
}

func TestDecodeRecordNumberForms(t *testing.T) {
	e, err := DecodeRecord([]byte(`{"id":1,"type":"T","a":1e3,"b":9223372036854775807,"c":5.0}`))
	require.NoError(t, err)
	assert.Equal(t, Float(1000), e.Attrs[0].Value)
	assert.Equal(t, Int(9223372036854775807), e.Attrs[1].Value)
	assert.Equal(t, Float(5), e.Attrs[2].Value)
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "not an object", in: `[1]`},
		{name: "id not integer", in: `{"id":"x","type":"T"}`},
		{name: "id fractional", in: `{"id":1.5,"type":"T"}`},
		{name: "type not string", in: `{"id":1,"type":7}`},
		{name: "trailing data", in: `{"id":1,"type":"T"} extra`},
		{name: "truncated", in: `{"id":1,"type":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestDecodeRecordDepthCeiling(t *testing.T) {
	deep := `{"id":1,"type":"T","v":` + strings.Repeat("[", 70) + "1" + strings.Repeat("]", 70) + `}`
	_, err := DecodeRecord([]byte(deep))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting")
}

func TestEntityAttr(t *testing.T) {
	e := &Entity{ID: 1, Type: "T", Attrs: []Attribute{
		{Name: "a", Value: Int(1)},
		{Name: "b", Value: String("x")},
	}}
	v, ok := e.Attr("b")
	assert.True(t, ok)
	assert.Equal(t, String("x"), v)
	_, ok = e.Attr("missing")
	assert.False(t, ok)
}

package model

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSourceSchemaHeader(t *testing.T) {
	src := NewStreamSource(strings.NewReader(
		"{\"schema\":\"IFC4\"}\n{\"id\":1,\"type\":\"IfcWall\"}\n"), "")
	assert.Equal(t, "IFC4", src.Schema())

	e, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamSourceExplicitSchemaWins(t *testing.T) {
	src := NewStreamSource(strings.NewReader(
		"{\"schema\":\"IFC4\"}\n{\"id\":1,\"type\":\"IfcWall\"}\n"), "IFC2X3")
	assert.Equal(t, "IFC2X3", src.Schema())

	// the header line is still consumed, not replayed as a record
	e, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
}

func TestStreamSourceNoHeader(t *testing.T) {
	src := NewStreamSource(strings.NewReader(
		"\n{\"id\":1,\"type\":\"IfcWall\"}\n\n{\"id\":2,\"type\":\"IfcDoor\"}\n"), "IFC4")
	assert.Equal(t, "IFC4", src.Schema())

	e, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)

	e, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.ID)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamSourceMalformedLine(t *testing.T) {
	src := NewStreamSource(strings.NewReader(
		"{\"id\":1,\"type\":\"A\"}\nnot json\n{\"id\":2,\"type\":\"B\"}\n"), "IFC4")

	e, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)

	_, err = src.Next()
	var malformed *MalformedEntryError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)

	e, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.ID)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamSourceEmpty(t *testing.T) {
	src := NewStreamSource(strings.NewReader(""), "IFC4")
	_, err := src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSliceSource(t *testing.T) {
	a := &Entity{ID: 1, Type: "A"}
	b := &Entity{ID: 2, Type: "B"}
	src := NewSliceSource("IFC4", a, b)
	assert.Equal(t, "IFC4", src.Schema())

	got, err := src.Next()
	require.NoError(t, err)
	assert.Same(t, a, got)

	got, err = src.Next()
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = src.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

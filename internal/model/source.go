package model

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Source yields the entities of one model in delivery order.
type Source interface {
	// Schema identifies the model's schema version, e.g. "IFC4X3_ADD2".
	Schema() string
	// Next returns the next entity. io.EOF ends the stream. A
	// *MalformedEntryError marks one undecodable record; the stream
	// stays usable afterwards.
	Next() (*Entity, error)
}

// MalformedEntryError reports a stream line that could not be decoded
// into an entity. Callers typically log it and move on.
type MalformedEntryError struct {
	Line int
	Err  error
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed stream entry at line %d: %v", e.Line, e.Err)
}

func (e *MalformedEntryError) Unwrap() error { return e.Err }

// maxLineBytes caps one record line. Geometry-bearing entities carry
// megabytes of coordinate data, so the cap is generous.
const maxLineBytes = 64 << 20

// StreamSource reads newline-delimited JSON records. A first line of
// the shape {"schema": "..."} is consumed as a stream header; an
// explicit schema passed by the caller takes precedence over it.
type StreamSource struct {
	schema  string
	sc      *bufio.Scanner
	line    int
	pending []byte
}

// NewStreamSource wraps a record stream. schema may be empty when the
// stream itself declares one.
func NewStreamSource(r io.Reader, schema string) *StreamSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	s := &StreamSource{schema: schema, sc: sc}
	s.sniffHeader()
	return s
}

// sniffHeader reads the first non-blank line and keeps it for Next
// unless it is a schema header.
func (s *StreamSource) sniffHeader() {
	for s.sc.Scan() {
		s.line++
		b := bytes.TrimSpace(s.sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var hdr map[string]any
		if err := json.Unmarshal(b, &hdr); err == nil && len(hdr) == 1 {
			if v, ok := hdr["schema"].(string); ok {
				if s.schema == "" {
					s.schema = v
				}
				return
			}
		}
		s.pending = append([]byte(nil), b...)
		return
	}
}

func (s *StreamSource) Schema() string { return s.schema }

func (s *StreamSource) Next() (*Entity, error) {
	data := s.pending
	s.pending = nil
	for data == nil {
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				return nil, fmt.Errorf("read stream: %w", err)
			}
			return nil, io.EOF
		}
		s.line++
		if b := bytes.TrimSpace(s.sc.Bytes()); len(b) > 0 {
			data = b
		}
	}
	e, err := DecodeRecord(data)
	if err != nil {
		return nil, &MalformedEntryError{Line: s.line, Err: err}
	}
	return e, nil
}

// SliceSource replays an in-memory entity list. Cache replay and tests
// use it.
type SliceSource struct {
	schema string
	items  []*Entity
	pos    int
}

// NewSliceSource returns a source over the given entities.
func NewSliceSource(schema string, items ...*Entity) *SliceSource {
	return &SliceSource{schema: schema, items: items}
}

func (s *SliceSource) Schema() string { return s.schema }

func (s *SliceSource) Next() (*Entity, error) {
	if s.pos >= len(s.items) {
		return nil, io.EOF
	}
	e := s.items[s.pos]
	s.pos++
	return e, nil
}

package serializer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/ifc2lbd/internal/model"
	"github.com/roach88/ifc2lbd/internal/schema"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// DefaultFlushThreshold is the entity count buffered between writes
// when Options leaves it unset.
const DefaultFlushThreshold = 100000

// EncodingError aborts a run: an entity failed in a way that omitting a
// single attribute cannot cover. It names the entity so the offending
// record can be found in the source.
type EncodingError struct {
	Entity int64
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode entity %d: %v", e.Entity, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Metrics reports one serialization run.
type Metrics struct {
	// Entities is the number of records serialized.
	Entities int64
	// Triples is the exact number of triples written, header included.
	Triples int64
	// Skipped counts malformed or incomplete records dropped.
	Skipped int64
	// Flushes counts buffer drains to the writer, final flush included.
	Flushes int64
}

// Options configure a run. Zero values select defaults.
type Options struct {
	// FlushThreshold is the number of entities buffered between
	// writes. Values below 1 mean DefaultFlushThreshold.
	FlushThreshold int
	// Floats selects the xsd:double lexical style.
	Floats turtle.FloatStyle
	// Namespaces overrides the default table. Nil derives the table
	// from the source schema.
	Namespaces *turtle.Namespaces
	// Now supplies the header timestamp; nil means time.Now.
	Now func() time.Time
	// Logger receives skip and omission debug lines. Nil discards.
	Logger *slog.Logger
}

// Serializer writes one model stream as a Turtle document.
type Serializer struct {
	reg  *schema.Registry
	opts Options
}

// New returns a serializer resolving collection kinds against reg.
func New(reg *schema.Registry, opts Options) *Serializer {
	if opts.FlushThreshold < 1 {
		opts.FlushThreshold = DefaultFlushThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Serializer{reg: reg, opts: opts}
}

// Run streams src into w. The header goes out first; entities follow in
// delivery order, each as one block trailed by its auxiliary
// statements. Output bytes are independent of the flush threshold.
func (s *Serializer) Run(src model.Source, w io.Writer) (Metrics, error) {
	var m Metrics
	log := s.opts.Logger

	ns := turtle.Default(src.Schema())
	if s.opts.Namespaces != nil {
		ns = *s.opts.Namespaces
	}
	if _, err := io.WriteString(w, Header(ns, s.opts.Now())); err != nil {
		return m, fmt.Errorf("write header: %w", err)
	}
	m.Triples += headerTripleCount

	enc := NewEncoder(s.reg, s.opts.Floats)
	var buf bytes.Buffer
	buffered := 0
	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		buf.Reset()
		buffered = 0
		m.Flushes++
		return nil
	}

	for {
		e, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var malformed *model.MalformedEntryError
			if errors.As(err, &malformed) {
				m.Skipped++
				log.Debug("dropped malformed stream entry",
					"line", malformed.Line, "err", malformed.Err)
				continue
			}
			return m, err
		}
		if e.ID == 0 || e.Type == "" {
			m.Skipped++
			log.Debug("dropped incomplete record", "id", e.ID, "type", e.Type)
			continue
		}

		m.Entities++
		enc.Begin(e.ID)

		var block strings.Builder
		block.WriteString("inst:ref_")
		block.WriteString(strconv.FormatInt(e.ID, 10))
		block.WriteString(" a ")
		block.WriteString(ifcPrefix)
		block.WriteString(e.Type)
		m.Triples++

		for _, attr := range e.Attrs {
			encoded, err := enc.Attribute(e.Type, attr.Name, attr.Value)
			if err != nil {
				var shape *UnsupportedShapeError
				if errors.As(err, &shape) {
					log.Debug("omitted attribute",
						"entity", e.ID, "attr", attr.Name, "reason", shape.Reason)
					continue
				}
				return m, &EncodingError{Entity: e.ID, Err: err}
			}
			block.WriteString(" ;\n\t")
			block.WriteString(ifcPrefix)
			block.WriteString(attr.Name)
			block.WriteByte(' ')
			block.WriteString(encoded.Object)
			m.Triples += int64(encoded.Count)
		}
		block.WriteString(" .\n\n")
		buf.WriteString(block.String())

		for _, aux := range enc.Flush() {
			buf.WriteString(aux.Text)
			m.Triples += int64(aux.Count)
		}

		buffered++
		if buffered >= s.opts.FlushThreshold {
			if err := flush(); err != nil {
				return m, err
			}
		}
	}
	if err := flush(); err != nil {
		return m, err
	}
	return m, nil
}

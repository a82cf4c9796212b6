package convert

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ifc2lbd/internal/serializer"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// DefaultConverter is selected when no name is given.
const DefaultConverter = "mini"

// Converter is one registered serialization strategy.
type Converter struct {
	// Summary is a one-line description for help output.
	Summary string
	// Configure applies the strategy's writer settings.
	Configure func(*serializer.Options)
}

// Registry maps converter names to strategies.
type Registry map[string]Converter

// DefaultRegistry returns the shipped converters.
func DefaultRegistry() Registry {
	return Registry{
		"mini": {
			Summary: "schema-aware structural serializer, scientific floats",
			Configure: func(o *serializer.Options) {
				o.Floats = turtle.ScientificFloats
			},
		},
		"mini-plain": {
			Summary: "schema-aware structural serializer, plain decimal floats",
			Configure: func(o *serializer.Options) {
				o.Floats = turtle.PlainFloats
			},
		},
	}
}

// Names returns the registered converter names sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup resolves a converter name; the empty name selects the
// default. Unknown names fail listing what is available.
func (r Registry) Lookup(name string) (string, Converter, error) {
	if name == "" {
		name = DefaultConverter
	}
	conv, ok := r[name]
	if !ok {
		return "", Converter{}, &ConfigurationError{
			Reason: fmt.Sprintf("unknown converter %q, available: %s", name, strings.Join(r.Names(), ", ")),
		}
	}
	return name, conv, nil
}

// Package config loads the YAML run configuration. A loaded file
// overrides the defaults field by field; absent keys keep their
// default values, and flag handling downstream overrides both.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ifc2lbd/internal/serializer"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// Namespace is one prefix binding. Table order in the file is kept.
// The reserved prefix "base" sets the document base URI instead of
// adding a PREFIX line.
type Namespace struct {
	Prefix string `yaml:"prefix"`
	URI    string `yaml:"uri"`
}

// Config is the run configuration.
type Config struct {
	// Schema is the model schema id, e.g. "IFC4X3_ADD2". Empty defers
	// to the input stream's own header.
	Schema string `yaml:"schema,omitempty"`

	// Converter selects the registered converter by name.
	Converter string `yaml:"converter,omitempty"`

	// Floats selects the xsd:double lexical style: "scientific" or
	// "plain". Empty leaves the choice to the converter.
	Floats string `yaml:"floats,omitempty"`

	// FlushEvery is the entity count buffered between writer flushes.
	FlushEvery int `yaml:"flush_every,omitempty"`

	// Namespaces replaces the default prefix table. Nil keeps the
	// table derived from the schema id.
	Namespaces []Namespace `yaml:"namespaces,omitempty"`
}

// Default returns the upstream defaults. Floats stays empty so the
// selected converter keeps its own style unless overridden.
func Default() Config {
	return Config{
		Converter:  "mini",
		FlushEvery: serializer.DefaultFlushThreshold,
	}
}

// Load reads a YAML config file over the defaults. Unknown keys are
// rejected so typos fail loudly.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks field values. Errors name the offending field.
func (c Config) Validate() error {
	switch c.Floats {
	case "", "scientific", "plain":
	default:
		return fmt.Errorf("floats: unknown style %q", c.Floats)
	}
	if c.FlushEvery < 0 {
		return fmt.Errorf("flush_every: must not be negative, got %d", c.FlushEvery)
	}
	for i, ns := range c.Namespaces {
		if ns.Prefix == "" {
			return fmt.Errorf("namespaces[%d]: missing prefix", i)
		}
		if ns.URI == "" {
			return fmt.Errorf("namespaces[%d]: missing uri", i)
		}
	}
	return nil
}

// FloatStyle maps the configured style name onto the writer's enum.
// Call Validate first; unknown names fall back to scientific.
func (c Config) FloatStyle() turtle.FloatStyle {
	if c.Floats == "plain" {
		return turtle.PlainFloats
	}
	return turtle.ScientificFloats
}

// BuildNamespaces converts the configured table for the writer. Nil
// means no override. A "base" entry replaces the document base URI;
// without one the schema-derived base is kept.
func (c Config) BuildNamespaces(schemaID string) *turtle.Namespaces {
	if len(c.Namespaces) == 0 {
		return nil
	}

	ns := turtle.Namespaces{Base: turtle.Default(schemaID).Base}
	for _, entry := range c.Namespaces {
		if entry.Prefix == "base" {
			ns.Base = entry.URI
			continue
		}
		ns.Prefixes = append(ns.Prefixes, turtle.Prefix{Name: entry.Prefix, URI: entry.URI})
	}
	return &ns
}

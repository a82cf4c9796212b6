package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ifc2lbd/internal/serializer"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []string{"mini", "mini-plain"}, DefaultRegistry().Names())
}

func TestLookupDefault(t *testing.T) {
	name, conv, err := DefaultRegistry().Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "mini", name)

	var opts serializer.Options
	conv.Configure(&opts)
	assert.Equal(t, turtle.ScientificFloats, opts.Floats)
}

func TestLookupPlain(t *testing.T) {
	name, conv, err := DefaultRegistry().Lookup("mini-plain")
	require.NoError(t, err)
	assert.Equal(t, "mini-plain", name)

	var opts serializer.Options
	conv.Configure(&opts)
	assert.Equal(t, turtle.PlainFloats, opts.Floats)
}

func TestLookupUnknown(t *testing.T) {
	_, _, err := DefaultRegistry().Lookup("turbo")

	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, `unknown converter "turbo", available: mini, mini-plain`, cerr.Reason)
}

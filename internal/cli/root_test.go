package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ifc2lbd", cmd.Use)
	assert.Contains(t, cmd.Long, "Turtle")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"convert", "cache", "subgraph", "prune", "schema", "version"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	quietFlag := cmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, quietFlag)
	assert.Equal(t, "q", quietFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestConvertCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	convertCmd, _, err := cmd.Find([]string{"convert"})
	require.NoError(t, err)

	for _, name := range []string{"schema", "converter", "floats", "flush-every", "map", "from-cache", "benchmark", "config"} {
		assert.NotNil(t, convertCmd.Flags().Lookup(name), "flag --%s should exist", name)
	}
	assert.Equal(t, "false", convertCmd.Flags().Lookup("benchmark").DefValue)
}

func TestCacheCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	cacheCmd, _, err := cmd.Find([]string{"cache"})
	require.NoError(t, err)

	dbFlag := cacheCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	// --db is required, so default is empty
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestSubgraphCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	subgraphCmd, _, err := cmd.Find([]string{"subgraph"})
	require.NoError(t, err)

	require.NotNil(t, subgraphCmd.Flags().Lookup("label"))
	outFlag := subgraphCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "-", outFlag.DefValue)
}

func TestPruneCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	pruneCmd, _, err := cmd.Find([]string{"prune"})
	require.NoError(t, err)

	require.NotNil(t, pruneCmd.Flags().Lookup("schema"))
	outFlag := pruneCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "", outFlag.DefValue, "default rewrites in place")
}

func TestSchemaCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	schemaCmd, _, err := cmd.Find([]string{"schema"})
	require.NoError(t, err)

	schemaFlag := schemaCmd.Flags().Lookup("schema")
	require.NotNil(t, schemaFlag)
	assert.Equal(t, "IFC4", schemaFlag.DefValue)
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "version"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVerboseQuietConflict(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--verbose", "--quiet", "version"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestVersionCommand(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ifc2lbd dev\n", out.String())
}

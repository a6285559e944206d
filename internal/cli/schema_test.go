package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "loreforged", Short: "Loreforge daemon"}
	AddHelpJSONFlag(root)

	serve := &cobra.Command{Use: "serve", Short: "Run the API server"}
	serve.Flags().String("port", "8080", "listen port")
	serve.Flags().Bool("no-migrate", false, "skip migrations")

	schema := &cobra.Command{Use: "schema", Short: "Print the DDL"}
	schema.Flags().String("migrations", "migrations", "migrations directory")
	_ = schema.MarkFlagRequired("migrations")

	hidden := &cobra.Command{Use: "debug", Hidden: true}

	root.AddCommand(serve, schema, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	got := GenerateSchema(testRoot())

	assert.Equal(t, "loreforged", got.Name)
	assert.Equal(t, "Loreforge daemon", got.Description)

	require.Len(t, got.Subcommands, 2)
	assert.Equal(t, "schema", got.Subcommands[0].Name)
	assert.Equal(t, "serve", got.Subcommands[1].Name)

	serve := got.Subcommands[1]
	require.Len(t, serve.Flags, 2)
	assert.Equal(t, "no-migrate", serve.Flags[0].Name)
	assert.Equal(t, "bool", serve.Flags[0].Type)
	assert.Equal(t, "port", serve.Flags[1].Name)
	assert.Equal(t, "8080", serve.Flags[1].Default)
	assert.False(t, serve.Flags[1].Required)
}

func TestGenerateSchema_RequiredFlag(t *testing.T) {
	got := GenerateSchema(testRoot())

	schema := got.Subcommands[0]
	require.Len(t, schema.Flags, 1)
	assert.Equal(t, "migrations", schema.Flags[0].Name)
	assert.True(t, schema.Flags[0].Required)
}

func TestGenerateSchema_SkipsHelpFlags(t *testing.T) {
	got := GenerateSchema(testRoot())

	for _, f := range got.Flags {
		assert.NotEqual(t, "help", f.Name)
		assert.NotEqual(t, "help-json", f.Name)
	}
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testRoot()))

	var got CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "loreforged", got.Name)
	assert.Len(t, got.Subcommands, 2)
}

func TestResolveCommand(t *testing.T) {
	root := testRoot()

	assert.Equal(t, "serve", resolveCommand(root, []string{"serve"}).Name())
	assert.Equal(t, "schema", resolveCommand(root, []string{"schema"}).Name())
	// Unknown words fall back to the nearest resolved command.
	assert.Equal(t, "loreforged", resolveCommand(root, []string{"bogus"}).Name())
	assert.Equal(t, "loreforged", resolveCommand(root, nil).Name())
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemModels = `
models:
  - name: Item
    type:
      name: struct
      fields:
        - {name: name, type: string, required: true}
        - {name: count, type: i32}
`

// workspace lays out a tot.toml, a schema folder and the given source files.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	all := map[string]string{
		"tot.toml":         "spec_root = \"schema\"\ncrate = \"my_crate\"\nlog_level = \"error\"\ncolor = \"never\"\n",
		"schema/base.yaml": itemModels,
	}
	for name, content := range files {
		all[name] = content
	}
	for name, content := range all {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// resetFlags restores every flag to its default; cobra keeps values across
// executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "tot.toml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRun(t *testing.T) {
	dir := workspace(t, map[string]string{
		"script.tot": "let x: i32 = 2;\nprint(\"hi\", x);\nx as string\n",
	})
	out, err := execute(t, dir, "run", filepath.Join(dir, "script.tot"))
	require.NoError(t, err)
	assert.Equal(t, "hi 2\n2\n", out)
}

func TestRunReportsFile(t *testing.T) {
	dir := workspace(t, map[string]string{
		"bad.tot": "let x: i32 = 1;\ny\n",
	})
	path := filepath.Join(dir, "bad.tot")
	_, err := execute(t, dir, "run", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostics.ErrUnresolvedReference)
	assert.Contains(t, err.Error(), path+":2:1")
}

func TestLower(t *testing.T) {
	dir := workspace(t, map[string]string{
		"script.tot": "let x: i32 = 1;\n",
	})
	path := filepath.Join(dir, "script.tot")
	out, err := execute(t, dir, "lower", path)
	require.NoError(t, err)
	assert.Contains(t, out, "== "+path+" ==")
	assert.Contains(t, out, "Declare(x, i32)")
	assert.Contains(t, out, "Store(x)")
}

func TestParseAndFmt(t *testing.T) {
	dir := workspace(t, map[string]string{
		"f.tot": "fn f(a: i32) -> i32 { a }",
	})
	path := filepath.Join(dir, "f.tot")

	out, err := execute(t, dir, "fmt", "--defs", path)
	require.NoError(t, err)
	assert.Equal(t, "fn f(a: i32) -> i32 {\n    a\n}\n", out)

	out, err = execute(t, dir, "parse", "--defs", "--no-spans", path)
	require.NoError(t, err)
	assert.Contains(t, out, "FuncDef")

	_, err = execute(t, dir, "parse", path)
	assert.ErrorIs(t, err, diagnostics.ErrSyntax)
}

func TestGen(t *testing.T) {
	dir := workspace(t, map[string]string{
		"f.tot": "fn f(i: json) -> base::Item { i as base::Item }",
	})
	out, err := execute(t, dir, "gen", filepath.Join(dir, "f.tot"))
	require.NoError(t, err)
	assert.Contains(t, out, "async fn f(i: serde_json::Value) -> anyhow::Result<base::Item> {")

	outDir := t.TempDir()
	_, err = execute(t, dir, "gen", "-o", outDir, filepath.Join(dir, "f.tot"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(outDir, "f.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "serde_json::from_value(s)?")

	_, err = execute(t, dir, "gen", "--backend", "cobol", filepath.Join(dir, "f.tot"))
	assert.ErrorContains(t, err, "unknown backend")
}

func TestModelsAndResolve(t *testing.T) {
	dir := workspace(t, nil)

	out, err := execute(t, dir, "models")
	require.NoError(t, err)
	assert.Contains(t, out, "TYPE PATH")
	assert.Regexp(t, `base::Item\s+struct\s+base\.yaml`, out)

	out, err = execute(t, dir, "resolve", "base::Item")
	require.NoError(t, err)
	assert.Contains(t, out, "type_path: base::Item")
	assert.Contains(t, out, "file: base.yaml")

	_, err = execute(t, dir, "resolve", "base::Nope")
	assert.ErrorIs(t, err, diagnostics.ErrUnresolvedType)
}

func TestUseColor(t *testing.T) {
	assert.True(t, useColor("always", os.Stderr))
	assert.False(t, useColor("never", os.Stderr))
}

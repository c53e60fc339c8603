package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-engine/vellum/internal/engine"
)

// execute runs the CLI against a fresh registry holding the engine module,
// reading vellum.yaml from dir.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand(engine.Module{})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", dir, "--no-color"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vellum.yaml"), []byte(content), 0o644))
	return dir
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "vellum", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "inspect", "versions", "serve"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"config", "format", "no-color", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = "dev", "unknown" }()

	stdout, _, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Vellum version: 1.0.0-test")
	assert.Contains(t, stdout, "Git commit: abc123")
	assert.Contains(t, stdout, "Go version: ")
}

func TestInvalidFormatFlag(t *testing.T) {
	_, _, err := execute(t, t.TempDir(), "--format", "xml", "inspect", "modules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --format")
}

func TestBadConfigIsReported(t *testing.T) {
	dir := writeConfig(t, "versions:\n  backend: etcd\n")

	_, stderr, err := execute(t, dir, "inspect", "modules")
	require.Error(t, err)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
	assert.Contains(t, stderr, "etcd")

	var reported reportedError
	assert.ErrorAs(t, err, &reported)
}

func TestConfigFormatApplies(t *testing.T) {
	dir := writeConfig(t, "output:\n  format: json\n")

	stdout, _, err := execute(t, dir, "inspect", "modules")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"name": "engine"`)
}

func TestServeStopsWithContext(t *testing.T) {
	cmd := NewRootCommand(engine.Module{})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", t.TempDir(), "serve", "--addr", "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, stdout.String(), "Serving ")
	assert.Contains(t, stdout.String(), "http://127.0.0.1:")
}

package autoqasm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), heredoc.Doc(`
		[program]
		num_qubits = 4

		[device]
		name = "Garnet"
		pragmas = ["verbatim"]

		[log]
		verbosity = 2

		[output]
		format = "cbor"
		path = "out"
	`))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, 4, cfg.Program.NumQubits)
	assert.Equal(t, 2, cfg.Log.Verbosity)
	assert.Equal(t, OutputSection{Format: "cbor", Path: "out"}, cfg.Output)

	uc := cfg.UserConfig()
	assert.Equal(t, 4, uc.NumQubits)
	assert.True(t, uc.Device.SupportsPragma("verbatim"))
	assert.False(t, uc.Device.SupportsPragma("braket noise"))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, t.TempDir(), "[program]\n"))
	require.NoError(t, err)
	assert.Equal(t, "qasm", cfg.Output.Format)
	assert.Equal(t, UserConfig{}, cfg.UserConfig())
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[program\n", "parse error in"},
		{"negative qubits", "[program]\nnum_qubits = -1\n", "must not be negative"},
		{"unknown format", "[output]\nformat = \"json\"\n", `unknown output format "json"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "[program]\nnum_qubits = 2\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := FindConfig(nested)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, 2, cfg.Program.NumQubits)
}

func TestConfigDrivesBuild(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, t.TempDir(), "[program]\nnum_qubits = 3\n"))
	require.NoError(t, err)

	prog, err := Main("bell", func(ctx *Context) error { return H(ctx, 0) }, WithConfig(cfg.UserConfig())).Build()
	require.NoError(t, err)
	assert.Equal(t, 3, prog.NumQubits())
	assert.Contains(t, prog.ToIR(), "qubit[3] __qubits__;")
}

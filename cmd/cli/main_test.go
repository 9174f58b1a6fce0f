package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/adsorbgridgo/internal/workflow"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRun_EmitsWorkflow(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A complete request: bulk structure, one adsorbate surface, quiet logs.
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "si.json"), `{
  "lattice": {"matrix": [[5.43, 0, 0], [0, 5.43, 0], [0, 0, 5.43]]},
  "sites": [
    {"species": "Si", "abc": [0, 0, 0]},
    {"species": "Si", "abc": [0.5, 0.5, 0.5]}
  ]
}`)
	writeFile(t, filepath.Join(tempDir, "h2.xyz"), "2\nhydrogen\nH 0.0 0.0 0.0\nH 0.0 0.0 0.74\n")
	writeFile(t, filepath.Join(tempDir, "request.hcl"), `
structure {
  path = "si.json"
}
adsorbate "111" {
  molecules = ["h2.xyz"]
}
`)
	outPath := filepath.Join(tempDir, "wf.json")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"-out", outPath, "-log-level", "error", filepath.Join(tempDir, "request.hcl")})

	// --- Assert ---
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var wf workflow.Workflow
	require.NoError(t, json.Unmarshal(data, &wf))
	assert.Equal(t, "Si:Adsorbate calculations", wf.Name())
	assert.Equal(t, 3, wf.Len())
}

func TestRun_InvalidRequest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL file with a syntax error fails during the loading phase.
	invalidHCL := `
		structure {
			path = "si.json"
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	writeFile(t, filePath, invalidHCL)

	args := []string{"-log-level", "error", filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should surface the request-loading failure")
	require.Contains(t, runErr.Error(), "failed to load request")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRequest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fullRequest = `
structure {
  path         = "si.json"
  conventional = true
}

adsorbate "111" {
  molecules = ["h2.xyz"]
}

adsorbate "100" {
  molecules = ["h2.xyz", "co.xyz"]
}

slab {
  min_size   = 10.0
  min_vacuum = 14.0
  center     = false
}

incar "slab" {
  NSW   = 40
  LVTOT = true
  ALGO  = "Fast"
  DIPOL = [0.0, 0.0, 0.5]
}

incar "adsorbate" {
  NSW = 80
}

molecules {
  min_vacuum = 18.0
}

engine {
  vasp_cmd = "mpirun vasp"
  db_file  = ">>db_file<<"
}

analysis {
  dir = "out"
}
`

func TestLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeRequest(t, dir, "request.hcl", fullRequest)

	model, err := NewLoader().Load(ctx, path)
	require.NoError(t, err)

	t.Run("structure", func(t *testing.T) {
		assert.Equal(t, "si.json", model.Structure.Path)
		assert.True(t, model.Structure.Conventional)
	})

	t.Run("adsorbates", func(t *testing.T) {
		require.Len(t, model.Adsorbates, 2)
		assert.Equal(t, "111", model.Adsorbates[0].Miller)
		assert.Equal(t, []string{"h2.xyz"}, model.Adsorbates[0].MoleculePaths)
		assert.Equal(t, []string{"h2.xyz", "co.xyz"}, model.Adsorbates[1].MoleculePaths)
	})

	t.Run("slab overrides with defaults intact", func(t *testing.T) {
		assert.Equal(t, 10.0, model.Slab.MinSize)
		assert.Equal(t, 14.0, model.Slab.MinVacuum)
		assert.False(t, model.Slab.Center)
		// Untouched by the file, so the defaults survive.
		assert.Equal(t, 1, model.Slab.MaxNormalSearch)
		assert.True(t, model.Slab.AutoDipole)
	})

	t.Run("incar attribute types", func(t *testing.T) {
		assert.Equal(t, 40, model.SlabINCAR["NSW"])
		assert.Equal(t, true, model.SlabINCAR["LVTOT"])
		assert.Equal(t, "Fast", model.SlabINCAR["ALGO"])
		// Whole numbers decode as int, fractions as float64.
		assert.Equal(t, []any{0, 0, 0.5}, model.SlabINCAR["DIPOL"])
		assert.Equal(t, 80, model.AdsINCAR["NSW"])
	})

	t.Run("molecules and engine", func(t *testing.T) {
		assert.True(t, model.Molecules.Enabled)
		assert.Equal(t, 18.0, model.Molecules.MinVacuum)
		assert.Equal(t, "mpirun vasp", model.Engine.VaspCmd)
		assert.Equal(t, ">>db_file<<", model.Engine.DBFile)
	})

	t.Run("analysis", func(t *testing.T) {
		assert.True(t, model.Analysis.Enabled)
		assert.Equal(t, "out", model.Analysis.Dir)
	})
}

func TestLoadDirectoryMerge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeRequest(t, dir, "01-base.hcl", `
structure {
  path = "si.json"
}
adsorbate "111" {
  molecules = ["h2.xyz"]
}
`)
	writeRequest(t, dir, "02-engine.hcl", `
engine {
  vasp_cmd = "srun vasp"
}
`)

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "si.json", model.Structure.Path)
	assert.Equal(t, "srun vasp", model.Engine.VaspCmd)
	require.Len(t, model.Adsorbates, 1)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no files", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, t.TempDir())
		assert.ErrorContains(t, err, "no .hcl request files")
	})

	t.Run("parse failure", func(t *testing.T) {
		dir := t.TempDir()
		path := writeRequest(t, dir, "bad.hcl", `structure {`)
		_, err := NewLoader().Load(ctx, path)
		assert.ErrorContains(t, err, "parsing")
	})

	t.Run("bad incar target", func(t *testing.T) {
		dir := t.TempDir()
		path := writeRequest(t, dir, "bad-target.hcl", `
structure {
  path = "si.json"
}
adsorbate "111" {
  molecules = ["h2.xyz"]
}
incar "bulk" {
  NSW = 40
}
`)
		_, err := NewLoader().Load(ctx, path)
		assert.ErrorContains(t, err, `incar target must be "slab" or "adsorbate"`)
	})

	t.Run("validation failure", func(t *testing.T) {
		dir := t.TempDir()
		path := writeRequest(t, dir, "empty.hcl", `
structure {
  path = "si.json"
}
`)
		_, err := NewLoader().Load(ctx, path)
		assert.ErrorContains(t, err, "nothing to build")
	})
}

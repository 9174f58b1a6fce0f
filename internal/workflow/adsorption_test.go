package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/surface"
	"github.com/vk/adsorbgridgo/internal/transform"
)

func h2Molecule() chem.Molecule {
	return chem.NewMolecule([]string{"H", "H"}, [][3]float64{
		{0, 0, 0},
		{0, 0, 0.74},
	})
}

func TestBuildAdsorption(t *testing.T) {
	ctx := context.Background()
	req := NewAdsorptionRequest(testStructure(), map[string][]chem.Molecule{
		"111": {h2Molecule()},
	})
	req.DBFile = ">>db_file<<"

	wf, err := BuildAdsorption(ctx, req)
	require.NoError(t, err)

	// One bulk relaxation, one slab, one adsorbate candidate.
	require.Equal(t, 3, wf.Len())
	jobs := wf.Jobs()

	t.Run("single root", func(t *testing.T) {
		roots := wf.Roots()
		require.Len(t, roots, 1)
		assert.Equal(t, "Si structure optimization", roots[0].Name)
		assert.Empty(t, roots[0].Transformations)

		for _, fw := range jobs[1:] {
			assert.Equal(t, []string{roots[0].ID}, fw.Parents)
			assert.True(t, fw.CopyOutputs)
		}
	})

	t.Run("job names", func(t *testing.T) {
		assert.Equal(t, "Si_111 slab optimization", jobs[1].Name)
		assert.Equal(t, "H2-Si_111 adsorbate optimization", jobs[2].Name)
	})

	t.Run("workflow name", func(t *testing.T) {
		assert.Equal(t, "Si:Adsorbate calculations", wf.Name())
	})

	t.Run("db file propagated", func(t *testing.T) {
		for _, fw := range jobs {
			assert.Equal(t, ">>db_file<<", fw.DBFile)
		}
	})

	t.Run("slab transformation chain", func(t *testing.T) {
		require.Len(t, jobs[1].Transformations, 1)
		assert.Equal(t, transform.NameSlab, jobs[1].Transformations[0].Name)
	})

	t.Run("adsorbate transformation chain", func(t *testing.T) {
		chain := jobs[2].Transformations
		require.Len(t, chain, 4)
		assert.Equal(t, transform.NameSlab, chain[0].Name)
		assert.Equal(t, transform.NameSupercell, chain[1].Name)
		assert.Equal(t, transform.NameInsertSites, chain[2].Name)
		assert.Equal(t, transform.NameAddSiteProperty, chain[3].Name)
	})

	t.Run("dipole correction", func(t *testing.T) {
		for _, fw := range jobs[1:] {
			assert.Equal(t, true, fw.InputSet.INCAR["LDIPOL"], fw.Name)
			assert.Equal(t, 3, fw.InputSet.INCAR["IDIPOL"], fw.Name)
			assert.Equal(t, []float64{0, 0, 0.5}, fw.InputSet.INCAR["DIPOL"], fw.Name)
		}
		_, ok := jobs[0].InputSet.INCAR["LDIPOL"]
		assert.False(t, ok, "bulk job must not carry the dipole correction")
	})

	t.Run("hubbard correction defaulted off", func(t *testing.T) {
		// The slab-bulk preset has no LDAU, so slab and adsorbate jobs
		// explicitly disable it.
		for _, fw := range jobs[1:] {
			assert.Equal(t, false, fw.InputSet.INCAR["LDAU"], fw.Name)
		}
	})

	t.Run("incar maps are independent", func(t *testing.T) {
		jobs[1].InputSet.INCAR["ENCUT"] = 999
		assert.NotEqual(t, 999, jobs[2].InputSet.INCAR["ENCUT"])
	})
}

func TestBuildAdsorptionUnknownMiller(t *testing.T) {
	ctx := context.Background()
	req := NewAdsorptionRequest(testStructure(), map[string][]chem.Molecule{
		"222": {h2Molecule()},
	})

	wf, err := BuildAdsorption(ctx, req)
	require.Error(t, err)
	assert.Nil(t, wf)
	assert.ErrorContains(t, err, "222 not in generated slab list")
	// The message lists what was actually generated.
	assert.ErrorContains(t, err, "111")
	assert.ErrorContains(t, err, "100")
}

func TestBuildAdsorptionOverridesNotMutated(t *testing.T) {
	ctx := context.Background()
	slabINCAR := map[string]any{"ENCUT": 450}
	adsINCAR := map[string]any{"NSW": 200}

	req := NewAdsorptionRequest(testStructure(), map[string][]chem.Molecule{
		"100": {h2Molecule()},
	})
	req.SlabINCAR = slabINCAR
	req.AdsINCAR = adsINCAR

	wf, err := BuildAdsorption(ctx, req)
	require.NoError(t, err)

	jobs := wf.Jobs()
	assert.Equal(t, 450, jobs[1].InputSet.INCAR["ENCUT"])
	assert.Equal(t, 200, jobs[2].InputSet.INCAR["NSW"])

	// The caller's maps pick up neither the dipole injection nor the
	// LDAU defaulting.
	assert.Equal(t, map[string]any{"ENCUT": 450}, slabINCAR)
	assert.Equal(t, map[string]any{"NSW": 200}, adsINCAR)
}

func TestBuildAdsorptionMultipleSurfaces(t *testing.T) {
	ctx := context.Background()
	req := NewAdsorptionRequest(testStructure(), map[string][]chem.Molecule{
		"100": {h2Molecule()},
		"110": {h2Molecule()},
	})

	wf, err := BuildAdsorption(ctx, req)
	require.NoError(t, err)

	// Bulk + 2 slabs + 2 adsorbate candidates; the unrequested (111)
	// surface contributes nothing.
	assert.Equal(t, 5, wf.Len())
	var names []string
	for _, fw := range wf.Jobs() {
		names = append(names, fw.Name)
	}
	joined := strings.Join(names, "\n")
	assert.Contains(t, joined, "Si_100 slab optimization")
	assert.Contains(t, joined, "Si_110 slab optimization")
	assert.NotContains(t, joined, "111")
}

// Replaying a recorded chain against the bulk must land on the geometry the
// job was generated from.
func TestBuildAdsorptionReplay(t *testing.T) {
	ctx := context.Background()
	req := NewAdsorptionRequest(testStructure(), map[string][]chem.Molecule{
		"111": {h2Molecule()},
	})

	wf, err := BuildAdsorption(ctx, req)
	require.NoError(t, err)
	jobs := wf.Jobs()
	bulk := jobs[0].Structure

	registry := transform.NewRegistry()
	env := transform.Env{Generator: surface.Reference{}}

	t.Run("slab job", func(t *testing.T) {
		replayed, err := registry.Replay(ctx, env, bulk, jobs[1].Transformations)
		require.NoError(t, err)

		slabs, err := surface.Reference{}.GenerateSlabs(ctx, bulk, surface.SlabParams{
			MaxIndex:        1,
			MinSlabSize:     req.MinSlabSize,
			MinVacuumSize:   req.MinVacuumSize,
			CenterSlab:      true,
			MaxNormalSearch: 1,
		})
		require.NoError(t, err)
		want := slabs[2].Structure
		assert.Equal(t, want.Lattice.Rows(), replayed.Lattice.Rows())
		assert.Equal(t, want.Sites, replayed.Sites)
	})

	t.Run("adsorbate job", func(t *testing.T) {
		replayed, err := registry.Replay(ctx, env, bulk, jobs[2].Transformations)
		require.NoError(t, err)

		// Slab sites plus the two hydrogen atoms.
		slabLen, err := registry.Replay(ctx, env, bulk, jobs[1].Transformations)
		require.NoError(t, err)
		require.Equal(t, slabLen.Len()+2, replayed.Len())

		ads := replayed.SitesWhere(surface.PropSurface, surface.TagAdsorbate)
		require.Len(t, ads, 2)
		for _, s := range ads {
			assert.Equal(t, "H", s.Species)
			assert.Equal(t, []bool{true, true, true}, s.Property(surface.PropSelective))
		}
		for _, s := range replayed.Sites {
			assert.Equal(t, []float64{0, 0, 0}, s.Property(surface.PropVelocities))
			assert.NotNil(t, s.Property(surface.PropSelective))
		}

		// The recorded chain restores the canonical site order.
		assert.Equal(t, replayed.Sorted().Sites, replayed.Sites)
	})
}

func TestMaxMillerDigit(t *testing.T) {
	cases := []struct {
		name    string
		config  map[string][]chem.Molecule
		want    int
		wantErr string
	}{
		{"single digit", map[string][]chem.Molecule{"111": nil}, 1, ""},
		{"mixed digits", map[string][]chem.Molecule{"100": nil, "211": nil}, 2, ""},
		{"empty config", map[string][]chem.Molecule{}, 0, "empty"},
		{"non-digit key", map[string][]chem.Molecule{"abc": nil}, 0, "invalid miller index"},
		{"all zero", map[string][]chem.Molecule{"000": nil}, 0, "no nonzero digit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := maxMillerDigit(tc.config)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

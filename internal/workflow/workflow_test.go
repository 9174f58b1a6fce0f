package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/inputset"
)

func testStructure() chem.Structure {
	return chem.NewStructure(chem.CubicLattice(5.43), []chem.Site{
		{Species: "Si", Frac: [3]float64{0, 0, 0}},
		{Species: "Si", Frac: [3]float64{0.5, 0.5, 0.5}},
	})
}

func testSet(t *testing.T) *inputset.Set {
	t.Helper()
	set, err := inputset.Load(inputset.PresetRelax)
	require.NoError(t, err)
	return set
}

func TestWorkflowAdd(t *testing.T) {
	set := testSet(t)

	t.Run("parent wiring", func(t *testing.T) {
		wf := New("test")
		root := NewOptimize("root", testStructure(), set, "vasp", "")
		require.NoError(t, wf.Add(root))
		child := NewOptimize("child", testStructure(), set, "vasp", "", root.ID)
		require.NoError(t, wf.Add(child))

		assert.Equal(t, 2, wf.Len())
		roots := wf.Roots()
		require.Len(t, roots, 1)
		assert.Equal(t, root.ID, roots[0].ID)
		assert.Equal(t, []string{child.ID}, wf.Children(root.ID))

		got, ok := wf.Job(child.ID)
		require.True(t, ok)
		assert.Equal(t, "child", got.Name)
	})

	t.Run("missing ID", func(t *testing.T) {
		wf := New("test")
		err := wf.Add(&Firework{Name: "broken"})
		assert.ErrorContains(t, err, "no ID")
	})

	t.Run("duplicate ID", func(t *testing.T) {
		wf := New("test")
		fw := NewOptimize("a", testStructure(), set, "vasp", "")
		require.NoError(t, wf.Add(fw))
		err := wf.Add(&Firework{ID: fw.ID, Name: "b"})
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("self parent", func(t *testing.T) {
		wf := New("test")
		fw := NewOptimize("a", testStructure(), set, "vasp", "")
		fw.Parents = []string{fw.ID}
		err := wf.Add(fw)
		assert.ErrorContains(t, err, "depend on itself")
	})

	t.Run("unknown parent", func(t *testing.T) {
		wf := New("test")
		fw := NewOptimize("a", testStructure(), set, "vasp", "", "missing-id")
		err := wf.Add(fw)
		assert.ErrorContains(t, err, "unknown parent")
	})
}

func TestWorkflowJSONRoundTrip(t *testing.T) {
	set := testSet(t)
	wf := New("Si:Adsorbate calculations")
	root := NewOptimize("Si structure optimization", testStructure(), set, "vasp", ">>db_file<<")
	require.NoError(t, wf.Add(root))
	child := NewOptimize("Si_100 slab optimization", testStructure(), set, "vasp", "", root.ID)
	require.NoError(t, wf.Add(child))

	data, err := json.Marshal(wf)
	require.NoError(t, err)

	var back Workflow
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, wf.Name(), back.Name())
	require.Equal(t, wf.Len(), back.Len())
	gotRoot, ok := back.Job(root.ID)
	require.True(t, ok)
	assert.Equal(t, root.Name, gotRoot.Name)
	assert.Equal(t, ">>db_file<<", gotRoot.DBFile)
	assert.Equal(t, []string{child.ID}, back.Children(root.ID))
}

func TestFireworkConstructors(t *testing.T) {
	set := testSet(t)

	t.Run("optimize copies the structure", func(t *testing.T) {
		s := testStructure()
		fw := NewOptimize("a", s, set, "vasp", "")
		s.Sites[0].Species = "Ge"
		assert.Equal(t, "Si", fw.Structure.Sites[0].Species)
		assert.False(t, fw.CopyOutputs)
		assert.Empty(t, fw.Transformations)
	})

	t.Run("transmuter carries outputs forward", func(t *testing.T) {
		fw := NewTransmuter("a", testStructure(), nil, set, "vasp", "", "parent-id")
		assert.True(t, fw.CopyOutputs)
		assert.Equal(t, []string{"parent-id"}, fw.Parents)
	})

	t.Run("unique IDs", func(t *testing.T) {
		a := NewOptimize("a", testStructure(), set, "vasp", "")
		b := NewOptimize("a", testStructure(), set, "vasp", "")
		assert.NotEqual(t, a.ID, b.ID)
	})
}

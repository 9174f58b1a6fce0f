package workflow

import (
	"context"
	"fmt"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/ctxlog"
	"github.com/vk/adsorbgridgo/internal/inputset"
)

// moleculeINCAR fixes the settings an isolated molecule needs: gaussian
// smearing, finite-difference ionic relaxation and fixed cell shape.
var moleculeINCAR = map[string]any{
	"ISMEAR": 0,
	"IBRION": 5,
	"ISIF":   2,
}

// moleculeKpointsDensity is deliberately coarse in absolute terms but dense
// relative to the large vacuum cell an isolated molecule sits in.
const moleculeKpointsDensity = 1

// MoleculesRequest configures a molecule-reference workflow build.
type MoleculesRequest struct {
	Molecules []chem.Molecule
	// InputSets optionally overrides the input set per molecule. When
	// shorter than Molecules, remaining molecules get the default.
	InputSets []*inputset.Set
	// MinVacuumSize is the cubic cell edge. Zero selects 15 A.
	MinVacuumSize float64
	VaspCmd       string
	DBFile        string
}

// BuildMolecules constructs a workflow of independent relaxation jobs used
// as gas-phase energy references for adsorption energies. Each molecule is
// centered in a cubic vacuum cell; the jobs carry no dependency edges and
// can run concurrently.
func BuildMolecules(ctx context.Context, req *MoleculesRequest) (*Workflow, error) {
	if len(req.Molecules) == 0 {
		return nil, fmt.Errorf("no molecules given")
	}
	edge := req.MinVacuumSize
	if edge == 0 {
		edge = 15.0
	}
	vaspCmd := req.VaspCmd
	if vaspCmd == "" {
		vaspCmd = "vasp"
	}

	wf := New("Molecule calculations")
	for i, molecule := range req.Molecules {
		boxed := molecule.BoxedStructure(edge)

		var set *inputset.Set
		if i < len(req.InputSets) && req.InputSets[i] != nil {
			set = req.InputSets[i].Copy()
		} else {
			base, err := inputset.Load(inputset.PresetRelax)
			if err != nil {
				return nil, err
			}
			set = base.With(moleculeINCAR)
		}
		set = set.WithKpointsDensity(moleculeKpointsDensity)

		fw := NewOptimize(
			fmt.Sprintf("%s molecule optimization", molecule.ReducedFormula()),
			boxed, set, vaspCmd, req.DBFile,
		)
		if err := wf.Add(fw); err != nil {
			return nil, err
		}
	}
	ctxlog.FromContext(ctx).Info("molecule reference workflow built", "jobs", wf.Len())
	return wf, nil
}

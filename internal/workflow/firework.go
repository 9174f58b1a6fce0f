package workflow

import (
	"github.com/google/uuid"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/inputset"
	"github.com/vk/adsorbgridgo/internal/transform"
)

// Firework is a single job descriptor: a named unit of DFT work the external
// execution engine schedules once its parents have completed. Fireworks are
// immutable after construction; ownership transfers to the Workflow on Add.
type Firework struct {
	// ID is the stable node identifier used for dependency edges.
	ID string `json:"id"`
	// Name is the human-readable job name.
	Name string `json:"name"`
	// Structure is the input geometry. For transmuter jobs this is the
	// pre-transformation structure (the relaxed bulk at run time).
	Structure chem.Structure `json:"structure"`
	// Transformations are applied to Structure in order by the engine
	// before the calculation starts. Empty for plain optimizations.
	Transformations []transform.Transformation `json:"transformations,omitempty"`
	// InputSet holds the DFT control parameters for this job.
	InputSet *inputset.Set `json:"input_set"`
	// VaspCmd is the external command the engine invokes.
	VaspCmd string `json:"vasp_cmd"`
	// DBFile is the database-credentials path, possibly a >>key<<
	// indirection resolved by the engine environment.
	DBFile string `json:"db_file,omitempty"`
	// CopyOutputs tells the engine to copy the parent run's outputs into
	// the job directory before applying transformations.
	CopyOutputs bool `json:"copy_outputs,omitempty"`
	// Parents lists the IDs of jobs that must succeed first.
	Parents []string `json:"parents,omitempty"`
}

// NewOptimize builds a structure-optimization job descriptor.
func NewOptimize(name string, s chem.Structure, set *inputset.Set, vaspCmd, dbFile string, parents ...string) *Firework {
	return &Firework{
		ID:        uuid.NewString(),
		Name:      name,
		Structure: s.Copy(),
		InputSet:  set,
		VaspCmd:   vaspCmd,
		DBFile:    dbFile,
		Parents:   append([]string(nil), parents...),
	}
}

// NewTransmuter builds a job descriptor whose structure is derived from the
// parent's relaxed output by a transformation chain.
func NewTransmuter(name string, s chem.Structure, chain []transform.Transformation, set *inputset.Set, vaspCmd, dbFile string, parents ...string) *Firework {
	return &Firework{
		ID:              uuid.NewString(),
		Name:            name,
		Structure:       s.Copy(),
		Transformations: append([]transform.Transformation(nil), chain...),
		InputSet:        set,
		VaspCmd:         vaspCmd,
		DBFile:          dbFile,
		CopyOutputs:     true,
		Parents:         append([]string(nil), parents...),
	}
}

// Package schema declares the HCL shapes of a run-request file. These
// structs carry gohcl field tags only; translation into the agnostic
// config model happens in the loader.
package schema

import "github.com/hashicorp/hcl/v2"

// Request is the top-level structure of a request file.
type Request struct {
	Structure  *StructureBlock   `hcl:"structure,block"`
	Adsorbates []*AdsorbateBlock `hcl:"adsorbate,block"`
	Slab       *SlabBlock        `hcl:"slab,block"`
	INCAR      []*INCARBlock     `hcl:"incar,block"`
	Molecules  *MoleculesBlock   `hcl:"molecules,block"`
	Engine     *EngineBlock      `hcl:"engine,block"`
	Analysis   *AnalysisBlock    `hcl:"analysis,block"`
}

// StructureBlock points at the bulk structure input file.
type StructureBlock struct {
	Path         string `hcl:"path"`
	Conventional *bool  `hcl:"conventional,optional"`
}

// AdsorbateBlock requests molecules on one Miller-index surface, e.g.
// `adsorbate "111" { molecules = ["h2.xyz"] }`.
type AdsorbateBlock struct {
	Miller    string   `hcl:"miller,label"`
	Molecules []string `hcl:"molecules"`
}

// SlabBlock overrides slab-generation geometry.
type SlabBlock struct {
	MinSize         *float64 `hcl:"min_size,optional"`
	MinVacuum       *float64 `hcl:"min_vacuum,optional"`
	Center          *bool    `hcl:"center,optional"`
	MaxNormalSearch *int     `hcl:"max_normal_search,optional"`
	AutoDipole      *bool    `hcl:"auto_dipole,optional"`
}

// INCARBlock carries free-form DFT control overrides for one job kind,
// e.g. `incar "slab" { NSW = 40 }`. Keys are not enumerated here; the
// loader extracts the raw attributes.
type INCARBlock struct {
	Target string   `hcl:"target,label"`
	Body   hcl.Body `hcl:",remain"`
}

// MoleculesBlock enables the gas-phase reference workflow.
type MoleculesBlock struct {
	MinVacuum *float64 `hcl:"min_vacuum,optional"`
}

// EngineBlock configures the external execution engine.
type EngineBlock struct {
	VaspCmd      *string `hcl:"vasp_cmd,optional"`
	DBFile       *string `hcl:"db_file,optional"`
	LaunchpadURL *string `hcl:"launchpad_url,optional"`
}

// AnalysisBlock enables post-run result persistence.
type AnalysisBlock struct {
	Dir *string `hcl:"dir,optional"`
}

package config

import (
	"fmt"
	"strconv"
)

// Model is the unified representation of one run request.
type Model struct {
	Structure  Structure
	Adsorbates []Adsorbate
	Slab       Slab
	SlabINCAR  map[string]any
	AdsINCAR   map[string]any
	Molecules  Molecules
	Engine     Engine
	Analysis   Analysis
}

// Structure points at the bulk structure input.
type Structure struct {
	Path         string
	Conventional bool
}

// Adsorbate requests molecules on one surface.
type Adsorbate struct {
	Miller        string
	MoleculePaths []string
}

// Slab controls slab generation geometry.
type Slab struct {
	MinSize         float64
	MinVacuum       float64
	Center          bool
	MaxNormalSearch int
	AutoDipole      bool
}

// Molecules controls the optional gas-phase reference workflow.
type Molecules struct {
	Enabled   bool
	MinVacuum float64
}

// Engine points at the external execution engine.
type Engine struct {
	VaspCmd      string
	DBFile       string
	LaunchpadURL string
}

// Analysis controls post-run result persistence.
type Analysis struct {
	Enabled bool
	Dir     string
}

// Defaults returns a model with the standard geometry and engine settings.
func Defaults() *Model {
	return &Model{
		Structure: Structure{Conventional: true},
		Slab: Slab{
			MinSize:         7.0,
			MinVacuum:       12.0,
			Center:          true,
			MaxNormalSearch: 1,
			AutoDipole:      true,
		},
		Molecules: Molecules{MinVacuum: 15.0},
		Engine:    Engine{VaspCmd: "vasp"},
	}
}

// Validate checks the model for configuration errors a build would
// otherwise hit halfway through.
func (m *Model) Validate() error {
	if m.Structure.Path == "" {
		return fmt.Errorf("structure path is required")
	}
	if len(m.Adsorbates) == 0 && !m.Molecules.Enabled {
		return fmt.Errorf("request has no adsorbate blocks and no molecules block; nothing to build")
	}
	seen := map[string]bool{}
	for _, ads := range m.Adsorbates {
		if seen[ads.Miller] {
			return fmt.Errorf("duplicate adsorbate block for miller index %s", ads.Miller)
		}
		seen[ads.Miller] = true
		if len(ads.Miller) != 3 {
			return fmt.Errorf("miller index %q must be three digits", ads.Miller)
		}
		if _, err := strconv.Atoi(ads.Miller); err != nil {
			return fmt.Errorf("miller index %q must be three digits", ads.Miller)
		}
		if len(ads.MoleculePaths) == 0 {
			return fmt.Errorf("adsorbate block %s lists no molecules", ads.Miller)
		}
	}
	if m.Slab.MinSize <= 0 || m.Slab.MinVacuum <= 0 {
		return fmt.Errorf("slab sizes must be positive (min_size=%v, min_vacuum=%v)", m.Slab.MinSize, m.Slab.MinVacuum)
	}
	return nil
}

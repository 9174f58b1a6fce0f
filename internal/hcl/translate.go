package hcl

import (
	"fmt"

	"github.com/vk/adsorbgridgo/internal/config"
	"github.com/vk/adsorbgridgo/internal/schema"
)

// merge folds one decoded request file into the model. Optional attributes
// are pointers in the schema; only present ones override.
func (l *Loader) merge(model *config.Model, req *schema.Request) error {
	if req.Structure != nil {
		model.Structure.Path = req.Structure.Path
		if req.Structure.Conventional != nil {
			model.Structure.Conventional = *req.Structure.Conventional
		}
	}
	for _, ads := range req.Adsorbates {
		model.Adsorbates = append(model.Adsorbates, config.Adsorbate{
			Miller:        ads.Miller,
			MoleculePaths: ads.Molecules,
		})
	}
	if req.Slab != nil {
		setFloat(&model.Slab.MinSize, req.Slab.MinSize)
		setFloat(&model.Slab.MinVacuum, req.Slab.MinVacuum)
		setBool(&model.Slab.Center, req.Slab.Center)
		setInt(&model.Slab.MaxNormalSearch, req.Slab.MaxNormalSearch)
		setBool(&model.Slab.AutoDipole, req.Slab.AutoDipole)
	}
	for _, block := range req.INCAR {
		overrides, err := bodyToMap(block.Body)
		if err != nil {
			return fmt.Errorf("incar %q: %w", block.Target, err)
		}
		switch block.Target {
		case "slab":
			model.SlabINCAR = mergeMaps(model.SlabINCAR, overrides)
		case "adsorbate":
			model.AdsINCAR = mergeMaps(model.AdsINCAR, overrides)
		default:
			return fmt.Errorf("incar target must be \"slab\" or \"adsorbate\", got %q", block.Target)
		}
	}
	if req.Molecules != nil {
		model.Molecules.Enabled = true
		setFloat(&model.Molecules.MinVacuum, req.Molecules.MinVacuum)
	}
	if req.Engine != nil {
		setString(&model.Engine.VaspCmd, req.Engine.VaspCmd)
		setString(&model.Engine.DBFile, req.Engine.DBFile)
		setString(&model.Engine.LaunchpadURL, req.Engine.LaunchpadURL)
	}
	if req.Analysis != nil {
		model.Analysis.Enabled = true
		setString(&model.Analysis.Dir, req.Analysis.Dir)
	}
	return nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

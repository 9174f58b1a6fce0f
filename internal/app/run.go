package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/adsorbgridgo/internal/analysis"
	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/config"
	"github.com/vk/adsorbgridgo/internal/ctxlog"
	"github.com/vk/adsorbgridgo/internal/envutil"
	"github.com/vk/adsorbgridgo/internal/launchpad"
	"github.com/vk/adsorbgridgo/internal/workflow"
)

// Run executes the main application logic: load the request, construct the
// workflow graphs, and either submit them to the execution engine or write
// them out as JSON.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.loader.Load(ctx, cfg.RequestPath)
	if err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}
	a.logger.Debug("Request loaded and translated into unified model.")

	baseDir := cfg.RequestPath
	if info, err := os.Stat(cfg.RequestPath); err == nil && !info.IsDir() {
		baseDir = filepath.Dir(cfg.RequestPath)
	}

	workflows, err := a.buildWorkflows(ctx, model, baseDir)
	if err != nil {
		return err
	}

	// Verify the analysis persistence target up front; a misconfigured
	// results store should fail the run before anything is submitted.
	sink, closeSink, err := analysis.Select(model.Analysis.Enabled, envutil.Check(model.Engine.DBFile), model.Analysis.Dir)
	if err != nil {
		return fmt.Errorf("analysis store unavailable: %w", err)
	}
	defer closeSink()
	a.logger.Debug("Analysis sink selected.", "sink", fmt.Sprintf("%T", sink))

	if model.Engine.LaunchpadURL != "" {
		return a.submit(ctx, model.Engine.LaunchpadURL, workflows)
	}
	return a.emit(workflows, cfg.OutPath)
}

// buildWorkflows constructs the adsorption workflow and, when requested,
// the molecule reference workflow.
func (a *App) buildWorkflows(ctx context.Context, model *config.Model, baseDir string) ([]*workflow.Workflow, error) {
	molCache := map[string]chem.Molecule{}
	loadMolecule := func(path string) (chem.Molecule, error) {
		resolved := path
		if !filepath.IsAbs(path) {
			resolved = filepath.Join(baseDir, path)
		}
		if mol, ok := molCache[resolved]; ok {
			return mol, nil
		}
		mol, err := chem.MoleculeFromXYZ(resolved)
		if err != nil {
			return chem.Molecule{}, err
		}
		molCache[resolved] = mol
		return mol, nil
	}

	var workflows []*workflow.Workflow

	if len(model.Adsorbates) > 0 {
		structurePath := model.Structure.Path
		if !filepath.IsAbs(structurePath) {
			structurePath = filepath.Join(baseDir, structurePath)
		}
		structure, err := chem.StructureFromFile(structurePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load bulk structure: %w", err)
		}

		adsConfig := make(map[string][]chem.Molecule, len(model.Adsorbates))
		for _, ads := range model.Adsorbates {
			for _, molPath := range ads.MoleculePaths {
				mol, err := loadMolecule(molPath)
				if err != nil {
					return nil, fmt.Errorf("failed to load adsorbate for %s: %w", ads.Miller, err)
				}
				adsConfig[ads.Miller] = append(adsConfig[ads.Miller], mol)
			}
		}

		req := workflow.NewAdsorptionRequest(structure, adsConfig)
		req.MinSlabSize = model.Slab.MinSize
		req.MinVacuumSize = model.Slab.MinVacuum
		req.CenterSlab = model.Slab.Center
		req.MaxNormalSearch = model.Slab.MaxNormalSearch
		req.AutoDipole = model.Slab.AutoDipole
		req.Conventional = model.Structure.Conventional
		req.VaspCmd = model.Engine.VaspCmd
		req.DBFile = model.Engine.DBFile
		req.SlabINCAR = model.SlabINCAR
		req.AdsINCAR = model.AdsINCAR

		wf, err := workflow.BuildAdsorption(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to build adsorption workflow: %w", err)
		}
		a.logger.Info("Adsorption workflow built.", "name", wf.Name(), "jobs", wf.Len())
		workflows = append(workflows, wf)
	}

	if model.Molecules.Enabled {
		var molecules []chem.Molecule
		seen := map[string]bool{}
		for _, ads := range model.Adsorbates {
			for _, molPath := range ads.MoleculePaths {
				if seen[molPath] {
					continue
				}
				seen[molPath] = true
				mol, err := loadMolecule(molPath)
				if err != nil {
					return nil, fmt.Errorf("failed to load reference molecule: %w", err)
				}
				molecules = append(molecules, mol)
			}
		}
		wf, err := workflow.BuildMolecules(ctx, &workflow.MoleculesRequest{
			Molecules:     molecules,
			MinVacuumSize: model.Molecules.MinVacuum,
			VaspCmd:       model.Engine.VaspCmd,
			DBFile:        model.Engine.DBFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build molecule workflow: %w", err)
		}
		a.logger.Info("Molecule reference workflow built.", "name", wf.Name(), "jobs", wf.Len())
		workflows = append(workflows, wf)
	}

	if len(workflows) == 0 {
		return nil, fmt.Errorf("request produced no workflows")
	}
	return workflows, nil
}

// submit hands every workflow to the execution engine.
func (a *App) submit(ctx context.Context, url string, workflows []*workflow.Workflow) error {
	client := launchpad.NewClient(url)
	defer client.Close()
	for _, wf := range workflows {
		id, err := client.Submit(ctx, wf)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "submitted %q as %s\n", wf.Name(), id)
	}
	return nil
}

// emit writes the workflow JSON to a file or to the application writer.
func (a *App) emit(workflows []*workflow.Workflow, outPath string) error {
	var payload any = workflows
	if len(workflows) == 1 {
		payload = workflows[0]
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding workflows: %w", err)
	}
	if outPath == "" {
		_, err = a.outW.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	a.logger.Info("Workflow JSON written.", "path", outPath)
	return nil
}

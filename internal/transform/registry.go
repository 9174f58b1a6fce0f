package transform

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/ctxlog"
	"github.com/vk/adsorbgridgo/internal/surface"
)

// Env carries the collaborators an applier may need. The slab applier
// regenerates the slab through the same generator that produced it.
type Env struct {
	Generator surface.SlabGenerator
}

// Applier applies one transformation to a structure.
type Applier func(ctx context.Context, env Env, s chem.Structure, params map[string]any) (chem.Structure, error)

// Registry maps transformation names to local appliers.
type Registry struct {
	mu       sync.RWMutex
	appliers map[string]Applier
}

// NewRegistry returns a registry pre-populated with the built-in appliers.
func NewRegistry() *Registry {
	r := &Registry{appliers: make(map[string]Applier)}
	r.Register(NameSlab, applySlab)
	r.Register(NameSupercell, applySupercell)
	r.Register(NameInsertSites, applyInsertSites)
	r.Register(NameAddSiteProperty, applyAddSiteProperty)
	return r
}

// Register adds or replaces the applier for a transformation name.
func (r *Registry) Register(name string, fn Applier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appliers[name] = fn
}

// Apply runs a single transformation.
func (r *Registry) Apply(ctx context.Context, env Env, s chem.Structure, t Transformation) (chem.Structure, error) {
	r.mu.RLock()
	fn, ok := r.appliers[t.Name]
	r.mu.RUnlock()
	if !ok {
		return chem.Structure{}, fmt.Errorf("no applier registered for transformation %q", t.Name)
	}
	return fn(ctx, env, s, t.Params)
}

// Replay applies a transformation chain in order, starting from s.
func (r *Registry) Replay(ctx context.Context, env Env, s chem.Structure, chain []Transformation) (chem.Structure, error) {
	logger := ctxlog.FromContext(ctx)
	out := s
	for i, t := range chain {
		var err error
		out, err = r.Apply(ctx, env, out, t)
		if err != nil {
			return chem.Structure{}, fmt.Errorf("replaying step %d (%s): %w", i, t.Name, err)
		}
		logger.Debug("replayed transformation", "step", i, "name", t.Name, "sites", out.Len())
	}
	return out, nil
}

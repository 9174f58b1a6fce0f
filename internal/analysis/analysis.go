// Package analysis persists adsorption-energy summaries after the initial
// relaxation completes. The persistence target sits behind the Sink
// capability so that runs without database credentials fall back to a local
// file and runs with analysis disabled cost nothing.
package analysis

import (
	"context"
	"time"

	"github.com/vk/adsorbgridgo/internal/chem"
)

// Record is the persisted result of an adsorption analysis.
type Record struct {
	Analysis           map[string]any `json:"analysis"`
	DeformationTasks   map[string]any `json:"deformation_tasks"`
	InitialStructure   chem.Structure `json:"initial_structure"`
	OptimizedStructure chem.Structure `json:"optimized_structure"`
	CompletedOn        time.Time      `json:"completed_on"`
}

// Sink persists analysis records.
type Sink interface {
	Persist(ctx context.Context, rec *Record) error
}

// NoopSink discards records. It is the default when analysis is disabled.
type NoopSink struct{}

// Persist implements Sink.
func (NoopSink) Persist(context.Context, *Record) error { return nil }

// Select picks a sink from configuration: analysis disabled means noop, no
// credentials means the local file fallback, otherwise the store. Store
// failures are returned to the caller, not swallowed.
func Select(enabled bool, dbPath, dir string) (Sink, func() error, error) {
	if !enabled {
		return NoopSink{}, func() error { return nil }, nil
	}
	if dbPath == "" {
		return &FileSink{Dir: dir}, func() error { return nil }, nil
	}
	store, err := NewStoreSink(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// Package workflow assembles DFT job graphs: Firework job descriptors wired
// into a named, acyclic Workflow that an external execution engine runs.
// The graph is explicit — node IDs plus an adjacency list — rather than
// implied by object references, so dependency edges survive serialization.
package workflow

import (
	"encoding/json"
	"fmt"
	"time"
)

// Workflow is an immutable-after-construction job graph. Parents must be
// added before their children, which makes the graph acyclic by
// construction.
type Workflow struct {
	name     string
	order    []string
	nodes    map[string]*Firework
	children map[string][]string
}

// New creates an empty workflow with a display name.
func New(name string) *Workflow {
	return &Workflow{
		name:     name,
		nodes:    make(map[string]*Firework),
		children: make(map[string][]string),
	}
}

// Name returns the workflow display name.
func (w *Workflow) Name() string { return w.name }

// Len returns the number of jobs.
func (w *Workflow) Len() int { return len(w.order) }

// Add appends a job descriptor. Every listed parent must already be in the
// workflow; a job cannot be its own parent and IDs cannot repeat.
func (w *Workflow) Add(fw *Firework) error {
	if fw.ID == "" {
		return fmt.Errorf("firework %q has no ID", fw.Name)
	}
	if _, ok := w.nodes[fw.ID]; ok {
		return fmt.Errorf("duplicate firework ID %s (%q)", fw.ID, fw.Name)
	}
	for _, parent := range fw.Parents {
		if parent == fw.ID {
			return fmt.Errorf("firework %q cannot depend on itself", fw.Name)
		}
		if _, ok := w.nodes[parent]; !ok {
			return fmt.Errorf("firework %q references unknown parent %s", fw.Name, parent)
		}
	}
	w.nodes[fw.ID] = fw
	w.order = append(w.order, fw.ID)
	for _, parent := range fw.Parents {
		w.children[parent] = append(w.children[parent], fw.ID)
	}
	return nil
}

// Jobs returns the job descriptors in insertion order.
func (w *Workflow) Jobs() []*Firework {
	out := make([]*Firework, len(w.order))
	for i, id := range w.order {
		out[i] = w.nodes[id]
	}
	return out
}

// Job returns the descriptor with the given ID.
func (w *Workflow) Job(id string) (*Firework, bool) {
	fw, ok := w.nodes[id]
	return fw, ok
}

// Roots returns the parentless jobs in insertion order.
func (w *Workflow) Roots() []*Firework {
	var out []*Firework
	for _, id := range w.order {
		if len(w.nodes[id].Parents) == 0 {
			out = append(out, w.nodes[id])
		}
	}
	return out
}

// Children returns the IDs of the jobs that depend on the given job.
func (w *Workflow) Children(id string) []string {
	return append([]string(nil), w.children[id]...)
}

// workflowJSON is the wire form handed to the execution engine.
type workflowJSON struct {
	Name      string              `json:"name"`
	Fireworks []*Firework         `json:"fws"`
	Links     map[string][]string `json:"links"`
	CreatedOn time.Time           `json:"created_on"`
}

// MarshalJSON implements json.Marshaler.
func (w *Workflow) MarshalJSON() ([]byte, error) {
	links := make(map[string][]string, len(w.order))
	for _, id := range w.order {
		links[id] = append([]string{}, w.children[id]...)
	}
	return json.Marshal(workflowJSON{
		Name:      w.name,
		Fireworks: w.Jobs(),
		Links:     links,
		CreatedOn: time.Now().UTC(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	var in workflowJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := New(in.Name)
	for _, fw := range in.Fireworks {
		if err := out.Add(fw); err != nil {
			return err
		}
	}
	*w = *out
	return nil
}

// Package chem holds the crystal and molecular value types the workflow
// builders operate on. Structures are never mutated in place; every
// operation returns a fresh copy so that job descriptors stay independent
// once built.
package chem

import (
	"fmt"
	"sort"
)

// Site is a single atomic site with fractional coordinates and optional
// named per-site properties (selective dynamics flags, velocities, surface
// tagging and so on).
type Site struct {
	Species string
	Frac    [3]float64
	Props   map[string]any
}

// Copy returns a deep copy of the site.
func (s Site) Copy() Site {
	out := Site{Species: s.Species, Frac: s.Frac}
	if s.Props != nil {
		out.Props = make(map[string]any, len(s.Props))
		for k, v := range s.Props {
			out.Props[k] = v
		}
	}
	return out
}

// Property returns the named site property, or nil if unset.
func (s Site) Property(name string) any {
	if s.Props == nil {
		return nil
	}
	return s.Props[name]
}

// Structure is a periodic crystal structure: a lattice plus a list of sites.
type Structure struct {
	Lattice Lattice
	Sites   []Site
}

// NewStructure builds a structure from a lattice and sites. The sites slice
// is copied.
func NewStructure(lattice Lattice, sites []Site) Structure {
	s := Structure{Lattice: lattice, Sites: make([]Site, len(sites))}
	for i, site := range sites {
		s.Sites[i] = site.Copy()
	}
	return s
}

// Copy returns a deep copy of the structure.
func (s Structure) Copy() Structure {
	return NewStructure(s.Lattice, s.Sites)
}

// Len returns the number of sites.
func (s Structure) Len() int { return len(s.Sites) }

// FracCentroid returns the average fractional coordinate over all sites.
func (s Structure) FracCentroid() [3]float64 {
	var c [3]float64
	if len(s.Sites) == 0 {
		return c
	}
	for _, site := range s.Sites {
		for i := 0; i < 3; i++ {
			c[i] += site.Frac[i]
		}
	}
	for i := 0; i < 3; i++ {
		c[i] /= float64(len(s.Sites))
	}
	return c
}

// Translated returns a copy with every site shifted by the given fractional
// vector.
func (s Structure) Translated(delta [3]float64) Structure {
	out := s.Copy()
	for i := range out.Sites {
		for j := 0; j < 3; j++ {
			out.Sites[i].Frac[j] += delta[j]
		}
	}
	return out
}

// Sorted returns a copy with sites in canonical order: species ascending,
// then fractional z, y, x. The site-insertion transformation produces this
// same ordering at run time, so anything that records per-site data (site
// properties, adsorbate indices) must be derived from a sorted structure.
func (s Structure) Sorted() Structure {
	out := s.Copy()
	sort.SliceStable(out.Sites, func(i, j int) bool {
		a, b := out.Sites[i], out.Sites[j]
		if a.Species != b.Species {
			return a.Species < b.Species
		}
		for _, k := range []int{2, 1, 0} {
			if a.Frac[k] != b.Frac[k] {
				return a.Frac[k] < b.Frac[k]
			}
		}
		return false
	})
	return out
}

// WithSiteProperty returns a copy with the named property attached to every
// site. The values slice must have one entry per site.
func (s Structure) WithSiteProperty(name string, values []any) (Structure, error) {
	if len(values) != len(s.Sites) {
		return Structure{}, fmt.Errorf("site property %q: got %d values for %d sites", name, len(values), len(s.Sites))
	}
	out := s.Copy()
	for i := range out.Sites {
		if out.Sites[i].Props == nil {
			out.Sites[i].Props = make(map[string]any, 1)
		}
		out.Sites[i].Props[name] = values[i]
	}
	return out, nil
}

// SiteProperties collects per-site values for every property name present on
// any site. Sites missing a property contribute nil.
func (s Structure) SiteProperties() map[string][]any {
	names := map[string]struct{}{}
	for _, site := range s.Sites {
		for k := range site.Props {
			names[k] = struct{}{}
		}
	}
	if len(names) == 0 {
		return nil
	}
	props := make(map[string][]any, len(names))
	for name := range names {
		values := make([]any, len(s.Sites))
		for i, site := range s.Sites {
			values[i] = site.Property(name)
		}
		props[name] = values
	}
	return props
}

// SitesWhere returns the sites for which the named property equals value,
// preserving order.
func (s Structure) SitesWhere(name string, value any) []Site {
	var out []Site
	for _, site := range s.Sites {
		if site.Property(name) == value {
			out = append(out, site.Copy())
		}
	}
	return out
}

// ReducedFormula returns the empirical formula with species counts divided
// by their greatest common divisor, species in alphabetical order.
func (s Structure) ReducedFormula() string {
	counts := map[string]int{}
	for _, site := range s.Sites {
		counts[site.Species]++
	}
	return reducedFormula(counts)
}

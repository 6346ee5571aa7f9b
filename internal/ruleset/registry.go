// Package ruleset holds a session's canonical rule collection and its
// dependency-graph queries. It performs no semantic validation; that is the
// validator's job. A Registry is scoped to one editing session and needs
// external synchronization if shared across goroutines.
package ruleset

import (
	"fmt"
	"sort"

	"ruleforge/internal/rules"
)

// Registry is an in-memory rule collection keyed by name.
type Registry struct {
	byName map[string]*rules.Rule
}

func New() *Registry {
	return &Registry{byName: make(map[string]*rules.Rule)}
}

// Add stores r; a second rule with the same name is rejected.
func (g *Registry) Add(r *rules.Rule) error {
	if r == nil || r.Name == "" {
		return fmt.Errorf("rule must have a name")
	}
	if _, exists := g.byName[r.Name]; exists {
		return fmt.Errorf("duplicate rule name %q", r.Name)
	}
	g.byName[r.Name] = r
	return nil
}

// Replace stores r, displacing any previous rule with the same name. This is
// the wholesale content-replacement lifecycle: an edit re-parses the source
// and the fresh Rule value supersedes the old one, render cache included.
func (g *Registry) Replace(r *rules.Rule) {
	if r == nil || r.Name == "" {
		return
	}
	g.byName[r.Name] = r
}

// Remove deletes the named rule and reports whether it was present.
func (g *Registry) Remove(name string) bool {
	if _, ok := g.byName[name]; !ok {
		return false
	}
	delete(g.byName, name)
	return true
}

func (g *Registry) FindByName(name string) (*rules.Rule, bool) {
	r, ok := g.byName[name]
	return r, ok
}

// FindByTag returns every rule carrying tag, in name order.
func (g *Registry) FindByTag(tag string) []*rules.Rule {
	var out []*rules.Rule
	for _, r := range g.Rules() {
		for _, t := range r.Tags {
			if t == tag {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func (g *Registry) Len() int { return len(g.byName) }

// Rules returns the collection in name order for deterministic iteration.
func (g *Registry) Rules() []*rules.Rule {
	names := make([]string, 0, len(g.byName))
	for name := range g.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*rules.Rule, len(names))
	for i, name := range names {
		out[i] = g.byName[name]
	}
	return out
}

// DependencyGraph returns the adjacency of rules' dependency references,
// including edges to names absent from the collection (cross-file assembly
// is legitimate; the validator flags them, nothing here rejects them).
func (g *Registry) DependencyGraph() map[string][]string {
	graph := make(map[string][]string, len(g.byName))
	for name, r := range g.byName {
		graph[name] = append([]string(nil), r.Dependencies...)
	}
	return graph
}

// Cycles reports every dependency cycle in the collection.
func (g *Registry) Cycles() []*CycleError {
	return FindCycles(g.DependencyGraph())
}

// ExecutionOrder returns the rules dependency-first, higher priority earlier
// among rules whose dependencies are already placed. A cycle makes a
// dependency order impossible, so the first CycleError is returned; the
// collection itself is untouched and still editable.
func (g *Registry) ExecutionOrder() ([]*rules.Rule, error) {
	if cycles := g.Cycles(); len(cycles) > 0 {
		return nil, cycles[0]
	}

	roots := g.Rules()
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Priority > roots[j].Priority
	})

	placed := make(map[string]bool, len(roots))
	out := make([]*rules.Rule, 0, len(roots))
	var place func(r *rules.Rule)
	place = func(r *rules.Rule) {
		if placed[r.Name] {
			return
		}
		placed[r.Name] = true
		for _, dep := range r.Dependencies {
			if d, ok := g.byName[dep]; ok {
				place(d)
			}
		}
		out = append(out, r)
	}
	for _, r := range roots {
		place(r)
	}
	return out, nil
}

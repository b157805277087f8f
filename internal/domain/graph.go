package domain

import (
	"fmt"
	"sort"
)

// ModuleGraph is the static, ordered definition of modules and paths.
// It is built once at startup from persisted definitions and offers pure
// lookups with no mutable state and no failure modes beyond not-found.
type ModuleGraph struct {
	ordered []Module
	byName  map[string]Module
	paths   map[string]Path
}

// NewModuleGraph validates the definitions and builds the lookup structure.
// Violations (duplicate names, duplicate sequence orders, path rules that
// reference unknown modules) wrap ErrConfiguration: the process should fail
// fast rather than serve a broken plan.
func NewModuleGraph(modules []Module, paths []Path) (*ModuleGraph, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("module graph: no modules defined: %w", ErrConfiguration)
	}

	g := &ModuleGraph{
		ordered: make([]Module, len(modules)),
		byName:  make(map[string]Module, len(modules)),
		paths:   make(map[string]Path, len(paths)),
	}
	copy(g.ordered, modules)
	sort.Slice(g.ordered, func(i, j int) bool {
		return g.ordered[i].SequenceOrder < g.ordered[j].SequenceOrder
	})

	prevOrder := -1
	for _, m := range g.ordered {
		if m.Name == "" {
			return nil, fmt.Errorf("module graph: module with empty name: %w", ErrConfiguration)
		}
		if _, dup := g.byName[m.Name]; dup {
			return nil, fmt.Errorf("module graph: duplicate module %q: %w", m.Name, ErrConfiguration)
		}
		if m.SequenceOrder == prevOrder {
			return nil, fmt.Errorf("module graph: duplicate sequence order %d: %w", m.SequenceOrder, ErrConfiguration)
		}
		prevOrder = m.SequenceOrder
		g.byName[m.Name] = m
	}

	for _, p := range paths {
		if p.Name == "" {
			return nil, fmt.Errorf("module graph: path with empty name: %w", ErrConfiguration)
		}
		if _, dup := g.paths[p.Name]; dup {
			return nil, fmt.Errorf("module graph: duplicate path %q: %w", p.Name, ErrConfiguration)
		}
		if _, ok := g.byName[p.ModuleName]; !ok {
			return nil, fmt.Errorf("module graph: path %q references unknown module %q: %w", p.Name, p.ModuleName, ErrConfiguration)
		}
		for _, ref := range p.UnlockRule.References() {
			if _, ok := g.byName[ref]; !ok {
				return nil, fmt.Errorf("module graph: path %q rule references unknown module %q: %w", p.Name, ref, ErrConfiguration)
			}
		}
		g.paths[p.Name] = p
	}

	return g, nil
}

// ModuleByName looks up a module definition by its unique name.
func (g *ModuleGraph) ModuleByName(name string) (Module, bool) {
	m, ok := g.byName[name]
	return m, ok
}

// First returns the module with the lowest sequence order.
func (g *ModuleGraph) First() (Module, bool) {
	if len(g.ordered) == 0 {
		return Module{}, false
	}
	return g.ordered[0], true
}

// NextBySequence returns the module with the smallest sequence order
// strictly greater than currentOrder.
func (g *ModuleGraph) NextBySequence(currentOrder int) (Module, bool) {
	for _, m := range g.ordered {
		if m.SequenceOrder > currentOrder {
			return m, true
		}
	}
	return Module{}, false
}

// Modules returns all modules ordered by sequence order ascending.
// The returned slice is a copy; callers may not mutate graph state.
func (g *ModuleGraph) Modules() []Module {
	out := make([]Module, len(g.ordered))
	copy(out, g.ordered)
	return out
}

// ModulesBefore returns the strict prerequisite chain: every module with a
// sequence order lower than the given one, in order.
func (g *ModuleGraph) ModulesBefore(order int) []Module {
	var out []Module
	for _, m := range g.ordered {
		if m.SequenceOrder >= order {
			break
		}
		out = append(out, m)
	}
	return out
}

// PathByName looks up a path definition by its unique name.
func (g *ModuleGraph) PathByName(name string) (Path, bool) {
	p, ok := g.paths[name]
	return p, ok
}

// Paths returns all path definitions in name order.
func (g *ModuleGraph) Paths() []Path {
	out := make([]Path, 0, len(g.paths))
	for _, p := range g.paths {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PathsForModule returns every path backed by the named module.
func (g *ModuleGraph) PathsForModule(moduleName string) []Path {
	var out []Path
	for _, p := range g.Paths() {
		if p.ModuleName == moduleName {
			out = append(out, p)
		}
	}
	return out
}

package ruleset

import (
	"sort"
	"strings"
)

// CycleError reports one dependency cycle, naming every rule on it. A cycle
// blocks dependency-ordered execution but never blocks storage or editing.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "dependency cycle"
	}
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ") + " -> " + e.Cycle[0]
}

const (
	colorUnvisited = iota
	colorInProgress
	colorDone
)

// FindCycles runs a depth-first traversal with three-state marking over the
// adjacency graph. Reaching an in-progress node closes a cycle; the reported
// cycle names every rule on it, extracted from the traversal stack, not just
// the closing edge. Edges to absent nodes are skipped (unknown dependencies
// are a validator warning, not a graph defect). Roots are visited in sorted
// order so repeated runs report cycles identically.
func FindCycles(graph map[string][]string) []*CycleError {
	names := make([]string, 0, len(graph))
	for name := range graph {
		names = append(names, name)
	}
	sort.Strings(names)

	color := make(map[string]int, len(graph))
	var stack []string
	var cycles []*CycleError

	var visit func(node string)
	visit = func(node string) {
		color[node] = colorInProgress
		stack = append(stack, node)
		for _, dep := range graph[node] {
			if _, present := graph[dep]; !present {
				continue
			}
			switch color[dep] {
			case colorUnvisited:
				visit(dep)
			case colorInProgress:
				cycles = append(cycles, &CycleError{Cycle: extractCycle(stack, dep)})
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = colorDone
	}

	for _, name := range names {
		if color[name] == colorUnvisited {
			visit(name)
		}
	}
	return cycles
}

func extractCycle(stack []string, closing string) []string {
	for i, name := range stack {
		if name == closing {
			return append([]string(nil), stack[i:]...)
		}
	}
	return []string{closing}
}

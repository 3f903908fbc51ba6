package analytics

import (
	"sort"

	"sprintdesk/internal/models"
)

// DependencyGraph is a directed task dependency graph.
// Edges point from a task to the tasks it depends on. Cycles are not detected.
type DependencyGraph struct {
	forward map[int64][]int64 // task -> depends on
	reverse map[int64][]int64 // task -> dependents
}

// BuildDependencyGraph indexes edges in both directions, skipping duplicates and self-edges.
func BuildDependencyGraph(edges []models.Dependency) *DependencyGraph {
	g := &DependencyGraph{
		forward: make(map[int64][]int64),
		reverse: make(map[int64][]int64),
	}

	seen := make(map[models.Dependency]struct{}, len(edges))
	for _, edge := range edges {
		if edge.TaskID == edge.DependsOnTaskID {
			continue
		}
		if _, dup := seen[edge]; dup {
			continue
		}
		seen[edge] = struct{}{}
		g.forward[edge.TaskID] = append(g.forward[edge.TaskID], edge.DependsOnTaskID)
		g.reverse[edge.DependsOnTaskID] = append(g.reverse[edge.DependsOnTaskID], edge.TaskID)
	}

	for id := range g.forward {
		sortIDs(g.forward[id])
	}
	for id := range g.reverse {
		sortIDs(g.reverse[id])
	}
	return g
}

// DependsOn returns the ids the task depends on, ascending.
func (g *DependencyGraph) DependsOn(taskID int64) []int64 {
	if g == nil {
		return []int64{}
	}
	return copyIDs(g.forward[taskID])
}

// Dependents returns the ids of tasks that depend on the task, ascending.
func (g *DependencyGraph) Dependents(taskID int64) []int64 {
	if g == nil {
		return []int64{}
	}
	return copyIDs(g.reverse[taskID])
}

// SanitizeDependencyIDs keeps positive ids, removes duplicates and drops taskID itself.
// Order of first occurrence is preserved.
func SanitizeDependencyIDs(taskID int64, candidates []int64) []int64 {
	out := make([]int64, 0, len(candidates))
	seen := make(map[int64]struct{}, len(candidates))
	for _, id := range candidates {
		if id <= 0 || id == taskID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func copyIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

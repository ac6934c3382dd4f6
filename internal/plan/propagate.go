package plan

import (
	"github.com/versionplan/versionplan/internal/changelog"
	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/size"
)

type depEdge struct {
	downstream config.ProjectID
	edge       config.DependencyEdge
}

// Propagate implements the DependencyPropagator (C6): a Kahn-style
// traversal that converts and amplifies bumps along the dependency DAG,
// mutating p in place. It returns a dependency-cycle error if the graph
// is not acyclic (spec.md §9 makes this an explicit error rather than
// an assumption).
func Propagate(p *Plan, projects []*config.Project) error {
	const op = "plan.Propagate"

	names := make(map[config.ProjectID]string, len(projects))
	dependents := make(map[config.ProjectID][]depEdge)
	inDegree := make(map[config.ProjectID]int, len(projects))

	for _, proj := range projects {
		names[proj.ID] = proj.Name
		if _, ok := inDegree[proj.ID]; !ok {
			inDegree[proj.ID] = 0
		}
	}
	for _, proj := range projects {
		for upstream, edge := range proj.Depends {
			dependents[upstream] = append(dependents[upstream], depEdge{downstream: proj.ID, edge: edge})
			inDegree[proj.ID]++
		}
	}

	var queue []config.ProjectID
	for _, proj := range projects {
		if inDegree[proj.ID] == 0 {
			queue = append(queue, proj.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		visited++

		upstreamSize := size.Empty
		if entry, ok := p.Incrs[u]; ok {
			upstreamSize = entry.Size
		}

		for _, de := range dependents[u] {
			d, edge := de.downstream, de.edge

			entry, ok := p.Incrs[d]
			if !ok {
				entry = &PlanEntry{Size: size.Empty}
				p.Incrs[d] = entry
			}

			converted := edge.Size.Convert(upstreamSize)
			if converted > size.Empty {
				entry.Size = size.Max(entry.Size, converted)
				entry.Changelog = append(entry.Changelog, changelog.NewDepEntry(u, names[u]))
			}
			p.ChainWrites = append(p.ChainWrites, ChainWrite{Upstream: u, Downstream: d})

			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if visited != len(projects) {
		return vperrors.DependencyCycle(op, "project dependency graph contains a cycle")
	}
	return nil
}

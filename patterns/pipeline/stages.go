package pipeline

import (
	"fmt"
	"slices"

	"github.com/leofalp/edaflow/core/report"
)

// dependency is one incoming edge of the stage table. A gate dependency must
// have passed for the stage to run; an ordering dependency only has to be
// finished.
type dependency struct {
	stage report.Stage
	gate  bool
}

// stageTable is the fixed stage graph in insertion order.
var stageTable = []struct {
	stage report.Stage
	after []dependency
}{
	{stage: report.StageValidation},
	{stage: report.StageStatistics, after: []dependency{{stage: report.StageValidation, gate: true}}},
	{stage: report.StageVisualization, after: []dependency{{stage: report.StageValidation, gate: true}}},
	{stage: report.StageNarrative, after: []dependency{
		{stage: report.StageStatistics},
		{stage: report.StageVisualization},
	}},
}

// plan is the resolved stage graph.
type plan struct {
	levels       [][]report.Stage
	dependencies map[report.Stage][]dependency
}

func (p plan) dependencyNames(stage report.Stage) []string {
	names := make([]string, len(p.dependencies[stage]))
	for i, dep := range p.dependencies[stage] {
		names[i] = string(dep.stage)
	}
	return names
}

// buildPlan validates the stage table and groups it into levels.
func buildPlan() (plan, error) {
	nodeOrder := make([]report.Stage, 0, len(stageTable))
	inDegree := make(map[report.Stage]int, len(stageTable))
	adjacency := make(map[report.Stage][]report.Stage, len(stageTable))
	dependencies := make(map[report.Stage][]dependency, len(stageTable))

	for _, entry := range stageTable {
		if _, duplicate := inDegree[entry.stage]; duplicate {
			return plan{}, fmt.Errorf("duplicate stage %q", entry.stage)
		}
		nodeOrder = append(nodeOrder, entry.stage)
		inDegree[entry.stage] = 0
	}

	for _, entry := range stageTable {
		for _, dep := range entry.after {
			if _, exists := inDegree[dep.stage]; !exists {
				return plan{}, fmt.Errorf("stage %q depends on unknown stage %q", entry.stage, dep.stage)
			}
			adjacency[dep.stage] = append(adjacency[dep.stage], entry.stage)
			inDegree[entry.stage]++
		}
		dependencies[entry.stage] = entry.after
	}

	levels, err := kahnLevels(inDegree, adjacency, nodeOrder)
	if err != nil {
		return plan{}, err
	}
	return plan{levels: levels, dependencies: dependencies}, nil
}

// kahnLevels runs Kahn's algorithm and groups stages by topological level.
// Stages within a level keep their insertion order. inDegree is consumed.
func kahnLevels(inDegree map[report.Stage]int, adjacency map[report.Stage][]report.Stage, nodeOrder []report.Stage) ([][]report.Stage, error) {
	position := make(map[report.Stage]int, len(nodeOrder))
	for index, stage := range nodeOrder {
		position[stage] = index
	}
	byInsertion := func(a, b report.Stage) int { return position[a] - position[b] }

	var current []report.Stage
	for _, stage := range nodeOrder {
		if inDegree[stage] == 0 {
			current = append(current, stage)
		}
	}

	var levels [][]report.Stage
	processed := 0

	for len(current) > 0 {
		levels = append(levels, current)
		processed += len(current)

		var next []report.Stage
		for _, stage := range current {
			for _, neighbor := range adjacency[stage] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					next = append(next, neighbor)
				}
			}
		}
		slices.SortFunc(next, byInsertion)
		current = next
	}

	if processed != len(inDegree) {
		var cycle []string
		for stage, degree := range inDegree {
			if degree > 0 {
				cycle = append(cycle, string(stage))
			}
		}
		slices.Sort(cycle)
		return nil, fmt.Errorf("cycle detected in stage table involving stages: %v", cycle)
	}

	return levels, nil
}

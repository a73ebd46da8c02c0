package plan

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/felixgeelhaar/forecast/internal/domain"
	"github.com/felixgeelhaar/forecast/internal/errors"
)

// Validate checks the task's own fields. It does not look at other tasks.
func (t *Task) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.NewValidation(errors.ErrCodeGraphTask, fmt.Sprintf(format, args...), "invalid task", t.ID)
	}

	// IDs must be usable names
	if _, err := domain.NewTaskID(t.ID); err != nil {
		return invalid("%v", err)
	}

	if _, err := domain.NewResourceID(t.Resource); err != nil {
		return invalid("%v", err)
	}

	for i, dep := range t.DependsOn {
		if _, err := domain.NewTaskID(dep); err != nil {
			return invalid("dependency at index %d: %v", i, err)
		}
	}

	if !(t.Prediction > 0) || math.IsInf(t.Prediction, 0) {
		return invalid("prediction must be a positive number of hours, got %v", t.Prediction)
	}

	if t.Actual < 0 || math.IsNaN(t.Actual) || math.IsInf(t.Actual, 0) {
		return invalid("actual must not be negative, got %v", t.Actual)
	}

	if t.Done && t.Actual == 0 {
		return invalid("a done task needs the actual hours it took")
	}

	return nil
}

// CheckTasks validates a pure task list: field values, duplicate
// identifiers, dependencies on tasks that do not exist, and cycles.
func CheckTasks(tasks []Task) error {
	if err := checkTasks(tasks); err != nil {
		return errors.Locate(err, "checking tasks list", "tasks")
	}
	return nil
}

func checkTasks(tasks []Task) error {
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return err
		}
	}

	ids := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if ids[task.ID] {
			return errors.NewValidation(errors.ErrCodeGraphDuplicate,
				fmt.Sprintf("Duplicate task %q was found", task.ID), "duplicate task found", task.ID)
		}
		ids[task.ID] = true
	}

	for _, task := range tasks {
		for _, dep := range task.DependsOn {
			if !ids[dep] {
				return errors.NewValidation(errors.ErrCodeGraphGhost,
					fmt.Sprintf("Dependency %s of task %s does not exist", dep, task.ID), "ghost identifier", dep)
			}
		}
	}

	edges := make(map[string][]string, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, task := range tasks {
		edges[task.ID] = task.DependsOn
		order = append(order, task.ID)
	}
	return findCycle(order, edges)
}

// CheckGroups validates a group list: identifiers, duplicates and cycles in
// the "contains" relation between groups. Members that are not groups are
// left for CheckTasks to resolve after expansion.
func CheckGroups(groups []Group) error {
	if err := checkGroups(groups); err != nil {
		return errors.Locate(err, "checking groups list", "groups")
	}
	return nil
}

func checkGroups(groups []Group) error {
	ids := make(map[string]bool, len(groups))
	for _, group := range groups {
		if _, err := domain.NewTaskID(group.ID); err != nil {
			return errors.NewValidation(errors.ErrCodeGraphTask, err.Error(), "invalid group", group.ID)
		}
		if ids[group.ID] {
			return errors.NewValidation(errors.ErrCodeGraphDuplicate,
				fmt.Sprintf("Duplicate group %q was found", group.ID), "duplicate group found", group.ID)
		}
		ids[group.ID] = true
	}

	edges := make(map[string][]string, len(groups))
	order := make([]string, 0, len(groups))
	for _, group := range groups {
		var nested []string
		for _, member := range group.Members {
			if ids[member] {
				nested = append(nested, member)
			}
		}
		edges[group.ID] = nested
		order = append(order, group.ID)
	}
	return findCycle(order, edges)
}

// findCycle runs a depth-first search from each node in order and fails on
// the first edge back into the current path. Every node is expanded once.
// Every edge target must be a key of edges.
func findCycle(order []string, edges map[string][]string) error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(edges))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		state[id] = onPath
		path = append(path, id)
		for _, dep := range edges[id] {
			switch state[dep] {
			case onPath:
				cycle := append(slices.Clone(path[slices.Index(path, dep):]), dep)
				return errors.NewValidation(errors.ErrCodeGraphCycle,
					fmt.Sprintf("Circular dependency found %s", strings.Join(cycle, " -> ")),
					"circular dependency found", dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, id := range order {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

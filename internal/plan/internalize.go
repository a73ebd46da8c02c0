package plan

import (
	"fmt"
	"slices"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

// Internalize turns tasks whose dependencies may name groups into the list the
// scheduler consumes: group references are expanded, the result is checked,
// every task depends directly on all of its transitive dependencies, and no
// task precedes one it depends on. The inputs are not modified.
func Internalize(tasks []Task, groups []Group) ([]Task, error) {
	if err := CheckGroups(groups); err != nil {
		return nil, err
	}

	taskIDs := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		taskIDs[task.ID] = true
	}
	for _, group := range groups {
		if taskIDs[group.ID] {
			return nil, errors.NewValidation(errors.ErrCodeGraphDuplicate,
				fmt.Sprintf("Identifier %q names both a task and a group", group.ID),
				"duplicate identifier found", group.ID).Rethrow("checking groups list", "groups")
		}
	}

	expanded := ExpandGroups(tasks, groups)
	if err := CheckTasks(expanded); err != nil {
		return nil, err
	}

	return OrderByDependency(CloseDependencies(expanded)), nil
}

// ExpandGroups replaces every dependency that names a group with the group's
// members, repeating until no group identifiers remain. Groups must have
// passed CheckGroups.
func ExpandGroups(tasks []Task, groups []Group) []Task {
	members := make(map[string][]string, len(groups))
	for _, group := range groups {
		members[group.ID] = group.Members
	}

	out := make([]Task, len(tasks))
	for i, task := range tasks {
		task = task.clone()
		for {
			deps, changed := expandOnce(task.DependsOn, members)
			task.DependsOn = deps
			if !changed {
				break
			}
		}
		out[i] = task
	}
	return out
}

func expandOnce(deps []string, members map[string][]string) ([]string, bool) {
	changed := false
	seen := make(map[string]bool, len(deps))
	out := make([]string, 0, len(deps))

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, dep := range deps {
		if group, ok := members[dep]; ok {
			changed = true
			for _, m := range group {
				add(m)
			}
			continue
		}
		add(dep)
	}

	if len(deps) == 0 {
		return deps, false
	}
	return out, changed
}

// CloseDependencies gives every task its full transitive set of
// dependencies, direct ones first. Tasks must have passed CheckTasks.
func CloseDependencies(tasks []Task) []Task {
	direct := make(map[string][]string, len(tasks))
	for _, task := range tasks {
		direct[task.ID] = task.DependsOn
	}

	out := make([]Task, len(tasks))
	for i, task := range tasks {
		task = task.clone()
		if len(task.DependsOn) == 0 {
			out[i] = task
			continue
		}

		seen := make(map[string]bool, len(task.DependsOn))
		closure := make([]string, 0, len(task.DependsOn))
		worklist := slices.Clone(task.DependsOn)
		for len(worklist) > 0 {
			id := worklist[0]
			worklist = worklist[1:]
			if seen[id] {
				continue
			}
			seen[id] = true
			closure = append(closure, id)
			worklist = append(worklist, direct[id]...)
		}

		task.DependsOn = closure
		out[i] = task
	}
	return out
}

// OrderByDependency returns the tasks ordered so that no task precedes one
// of its dependencies. Among tasks that are ready at the same time the input
// order is kept. Tasks must be acyclic and free of ghost references.
func OrderByDependency(tasks []Task) []Task {
	index := make(map[string]int, len(tasks))
	for i, task := range tasks {
		index[task.ID] = i
	}

	pending := make([]int, len(tasks))
	dependents := make([][]int, len(tasks))
	for i, task := range tasks {
		for _, dep := range uniq(task.DependsOn) {
			j := index[dep]
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range tasks {
		if pending[i] == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]Task, 0, len(tasks))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		out = append(out, tasks[i].clone())

		for _, d := range dependents[i] {
			pending[d]--
			if pending[d] == 0 {
				pos, _ := slices.BinarySearch(ready, d)
				ready = slices.Insert(ready, pos, d)
			}
		}
	}
	return out
}

// Strata groups task IDs into topological layers: the first layer depends on
// nothing and each later layer depends only on earlier ones. IDs keep their
// input order within a layer. Tasks must be acyclic.
func Strata(tasks []Task) [][]string {
	deps := make(map[string][]string, len(tasks))
	for _, task := range tasks {
		deps[task.ID] = task.DependsOn
	}

	depth := make(map[string]int, len(tasks))
	var visit func(id string) int
	visit = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		d := 0
		for _, dep := range deps[id] {
			d = max(d, visit(dep)+1)
		}
		depth[id] = d
		return d
	}

	var strata [][]string
	for _, task := range tasks {
		d := visit(task.ID)
		for len(strata) <= d {
			strata = append(strata, nil)
		}
		strata[d] = append(strata[d], task.ID)
	}
	return strata
}

func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

package plan

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

func byID(tasks []Task) map[string]Task {
	out := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t
	}
	return out
}

func positions(tasks []Task) map[string]int {
	out := make(map[string]int, len(tasks))
	for i, t := range tasks {
		out[t.ID] = i
	}
	return out
}

func transformationFixture() ([]Task, []Group) {
	tasks := []Task{
		task("T1", 1),
		task("T2", 2, "T1"),
		task("T3", 3, "T1"),
		task("T4", 4),
		task("T5", 5, "T4"),
		task("T6", 6, "T5"),
		task("T7", 7, "G1"),
	}
	groups := []Group{
		{ID: "G1", Members: []string{"T1", "T2", "G2"}},
		{ID: "G2", Members: []string{"T1", "T4"}},
	}
	return tasks, groups
}

func TestCloseDependencies(t *testing.T) {
	tasks, _ := transformationFixture()

	closed := CloseDependencies(tasks[:6])

	assert.ElementsMatch(t, []string{"T5", "T4"}, closed[5].DependsOn)
	assert.Equal(t, "T5", closed[5].DependsOn[0], "direct dependencies come first")
	assert.Empty(t, closed[0].DependsOn)
	assert.Equal(t, []string{"T5"}, tasks[5].DependsOn, "input must not be modified")
}

func TestExpandGroups(t *testing.T) {
	tasks, groups := transformationFixture()

	expanded := ExpandGroups(tasks, groups)

	assert.Equal(t, []string{"T1", "T2", "T4"}, expanded[6].DependsOn)
	assert.Equal(t, []string{"G1"}, tasks[6].DependsOn, "input must not be modified")
}

func TestInternalize(t *testing.T) {
	tasks, groups := transformationFixture()

	internal, err := Internalize(tasks, groups)
	require.NoError(t, err)
	require.Len(t, internal, len(tasks))

	t7 := byID(internal)["T7"]
	assert.Contains(t, t7.DependsOn, "T1")
	assert.Contains(t, t7.DependsOn, "T4")
	assert.NotContains(t, t7.DependsOn, "G1")
	assert.NotContains(t, t7.DependsOn, "G2")

	pos := positions(internal)
	for _, task := range internal {
		for _, dep := range task.DependsOn {
			assert.Less(t, pos[dep], pos[task.ID], "%s must come after %s", task.ID, dep)
		}
	}
}

func TestInternalize_Errors(t *testing.T) {
	t.Run("group cycle", func(t *testing.T) {
		groups := []Group{{ID: "G1", Members: []string{"G2"}}, {ID: "G2", Members: []string{"G1"}}}
		_, err := Internalize(nil, groups)
		verr := requireValidation(t, err, errors.ErrCodeGraphCycle)
		assert.Equal(t, "in: checking groups list @ groups", verr.Trail()[0])
	})

	t.Run("group member does not exist", func(t *testing.T) {
		tasks := []Task{task("T1", 1, "G1")}
		groups := []Group{{ID: "G1", Members: []string{"T9"}}}
		_, err := Internalize(tasks, groups)
		verr := requireValidation(t, err, errors.ErrCodeGraphGhost)
		assert.Equal(t, "in: checking tasks list @ tasks", verr.Trail()[0])
	})

	t.Run("group named like a task", func(t *testing.T) {
		tasks := []Task{task("T1", 1)}
		groups := []Group{{ID: "T1", Members: []string{"T1"}}}
		_, err := Internalize(tasks, groups)
		requireValidation(t, err, errors.ErrCodeGraphDuplicate)
	})

	t.Run("cycle through a group", func(t *testing.T) {
		tasks := []Task{task("T1", 1, "G1"), task("T2", 1, "T1")}
		groups := []Group{{ID: "G1", Members: []string{"T2"}}}
		_, err := Internalize(tasks, groups)
		requireValidation(t, err, errors.ErrCodeGraphCycle)
	})
}

func TestOrderByDependency(t *testing.T) {
	tasks := []Task{
		task("C", 1, "B"),
		task("A", 1),
		task("B", 1, "A"),
		task("D", 1),
	}

	ordered := OrderByDependency(tasks)

	ids := make([]string, len(ordered))
	for i, t := range ordered {
		ids[i] = t.ID
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids)
}

func TestOrderByDependency_StableWithoutDependencies(t *testing.T) {
	tasks := []Task{task("Z", 1), task("Y", 1), task("X", 1)}

	ordered := OrderByDependency(tasks)
	assert.Equal(t, "Z", ordered[0].ID)
	assert.Equal(t, "Y", ordered[1].ID)
	assert.Equal(t, "X", ordered[2].ID)
}

func TestStrata(t *testing.T) {
	tasks := []Task{
		task("A", 1),
		task("B", 1, "A"),
		task("C", 1, "A"),
		task("D", 1, "B", "C"),
		task("E", 1),
	}

	assert.Equal(t, [][]string{{"A", "E"}, {"B", "C"}, {"D"}}, Strata(tasks))
	assert.Empty(t, Strata(nil))
}

// phases builds n phases of three tasks. Every task depends on the group of
// the previous phase.
func phases(n int) ([]Task, []Group) {
	var tasks []Task
	var groups []Group
	for p := range n {
		group := Group{ID: fmt.Sprintf("Phase%d", p)}
		for i := range 3 {
			id := fmt.Sprintf("P%dT%d", p, i)
			var deps []string
			if p > 0 {
				deps = []string{fmt.Sprintf("Phase%d", p-1)}
			}
			tasks = append(tasks, task(id, 1, deps...))
			group.Members = append(group.Members, id)
		}
		groups = append(groups, group)
	}
	return tasks, groups
}

func TestInternalize_ManyPhases(t *testing.T) {
	tasks, groups := phases(20)

	got, err := Internalize(tasks, groups)
	require.NoError(t, err)
	require.Len(t, got, 60)

	last := got[len(got)-1]
	assert.Equal(t, "P19T2", last.ID)
	assert.Len(t, last.DependsOn, 57, "a task in the last phase depends on every earlier task")
	assert.Len(t, Strata(got), 20)
}

func TestInternalize_CycleAcrossManyPhases(t *testing.T) {
	tasks, groups := phases(20)
	tasks[0].DependsOn = []string{"Phase19"}

	_, err := Internalize(tasks, groups)
	verr := requireValidation(t, err, errors.ErrCodeGraphCycle)
	assert.True(t, strings.HasPrefix(verr.Cause, "Circular dependency found P0T0 -> "), verr.Cause)
	assert.True(t, strings.HasSuffix(verr.Cause, " -> P0T0"), verr.Cause)
}

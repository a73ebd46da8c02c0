package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/forecast/internal/availability"
	"github.com/felixgeelhaar/forecast/internal/errors"
	"github.com/felixgeelhaar/forecast/internal/plan"
)

func at(day string, hour, minute int) time.Time {
	d, err := time.ParseInLocation(time.DateOnly, day, time.UTC)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func weekdays(t testing.TB) *availability.Schedule {
	t.Helper()
	s, err := availability.NewSchedule([]string{"include from 09:00 to 17:00 every weekday"},
		availability.WithToday(at("2020-03-27", 0, 0)))
	require.NoError(t, err)
	return s
}

func task(id, resource string, prediction float64, deps ...string) plan.Task {
	return plan.Task{ID: id, Resource: resource, Prediction: prediction, DependsOn: deps}
}

func TestSchedule_FridayChain(t *testing.T) {
	tasks := []plan.Task{
		task("T1", "Dev", 2),
		task("T2", "Dev", 2, "T1"),
		task("T3", "Dev", 8, "T2", "T1"),
	}

	got, err := Schedule(tasks, at("2020-03-27", 0, 0), map[string]*availability.Schedule{"Dev": weekdays(t)})
	require.NoError(t, err)

	assert.Equal(t, []ScheduledTask{
		{Task: "T1", Begin: at("2020-03-27", 9, 0), End: at("2020-03-27", 11, 0)},
		{Task: "T2", Begin: at("2020-03-27", 11, 0), End: at("2020-03-27", 13, 0)},
		{Task: "T3", Begin: at("2020-03-27", 13, 0), End: at("2020-03-30", 13, 0)},
	}, got)
	assert.Equal(t, at("2020-03-30", 13, 0), Finish(got))
}

func TestSchedule_IndependentTasksShareResource(t *testing.T) {
	tasks := []plan.Task{task("A", "Dev", 3), task("B", "Dev", 3)}

	got, err := Schedule(tasks, at("2020-03-27", 10, 0), map[string]*availability.Schedule{"Dev": weekdays(t)})
	require.NoError(t, err)

	assert.Equal(t, at("2020-03-27", 10, 0), got[0].Begin)
	assert.Equal(t, at("2020-03-27", 13, 0), got[0].End)
	assert.Equal(t, at("2020-03-27", 13, 0), got[1].Begin)
	assert.Equal(t, at("2020-03-27", 16, 0), got[1].End)
}

func TestSchedule_ResourcesWorkInParallel(t *testing.T) {
	cal := weekdays(t)
	tasks := []plan.Task{task("A", "Dev", 4), task("B", "Ops", 4), task("C", "Dev", 1, "A", "B")}

	got, err := Schedule(tasks, at("2020-03-27", 9, 0), map[string]*availability.Schedule{"Dev": cal, "Ops": cal})
	require.NoError(t, err)

	assert.Equal(t, got[0].Begin, got[1].Begin)
	assert.Equal(t, at("2020-03-27", 13, 0), got[2].Begin)
	assert.Equal(t, at("2020-03-27", 14, 0), got[2].End)
}

func TestSchedule_WaitsForDependencyOnOtherResource(t *testing.T) {
	cal := weekdays(t)
	tasks := []plan.Task{task("A", "Ops", 6), task("B", "Dev", 1, "A")}

	got, err := Schedule(tasks, at("2020-03-27", 9, 0), map[string]*availability.Schedule{"Dev": cal, "Ops": cal})
	require.NoError(t, err)

	assert.Equal(t, at("2020-03-27", 15, 0), got[1].Begin)
}

func TestSchedule_DoesNotRunIntoLaterTask(t *testing.T) {
	cal := weekdays(t)
	// C waits for A on another resource, so it is placed on Dev at 13:00.
	// D is free to start at 09:00 but would overlap C if it did.
	tasks := []plan.Task{
		task("A", "Ops", 4),
		task("C", "Dev", 2, "A"),
		task("D", "Dev", 5),
	}

	got, err := Schedule(tasks, at("2020-03-27", 9, 0), map[string]*availability.Schedule{"Dev": cal, "Ops": cal})
	require.NoError(t, err)

	c, d := got[1], got[2]
	assert.Equal(t, at("2020-03-27", 13, 0), c.Begin)
	assert.Equal(t, at("2020-03-27", 15, 0), c.End)
	assert.Equal(t, at("2020-03-27", 15, 0), d.Begin)
	assert.Equal(t, at("2020-03-30", 12, 0), d.End)
}

func TestSchedule_HoursSources(t *testing.T) {
	cal := weekdays(t)
	tasks := []plan.Task{
		{ID: "done", Resource: "Dev", Prediction: 4, Actual: 1, Done: true},
		{ID: "scaled", Resource: "Dev", Prediction: 2},
		{ID: "plain", Resource: "Dev", Prediction: 1},
	}

	got, err := Schedule(tasks, at("2020-03-27", 9, 0), map[string]*availability.Schedule{"Dev": cal},
		WithAccuracies(map[string]float64{"scaled": 1.5, "done": 3}))
	require.NoError(t, err)

	assert.Equal(t, at("2020-03-27", 10, 0), got[0].End, "done tasks use their actual hours")
	assert.Equal(t, at("2020-03-27", 13, 0), got[1].End, "prediction is scaled by accuracy")
	assert.Equal(t, at("2020-03-27", 14, 0), got[2].End, "missing accuracy defaults to 1")
}

func TestSchedule_EndsAtPeriodBoundary(t *testing.T) {
	tasks := []plan.Task{task("A", "Dev", 8)}

	got, err := Schedule(tasks, at("2020-03-27", 9, 0), map[string]*availability.Schedule{"Dev": weekdays(t)})
	require.NoError(t, err)
	assert.Equal(t, at("2020-03-27", 17, 0), got[0].End)
}

func TestSchedule_MissingResourceSchedule(t *testing.T) {
	_, err := Schedule([]plan.Task{task("A", "Painter", 1)}, at("2020-03-27", 9, 0), map[string]*availability.Schedule{})
	require.Error(t, err)

	var ferr *errors.ForecastError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, errors.ErrCodeScheduleMissing, ferr.Code)
	assert.False(t, errors.IsValidation(err))
}

func TestSchedule_DoesNotMutateInput(t *testing.T) {
	tasks := []plan.Task{task("A", "Dev", 1), task("B", "Dev", 1, "A")}
	before := []plan.Task{task("A", "Dev", 1), task("B", "Dev", 1, "A")}

	_, err := Schedule(tasks, at("2020-03-27", 9, 0), map[string]*availability.Schedule{"Dev": weekdays(t)})
	require.NoError(t, err)
	assert.Equal(t, before, tasks)
}

func TestFinish_Empty(t *testing.T) {
	assert.True(t, Finish(nil).IsZero())
}

func TestSchedule_TaskSpansGapLongerThanAYear(t *testing.T) {
	sabbatical, err := availability.NewSchedule([]string{
		"include from 09:00 to 17:00 every weekday",
		"exclude from 2027-01-01 to 2028-06-30",
	}, availability.WithToday(at("2026-12-01", 0, 0)))
	require.NoError(t, err)
	biennial, err := availability.NewSchedule([]string{
		"include from 09:00 to 17:00 from 2026-01-01 for 1 day every 2 years",
	}, availability.WithToday(at("2026-01-01", 0, 0)))
	require.NoError(t, err)

	tasks := []plan.Task{
		task("Write", "Author", 16),
		task("Review", "Board", 12, "Write"),
	}
	schedules := map[string]*availability.Schedule{"Author": sabbatical, "Board": biennial}

	var got []ScheduledTask
	require.NotPanics(t, func() {
		got, err = Schedule(tasks, at("2026-12-31", 9, 0), schedules)
	})
	require.NoError(t, err)

	assert.Equal(t, []ScheduledTask{
		{Task: "Write", Begin: at("2026-12-31", 9, 0), End: at("2028-07-03", 17, 0)},
		{Task: "Review", Begin: at("2030-01-01", 9, 0), End: at("2030-01-02", 13, 0)},
	}, got)
}

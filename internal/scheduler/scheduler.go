// Package scheduler assigns concrete begin and end instants to an
// internalized task list.
package scheduler

import (
	"time"

	"github.com/felixgeelhaar/forecast/internal/availability"
	"github.com/felixgeelhaar/forecast/internal/errors"
	"github.com/felixgeelhaar/forecast/internal/plan"
)

// ScheduledTask is a task placed on its resource's calendar
type ScheduledTask struct {
	Task  string    `json:"task"`
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
}

// Option configures a scheduling pass
type Option func(*options)

type options struct {
	accuracies map[string]float64
}

// WithAccuracies scales each task's prediction by the multiplier stored under
// its ID. Tasks without an entry use 1.
func WithAccuracies(accuracies map[string]float64) Option {
	return func(o *options) {
		o.accuracies = accuracies
	}
}

// Schedule places tasks one after the other, in the given order, starting no
// earlier than start. Each task begins after all of its dependencies end and
// is moved past any task already placed on the same resource that it would
// overlap. Its hours are spread over the resource's working periods.
//
// Tasks must be internalized (see plan.Internalize). Every resource must have
// a schedule; a missing one is reported as a configuration error.
func Schedule(tasks []plan.Task, start time.Time, schedules map[string]*availability.Schedule, opts ...Option) ([]ScheduledTask, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	for _, task := range tasks {
		if schedules[task.Resource] == nil {
			return nil, errors.NewScheduleMissingError(task.Resource)
		}
	}

	scheduled := make([]ScheduledTask, 0, len(tasks))
	placed := make(map[string]int, len(tasks))

	for i, task := range tasks {
		cal := schedules[task.Resource]

		begin := start
		for _, dep := range task.DependsOn {
			if j, ok := placed[dep]; ok && scheduled[j].End.After(begin) {
				begin = scheduled[j].End
			}
		}
		begin = cal.NextBeginFrom(begin)
		work := hours(task, o.accuracies)

		end := accrue(begin, work, cal)
		for {
			st, ok := conflict(begin, end, task.Resource, tasks, scheduled)
			if !ok {
				break
			}
			begin = cal.NextBeginFrom(st.End)
			end = accrue(begin, work, cal)
		}

		scheduled = append(scheduled, ScheduledTask{Task: task.ID, Begin: begin, End: end})
		placed[task.ID] = i
	}

	return scheduled, nil
}

// conflict returns the first task already placed on resource that contains
// begin or starts inside (begin, end). The caller restarts the sweep from the
// first placed task after every move, since a move can run into a task that
// was checked earlier.
func conflict(begin, end time.Time, resource string, tasks []plan.Task, scheduled []ScheduledTask) (ScheduledTask, bool) {
	for j, st := range scheduled {
		if tasks[j].Resource != resource || !begin.Before(st.End) {
			continue
		}
		if !begin.Before(st.Begin) || st.Begin.Before(end) {
			return st, true
		}
	}
	return ScheduledTask{}, false
}

// accrue consumes work from begin onwards, period by period, and returns the
// instant the work is finished.
func accrue(begin time.Time, work time.Duration, cal *availability.Schedule) time.Time {
	end := begin
	for work > 0 {
		nextEnd := cal.NextEndFrom(end)
		available := nextEnd.Sub(end)
		if work <= available {
			return end.Add(work)
		}
		work -= available
		end = cal.NextBeginFrom(nextEnd)
	}
	return end
}

func hours(task plan.Task, accuracies map[string]float64) time.Duration {
	h := task.Prediction
	if task.Done {
		h = task.Actual
	} else if acc, ok := accuracies[task.ID]; ok && acc > 0 {
		h *= acc
	}
	return time.Duration(h * float64(time.Hour))
}

// Finish returns the latest end of the scheduled tasks, or the zero time for
// an empty list.
func Finish(scheduled []ScheduledTask) time.Time {
	var latest time.Time
	for _, st := range scheduled {
		if st.End.After(latest) {
			latest = st.End
		}
	}
	return latest
}

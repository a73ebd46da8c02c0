package forecast

import (
	"math/rand/v2"
	"time"

	"github.com/felixgeelhaar/forecast/internal/availability"
	"github.com/felixgeelhaar/forecast/internal/plan"
	"github.com/felixgeelhaar/forecast/internal/scheduler"
)

// SimulateOnce schedules tasks from now with one accuracy drawn per task
// from its resource's performance and returns the latest end. Resources
// without a performance draw from the defaults. An empty list finishes at now.
//
// tasks must be internalized.
func SimulateOnce(tasks []plan.Task, performances map[string]Performance, schedules map[string]*availability.Schedule, now time.Time, rng *rand.Rand) (time.Time, error) {
	accuracies := make(map[string]float64, len(tasks))
	for _, task := range tasks {
		accuracies[task.ID] = performances[task.Resource].Draw(rng)
	}

	scheduled, err := scheduler.Schedule(tasks, now, schedules, scheduler.WithAccuracies(accuracies))
	if err != nil {
		return time.Time{}, err
	}

	if finish := scheduler.Finish(scheduled); finish.After(now) {
		return finish, nil
	}
	return now, nil
}

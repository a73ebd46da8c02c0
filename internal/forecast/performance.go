// Package forecast estimates completion dates by repeatedly rescheduling a
// task list with accuracy multipliers drawn from each resource's history.
package forecast

import (
	"math"
	"math/rand/v2"

	"github.com/felixgeelhaar/forecast/internal/plan"
	"github.com/felixgeelhaar/forecast/internal/stats"
)

// DefaultAccuracies pad a resource's history until it holds as many samples
// as this list. They describe a mildly noisy estimator that is right on
// average.
var DefaultAccuracies = []float64{1.0, 1.1, 0.9, 1.0, 1.2, 0.8, 1.0, 1.1, 0.9, 1.0}

// Performance is the estimation history of one resource: the ratio of actual
// to predicted hours of each completed task.
type Performance struct {
	Accuracies []float64 `json:"accuracies" yaml:"accuracies"`
}

// NewPerformance keeps the usable samples of accuracies. Non-finite and
// non-positive values are dropped.
func NewPerformance(accuracies []float64) Performance {
	kept := make([]float64, 0, len(accuracies))
	for _, a := range accuracies {
		if a > 0 && !math.IsInf(a, 0) && !math.IsNaN(a) {
			kept = append(kept, a)
		}
	}
	return Performance{Accuracies: kept}
}

// Pool returns the samples Draw picks from.
func (p Performance) Pool() []float64 {
	pool := make([]float64, 0, max(len(p.Accuracies), len(DefaultAccuracies)))
	pool = append(pool, p.Accuracies...)
	if missing := len(DefaultAccuracies) - len(p.Accuracies); missing > 0 {
		pool = append(pool, DefaultAccuracies[:missing]...)
	}
	return pool
}

// Draw picks one accuracy uniformly from the padded pool.
func (p Performance) Draw(rng *rand.Rand) float64 {
	a, _ := stats.RandomEntry(rng, p.Pool())
	return a
}

// Statistics describes the recorded history, without the padding.
func (p Performance) Statistics() (stats.Discrete, bool) {
	return stats.Describe(p.Accuracies)
}

// PerformancesFromTasks collects the accuracy of every done task by resource.
func PerformancesFromTasks(tasks []plan.Task) map[string]Performance {
	history := make(map[string][]float64)
	for _, t := range tasks {
		if !t.Done {
			continue
		}
		if a, ok := t.Accuracy(); ok {
			history[t.Resource] = append(history[t.Resource], a)
		}
	}

	performances := make(map[string]Performance, len(history))
	for resource, accuracies := range history {
		performances[resource] = NewPerformance(accuracies)
	}
	return performances
}

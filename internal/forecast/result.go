package forecast

import (
	"time"

	"github.com/felixgeelhaar/forecast/internal/stats"
)

// Result is the outcome of one batch of simulations.
type Result struct {
	RunID   string        `json:"run_id"`
	Seed    uint64        `json:"seed"`
	Start   time.Time     `json:"start"`
	Samples []time.Time   `json:"-"` // ascending
	Elapsed time.Duration `json:"elapsed"`
}

// Summary holds the completion dates most often asked about.
type Summary struct {
	P50 time.Time `json:"p50"`
	P80 time.Time `json:"p80"`
	P95 time.Time `json:"p95"`
}

// ProbabilityOfEndingBy returns the fraction of runs that completed at or
// before t.
func (r Result) ProbabilityOfEndingBy(t time.Time) float64 {
	return stats.CumulativeProbability(r.Samples, t, time.Time.Compare)
}

// ProbabilityOfEndingOn returns the fraction of runs that completed on or
// before the calendar day of date, in date's location.
func (r Result) ProbabilityOfEndingOn(date time.Time) float64 {
	y, m, d := date.Date()
	endOfDay := time.Date(y, m, d+1, 0, 0, 0, 0, date.Location()).Add(-time.Nanosecond)
	return r.ProbabilityOfEndingBy(endOfDay)
}

// Percentile returns the completion date reached by a fraction p of runs.
func (r Result) Percentile(p float64) (time.Time, bool) {
	return stats.Percentile(r.Samples, p)
}

// Summary returns the 50th, 80th and 95th percentile completion dates.
func (r Result) Summary() Summary {
	p50, _ := r.Percentile(0.5)
	p80, _ := r.Percentile(0.8)
	p95, _ := r.Percentile(0.95)
	return Summary{P50: p50, P80: p80, P95: p95}
}

// Len returns the number of runs in the batch.
func (r Result) Len() int {
	return len(r.Samples)
}

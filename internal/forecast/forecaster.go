package forecast

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/forecast/internal/availability"
	"github.com/felixgeelhaar/forecast/internal/errors"
	"github.com/felixgeelhaar/forecast/internal/log"
	"github.com/felixgeelhaar/forecast/internal/metrics"
	"github.com/felixgeelhaar/forecast/internal/plan"
)

// DefaultIterations is the number of runs in a batch when none is configured.
const DefaultIterations = 1000

// Forecaster runs batches of simulations over fixed schedules and
// performances. It is safe for concurrent use.
type Forecaster struct {
	performances map[string]Performance
	schedules    map[string]*availability.Schedule
	iterations   int
	workers      int
	seed         uint64
	progress     func(completed int)
	metrics      *metrics.Metrics
	logger       *log.Logger
}

// Option configures a Forecaster
type Option func(*Forecaster)

// WithIterations sets the number of runs per batch.
func WithIterations(n int) Option {
	return func(f *Forecaster) {
		if n > 0 {
			f.iterations = n
		}
	}
}

// WithWorkers bounds the number of runs executing at once.
func WithWorkers(n int) Option {
	return func(f *Forecaster) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithSeed makes batches reproducible. Run i of a batch draws from a
// generator seeded with (seed, i), so the samples do not depend on the
// number of workers. Zero picks a seed from the clock on every batch.
func WithSeed(seed uint64) Option {
	return func(f *Forecaster) {
		f.seed = seed
	}
}

// WithProgress registers a callback receiving the number of completed runs.
// It may be called from several goroutines and counts can arrive out of order.
func WithProgress(fn func(completed int)) Option {
	return func(f *Forecaster) {
		f.progress = fn
	}
}

// WithMetrics records runs and batch durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Forecaster) {
		f.metrics = m
	}
}

// WithLogger sets the logger. The process default is used otherwise.
func WithLogger(l *log.Logger) Option {
	return func(f *Forecaster) {
		f.logger = l
	}
}

// NewForecaster creates a Forecaster over the given resource performances and
// schedules.
func NewForecaster(performances map[string]Performance, schedules map[string]*availability.Schedule, opts ...Option) *Forecaster {
	f := &Forecaster{
		performances: performances,
		schedules:    schedules,
		iterations:   DefaultIterations,
		workers:      runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = log.DefaultLogger()
	}
	return f
}

// Iterations returns the number of runs per batch.
func (f *Forecaster) Iterations() int {
	return f.iterations
}

// Run simulates the internalized task list from now, once per iteration, and
// collects the completion dates. The context is checked before each run; a
// cancelled batch returns the context's error.
func (f *Forecaster) Run(ctx context.Context, tasks []plan.Task, now time.Time) (Result, error) {
	for _, task := range tasks {
		if f.schedules[task.Resource] == nil {
			err := errors.NewScheduleMissingError(task.Resource)
			f.recordError(err)
			return Result{}, err
		}
	}

	seed := f.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	runID := uuid.NewString()
	logger := f.logger.With("run_id", runID, "iterations", f.iterations, "workers", f.workers)
	logger.DebugContext(ctx, "starting simulations", "tasks", len(tasks), "seed", seed)

	start := time.Now()
	samples := make([]time.Time, f.iterations)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i := range f.iterations {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, uint64(i)))
			end, err := SimulateOnce(tasks, f.performances, f.schedules, now, rng)
			if err != nil {
				return err
			}
			samples[i] = end

			n := completed.Add(1)
			if f.metrics != nil {
				f.metrics.SimulationRuns.WithLabelValues().Inc()
				f.metrics.SchedulingPasses.WithLabelValues("simulation").Inc()
			}
			if f.progress != nil {
				f.progress(int(n))
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		logger.WarnContext(ctx, "simulations stopped", "completed", completed.Load(), "error", err)
		f.recordError(err)
		return Result{}, err
	}

	slices.SortFunc(samples, time.Time.Compare)
	elapsed := time.Since(start)
	if f.metrics != nil {
		f.metrics.SimulationDuration.WithLabelValues().Observe(elapsed.Seconds())
	}
	logger.DebugContext(ctx, "simulations finished", "elapsed", elapsed)

	return Result{
		RunID:   runID,
		Seed:    seed,
		Start:   now,
		Samples: samples,
		Elapsed: elapsed,
	}, nil
}

func (f *Forecaster) recordError(err error) {
	if f.metrics == nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return
	}
	f.metrics.RecordError(err, "forecast")
}

package project

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/felixgeelhaar/forecast/internal/availability"
	"github.com/felixgeelhaar/forecast/internal/domain"
	"github.com/felixgeelhaar/forecast/internal/errors"
	"github.com/felixgeelhaar/forecast/internal/forecast"
	"github.com/felixgeelhaar/forecast/internal/log"
	"github.com/felixgeelhaar/forecast/internal/metrics"
	"github.com/felixgeelhaar/forecast/internal/plan"
	"github.com/felixgeelhaar/forecast/internal/scheduler"
)

// Entry is one task of the baseline schedule with RFC 3339 instants.
type Entry struct {
	Task  plan.Task `json:"task" yaml:"task"`
	Begin string    `json:"begin" yaml:"begin"`
	End   string    `json:"end" yaml:"end"`
}

// Option configures a Project
type Option func(*options)

type options struct {
	location        *time.Location
	clock           func() time.Time
	metrics         *metrics.Metrics
	logger          *log.Logger
	forecastOptions []forecast.Option
}

// WithLocation sets the time zone dates are read in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithClock replaces time.Now. The clock dates schedule construction checks
// and the instant simulations start from.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithMetrics records schedule builds, scheduling passes and simulations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger. The process default is used otherwise.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithForecastOptions configures the forecaster behind Forecast.
func WithForecastOptions(opts ...forecast.Option) Option {
	return func(o *options) {
		o.forecastOptions = append(o.forecastOptions, opts...)
	}
}

// Project is a scheduling context. Its inputs never change after New; the
// baseline schedule and the forecast are computed on first use and kept.
// A Project is safe for concurrent use.
type Project struct {
	name         string
	start        time.Time
	tasks        []plan.Task // as declared
	internal     []plan.Task
	schedules    map[string]*availability.Schedule
	performances map[string]forecast.Performance
	snapshots    map[string]map[string]string
	opts         options

	scheduleOnce sync.Once
	scheduled    []scheduler.ScheduledTask
	scheduleErr  error

	forecastMu sync.Mutex
	result     *forecast.Result
}

// New checks a definition and builds its scheduling context: the task list is
// internalized, every resource's rules are compiled and every task's resource
// must have a schedule.
func New(def Definition, opts ...Option) (*Project, error) {
	o := options{location: time.Local, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.DefaultLogger()
	}

	p, err := build(def, o)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordError(err, "project")
		}
		return nil, err
	}
	return p, nil
}

func build(def Definition, o options) (*Project, error) {
	logger := o.logger.With("project", def.Name)

	start, err := parseDate(def.Start, o.location)
	if err != nil {
		return nil, errors.Locate(err, "reading project", "start")
	}

	internal, err := plan.Internalize(def.Tasks, def.Groups)
	if err != nil {
		return nil, errors.Locate(err, "internalizing tasks", nil)
	}

	schedules := make(map[string]*availability.Schedule, len(def.Schedules))
	for _, resource := range slices.Sorted(maps.Keys(def.Schedules)) {
		schedule, err := makeSchedule(resource, def.Schedules[resource], o)
		if err != nil {
			return nil, errors.Locate(err, "making schedule for a resource", resource)
		}
		schedules[resource] = schedule
	}

	for _, task := range internal {
		if schedules[task.Resource] == nil {
			return nil, errors.NewScheduleMissingError(task.Resource)
		}
	}

	performances := forecast.PerformancesFromTasks(def.Tasks)
	for resource, accuracies := range def.Accuracies {
		history := append(slices.Clone(accuracies), performances[resource].Accuracies...)
		performances[resource] = forecast.NewPerformance(history)
	}

	if o.metrics != nil {
		o.metrics.ProjectTaskCount.WithLabelValues().Observe(float64(len(internal)))
	}
	logger.Debug("project ready", "tasks", len(internal), "resources", len(schedules), "start", start.Format(time.DateOnly))

	return &Project{
		name:         def.Name,
		start:        start,
		tasks:        def.Tasks,
		internal:     internal,
		schedules:    schedules,
		performances: performances,
		snapshots:    def.Snapshots,
		opts:         o,
	}, nil
}

func makeSchedule(resource string, rules []string, o options) (*availability.Schedule, error) {
	if _, err := domain.NewResourceID(resource); err != nil {
		return nil, errors.Validationf(errors.ErrCodeProjectInvalid, "%s", err.Error())
	}

	schedule, err := availability.NewSchedule(rules, availability.WithToday(o.clock().In(o.location)))
	if o.metrics != nil {
		o.metrics.ScheduleBuilds.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
	}
	return schedule, err
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, errors.Validationf(errors.ErrCodeProjectInvalid, "date entered is not a valid date: %q", s)
	}
	return t, nil
}

// Name returns the project name.
func (p *Project) Name() string {
	return p.name
}

// Start returns the start date as YYYY-MM-DD.
func (p *Project) Start() string {
	return p.start.Format(time.DateOnly)
}

// Tasks returns the internalized task list.
func (p *Project) Tasks() []plan.Task {
	out := make([]plan.Task, len(p.internal))
	for i, t := range p.internal {
		t.DependsOn = slices.Clone(t.DependsOn)
		out[i] = t
	}
	return out
}

// Strata returns the internalized tasks grouped into dependency layers.
func (p *Project) Strata() [][]string {
	return plan.Strata(p.internal)
}

// Resources returns the resources that have a schedule, sorted.
func (p *Project) Resources() []string {
	return slices.Sorted(maps.Keys(p.schedules))
}

// Performance returns the accuracy history of resource.
func (p *Project) Performance(resource string) forecast.Performance {
	return p.performances[resource]
}

// Snapshots returns the recorded forecasts of the definition.
func (p *Project) Snapshots() map[string]map[string]string {
	return p.snapshots
}

// WithStart returns a new context starting on date. The receiver and its
// caches are left as they are.
func (p *Project) WithStart(date string) (*Project, error) {
	start, err := parseDate(date, p.opts.location)
	if err != nil {
		return nil, errors.Locate(err, "changing start", date)
	}
	return &Project{
		name:         p.name,
		start:        start,
		tasks:        p.tasks,
		internal:     p.internal,
		schedules:    p.schedules,
		performances: p.performances,
		snapshots:    p.snapshots,
		opts:         p.opts,
	}, nil
}

// ScheduledTasks returns the baseline schedule: every task at its predicted
// hours, from the start date, in internalized order.
func (p *Project) ScheduledTasks() ([]scheduler.ScheduledTask, error) {
	p.scheduleOnce.Do(func() {
		p.scheduled, p.scheduleErr = scheduler.Schedule(p.internal, p.start, p.schedules)
		if p.opts.metrics != nil {
			p.opts.metrics.SchedulingPasses.WithLabelValues("baseline").Inc()
			p.opts.metrics.RecordError(p.scheduleErr, "scheduler")
		}
	})
	return slices.Clone(p.scheduled), p.scheduleErr
}

// Schedule returns the baseline schedule with the declared tasks and RFC 3339
// instants.
func (p *Project) Schedule() ([]Entry, error) {
	scheduled, err := p.ScheduledTasks()
	if err != nil {
		return nil, err
	}

	declared := make(map[string]plan.Task, len(p.tasks))
	for _, t := range p.tasks {
		declared[t.ID] = t
	}

	entries := make([]Entry, len(scheduled))
	for i, st := range scheduled {
		entries[i] = Entry{
			Task:  declared[st.Task],
			Begin: st.Begin.Format(time.RFC3339),
			End:   st.End.Format(time.RFC3339),
		}
	}
	return entries, nil
}

// Forecast simulates the project once and returns the cached result
// afterwards. Simulations start at the later of the start date and now.
// A failed or cancelled batch is not cached.
func (p *Project) Forecast(ctx context.Context) (forecast.Result, error) {
	p.forecastMu.Lock()
	defer p.forecastMu.Unlock()

	if p.result != nil {
		return *p.result, nil
	}

	opts := []forecast.Option{forecast.WithLogger(p.opts.logger)}
	if p.opts.metrics != nil {
		opts = append(opts, forecast.WithMetrics(p.opts.metrics))
	}
	opts = append(opts, p.opts.forecastOptions...)

	now := p.opts.clock().In(p.opts.location)
	if p.start.After(now) {
		now = p.start
	}

	f := forecast.NewForecaster(p.performances, p.schedules, opts...)
	result, err := f.Run(ctx, p.internal, now)
	if err != nil {
		return forecast.Result{}, err
	}
	p.result = &result
	return result, nil
}

// ProbabilityOfEndingOn returns the probability that the project is finished
// by the end of date (YYYY-MM-DD).
func (p *Project) ProbabilityOfEndingOn(ctx context.Context, date string) (float64, error) {
	day, err := parseDate(date, p.opts.location)
	if err != nil {
		return 0, errors.Locate(err, "reading date", date)
	}

	result, err := p.Forecast(ctx)
	if err != nil {
		return 0, err
	}
	return result.ProbabilityOfEndingOn(day), nil
}

// Snapshot returns the completion day reached with each probability, keyed
// by the probability, in the shape of the definition's snapshots.
func (p *Project) Snapshot(ctx context.Context, probabilities ...float64) (map[string]string, error) {
	result, err := p.Forecast(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(probabilities))
	for _, prob := range probabilities {
		if d, ok := result.Percentile(prob); ok {
			out[strconv.FormatFloat(prob, 'f', -1, 64)] = d.In(p.opts.location).Format(time.DateOnly)
		}
	}
	return out, nil
}

// ResourceScheduleInRange returns the working periods of resource on the
// days in [from, to).
func (p *Project) ResourceScheduleInRange(resource, from, to string) ([]availability.Period, error) {
	schedule := p.schedules[resource]
	if schedule == nil {
		return nil, errors.NewScheduleMissingError(resource)
	}

	fromDay, err := parseDate(from, p.opts.location)
	if err != nil {
		return nil, errors.Locate(err, "reading range", "from")
	}
	toDay, err := parseDate(to, p.opts.location)
	if err != nil {
		return nil, errors.Locate(err, "reading range", "to")
	}
	if toDay.Before(fromDay) {
		return nil, errors.NewValidation(errors.ErrCodeProjectInvalid,
			fmt.Sprintf("range ends before it begins: %s > %s", from, to), "reading range", resource)
	}

	return schedule.PeriodsInRange(fromDay, toDay), nil
}

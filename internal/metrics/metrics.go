package metrics

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

// Metrics holds all Prometheus metrics for forecast
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Project construction metrics
	ScheduleBuilds   *prometheus.CounterVec
	ProjectTaskCount *prometheus.HistogramVec

	// Scheduling metrics
	SchedulingPasses *prometheus.CounterVec

	// Monte Carlo metrics
	SimulationRuns     *prometheus.CounterVec
	SimulationDuration *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		ScheduleBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_schedule_builds_total",
				Help: "Total number of resource availability schedules built",
			},
			[]string{"success"},
		),
		ProjectTaskCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_project_task_count",
				Help:    "Number of tasks in internalized projects",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500},
			},
			[]string{},
		),

		SchedulingPasses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_scheduling_passes_total",
				Help: "Total number of scheduling passes over a task list",
			},
			[]string{"kind"},
		),

		SimulationRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_simulation_runs_total",
				Help: "Total number of Monte Carlo simulation runs",
			},
			[]string{},
		),
		SimulationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_simulation_duration_seconds",
				Help:    "Duration of a batch of Monte Carlo simulation runs in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
			},
			[]string{},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordCommand records one CLI command execution.
func (m *Metrics) RecordCommand(command string, duration time.Duration, err error) {
	success := "true"
	if err != nil {
		success = "false"
	}
	m.CommandExecutions.WithLabelValues(command, success).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordError counts err under its structured error code. Errors without a
// code are counted as "unknown"; nil is ignored.
func (m *Metrics) RecordError(err error, component string) {
	if err == nil {
		return
	}
	m.Errors.WithLabelValues(string(Code(err)), component).Inc()
}

// Code extracts the structured error code from err.
func Code(err error) errors.ErrorCode {
	var verr *errors.ValidationError
	if stderrors.As(err, &verr) {
		return verr.Code
	}
	var ferr *errors.ForecastError
	if stderrors.As(err, &ferr) {
		return ferr.Code
	}
	return "unknown"
}

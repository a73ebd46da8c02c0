package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forecast/internal/forecast"
	"github.com/felixgeelhaar/forecast/internal/progress"
	"github.com/felixgeelhaar/forecast/internal/ux"
)

// SimulationView is the outcome of a Monte Carlo batch.
type SimulationView struct {
	Project       string             `json:"project" yaml:"project"`
	RunID         string             `json:"run_id" yaml:"run_id"`
	Seed          uint64             `json:"seed" yaml:"seed"`
	Iterations    int                `json:"iterations" yaml:"iterations"`
	Start         string             `json:"start" yaml:"start"`
	Percentiles   map[string]string  `json:"percentiles" yaml:"percentiles"`
	Probabilities map[string]float64 `json:"probabilities,omitempty" yaml:"probabilities,omitempty"`
	Recorded      map[string]string  `json:"recorded,omitempty" yaml:"recorded,omitempty"` // latest snapshot of the definition
}

// RenderText implements ux.TextRenderer.
func (v SimulationView) RenderText(s ux.Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(v.Project))
	b.WriteString("\n" + s.Muted.Render(fmt.Sprintf("%d simulations from %s, seed %d", v.Iterations, v.Start, v.Seed)))

	rows := make([][]string, 0, len(v.Percentiles))
	for _, p := range sortedKeys(v.Percentiles) {
		row := []string{percent(p), v.Percentiles[p]}
		if v.Recorded != nil {
			row = append(row, v.Recorded[p])
		}
		rows = append(rows, row)
	}
	headers := []string{"Confidence", "Finished by"}
	if v.Recorded != nil {
		headers = append(headers, "Recorded")
	}
	b.WriteString("\n" + s.Table(headers, rows))

	if len(v.Probabilities) > 0 {
		rows := make([][]string, 0, len(v.Probabilities))
		for _, day := range sortedKeys(v.Probabilities) {
			rows = append(rows, []string{day, fmt.Sprintf("%.1f%%", v.Probabilities[day]*100)})
		}
		b.WriteString("\n" + s.Table([]string{"Date", "Probability"}, rows))
	}
	return b.String()
}

func newSimulateCommand(cc *CommandContext) *cobra.Command {
	var (
		file        string
		start       string
		on          []string
		confidences []float64
		quiet       bool
		iterations  int
		workers     int
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Forecast the completion date of a project",
		Long: `Run a batch of Monte Carlo simulations of a project and report the dates it
is finished by with a given confidence.

Every run draws, for each open task, one accuracy from the history of the
task's resource and schedules the project with the task's estimate rescaled
by it. Done tasks keep their actual hours. Resources without enough history
are padded with a default distribution.`,
		Example: `  forecast simulate -f house.yaml
  forecast simulate -f house.yaml --iterations 10000 --seed 42 --on 2020-04-15
  forecast simulate -f house.yaml --confidence 0.5,0.9 -o json`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = instrument(cc, "simulate", func(cmd *cobra.Command, args []string) error {
		// Flags override the configuration only when given.
		sim := cc.Config.Simulation
		flags := cmd.Flags()
		if flags.Changed("iterations") {
			sim.Iterations = iterations
		}
		if flags.Changed("workers") {
			sim.Workers = workers
		}
		if flags.Changed("seed") {
			sim.Seed = seed
		}
		if sim.Iterations <= 0 {
			return fmt.Errorf("invalid argument \"%d\" for \"--iterations\" flag: must be positive", sim.Iterations)
		}

		var indicator *progress.Indicator
		if cc.Text() && !quiet {
			indicator = progress.New(progress.Options{
				Writer: cc.Stderr,
				Total:  sim.Iterations,
			})
		}

		opts := []forecast.Option{
			forecast.WithIterations(sim.Iterations),
			forecast.WithWorkers(sim.Workers),
			forecast.WithSeed(sim.Seed),
		}
		if indicator != nil {
			opts = append(opts, forecast.WithProgress(indicator.Update))
		}

		def, p, err := cc.LoadProject(file, opts...)
		if err != nil {
			return err
		}
		if start != "" {
			if p, err = p.WithStart(start); err != nil {
				return err
			}
		}

		stop := func() {}
		if indicator != nil {
			stop = indicator.Start(cmd.Context())
		}
		result, err := p.Forecast(cmd.Context())
		stop()
		if err != nil {
			return err
		}
		if indicator != nil {
			indicator.Summary(result.RunID)
		}

		snapshot, err := p.Snapshot(cmd.Context(), confidences...)
		if err != nil {
			return err
		}
		view := SimulationView{
			Project:     p.Name(),
			RunID:       result.RunID,
			Seed:        result.Seed,
			Iterations:  result.Len(),
			Start:       result.Start.In(cc.Location).Format(time.DateOnly),
			Percentiles: snapshot,
			Recorded:    latestSnapshot(def.Snapshots),
		}

		if len(on) > 0 {
			view.Probabilities = make(map[string]float64, len(on))
			for _, day := range on {
				prob, err := p.ProbabilityOfEndingOn(cmd.Context(), day)
				if err != nil {
					return err
				}
				view.Probabilities[day] = prob
			}
		}

		cc.Logger.Info("simulation finished",
			"run_id", result.RunID,
			"runs", result.Len(),
			"elapsed", result.Elapsed,
		)
		return cc.Print(view)
	})

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "project definition (YAML or JSON)")
	flags.StringVar(&start, "start", "", "override the start date (YYYY-MM-DD)")
	flags.IntVar(&iterations, "iterations", 1000, "number of simulation runs")
	flags.IntVar(&workers, "workers", 0, "runs executing at once (default number of CPUs)")
	flags.Uint64Var(&seed, "seed", 0, "seed for reproducible runs (0 picks one)")
	flags.StringSliceVar(&on, "on", nil, "report the probability of finishing by these dates (YYYY-MM-DD)")
	flags.Float64SliceVar(&confidences, "confidence", []float64{0.5, 0.8, 0.95}, "confidence levels to report completion dates for")
	flags.BoolVarP(&quiet, "quiet", "q", false, "do not show progress")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// latestSnapshot returns the most recent recorded forecast, keyed by date.
func latestSnapshot(snapshots map[string]map[string]string) map[string]string {
	if len(snapshots) == 0 {
		return nil
	}
	return snapshots[slices.Max(slices.Collect(maps.Keys(snapshots)))]
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// percent renders a probability key such as "0.95" as "95%".
func percent(p string) string {
	f, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return p
	}
	return fmt.Sprintf("%.4g%%", f*100)
}

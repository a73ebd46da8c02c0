package cmd

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forecast/internal/config"
	"github.com/felixgeelhaar/forecast/internal/errors"
	"github.com/felixgeelhaar/forecast/internal/forecast"
	"github.com/felixgeelhaar/forecast/internal/log"
	"github.com/felixgeelhaar/forecast/internal/metrics"
	"github.com/felixgeelhaar/forecast/internal/project"
	"github.com/felixgeelhaar/forecast/internal/ux"
	"github.com/felixgeelhaar/forecast/internal/version"
)

// CommandContext holds what every command needs once flags are parsed:
// the merged configuration, a logger, a metrics registry and the output
// streams. It is filled in by the root command's PersistentPreRunE.
type CommandContext struct {
	Config   *config.Config
	Location *time.Location
	Logger   *log.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	Stdout io.Writer
	Stderr io.Writer
}

func (cc *CommandContext) init(cmd *cobra.Command) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "unknown timezone: "+cfg.Timezone, err)
	}

	cc.Config = cfg
	cc.Location = loc
	cc.Stdout = cmd.OutOrStdout()
	cc.Stderr = cmd.ErrOrStderr()

	logCfg, err := log.ParseConfig(cfg.Log.Level, cfg.Log.Format, cc.Stderr, version.GetInfo().Version)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid logging configuration", err)
	}
	cc.Logger = log.New(logCfg)
	log.SetDefaultLogger(cc.Logger)

	cc.Registry, cc.Metrics = metrics.NewRegistry()

	cc.Logger.Debug("configuration loaded",
		"command", cmd.Name(),
		"iterations", cfg.Simulation.Iterations,
		"workers", cfg.Simulation.Workers,
		"output", cfg.Output.Format,
		"timezone", loc.String(),
	)
	return nil
}

// Styles returns the text styles for the configured color setting.
func (cc *CommandContext) Styles() ux.Styles {
	return ux.NewStyles(cc.Config.Output.NoColor)
}

// Text reports whether output goes to a human.
func (cc *CommandContext) Text() bool {
	return cc.Config.Output.Format == "text"
}

// Print writes view to stdout in the configured output format.
func (cc *CommandContext) Print(view any) error {
	formatter, err := ux.NewFormatter(cc.Config.Output.Format, ux.FormatterOptions{
		Writer:  cc.Stdout,
		NoColor: cc.Config.Output.NoColor,
	})
	if err != nil {
		return err
	}
	return formatter.Format(view)
}

// LoadProject reads the definition at path and builds its scheduling context.
func (cc *CommandContext) LoadProject(path string, opts ...forecast.Option) (*project.Definition, *project.Project, error) {
	def, err := project.LoadDefinition(path)
	if err != nil {
		cc.Metrics.RecordError(err, "project")
		return nil, nil, err
	}

	sim := cc.Config.Simulation
	forecastOpts := []forecast.Option{
		forecast.WithIterations(sim.Iterations),
		forecast.WithWorkers(sim.Workers),
		forecast.WithSeed(sim.Seed),
	}

	p, err := project.New(*def,
		project.WithLocation(cc.Location),
		project.WithMetrics(cc.Metrics),
		project.WithLogger(cc.Logger),
		project.WithForecastOptions(append(forecastOpts, opts...)...),
	)
	if err != nil {
		return nil, nil, err
	}

	cc.Logger.Info("project loaded", "file", path, "project", p.Name(), "tasks", len(p.Tasks()))
	return def, p, nil
}

// WriteMetrics dumps the registry to the configured metrics file, if any.
func (cc *CommandContext) WriteMetrics() error {
	if cc.Config == nil || cc.Config.Metrics.File == "" {
		return nil
	}
	return metrics.WriteFile(cc.Config.Metrics.File, cc.Registry)
}

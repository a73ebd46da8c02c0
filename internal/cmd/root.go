// Package cmd implements the forecast command line.
package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the forecast command tree.
func NewRootCommand() *cobra.Command {
	cc := &CommandContext{}

	rootCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Evidence-based project scheduling and forecasting",
		Long: `forecast schedules a project's tasks onto the working hours of the people
who do them and predicts when the project will finish.

Completion dates are forecast by Monte Carlo simulation: every run rescales
each task by an accuracy drawn from its resource's history of
actual/estimated hours and schedules the project again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cc.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.forecast/config.yaml)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	flags.String("timezone", "Local", "timezone dates are read in")

	rootCmd.AddCommand(
		newScheduleCommand(cc),
		newSimulateCommand(cc),
		newAvailabilityCommand(cc),
		newValidateCommand(cc),
		newVersionCommand(cc),
	)

	return rootCmd
}

// ExecuteContext runs the command line with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// instrument wraps a RunE with command metrics. The metrics file is written
// whether or not the command succeeded.
func instrument(cc *CommandContext, name string, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		err := run(cmd, args)

		cc.Metrics.RecordCommand(name, time.Since(start), err)
		cc.Metrics.RecordError(err, "cmd:"+name)
		if err != nil {
			cc.Logger.WithError(err).Debug("command failed", "command", name)
		}

		if werr := cc.WriteMetrics(); werr != nil {
			cc.Logger.Warn("failed to write metrics", "file", cc.Config.Metrics.File, "error", werr)
		}
		return err
	}
}

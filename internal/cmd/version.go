package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forecast/internal/version"
)

func newVersionCommand(cc *CommandContext) *cobra.Command {
	var (
		verbose bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = instrument(cc, "version", func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()

		if asJSON || !cc.Text() {
			if asJSON {
				cc.Config.Output.Format = "json"
			}
			return cc.Print(info)
		}

		if verbose {
			s := cc.Styles()
			fmt.Fprintln(cc.Stdout, s.Title.Render("forecast")+s.Muted.Render("  evidence-based project forecasting"))
			fmt.Fprintln(cc.Stdout, info.String())
			return nil
		}

		fmt.Fprintf(cc.Stdout, "forecast %s\n", info.Short())
		return nil
	})

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output version information as JSON")

	return cmd
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forecast/internal/ux"
)

// ValidationView summarizes a project definition that passed every check.
type ValidationView struct {
	Project   string     `json:"project" yaml:"project"`
	Start     string     `json:"start" yaml:"start"`
	Tasks     int        `json:"tasks" yaml:"tasks"`
	Groups    int        `json:"groups" yaml:"groups"`
	Resources []string   `json:"resources" yaml:"resources"`
	Strata    [][]string `json:"strata" yaml:"strata"`
}

// RenderText implements ux.TextRenderer.
func (v ValidationView) RenderText(s ux.Styles) string {
	var b strings.Builder
	b.WriteString(s.Success.Render("✓ " + v.Project + " is valid"))
	b.WriteString("\n" + s.Muted.Render(fmt.Sprintf("starts %s, %d tasks in %d groups, %d resources",
		v.Start, v.Tasks, v.Groups, len(v.Resources))))

	rows := make([][]string, len(v.Strata))
	for i, stratum := range v.Strata {
		rows[i] = []string{fmt.Sprint(i + 1), strings.Join(stratum, ", ")}
	}
	b.WriteString("\n" + s.Table([]string{"Stratum", "Tasks"}, rows))
	return b.String()
}

func newValidateCommand(cc *CommandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a project definition",
		Long: `Check a project definition without scheduling it: task and group
identifiers are unique, every dependency exists, there are no dependency
cycles, every schedule rule parses and every task's resource has a schedule.

Errors name the place they were found, outermost first.`,
		Example: `  forecast validate -f house.yaml`,
		Args:    cobra.NoArgs,
	}
	cmd.RunE = instrument(cc, "validate", func(cmd *cobra.Command, args []string) error {
		def, p, err := cc.LoadProject(file)
		if err != nil {
			return err
		}

		return cc.Print(ValidationView{
			Project:   p.Name(),
			Start:     p.Start(),
			Tasks:     len(p.Tasks()),
			Groups:    len(def.Groups),
			Resources: p.Resources(),
			Strata:    p.Strata(),
		})
	})

	cmd.Flags().StringVarP(&file, "file", "f", "", "project definition (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

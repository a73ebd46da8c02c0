package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forecast/internal/project"
	"github.com/felixgeelhaar/forecast/internal/ux"
)

// ScheduleView is the baseline schedule of a project.
type ScheduleView struct {
	Project string          `json:"project" yaml:"project"`
	Start   string          `json:"start" yaml:"start"`
	End     string          `json:"end,omitempty" yaml:"end,omitempty"`
	Tasks   []project.Entry `json:"tasks" yaml:"tasks"`
}

// RenderText implements ux.TextRenderer.
func (v ScheduleView) RenderText(s ux.Styles) string {
	rows := make([][]string, len(v.Tasks))
	for i, e := range v.Tasks {
		rows[i] = []string{e.Task.ID, e.Task.Name, e.Task.Resource, displayInstant(e.Begin), displayInstant(e.End)}
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(v.Project))
	b.WriteString("\n" + s.Muted.Render("starts "+v.Start))
	if v.End != "" {
		b.WriteString(s.Muted.Render(", finishes " + displayInstant(v.End)))
	}
	b.WriteString("\n" + s.Table([]string{"Task", "Name", "Resource", "Begin", "End"}, rows))
	return b.String()
}

func newScheduleCommand(cc *CommandContext) *cobra.Command {
	var (
		file  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the baseline schedule of a project",
		Long: `Schedule every task at its estimated hours onto the working hours of its
resource, in dependency order, starting on the project's start date.`,
		Example: `  forecast schedule -f house.yaml
  forecast schedule -f house.yaml --start 2020-04-01 -o json`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = instrument(cc, "schedule", func(cmd *cobra.Command, args []string) error {
		_, p, err := cc.LoadProject(file)
		if err != nil {
			return err
		}
		if start != "" {
			if p, err = p.WithStart(start); err != nil {
				return err
			}
		}

		entries, err := p.Schedule()
		if err != nil {
			return err
		}

		view := ScheduleView{Project: p.Name(), Start: p.Start(), Tasks: entries}
		view.End = latestEnd(entries)
		return cc.Print(view)
	})

	cmd.Flags().StringVarP(&file, "file", "f", "", "project definition (YAML or JSON)")
	cmd.Flags().StringVar(&start, "start", "", "override the start date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func latestEnd(entries []project.Entry) string {
	var latest time.Time
	var out string
	for _, e := range entries {
		end, err := time.Parse(time.RFC3339, e.End)
		if err != nil {
			continue
		}
		if end.After(latest) {
			latest, out = end, e.End
		}
	}
	return out
}

// displayInstant shortens an RFC 3339 instant for tables.
func displayInstant(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("Mon 2006-01-02 15:04")
}

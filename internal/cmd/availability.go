package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forecast/internal/availability"
	"github.com/felixgeelhaar/forecast/internal/ux"
)

// AvailabilityView lists the working periods of a resource.
type AvailabilityView struct {
	Resource string                `json:"resource" yaml:"resource"`
	From     string                `json:"from" yaml:"from"`
	To       string                `json:"to" yaml:"to"`
	Hours    float64               `json:"hours" yaml:"hours"`
	Periods  []availability.Period `json:"periods" yaml:"periods"`
}

// RenderText implements ux.TextRenderer.
func (v AvailabilityView) RenderText(s ux.Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(v.Resource))
	b.WriteString("\n" + s.Muted.Render(fmt.Sprintf("%s to %s, %s hours", v.From, v.To, formatHours(v.Hours))))

	if len(v.Periods) == 0 {
		b.WriteString("\n" + s.Warning.Render("no working hours in range"))
		return b.String()
	}

	rows := make([][]string, len(v.Periods))
	for i, p := range v.Periods {
		rows[i] = []string{
			p.Begin.Format("Mon 2006-01-02"),
			p.Begin.Format("15:04"),
			p.End.Format("15:04"),
			formatHours(p.Duration().Hours()),
		}
	}
	b.WriteString("\n" + s.Table([]string{"Day", "From", "To", "Hours"}, rows))
	return b.String()
}

func newAvailabilityCommand(cc *CommandContext) *cobra.Command {
	var (
		file     string
		resource string
		from     string
		to       string
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "List the working hours of a resource",
		Long: `List the working periods of a resource on the days from --from up to, but
not including, --to. Both default to the week starting on the project's
start date.`,
		Example: `  forecast availability -f house.yaml --resource Plumber
  forecast availability -f house.yaml --resource Architect --from 2020-03-23 --to 2020-04-06`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = instrument(cc, "availability", func(cmd *cobra.Command, args []string) error {
		_, p, err := cc.LoadProject(file)
		if err != nil {
			return err
		}

		if from == "" {
			from = p.Start()
		}
		if to == "" {
			day, err := time.Parse(time.DateOnly, from)
			if err != nil {
				// reported with its location below
				to = from
			} else {
				to = day.AddDate(0, 0, 7).Format(time.DateOnly)
			}
		}

		periods, err := p.ResourceScheduleInRange(resource, from, to)
		if err != nil {
			return err
		}

		view := AvailabilityView{Resource: resource, From: from, To: to, Periods: periods}
		for _, period := range periods {
			view.Hours += period.Duration().Hours()
		}
		return cc.Print(view)
	})

	cmd.Flags().StringVarP(&file, "file", "f", "", "project definition (YAML or JSON)")
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "resource to list")
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default project start)")
	cmd.Flags().StringVar(&to, "to", "", "day after the last day (YYYY-MM-DD, default a week after --from)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("resource")

	return cmd
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.4g", h)
}

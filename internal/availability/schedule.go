package availability

import (
	"fmt"
	"slices"
	"time"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

// workableWithin is how far from today construction looks for working time.
const workableWithin = 366

// Schedule is the availability of one resource. Later rules take precedence
// over earlier ones; days no rule applies to have no working time.
type Schedule struct {
	rules   []Rule // reversed: highest precedence first
	pattern pattern
}

// Option configures schedule construction.
type Option func(*scheduleOptions)

type scheduleOptions struct {
	today func() time.Time
}

// WithToday sets the reference day for the one-year workability check.
func WithToday(t time.Time) Option {
	return func(o *scheduleOptions) {
		o.today = func() time.Time { return t }
	}
}

// NewSchedule parses rules and builds a Schedule. It fails when the rules
// can never produce working time: no recurring include, every recurring
// include overridden by a later recurring exclude, or no working day within
// a year of today.
func NewSchedule(rules []string, opts ...Option) (*Schedule, error) {
	o := scheduleOptions{today: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	parsed := make([]Rule, 0, len(rules))
	for _, text := range rules {
		r, err := ParseRule(text)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, r)
	}

	if err := checkRecurringInclude(parsed); err != nil {
		return nil, err
	}

	slices.Reverse(parsed)
	s := &Schedule{rules: parsed, pattern: newPattern(parsed)}

	today := startOfDay(o.today())
	if d, ok := s.nextWorkDay(today); !ok || !d.Before(today.AddDate(0, 0, workableWithin)) {
		return nil, errors.NewValidation(errors.ErrCodeRuleUnschedulable,
			fmt.Sprintf("no working time within a year of %s", today.Format(time.DateOnly)),
			"checking schedule rules", nil)
	}
	// Past the last dated rule the pattern repeats, so one working day there
	// means working time never runs out.
	if tail, ok := s.pattern.tailStart(today.Location()); ok {
		if _, ok := s.nextWorkDay(tail); !ok {
			return nil, errors.NewValidation(errors.ErrCodeRuleUnschedulable,
				fmt.Sprintf("no working time after %s", s.pattern.horizon),
				"checking schedule rules", nil)
		}
	}
	return s, nil
}

// MustNewSchedule is like NewSchedule but panics on error.
func MustNewSchedule(rules []string, opts ...Option) *Schedule {
	s, err := NewSchedule(rules, opts...)
	if err != nil {
		panic(fmt.Sprintf("availability: %v", err))
	}
	return s
}

func checkRecurringInclude(rules []Rule) error {
	found := false
	for i, r := range rules {
		if !r.Include || !r.Recurring() {
			continue
		}
		found = true
		if !shadowed(r, rules[i+1:]) {
			return nil
		}
	}

	cause := "rules need at least one recurring include (\"every\" or \"for ... every ...\")"
	if found {
		cause = "every recurring include is overridden by a later recurring exclude"
	}
	return errors.NewValidation(errors.ErrCodeRuleUnschedulable, cause, "checking schedule rules", nil)
}

// shadowed reports whether a later "every" exclude covers all days include
// can apply to.
func shadowed(include Rule, later []Rule) bool {
	for _, r := range later {
		if r.Include || r.Kind != KindEvery {
			continue
		}
		if include.Kind == KindEvery && r.Every.covers(include.Every) {
			return true
		}
		if include.Kind == KindRepeat && r.Every == EveryDay {
			return true
		}
	}
	return false
}

// Rules returns the parsed rules in declaration order.
func (s *Schedule) Rules() []Rule {
	out := slices.Clone(s.rules)
	slices.Reverse(out)
	return out
}

// PeriodsOn returns the working periods on the calendar day of date.
func (s *Schedule) PeriodsOn(date time.Time) []Period {
	for _, r := range s.rules {
		if periods, ok := r.Evaluate(date); ok {
			return periods
		}
	}
	return []Period{}
}

// PeriodsInRange returns the periods of every day in [from, to).
func (s *Schedule) PeriodsInRange(from, to time.Time) []Period {
	var out []Period
	for day := startOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		out = append(out, s.PeriodsOn(day)...)
	}
	return out
}

// NextBeginFrom returns the earliest instant at or after t at which work can
// happen: t itself when it lies inside a period.
func (s *Schedule) NextBeginFrom(t time.Time) time.Time {
	for _, p := range s.PeriodsOn(t) {
		if p.Contains(t) {
			return t
		}
		if t.Before(p.Begin) {
			return p.Begin
		}
	}
	return s.firstPeriodAfter(t).Begin
}

// NextEndFrom returns the end of the period containing t, or of the next
// period after t.
func (s *Schedule) NextEndFrom(t time.Time) time.Time {
	for _, p := range s.PeriodsOn(t) {
		if t.Before(p.End) {
			return p.End
		}
	}
	return s.firstPeriodAfter(t).End
}

func (s *Schedule) firstPeriodAfter(t time.Time) Period {
	day, ok := s.nextWorkDay(startOfDay(t).AddDate(0, 0, 1))
	if !ok {
		// NewSchedule rejects rules whose working time runs out.
		panic(fmt.Sprintf("availability: no working day after %s", t.Format(time.RFC3339)))
	}
	return s.PeriodsOn(day)[0]
}

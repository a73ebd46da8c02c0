package availability

import (
	"math"
	"time"
)

// Evaluate applies the rule to the calendar day of date. The boolean reports
// whether the rule applies at all; an applicable exclude rule yields an empty
// slice. Periods are materialized in date's location.
func (r Rule) Evaluate(date time.Time) ([]Period, bool) {
	day := startOfDay(date)

	if !r.applies(day) {
		return nil, false
	}
	return periodsOn(day, r.Windows), true
}

func (r Rule) applies(day time.Time) bool {
	loc := day.Location()

	switch r.Kind {
	case KindOn:
		return day.Equal(r.On.In(loc))

	case KindRange:
		return !day.Before(r.From.In(loc)) && !day.After(r.To.In(loc))

	case KindRepeat:
		start, end := r.block(day)
		return !day.Before(start) && !day.After(end)

	case KindEvery:
		return r.Every.Matches(day.Weekday())
	}
	return false
}

func periodsOn(day time.Time, windows []Window) []Period {
	periods := make([]Period, 0, len(windows))
	for _, w := range windows {
		if w.From == w.To {
			continue
		}
		periods = append(periods, Period{
			Begin: atClock(day, w.From),
			End:   atClock(day, w.To),
		})
	}
	return periods
}

func atClock(day time.Time, c ClockTime) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// unitsBetween measures the distance from a to b in unit, fractional for
// days and weeks and in completed months for months and years.
func unitsBetween(a, b time.Time, unit Unit) float64 {
	switch unit {
	case UnitDay:
		return float64(daysBetween(a, b))
	case UnitWeek:
		return float64(daysBetween(a, b)) / 7
	}

	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if addMonths(a, months).After(b) {
		months--
	}
	if unit == UnitYear {
		return float64(months) / 12
	}
	return float64(months)
}

// addUnits moves t forward by n units. Fractional days are applied as a
// share of 24 hours; months and years clamp to the end of shorter months.
func addUnits(t time.Time, n float64, unit Unit) time.Time {
	switch unit {
	case UnitMonth:
		return addMonths(t, int(n))
	case UnitYear:
		return addMonths(t, int(n)*12)
	case UnitWeek:
		n *= 7
	}

	whole := math.Floor(n)
	out := t.AddDate(0, 0, int(whole))
	if frac := n - whole; frac > 0 {
		out = out.Add(time.Duration(frac * 24 * float64(time.Hour)))
	}
	return out
}

func addMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	day := min(t.Day(), last)
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

package availability

import (
	"math"
	"time"
)

// The Gregorian calendar repeats dates and weekdays every 400 years.
const (
	gregorianDays   = 146097
	gregorianMonths = 4800
	// maxCycle caps the combined rule cycle for pathological repeat
	// intervals.
	maxCycle = 1 << 24
)

// pattern is what a Schedule needs to scan forward without a fixed limit.
// Past horizon only recurring rules apply, and their combined day pattern
// repeats every cycle days.
type pattern struct {
	horizon    Date
	hasHorizon bool
	cycle      int
	productive bool // some include rule has a non-empty window
}

func newPattern(rules []Rule) pattern {
	p := pattern{cycle: 7}
	for _, r := range rules {
		for _, w := range r.Windows {
			if r.Include && w.From != w.To {
				p.productive = true
			}
		}
		var last Date
		switch r.Kind {
		case KindOn:
			last = r.On
		case KindRange:
			last = r.To
		case KindRepeat:
			p.cycle = min(lcm(p.cycle, r.cycleDays()), maxCycle)
			continue
		default:
			continue
		}
		if !p.hasHorizon || last.In(time.UTC).After(p.horizon.In(time.UTC)) {
			p.horizon, p.hasHorizon = last, true
		}
	}
	return p
}

// tailStart is the first day from which the day pattern is periodic.
func (p pattern) tailStart(loc *time.Location) (time.Time, bool) {
	if !p.hasHorizon {
		return time.Time{}, false
	}
	return p.horizon.In(loc).AddDate(0, 0, 1), true
}

// searchEnd is the day a scan starting at day may stop at: one full cycle
// into the periodic tail.
func (p pattern) searchEnd(day time.Time) time.Time {
	start := day
	if tail, ok := p.tailStart(day.Location()); ok && tail.After(start) {
		start = tail
	}
	return start.AddDate(0, 0, p.cycle)
}

// cycleDays is a period in days of the days a repeat rule applies to.
func (r Rule) cycleDays() int {
	if r.RepeatUnit == UnitMonth || r.RepeatUnit == UnitYear {
		months := int(r.RepeatValue)
		if r.RepeatUnit == UnitYear {
			months *= 12
		}
		if months <= 0 {
			return gregorianDays
		}
		return lcm(months, gregorianMonths) / gregorianMonths * gregorianDays
	}

	days := r.RepeatValue
	if r.RepeatUnit == UnitWeek {
		days *= 7
	}
	for k := 1; k <= 1000; k++ {
		n := days * float64(k)
		if whole := math.Round(n); whole >= 1 && math.Abs(n-whole) < 1e-9 {
			return int(whole)
		}
	}
	return gregorianDays
}

// lastDay returns a day at or after day up to which r keeps applying. r must
// apply on day. forever reports that r applies on every later day.
func (r Rule) lastDay(day time.Time) (last time.Time, forever bool) {
	switch r.Kind {
	case KindRange:
		return r.To.In(day.Location()), false
	case KindRepeat:
		_, end := r.block(day)
		if last := startOfDay(end); last.After(day) {
			return last, false
		}
	case KindEvery:
		last = day
		for range 7 {
			next := last.AddDate(0, 0, 1)
			if !r.Every.Matches(next.Weekday()) {
				return last, false
			}
			last = next
		}
		return last, true
	}
	return day, false
}

// nextStart returns a day after day no later than the first day r applies
// on again. ok is false when r never applies after day.
func (r Rule) nextStart(day time.Time) (time.Time, bool) {
	loc := day.Location()
	next := day.AddDate(0, 0, 1)

	switch r.Kind {
	case KindOn:
		on := r.On.In(loc)
		return on, on.After(day)

	case KindRange:
		from, to := r.From.In(loc), r.To.In(loc)
		if !to.After(day) {
			return time.Time{}, false
		}
		if from.After(next) {
			return from, true
		}
		return next, true

	case KindRepeat:
		start, _ := r.block(day)
		if first := startOfDay(start); first.After(day) {
			return first, true
		}
		following, _ := r.blockAt(loc, r.away(day)+r.RepeatValue)
		if first := startOfDay(following); first.After(day) {
			return first, true
		}
		return next, true

	case KindEvery:
		for d := next; d.Before(day.AddDate(0, 0, 8)); d = d.AddDate(0, 0, 1) {
			if r.Every.Matches(d.Weekday()) {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// block returns the repeat block that day falls in or follows.
func (r Rule) block(day time.Time) (start, end time.Time) {
	return r.blockAt(day.Location(), r.away(day))
}

// away is the offset of day's block from r.From, in r.RepeatUnit.
func (r Rule) away(day time.Time) float64 {
	elapsed := unitsBetween(r.From.In(day.Location()), day, r.RepeatUnit)
	return math.Floor(elapsed/r.RepeatValue) * r.RepeatValue
}

func (r Rule) blockAt(loc *time.Location, away float64) (start, end time.Time) {
	start = addUnits(r.From.In(loc), away, r.RepeatUnit)
	return start, addUnits(start, r.ForValue, r.ForUnit)
}

// nextWorkDay returns the first day at or after day with working time. It
// skips over stretches where the deciding rule cannot change and gives up
// one full cycle into the periodic tail, after which no working day can
// follow.
func (s *Schedule) nextWorkDay(day time.Time) (time.Time, bool) {
	if !s.pattern.productive {
		return time.Time{}, false
	}
	end := s.pattern.searchEnd(day)
	for day.Before(end) {
		if len(s.PeriodsOn(day)) > 0 {
			return day, true
		}
		next, ok := s.nextChange(day)
		if !ok {
			return time.Time{}, false
		}
		day = next
	}
	return time.Time{}, false
}

// nextChange returns the next day after day on which the outcome of the
// rules may differ. ok is false when it never can.
func (s *Schedule) nextChange(day time.Time) (time.Time, bool) {
	deciding := len(s.rules)
	for i, r := range s.rules {
		if r.applies(day) {
			deciding = i
			break
		}
	}

	var next time.Time
	found := false
	consider := func(t time.Time) {
		if !found || t.Before(next) {
			next, found = t, true
		}
	}

	if deciding < len(s.rules) {
		if last, forever := s.rules[deciding].lastDay(day); !forever {
			consider(last.AddDate(0, 0, 1))
		}
	}
	// Only rules with higher precedence can take over from the deciding one.
	for _, r := range s.rules[:deciding] {
		if t, ok := r.nextStart(day); ok {
			consider(t)
		}
	}
	return next, found
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

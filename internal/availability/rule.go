// Package availability implements the rule language that describes when a
// resource can work, and the Schedule that folds a resource's rules into
// concrete working periods.
package availability

import (
	"fmt"
	"time"
)

// Kind is the occurrence form of a rule.
type Kind int

const (
	// KindOn applies to a single calendar day.
	KindOn Kind = iota
	// KindRange applies to every day of an inclusive date range.
	KindRange
	// KindRepeat applies to blocks of days repeating at a fixed interval.
	KindRepeat
	// KindEvery applies to a recurring set of weekdays.
	KindEvery
)

func (k Kind) String() string {
	switch k {
	case KindOn:
		return "on"
	case KindRange:
		return "range"
	case KindRepeat:
		return "repeat"
	case KindEvery:
		return "every"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Unit is a calendar unit used by repeat rules.
type Unit int

const (
	UnitDay Unit = iota
	UnitWeek
	UnitMonth
	UnitYear
)

func (u Unit) String() string {
	switch u {
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	case UnitYear:
		return "year"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Ordinal names the days an "every" rule recurs on.
type Ordinal int

const (
	EveryDay Ordinal = iota
	EveryWeekday
	EveryWeekend
	EveryMonday
	EveryTuesday
	EveryWednesday
	EveryThursday
	EveryFriday
	EverySaturday
	EverySunday
)

var ordinalNames = map[string]Ordinal{
	"day":       EveryDay,
	"weekday":   EveryWeekday,
	"weekend":   EveryWeekend,
	"monday":    EveryMonday,
	"tuesday":   EveryTuesday,
	"wednesday": EveryWednesday,
	"thursday":  EveryThursday,
	"friday":    EveryFriday,
	"saturday":  EverySaturday,
	"sunday":    EverySunday,
}

// Matches reports whether the weekday belongs to the ordinal's day set.
func (o Ordinal) Matches(d time.Weekday) bool {
	switch o {
	case EveryDay:
		return true
	case EveryWeekday:
		return d >= time.Monday && d <= time.Friday
	case EveryWeekend:
		return d == time.Saturday || d == time.Sunday
	case EverySunday:
		return d == time.Sunday
	default:
		return d == time.Weekday(o-EveryMonday+1)
	}
}

// covers reports whether every day matched by other is also matched by o.
func (o Ordinal) covers(other Ordinal) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if other.Matches(d) && !o.Matches(d) {
			return false
		}
	}
	return true
}

// ClockTime is a wall-clock time of day. 24:00 denotes the end of the day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Window is a daily working window.
type Window struct {
	From ClockTime
	To   ClockTime
}

// Date is a calendar day without a location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Period is a half-open interval [Begin, End) of working time.
type Period struct {
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Begin) && t.Before(p.End)
}

// Duration returns the length of the period.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Begin)
}

// Rule is a parsed availability rule. Include rules carry at least one
// window; exclude rules carry none.
type Rule struct {
	Text    string
	Include bool
	Windows []Window
	Kind    Kind

	On   Date // KindOn
	From Date // KindRange, KindRepeat
	To   Date // KindRange

	ForValue    float64 // KindRepeat
	ForUnit     Unit
	RepeatValue float64
	RepeatUnit  Unit

	Every Ordinal // KindEvery
}

// Recurring reports whether the rule applies indefinitely.
func (r Rule) Recurring() bool {
	return r.Kind == KindEvery || r.Kind == KindRepeat
}

func (r Rule) String() string {
	return r.Text
}

package availability

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

const ruleFrame = "parsing rule"

// ParseRule parses one availability rule such as
// "include from 09:00 to 17:00 every weekday" or "exclude on 2020-12-25".
// Keywords are case-insensitive and tokens may be separated by any run of
// whitespace.
func ParseRule(text string) (Rule, error) {
	p := &parser{tokens: strings.Fields(strings.ToLower(text))}

	rule, err := p.rule()
	if err != nil {
		return Rule{}, errors.Locate(err, ruleFrame, text)
	}
	rule.Text = text
	return rule, nil
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *parser) next() string {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) expect(words ...string) (string, error) {
	tok := p.next()
	if slices.Contains(words, tok) {
		return tok, nil
	}
	return "", syntaxError(tok, words...)
}

func syntaxError(found string, expected ...string) error {
	quoted := make([]string, len(expected))
	for i, w := range expected {
		quoted[i] = strconv.Quote(w)
	}
	want := strings.Join(quoted, " or ")
	if found == "" {
		return errors.Validationf(errors.ErrCodeRuleSyntax, "expected %s but the rule ended", want)
	}
	return errors.Validationf(errors.ErrCodeRuleSyntax, "expected %s but found %q", want, found)
}

// rule := ("exclude" | "include" times) occurrence
func (p *parser) rule() (Rule, error) {
	var r Rule

	effect, err := p.expect("include", "exclude")
	if err != nil {
		return r, err
	}

	if effect == "include" {
		r.Include = true
		if r.Windows, err = p.times(); err != nil {
			return r, err
		}
	}

	if err := p.occurrence(&r); err != nil {
		return r, err
	}

	if tok := p.peek(); tok != "" {
		return r, errors.Validationf(errors.ErrCodeRuleSyntax, "unexpected %q after the end of the rule", tok)
	}
	return r, nil
}

// times := window ("and" window)*
func (p *parser) times() ([]Window, error) {
	var windows []Window
	for {
		w, err := p.window()
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)

		if p.peek() != "and" {
			break
		}
		p.next()
	}

	slices.SortStableFunc(windows, func(a, b Window) int {
		return a.From.minutes() - b.From.minutes()
	})
	return windows, nil
}

// window := "from" TIME "to" TIME
func (p *parser) window() (Window, error) {
	if _, err := p.expect("from"); err != nil {
		return Window{}, err
	}
	from, err := p.clock()
	if err != nil {
		return Window{}, err
	}
	if _, err := p.expect("to"); err != nil {
		return Window{}, err
	}
	to, err := p.clock()
	if err != nil {
		return Window{}, err
	}

	if to.minutes() < from.minutes() {
		return Window{}, errors.Validationf(errors.ErrCodeRuleWindowOrder,
			"from time is after to time: from %q > to %q", from.String(), to.String())
	}
	return Window{From: from, To: to}, nil
}

// occurrence := "on" DATE | "from" DATE ("to" DATE | "for" N UNIT "every" N UNIT) | "every" ORDINAL
func (p *parser) occurrence(r *Rule) error {
	kw, err := p.expect("on", "from", "every")
	if err != nil {
		return err
	}

	switch kw {
	case "on":
		r.Kind = KindOn
		r.On, err = p.date()
		return err

	case "every":
		r.Kind = KindEvery
		tok := p.next()
		ord, ok := ordinalNames[tok]
		if !ok {
			return syntaxError(tok, "day", "weekday", "weekend", "monday", "tuesday",
				"wednesday", "thursday", "friday", "saturday", "sunday")
		}
		r.Every = ord
		return nil
	}

	if r.From, err = p.date(); err != nil {
		return err
	}

	kw, err = p.expect("to", "for")
	if err != nil {
		return err
	}
	if kw == "to" {
		r.Kind = KindRange
		r.To, err = p.date()
		return err
	}

	r.Kind = KindRepeat
	if r.ForValue, r.ForUnit, err = p.amount(); err != nil {
		return err
	}
	if _, err := p.expect("every"); err != nil {
		return err
	}
	r.RepeatValue, r.RepeatUnit, err = p.amount()
	return err
}

// amount := NUMBER UNIT
func (p *parser) amount() (float64, Unit, error) {
	tok := p.next()
	n, err := parseNumber(tok)
	if err != nil {
		return 0, 0, err
	}

	tok = p.next()
	var unit Unit
	switch strings.TrimSuffix(tok, "s") {
	case "day":
		unit = UnitDay
	case "week":
		unit = UnitWeek
	case "month":
		unit = UnitMonth
	case "year":
		unit = UnitYear
	default:
		return 0, 0, syntaxError(tok, "day", "week", "month", "year")
	}

	if (unit == UnitMonth || unit == UnitYear) && n != math.Trunc(n) {
		return 0, 0, errors.Validationf(errors.ErrCodeRuleSyntax,
			"%ss must be counted in whole numbers, got %v", unit, n)
	}
	return n, unit, nil
}

func parseNumber(tok string) (float64, error) {
	if !isNumber(tok) {
		if tok == "" {
			return 0, errors.Validationf(errors.ErrCodeRuleSyntax, "expected a number but the rule ended")
		}
		return 0, errors.Validationf(errors.ErrCodeRuleSyntax, "expected a number but found %q", tok)
	}
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil || n <= 0 || math.IsInf(n, 0) {
		return 0, errors.Validationf(errors.ErrCodeRuleSyntax, "number must be positive: %q", tok)
	}
	return n, nil
}

// isNumber matches DIGIT+ ("." DIGIT+)?
func isNumber(tok string) bool {
	whole, frac, hasDot := strings.Cut(tok, ".")
	if !allDigits(whole) {
		return false
	}
	return !hasDot || allDigits(frac)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// clock parses HH:MM.
func (p *parser) clock() (ClockTime, error) {
	tok := p.next()
	if len(tok) != 5 || tok[2] != ':' || !allDigits(tok[:2]) || !allDigits(tok[3:]) {
		if tok == "" {
			return ClockTime{}, errors.Validationf(errors.ErrCodeRuleSyntax, "expected a time (HH:MM) but the rule ended")
		}
		return ClockTime{}, errors.Validationf(errors.ErrCodeRuleSyntax, "expected a time (HH:MM) but found %q", tok)
	}

	hour, _ := strconv.Atoi(tok[:2])
	minute, _ := strconv.Atoi(tok[3:])
	if hour > 24 || (hour == 24 && minute > 0) || minute >= 60 {
		return ClockTime{}, errors.Validationf(errors.ErrCodeRuleTime, "time entered is not a valid time: %q", tok)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// date parses YYYY-MM-DD and rejects impossible calendar days.
func (p *parser) date() (Date, error) {
	tok := p.next()
	if len(tok) != 10 || tok[4] != '-' || tok[7] != '-' ||
		!allDigits(tok[:4]) || !allDigits(tok[5:7]) || !allDigits(tok[8:]) {
		if tok == "" {
			return Date{}, errors.Validationf(errors.ErrCodeRuleSyntax, "expected a date (YYYY-MM-DD) but the rule ended")
		}
		return Date{}, errors.Validationf(errors.ErrCodeRuleSyntax, "expected a date (YYYY-MM-DD) but found %q", tok)
	}

	d, err := ParseDate(tok)
	if err != nil {
		return Date{}, err
	}
	return d, nil
}

// ParseDate parses an ISO calendar day (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, errors.Validationf(errors.ErrCodeRuleDate, "date entered is not a valid date: %q", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustParseRule is like ParseRule but panics on error.
func MustParseRule(text string) Rule {
	r, err := ParseRule(text)
	if err != nil {
		panic(fmt.Sprintf("availability: %v", err))
	}
	return r
}

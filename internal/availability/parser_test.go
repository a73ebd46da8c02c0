package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

var nineToFive = []Window{{From: ClockTime{9, 0}, To: ClockTime{17, 0}}}

func TestParseRule(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Rule
	}{
		{
			name: "include on date",
			text: "include from 09:00 to 17:00 on 2020-03-25",
			want: Rule{Include: true, Windows: nineToFive, Kind: KindOn, On: Date{2020, time.March, 25}},
		},
		{
			name: "include date range",
			text: "include from 09:00 to 17:00 from 2020-03-25 to 2020-04-11",
			want: Rule{Include: true, Windows: nineToFive, Kind: KindRange,
				From: Date{2020, time.March, 25}, To: Date{2020, time.April, 11}},
		},
		{
			name: "include repeat",
			text: "include from 09:00 to 17:00 from 2020-03-25 for 5 days every 2 weeks",
			want: Rule{Include: true, Windows: nineToFive, Kind: KindRepeat, From: Date{2020, time.March, 25},
				ForValue: 5, ForUnit: UnitDay, RepeatValue: 2, RepeatUnit: UnitWeek},
		},
		{
			name: "include every",
			text: "include from 09:00 to 17:00 every tuesday",
			want: Rule{Include: true, Windows: nineToFive, Kind: KindEvery, Every: EveryTuesday},
		},
		{
			name: "exclude on date",
			text: "exclude on 2020-03-25",
			want: Rule{Kind: KindOn, On: Date{2020, time.March, 25}},
		},
		{
			name: "exclude date range",
			text: "exclude from 2020-03-25 to 2020-04-11",
			want: Rule{Kind: KindRange, From: Date{2020, time.March, 25}, To: Date{2020, time.April, 11}},
		},
		{
			name: "exclude repeat with singular units",
			text: "exclude from 2020-03-25 for 1 week every 1 month",
			want: Rule{Kind: KindRepeat, From: Date{2020, time.March, 25},
				ForValue: 1, ForUnit: UnitWeek, RepeatValue: 1, RepeatUnit: UnitMonth},
		},
		{
			name: "exclude every",
			text: "exclude every weekend",
			want: Rule{Kind: KindEvery, Every: EveryWeekend},
		},
		{
			name: "windows are sorted chronologically",
			text: "include from 13:00 to 17:00 and from 08:00 to 12:00 every weekday",
			want: Rule{Include: true, Kind: KindEvery, Every: EveryWeekday, Windows: []Window{
				{From: ClockTime{8, 0}, To: ClockTime{12, 0}},
				{From: ClockTime{13, 0}, To: ClockTime{17, 0}},
			}},
		},
		{
			name: "end of day",
			text: "include from 20:00 to 24:00 every day",
			want: Rule{Include: true, Kind: KindEvery, Every: EveryDay,
				Windows: []Window{{From: ClockTime{20, 0}, To: ClockTime{24, 0}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRule(tt.text)
			require.NoError(t, err)

			tt.want.Text = tt.text
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRule_Allowances(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		r, err := ParseRule("iNcLuDe FrOm 09:00 To 17:00 eVeRy DaY")
		require.NoError(t, err)
		assert.Equal(t, EveryDay, r.Every)
	})

	t.Run("any whitespace between tokens", func(t *testing.T) {
		_, err := ParseRule("include\tfrom 09:00\n to   17:00 \r\nevery day")
		require.NoError(t, err)
	})

	t.Run("fractional day and week amounts", func(t *testing.T) {
		r, err := ParseRule("include from 09:00 to 17:00 from 2020-02-20 for 5.6 days every 2.3 weeks")
		require.NoError(t, err)
		assert.InDelta(t, 5.6, r.ForValue, 1e-9)
		assert.InDelta(t, 2.3, r.RepeatValue, 1e-9)
	})
}

func TestParseRule_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code errors.ErrorCode
	}{
		{"empty", "", errors.ErrCodeRuleSyntax},
		{"unknown effect", "allow every day", errors.ErrCodeRuleSyntax},
		{"include without window", "include every day", errors.ErrCodeRuleSyntax},
		{"missing occurrence", "include from 09:00 to 17:00", errors.ErrCodeRuleSyntax},
		{"unknown ordinal", "exclude every fortnight", errors.ErrCodeRuleSyntax},
		{"trailing input", "exclude every day please", errors.ErrCodeRuleSyntax},
		{"single digit hour", "include from 9:00 to 17:00 every day", errors.ErrCodeRuleSyntax},
		{"hour past 24", "include from 09:00 to 25:00 every day", errors.ErrCodeRuleTime},
		{"minutes after 24", "include from 09:00 to 24:30 every day", errors.ErrCodeRuleTime},
		{"minute 60", "include from 09:60 to 17:00 every day", errors.ErrCodeRuleTime},
		{"to before from", "include from 17:00 to 09:00 every day", errors.ErrCodeRuleWindowOrder},
		{"impossible date", "exclude on 2020-02-30", errors.ErrCodeRuleDate},
		{"malformed date", "exclude on 2020-2-3", errors.ErrCodeRuleSyntax},
		{"from without to or for", "exclude from 2020-02-03 every day", errors.ErrCodeRuleSyntax},
		{"zero amount", "exclude from 2020-02-03 for 0 days every 2 weeks", errors.ErrCodeRuleSyntax},
		{"fractional months", "exclude from 2020-02-03 for 1 day every 1.5 months", errors.ErrCodeRuleSyntax},
		{"unknown unit", "exclude from 2020-02-03 for 1 hour every 2 weeks", errors.ErrCodeRuleSyntax},
		{"not a number", "exclude from 2020-02-03 for five days every 2 weeks", errors.ErrCodeRuleSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.text)
			require.Error(t, err)

			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.code, verr.Code)
			require.Len(t, verr.Location, 1)
			assert.Equal(t, "parsing rule", verr.Location[0].Description)
			assert.Equal(t, tt.text, verr.Location[0].Index)
		})
	}
}

func TestParseRule_InvalidTimeMessage(t *testing.T) {
	_, err := ParseRule("include from 09:00 to 25:00 every day")

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, `time entered is not a valid time: "25:00"`, verr.Cause)
}

func TestMustParseRule_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseRule("nonsense") })
	assert.NotPanics(t, func() { MustParseRule("exclude every day") })
}

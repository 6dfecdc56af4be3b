package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestGenerateDaily(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0)

	rule := Rule{Frequency: FrequencyDaily, Interval: 1, MaxOccurrences: 3}
	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 1, 10, 0),
		date(2024, time.January, 2, 10, 0),
		date(2024, time.January, 3, 10, 0),
	}, got)
}

func TestGenerateCustomInterval(t *testing.T) {
	start := date(2024, time.January, 1, 9, 30)

	rule := Rule{Frequency: FrequencyCustom, Interval: 10, MaxOccurrences: 3}
	got, err := Generate(rule, start, 45, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 1, 9, 30),
		date(2024, time.January, 11, 9, 30),
		date(2024, time.January, 21, 9, 30),
	}, got)
}

func TestGenerateAfterCountExact(t *testing.T) {
	start := date(2024, time.March, 4, 8, 0)

	tests := []struct {
		name      string
		max       int
		hardLimit int
		want      int
	}{
		{"count below limit", 5, 52, 5},
		{"count above limit", 100, 52, 52},
		{"count equals limit", 10, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Rule{Frequency: FrequencyDaily, Interval: 2, MaxOccurrences: tt.max}
			got, err := Generate(rule, start, 30, time.Time{}, tt.hardLimit)
			require.NoError(t, err)
			require.Len(t, got, tt.want)

			// Строго возрастают и с шагом ровно в interval дней
			for i := 1; i < len(got); i++ {
				assert.True(t, got[i].After(got[i-1]))
				assert.Equal(t, 48*time.Hour, got[i].Sub(got[i-1]))
			}
		})
	}
}

func TestGenerateWeeklySelectedDays(t *testing.T) {
	// 2024-01-01 — понедельник
	start := date(2024, time.January, 1, 10, 0)

	rule := Rule{
		Frequency:      FrequencyWeekly,
		Interval:       1,
		Weekdays:       []time.Weekday{time.Tuesday, time.Thursday},
		MaxOccurrences: 4,
	}

	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 2, 10, 0),
		date(2024, time.January, 4, 10, 0),
		date(2024, time.January, 9, 10, 0),
		date(2024, time.January, 11, 10, 0),
	}, got)
}

func TestGenerateWeeklyStartsOnSelectedDay(t *testing.T) {
	// Старт в понедельник, выбраны пн/ср/пт: первая неделя даёт все три дня,
	// начиная с самого понедельника.
	start := date(2024, time.January, 1, 15, 0)

	rule := Rule{
		Frequency:      FrequencyWeekly,
		Interval:       1,
		Weekdays:       []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		MaxOccurrences: 6,
	}

	got, err := Generate(rule, start, 60, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 1, 15, 0),
		date(2024, time.January, 3, 15, 0),
		date(2024, time.January, 5, 15, 0),
		date(2024, time.January, 8, 15, 0),
		date(2024, time.January, 10, 15, 0),
		date(2024, time.January, 12, 15, 0),
	}, got)
}

func TestGenerateWeeklyMidweekStartStaysChronological(t *testing.T) {
	// Старт в среду, выбраны пн и пт: пятница этой недели идёт раньше
	// понедельника следующей, несмотря на меньший номер дня недели.
	start := date(2024, time.January, 3, 12, 0)

	rule := Rule{
		Frequency:      FrequencyWeekly,
		Interval:       1,
		Weekdays:       []time.Weekday{time.Monday, time.Friday},
		MaxOccurrences: 4,
	}

	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 5, 12, 0),
		date(2024, time.January, 8, 12, 0),
		date(2024, time.January, 12, 12, 0),
		date(2024, time.January, 15, 12, 0),
	}, got)
}

func TestGenerateWeeklyNoDaysFallsBackToStartWeekday(t *testing.T) {
	start := date(2024, time.January, 2, 10, 0) // вторник

	rule := Rule{Frequency: FrequencyWeekly, Interval: 2, MaxOccurrences: 3}
	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 2, 10, 0),
		date(2024, time.January, 16, 10, 0),
		date(2024, time.January, 30, 10, 0),
	}, got)
}

func TestGenerateBiweeklyFixesTwoWeeks(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0)

	// Interval игнорируется: biweekly всегда шагает на 2 недели
	rule := Rule{Frequency: FrequencyBiweekly, Interval: 5, MaxOccurrences: 3}
	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 1, 10, 0),
		date(2024, time.January, 15, 10, 0),
		date(2024, time.January, 29, 10, 0),
	}, got)
}

func TestGenerateBiweeklySelectedDays(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0) // понедельник

	rule := Rule{
		Frequency:      FrequencyBiweekly,
		Interval:       1,
		Weekdays:       []time.Weekday{time.Monday, time.Tuesday},
		MaxOccurrences: 4,
	}

	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 1, 10, 0),
		date(2024, time.January, 2, 10, 0),
		date(2024, time.January, 15, 10, 0),
		date(2024, time.January, 16, 10, 0),
	}, got)
}

func TestGenerateMonthlyClampsShortMonths(t *testing.T) {
	start := date(2024, time.January, 31, 11, 0)

	rule := Rule{Frequency: FrequencyMonthly, Interval: 1, MaxOccurrences: 4}
	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	// Февраль 2024 високосный: прижимаемся к 29-му, март снова 31-е
	assert.Equal(t, []time.Time{
		date(2024, time.January, 31, 11, 0),
		date(2024, time.February, 29, 11, 0),
		date(2024, time.March, 31, 11, 0),
		date(2024, time.April, 30, 11, 0),
	}, got)
}

func TestGenerateMonthlyInterval(t *testing.T) {
	start := date(2024, time.May, 15, 9, 0)

	rule := Rule{Frequency: FrequencyMonthly, Interval: 3, MaxOccurrences: 3}
	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.May, 15, 9, 0),
		date(2024, time.August, 15, 9, 0),
		date(2024, time.November, 15, 9, 0),
	}, got)
}

func TestGenerateEndsOnIsExclusive(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0)
	endsOn := date(2024, time.January, 4, 0, 0)

	rule := Rule{Frequency: FrequencyDaily, Interval: 1, EndsOn: &endsOn}
	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	// Приём 4 января в 10:00 уже после полуночи 4-го — не входит
	assert.Equal(t, []time.Time{
		date(2024, time.January, 1, 10, 0),
		date(2024, time.January, 2, 10, 0),
		date(2024, time.January, 3, 10, 0),
	}, got)
}

func TestGenerateUnboundedUsesHorizon(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0)
	horizon := date(2024, time.January, 29, 0, 0)

	rule := Rule{Frequency: FrequencyWeekly, Interval: 1}
	got, err := Generate(rule, start, 30, horizon, 52)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, date(2024, time.January, 22, 10, 0), got[3])
}

func TestGeneratePastDatesAllowed(t *testing.T) {
	start := date(1999, time.June, 1, 10, 0)

	rule := Rule{Frequency: FrequencyDaily, Interval: 1, MaxOccurrences: 2}
	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGenerateInvalidInputs(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0)
	horizon := date(2025, time.January, 1, 0, 0)

	tests := []struct {
		name     string
		rule     Rule
		duration int
		horizon  time.Time
		limit    int
	}{
		{"zero interval", Rule{Frequency: FrequencyDaily, Interval: 0}, 30, horizon, 52},
		{"negative interval", Rule{Frequency: FrequencyDaily, Interval: -1}, 30, horizon, 52},
		{"unknown frequency", Rule{Frequency: "yearly", Interval: 1}, 30, horizon, 52},
		{"weekday out of range", Rule{Frequency: FrequencyWeekly, Interval: 1, Weekdays: []time.Weekday{7}}, 30, horizon, 52},
		{"zero duration", Rule{Frequency: FrequencyDaily, Interval: 1}, 0, horizon, 52},
		{"zero hard limit", Rule{Frequency: FrequencyDaily, Interval: 1}, 30, horizon, 0},
		{"unbounded without horizon", Rule{Frequency: FrequencyDaily, Interval: 1}, 30, time.Time{}, 52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.rule, start, tt.duration, tt.horizon, tt.limit)
			require.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestGenerateDuplicateWeekdaysDeduplicated(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0)

	rule := Rule{
		Frequency:      FrequencyWeekly,
		Interval:       1,
		Weekdays:       []time.Weekday{time.Tuesday, time.Tuesday},
		MaxOccurrences: 2,
	}

	got, err := Generate(rule, start, 30, time.Time{}, 52)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2024, time.January, 2, 10, 0),
		date(2024, time.January, 9, 10, 0),
	}, got)
}

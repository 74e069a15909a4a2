package chilla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		total     int64
		streak    int
		completed bool
		cycle     int64
	}{
		{total: 0, streak: 0},
		{total: 1, streak: 1},
		{total: 39, streak: 39},
		{total: 40, streak: 0, completed: true, cycle: 1},
		{total: 41, streak: 1, cycle: 1},
		{total: 80, streak: 0, completed: true, cycle: 2},
	}
	for _, tt := range tests {
		got := Advance(tt.total, DefaultModulo)
		assert.Equal(t, tt.streak, got.Streak, "total %d", tt.total)
		assert.Equal(t, tt.completed, got.Completed, "total %d", tt.total)
		assert.Equal(t, tt.cycle, got.Cycle, "total %d", tt.total)
	}
}

func TestAdvanceInvariant(t *testing.T) {
	completions := 0
	for n := int64(0); n <= 200; n++ {
		s := Advance(n, DefaultModulo)
		require.GreaterOrEqual(t, s.Streak, 0)
		require.Less(t, s.Streak, DefaultModulo)
		require.Equal(t, int(n%DefaultModulo), s.Streak)
		if s.Completed {
			completions++
		}
	}
	assert.Equal(t, 5, completions)
}

func TestPeriodTotalDays(t *testing.T) {
	p := DefaultPeriods()[0]
	assert.Equal(t, 40, p.TotalDays())
	assert.Equal(t, 40, DefaultPeriods()[1].TotalDays())
	assert.Equal(t, 40, DefaultPeriods()[2].TotalDays())

	inverted := Period{Name: "x", Start: Date{2025, 9, 9}, End: Date{2025, 8, 1}}
	assert.Equal(t, 0, inverted.TotalDays())
	assert.Equal(t, 1, Period{Start: Date{2025, 8, 1}, End: Date{2025, 8, 1}}.TotalDays())
}

func TestDayKeyUsesOffset(t *testing.T) {
	cal := NewCalendar(DefaultOffsetMinutes)
	// 19:00 UTC on Aug 1 is 00:30 IST on Aug 2.
	assert.Equal(t, "2025-08-02", cal.DayKey(time.Date(2025, 8, 1, 19, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-08-01", cal.DayKey(time.Date(2025, 8, 1, 18, 29, 0, 0, time.UTC)))
}

func eventsOnDays(cal Calendar, start Date, days int) []time.Time {
	var out []time.Time
	for i := 0; i < days; i++ {
		out = append(out, cal.Midnight(start.AddDays(i)).Add(5*time.Hour))
	}
	return out
}

func TestSummarize(t *testing.T) {
	cal := NewCalendar(DefaultOffsetMinutes)
	eng := NewEngine(cal, DefaultThreshold)
	p := DefaultPeriods()[0]

	t.Run("28 of 40 is eligible", func(t *testing.T) {
		s := eng.Summarize(p, eventsOnDays(cal, p.Start, 28))
		assert.Equal(t, 40, s.TotalDays)
		assert.Equal(t, 28, s.DaysPresent)
		assert.Equal(t, 12, s.DaysAbsent)
		assert.Equal(t, 70.00, s.Percentage)
		assert.Equal(t, Tier70, s.Tier)
		assert.True(t, s.Eligible)
	})

	t.Run("27 of 40 is not", func(t *testing.T) {
		s := eng.Summarize(p, eventsOnDays(cal, p.Start, 27))
		assert.Equal(t, 67.50, s.Percentage)
		assert.Equal(t, Tier50, s.Tier)
		assert.False(t, s.Eligible)
	})

	t.Run("same day counts once", func(t *testing.T) {
		day := cal.Midnight(p.Start)
		s := eng.Summarize(p, []time.Time{day.Add(time.Hour), day.Add(2 * time.Hour)})
		assert.Equal(t, 1, s.DaysPresent)
		assert.Equal(t, 2, s.TotalRecords)
		assert.Equal(t, 2.0, s.AvgPerDay)
	})

	t.Run("outside window ignored", func(t *testing.T) {
		before := cal.Midnight(p.Start).Add(-time.Minute)
		after := cal.Midnight(p.End.AddDays(1))
		s := eng.Summarize(p, []time.Time{before, after})
		assert.Equal(t, 0, s.DaysPresent)
		assert.Equal(t, 0, s.TotalRecords)
	})

	t.Run("full window", func(t *testing.T) {
		s := eng.Summarize(p, eventsOnDays(cal, p.Start, 40))
		assert.Equal(t, 100.0, s.Percentage)
		assert.Equal(t, TierPerfect, s.Tier)
	})

	t.Run("empty window", func(t *testing.T) {
		inverted := Period{Name: "x", Start: p.End, End: p.Start}
		s := eng.Summarize(inverted, eventsOnDays(cal, p.Start, 10))
		assert.Equal(t, 0.0, s.Percentage)
		assert.False(t, s.Eligible)
	})

	t.Run("last event inside window", func(t *testing.T) {
		evs := eventsOnDays(cal, p.Start, 30)
		late := cal.Midnight(p.End.AddDays(1)).Add(time.Hour)
		s := eng.Summarize(p, append([]time.Time{evs[29]}, append(evs[:29], late)...))
		assert.True(t, evs[29].Equal(s.LastEvent))
	})

	t.Run("last event falls back to final day", func(t *testing.T) {
		s := eng.Summarize(p, nil)
		assert.True(t, cal.Midnight(p.End).Equal(s.LastEvent))
	})

	t.Run("idempotent", func(t *testing.T) {
		evs := eventsOnDays(cal, p.Start, 33)
		assert.Equal(t, eng.Summarize(p, evs), eng.Summarize(p, evs))
	})
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierPerfect, TierOf(100))
	assert.Equal(t, Tier90, TierOf(99.99))
	assert.Equal(t, Tier80, TierOf(80))
	assert.Equal(t, Tier70, TierOf(79.99))
	assert.Equal(t, Tier50, TierOf(50))
	assert.Equal(t, TierLow, TierOf(49.99))
}

func TestParsePeriods(t *testing.T) {
	got, err := ParsePeriods("1st Chilla=2025-08-01..2025-09-09; 2nd Chilla=2025-09-10..2025-10-19")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2nd Chilla", got[1].Name)
	assert.Equal(t, Date{2025, 10, 19}, got[1].End)
	require.NoError(t, ValidatePeriods(got))

	_, err = ParsePeriods("bad")
	assert.Error(t, err)
	_, err = ParsePeriods("x=2025-08-01-2025-09-09")
	assert.Error(t, err)
	_, err = ParsePeriods("x=2025-08-01..soon")
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("2025-08-01 .. 2025-08-31")
	require.NoError(t, err)
	assert.Equal(t, Date{2025, 8, 1}, start)
	assert.Equal(t, Date{2025, 8, 31}, end)

	start, end, err = ParseRange("2025-08-01..2025-08-01")
	require.NoError(t, err)
	assert.Equal(t, start, end)

	_, _, err = ParseRange("2025-08-01")
	assert.ErrorContains(t, err, "missing '..'")
	_, _, err = ParseRange("2025-08-31..2025-08-01")
	assert.ErrorContains(t, err, "ends before it starts")
}

func TestValidatePeriods(t *testing.T) {
	assert.NoError(t, ValidatePeriods(DefaultPeriods()))
	assert.Error(t, ValidatePeriods(nil))

	overlap := []Period{
		{Name: "a", Start: Date{2025, 8, 1}, End: Date{2025, 8, 10}},
		{Name: "b", Start: Date{2025, 8, 10}, End: Date{2025, 8, 20}},
	}
	assert.Error(t, ValidatePeriods(overlap))

	inverted := []Period{{Name: "a", Start: Date{2025, 8, 10}, End: Date{2025, 8, 1}}}
	assert.Error(t, ValidatePeriods(inverted))
}

func TestSpanAndDayKeys(t *testing.T) {
	cal := NewCalendar(DefaultOffsetMinutes)
	span := Span(DefaultPeriods())
	assert.Equal(t, Date{2025, 8, 1}, span.Start)
	assert.Equal(t, Date{2025, 11, 28}, span.End)
	assert.Equal(t, 120, span.TotalDays())

	keys := cal.DayKeys(DefaultPeriods()[0])
	require.Len(t, keys, 40)
	assert.Equal(t, "2025-08-01", keys[0])
	assert.Equal(t, "2025-09-09", keys[39])
	assert.True(t, DefaultPeriods()[0].Contains("2025-09-09"))
	assert.False(t, DefaultPeriods()[0].Contains("2025-09-10"))
	assert.Equal(t, "1st_Chilla", DefaultPeriods()[0].Slug())
}

package timewin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekStartMonday(t *testing.T) {
	// 2026-01-07 is a Wednesday.
	ref := time.Date(2026, time.January, 7, 15, 30, 0, 0, time.UTC)
	got := WeekStart(ref, FirstDayMonday)
	require.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), got)
	require.Equal(t, time.Monday, got.Weekday())
}

func TestWeekStartSunday(t *testing.T) {
	ref := time.Date(2026, time.January, 7, 15, 30, 0, 0, time.UTC)
	got := WeekStart(ref, FirstDaySunday)
	require.Equal(t, time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC), got)
	require.Equal(t, time.Sunday, got.Weekday())
}

func TestWeekStartIdempotent(t *testing.T) {
	for _, first := range []FirstDay{FirstDayMonday, FirstDaySunday} {
		ref := time.Date(2026, time.March, 14, 23, 59, 59, 0, time.UTC)
		once := WeekStart(ref, first)
		require.True(t, once.Equal(WeekStart(once, first)))
	}
}

func TestWeekStartOnFirstDayIsNoop(t *testing.T) {
	monday := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	require.True(t, monday.Equal(WeekStart(monday, FirstDayMonday)))
}

func TestDaysYieldsSevenAndRestarts(t *testing.T) {
	ref := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	seq := Days(ref, FirstDayMonday)

	// First pass.
	var first []time.Time
	for d := range seq {
		first = append(first, d)
	}
	require.Len(t, first, 7)
	require.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), first[0])
	require.Equal(t, time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC), first[6])

	// The sequence is restartable: a second pass yields the same days.
	var second []time.Time
	for d := range seq {
		second = append(second, d)
	}
	require.Equal(t, first, second)
}

func TestDaySliceMatchesDays(t *testing.T) {
	ref := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	days := DaySlice(ref, FirstDaySunday)
	require.Len(t, days, 7)
	require.Equal(t, time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC), days[0])
	require.Equal(t, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), days[6])
}

func TestDaysEarlyBreak(t *testing.T) {
	ref := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	n := 0
	for range Days(ref, FirstDayMonday) {
		n++
		if n == 3 {
			break
		}
	}
	require.Equal(t, 3, n)
}

func TestSameDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	a := time.Date(2026, time.January, 5, 23, 30, 0, 0, loc)
	b := time.Date(2026, time.January, 5, 0, 15, 0, 0, loc)
	require.True(t, SameDay(a, b))

	// b in UTC is still the same local day once converted into a's location.
	require.True(t, SameDay(a, b.UTC()))

	c := time.Date(2026, time.January, 6, 0, 0, 0, 0, loc)
	require.False(t, SameDay(a, c))
}

func TestWindowContainsDayBoundaries(t *testing.T) {
	ref := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	w := FromReference(ref, FirstDayMonday)

	// Exactly at window start: included.
	require.True(t, w.ContainsDay(w.Start))
	// Any instant on the final day: included.
	require.True(t, w.ContainsDay(w.End.Add(23*time.Hour+59*time.Minute)))
	// The instant before the window and the day after: excluded.
	require.False(t, w.ContainsDay(w.Start.Add(-time.Second)))
	require.False(t, w.ContainsDay(w.End.AddDate(0, 0, 1)))
}

func TestWindowDays(t *testing.T) {
	w := FromReference(time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC), FirstDayMonday)
	var days []time.Time
	for d := range w.Days() {
		days = append(days, d)
	}
	require.Len(t, days, 7)
	require.True(t, days[0].Equal(w.Start))
	require.True(t, days[6].Equal(w.End))
}

func TestParseFirstDay(t *testing.T) {
	require.Equal(t, FirstDaySunday, ParseFirstDay("Sunday"))
	require.Equal(t, FirstDayMonday, ParseFirstDay("monday"))
	require.Equal(t, FirstDayMonday, ParseFirstDay(""))
	require.Equal(t, FirstDayMonday, ParseFirstDay("saturday"))
}

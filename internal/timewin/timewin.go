// Package timewin provides the date arithmetic for the displayed week:
// week-start normalization, day enumeration and calendar-day comparison.
// All comparisons use one consistent local-time interpretation; callers are
// expected to convert timestamps into the display location before handing
// them to this package.
package timewin

import (
	"iter"
	"strings"
	"time"
)

// FirstDay is the configured first day of the calendar week.
type FirstDay int

const (
	FirstDayMonday FirstDay = iota
	FirstDaySunday
)

// ParseFirstDay maps a config string to a FirstDay. Unknown values fall back
// to Monday to avoid surprising layouts.
func ParseFirstDay(s string) FirstDay {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return FirstDaySunday
	}
	return FirstDayMonday
}

func (f FirstDay) String() string {
	if f == FirstDaySunday {
		return "sunday"
	}
	return "monday"
}

// WeekStart returns the first instant (midnight) of the calendar week
// containing t, per the configured first day. It is stable under repeated
// application: WeekStart(WeekStart(t)) == WeekStart(t).
func WeekStart(t time.Time, first FirstDay) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())

	var offset int
	switch first {
	case FirstDaySunday:
		offset = int(day.Weekday())
	default:
		offset = (int(day.Weekday()) + 6) % 7
	}
	return day.AddDate(0, 0, -offset)
}

// Days yields the 7 calendar-day dates of the week containing t, starting at
// WeekStart. The sequence is finite and restartable.
func Days(t time.Time, first FirstDay) iter.Seq[time.Time] {
	start := WeekStart(t, first)
	return func(yield func(time.Time) bool) {
		for i := 0; i < 7; i++ {
			if !yield(start.AddDate(0, 0, i)) {
				return
			}
		}
	}
}

// DaySlice materializes Days into a 7-element slice.
func DaySlice(t time.Time, first FirstDay) []time.Time {
	out := make([]time.Time, 0, 7)
	for d := range Days(t, first) {
		out = append(out, d)
	}
	return out
}

// SameDay reports whether a and b fall on the same calendar day. b is
// interpreted in a's location so the comparison never mixes offsets.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Window is the 7-day date range currently displayed. Start is the first
// instant of the first day; End is the first instant of the last (seventh)
// day, which is included in the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// FromReference derives the window for the week containing ref. The window
// has no independent lifecycle; it is recomputed whenever the reference date
// changes.
func FromReference(ref time.Time, first FirstDay) Window {
	s := WeekStart(ref, first)
	return Window{Start: s, End: s.AddDate(0, 0, 6)}
}

// ContainsDay reports whether the calendar day of t lies within the window,
// inclusive of the final day. An instant at exactly Window.Start is inside.
func (w Window) ContainsDay(t time.Time) bool {
	t = t.In(w.Start.Location())
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, w.Start.Location())
	return !day.Before(w.Start) && !day.After(w.End)
}

// Days yields the 7 calendar days of the window in order.
func (w Window) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for i := 0; i < 7; i++ {
			if !yield(w.Start.AddDate(0, 0, i)) {
				return
			}
		}
	}
}

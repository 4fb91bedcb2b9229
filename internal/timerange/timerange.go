// Package timerange resolves named periods to concrete date windows and
// filters collections by window membership.
package timerange

import (
	"strings"
	"time"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Period is a named kind of window
type Period string

const (
	PeriodDay    Period = "day"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodCustom Period = "custom"
)

// DefaultPeriod is used when no period is selected
const DefaultPeriod = PeriodMonth

// ParsePeriod resolves user input to a period
func ParsePeriod(s string) (Period, bool) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodCustom:
		return p, true
	case "today":
		return PeriodDay, true
	}
	return "", false
}

// StartOfDay returns 00:00:00.000 of t's day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's day in loc
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
}

// Range returns the window of period containing now. Custom resolves to month
// since it carries no bounds of its own.
func Range(period Period, now time.Time, loc *time.Location) domain.TimeRange {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	switch period {
	case PeriodDay:
		return domain.TimeRange{Start: StartOfDay(now, loc), End: EndOfDay(now, loc)}
	case PeriodWeek:
		start := weekStart(now, loc)
		return domain.TimeRange{Start: start, End: EndOfDay(start.AddDate(0, 0, 6), loc)}
	default:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return domain.TimeRange{Start: first, End: EndOfDay(first.AddDate(0, 1, -1), loc)}
	}
}

// CustomRange normalizes explicit bounds to whole days, swapping them when
// reversed. A missing bound falls back to the month containing now.
func CustomRange(start, end *time.Time, now time.Time, loc *time.Location) domain.TimeRange {
	if loc == nil {
		loc = time.Local
	}
	if start == nil || end == nil {
		return Range(PeriodMonth, now, loc)
	}

	from, to := *start, *end
	if to.Before(from) {
		from, to = to, from
	}
	return domain.TimeRange{Start: StartOfDay(from, loc), End: EndOfDay(to, loc)}
}

// Previous returns the window of equal span ending just before r starts
func Previous(r domain.TimeRange) domain.TimeRange {
	span := r.Span()
	return domain.TimeRange{Start: r.Start.Add(-span), End: r.End.Add(-span)}
}

// WeeksInRange lists the Monday to Sunday weeks that overlap r, including
// partial weeks at either end.
func WeeksInRange(r domain.TimeRange) []domain.TimeRange {
	loc := r.Start.Location()
	var weeks []domain.TimeRange
	for start := weekStart(r.Start, loc); !start.After(r.End); start = start.AddDate(0, 0, 7) {
		weeks = append(weeks, domain.TimeRange{Start: start, End: EndOfDay(start.AddDate(0, 0, 6), loc)})
	}
	return weeks
}

// FilterByRange keeps the items whose date is set and inside r
func FilterByRange[T any](r domain.TimeRange, items []T, dateOf func(T) *time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if d := dateOf(item); d != nil && r.Contains(*d) {
			out = append(out, item)
		}
	}
	return out
}

// weekStart returns the Monday at 00:00 of t's week
func weekStart(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

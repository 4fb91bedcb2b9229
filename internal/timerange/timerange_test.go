package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

var loc = time.UTC

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

func TestRange_Day(t *testing.T) {
	r := Range(PeriodDay, time.Date(2024, 5, 15, 13, 45, 0, 0, loc), loc)
	assert.Equal(t, day(2024, 5, 15), r.Start)
	assert.Equal(t, endOf(2024, 5, 15), r.End)
}

func TestRange_WeekBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		start time.Time
		end   time.Time
	}{
		{"monday starts the week", time.Date(2024, 5, 13, 9, 0, 0, 0, loc), day(2024, 5, 13), endOf(2024, 5, 19)},
		{"sunday ends the week", time.Date(2024, 5, 19, 22, 0, 0, 0, loc), day(2024, 5, 13), endOf(2024, 5, 19)},
		{"midweek", time.Date(2024, 5, 15, 0, 0, 0, 0, loc), day(2024, 5, 13), endOf(2024, 5, 19)},
		{"crosses month", time.Date(2024, 3, 2, 0, 0, 0, 0, loc), day(2024, 2, 26), endOf(2024, 3, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Range(PeriodWeek, tt.now, loc)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, tt.end, r.End)
		})
	}
}

func TestRange_Month(t *testing.T) {
	r := Range(PeriodMonth, time.Date(2024, 2, 10, 0, 0, 0, 0, loc), loc)
	assert.Equal(t, day(2024, 2, 1), r.Start)
	assert.Equal(t, endOf(2024, 2, 29), r.End)

	assert.Equal(t, r, Range(PeriodCustom, time.Date(2024, 2, 10, 0, 0, 0, 0, loc), loc))
}

func TestCustomRange(t *testing.T) {
	now := time.Date(2024, 7, 4, 0, 0, 0, 0, loc)
	start := time.Date(2024, 6, 10, 15, 0, 0, 0, loc)
	end := time.Date(2024, 6, 12, 1, 0, 0, 0, loc)

	r := CustomRange(&start, &end, now, loc)
	assert.Equal(t, day(2024, 6, 10), r.Start)
	assert.Equal(t, endOf(2024, 6, 12), r.End)

	assert.Equal(t, r, CustomRange(&end, &start, now, loc), "reversed bounds are swapped")

	fallback := CustomRange(&start, nil, now, loc)
	assert.Equal(t, day(2024, 7, 1), fallback.Start)
	assert.Equal(t, endOf(2024, 7, 31), fallback.End)
}

func TestPrevious(t *testing.T) {
	week := Range(PeriodWeek, time.Date(2024, 5, 15, 0, 0, 0, 0, loc), loc)
	prev := Previous(week)

	assert.Equal(t, day(2024, 5, 6), prev.Start)
	assert.Equal(t, endOf(2024, 5, 12), prev.End)
	assert.Equal(t, week.Span(), prev.Span())
	assert.True(t, prev.End.Before(week.Start))
	assert.Equal(t, time.Millisecond, week.Start.Sub(prev.End))

	today := Range(PeriodDay, time.Date(2024, 5, 15, 8, 0, 0, 0, loc), loc)
	assert.Equal(t, day(2024, 5, 14), Previous(today).Start)
}

func TestWeeksInRange(t *testing.T) {
	// Wednesday 1 May to Friday 31 May 2024
	r := domain.TimeRange{Start: day(2024, 5, 1), End: endOf(2024, 5, 31)}
	weeks := WeeksInRange(r)

	require.Len(t, weeks, 5)
	assert.Equal(t, day(2024, 4, 29), weeks[0].Start)
	assert.Equal(t, endOf(2024, 5, 5), weeks[0].End)
	assert.Equal(t, day(2024, 5, 27), weeks[4].Start)
	assert.Equal(t, endOf(2024, 6, 2), weeks[4].End)

	for _, w := range weeks {
		assert.Equal(t, time.Monday, w.Start.Weekday())
		assert.Equal(t, time.Sunday, w.End.Weekday())
	}

	single := WeeksInRange(Range(PeriodDay, day(2024, 5, 15), loc))
	require.Len(t, single, 1)
	assert.Equal(t, day(2024, 5, 13), single[0].Start)
}

func TestFilterByRange(t *testing.T) {
	r := domain.TimeRange{Start: day(2024, 5, 1), End: endOf(2024, 5, 31)}
	inside := endOf(2024, 5, 31)
	outside := day(2024, 6, 1)
	first := day(2024, 5, 1)

	orders := []domain.Order{
		{ID: "inside", Date: &inside},
		{ID: "outside", Date: &outside},
		{ID: "undated"},
		{ID: "first", Date: &first},
	}

	got := FilterByRange(r, orders, domain.OrderDate)

	require.Len(t, got, 2)
	assert.Equal(t, "inside", got[0].ID)
	assert.Equal(t, "first", got[1].ID)
}

func TestParsePeriod(t *testing.T) {
	p, ok := ParsePeriod(" Week ")
	assert.True(t, ok)
	assert.Equal(t, PeriodWeek, p)

	p, ok = ParsePeriod("today")
	assert.True(t, ok)
	assert.Equal(t, PeriodDay, p)

	_, ok = ParsePeriod("quarter")
	assert.False(t, ok)
}

func TestEngine(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, loc)
	e := NewEngine(loc, WithNow(func() time.Time { return now }))

	assert.Equal(t, DefaultPeriod, e.Period())
	assert.Equal(t, day(2024, 5, 1), e.Current().Start)

	require.NoError(t, e.SetPeriod(PeriodWeek))
	assert.Equal(t, day(2024, 5, 13), e.Current().Start)
	assert.Equal(t, day(2024, 5, 6), e.Previous().Start)
	assert.Len(t, e.WeeksInRange(), 1)

	err := e.SetPeriod("fortnight")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Equal(t, PeriodWeek, e.Period())

	start, end := day(2024, 4, 1), day(2024, 4, 3)
	e.SetCustomRange(&start, &end)
	start = day(2000, 1, 1)
	assert.Equal(t, PeriodCustom, e.Period())
	assert.Equal(t, day(2024, 4, 1), e.Current().Start)
	assert.Equal(t, endOf(2024, 4, 3), e.Current().End)
	assert.Equal(t, day(2024, 3, 29), e.Previous().Start)

	e.SetCustomRange(nil, &end)
	assert.Equal(t, day(2024, 5, 1), e.Current().Start)

	e.Reset()
	assert.Equal(t, DefaultPeriod, e.Period())
	assert.Equal(t, day(2024, 5, 1), e.Current().Start)
}

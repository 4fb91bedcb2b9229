package domain

import "time"

// TimeRange is an inclusive window. Start sits at 00:00:00.000 and End at
// 23:59:59.999 of their respective days.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Span is the inclusive length of the window
func (r TimeRange) Span() time.Duration {
	return r.End.Sub(r.Start) + time.Millisecond
}

package timerange

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Engine tracks a selected period, or custom bounds, and resolves it against a clock
type Engine struct {
	mu          sync.RWMutex
	period      Period
	customStart *time.Time
	customEnd   *time.Time
	loc         *time.Location
	now         func() time.Time
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithNow replaces time.Now
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine on DefaultPeriod. A nil loc means time.Local.
func NewEngine(loc *time.Location, opts ...EngineOption) *Engine {
	if loc == nil {
		loc = time.Local
	}
	e := &Engine{period: DefaultPeriod, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPeriod selects a named period. Selecting custom keeps any bounds already set.
func (e *Engine) SetPeriod(p Period) error {
	parsed, ok := ParsePeriod(string(p))
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown period %q", p))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.period = parsed
	return nil
}

// SetCustomRange selects custom bounds. Nil bounds resolve to the current month.
func (e *Engine) SetCustomRange(start, end *time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.period = PeriodCustom
	e.customStart = copyTime(start)
	e.customEnd = copyTime(end)
}

// Period returns the selected period
func (e *Engine) Period() Period {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.period
}

// Current resolves the selected period against the clock
func (e *Engine) Current() domain.TimeRange {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	if e.period == PeriodCustom {
		return CustomRange(e.customStart, e.customEnd, now, e.loc)
	}
	return Range(e.period, now, e.loc)
}

// Previous returns the window immediately preceding Current
func (e *Engine) Previous() domain.TimeRange {
	return Previous(e.Current())
}

// WeeksInRange lists the weeks overlapping Current
func (e *Engine) WeeksInRange() []domain.TimeRange {
	return WeeksInRange(e.Current())
}

// Reset returns to DefaultPeriod and drops custom bounds
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.period = DefaultPeriod
	e.customStart = nil
	e.customEnd = nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

package aggregate

import "math"

// Direction is the sign of a trend
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// Trend compares a current value with a previous one. Value is the absolute
// percentage change.
type Trend struct {
	Direction Direction `json:"direction"`
	Value     float64   `json:"value"`
}

// CalculateTrend returns the percentage change from previous to current. A
// missing or zero previous value is neutral with value 0.
func CalculateTrend(current float64, previous *float64) Trend {
	if previous == nil || *previous == 0 {
		return Trend{Direction: DirectionNeutral, Value: 0}
	}

	change := (current - *previous) / *previous * 100
	switch {
	case change > 0:
		return Trend{Direction: DirectionUp, Value: math.Abs(change)}
	case change < 0:
		return Trend{Direction: DirectionDown, Value: math.Abs(change)}
	}
	return Trend{Direction: DirectionNeutral, Value: 0}
}

// KPI is a scalar with its trend against the previous window
type KPI struct {
	Value float64 `json:"value"`
	Trend Trend   `json:"trend"`
}

// KPIs are the headline figures of a summary
type KPIs struct {
	Revenue       KPI `json:"revenue"`
	Orders        KPI `json:"orders"`
	Payouts       KPI `json:"payouts"`
	ActiveStaff   KPI `json:"active_staff"`
	AvgOrderValue KPI `json:"avg_order_value"`
}

// BuildKPIs pairs each figure of current with its trend against previous.
// A nil previous yields neutral trends.
func BuildKPIs(current Summary, previous *Summary) KPIs {
	kpi := func(cur float64, pick func(Summary) float64) KPI {
		if previous == nil {
			return KPI{Value: cur, Trend: CalculateTrend(cur, nil)}
		}
		prev := pick(*previous)
		return KPI{Value: cur, Trend: CalculateTrend(cur, &prev)}
	}

	return KPIs{
		Revenue:       kpi(current.Revenue, func(s Summary) float64 { return s.Revenue }),
		Orders:        kpi(float64(current.OrderCount), func(s Summary) float64 { return float64(s.OrderCount) }),
		Payouts:       kpi(current.PayoutTotal, func(s Summary) float64 { return s.PayoutTotal }),
		ActiveStaff:   kpi(float64(current.ActiveStaff), func(s Summary) float64 { return float64(s.ActiveStaff) }),
		AvgOrderValue: kpi(current.AvgOrderValue, func(s Summary) float64 { return s.AvgOrderValue }),
	}
}

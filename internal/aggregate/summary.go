package aggregate

import (
	"fmt"
	"strings"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Summary holds the headline figures of one subsidiary
type Summary struct {
	Subsidiary    domain.Subsidiary `json:"subsidiary"`
	Revenue       float64           `json:"revenue"`
	OrderCount    int               `json:"order_count"`
	PayoutTotal   float64           `json:"payout_total"`
	ActiveStaff   int               `json:"active_staff"`
	AvgOrderValue float64           `json:"avg_order_value"`
}

// SubsidiarySummary filters every collection to sub and summarizes it
func SubsidiarySummary(sub domain.Subsidiary, orders []domain.Order, payouts []domain.Payout, staff []domain.Staff) Summary {
	orders = FilterBySubsidiary(sub, orders)
	payouts = FilterBySubsidiary(sub, payouts)
	staff = FilterBySubsidiary(sub, staff)

	s := Summary{
		Subsidiary:  sub,
		Revenue:     SumOrders(orders),
		OrderCount:  len(orders),
		PayoutTotal: SumPayouts(payouts),
	}
	for _, member := range staff {
		if member.Active {
			s.ActiveStaff++
		}
	}
	s.AvgOrderValue = average(s.Revenue, s.OrderCount)
	return s
}

// ApplyStaffMetrics merges order and payout figures into each staff member's
// metrics. Names are matched case-insensitively.
func ApplyStaffMetrics(staff []domain.Staff, orders []domain.Order, payouts []domain.Payout) {
	byStaff := make(map[string]StaffTotals)
	for name, t := range GroupByStaff(orders) {
		key := nameKey(name)
		agg := byStaff[key]
		agg.Orders += t.Orders
		agg.Revenue += t.Revenue
		byStaff[key] = agg
	}

	byPerson := make(map[string]float64)
	for name, t := range GroupByPerson(payouts) {
		byPerson[nameKey(name)] += t.Total
	}

	for i := range staff {
		key := nameKey(staff[i].Name)
		m := &staff[i].Metrics
		if t, ok := byStaff[key]; ok {
			m.TotalOrders = t.Orders
			m.TotalRevenue = t.Revenue
		}
		if total, ok := byPerson[key]; ok {
			m.TotalPayouts = total
		}
		m.AvgOrderValue = average(m.TotalRevenue, m.TotalOrders)
	}
}

// Alert types
const (
	AlertMissingStateID = "missing_state_id"
	AlertNoPayouts      = "no_payouts"
)

// Alert flags a staff record that needs attention
type Alert struct {
	Type       string            `json:"type"`
	Severity   string            `json:"severity"`
	Staff      string            `json:"staff"`
	Subsidiary domain.Subsidiary `json:"subsidiary"`
	Message    string            `json:"message"`
}

// IdentifyAlerts flags active staff without a state id and active staff with
// no payouts in payouts.
func IdentifyAlerts(staff []domain.Staff, payouts []domain.Payout) []Alert {
	paid := make(map[string]struct{})
	for _, p := range payouts {
		if key := nameKey(p.Person); key != "" {
			paid[key] = struct{}{}
		}
	}

	alerts := []Alert{}
	for _, member := range staff {
		if !member.Active {
			continue
		}
		if strings.TrimSpace(member.StateID) == "" {
			alerts = append(alerts, Alert{
				Type:       AlertMissingStateID,
				Severity:   "warning",
				Staff:      member.Name,
				Subsidiary: member.Subsidiary,
				Message:    fmt.Sprintf("%s has no state id on file", member.Name),
			})
		}
		if _, ok := paid[nameKey(member.Name)]; !ok {
			alerts = append(alerts, Alert{
				Type:       AlertNoPayouts,
				Severity:   "info",
				Staff:      member.Name,
				Subsidiary: member.Subsidiary,
				Message:    fmt.Sprintf("%s has no payouts recorded", member.Name),
			})
		}
	}
	return alerts
}

func average(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

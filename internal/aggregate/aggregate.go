// Package aggregate summarizes normalized orders, payouts and staff. Every
// function is pure except ApplyStaffMetrics, which updates the staff slice it is given.
package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// WeekKeyLayout formats the keys of GroupByWeek
const WeekKeyLayout = "2006-01-02"

// Totals is a count with a summed amount
type Totals struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// StaffTotals aggregates the orders handled by one staff member
type StaffTotals struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// PersonTotals splits one person's payouts by type
type PersonTotals struct {
	Earning       float64 `json:"earning"`
	Reimbursement float64 `json:"reimbursement"`
	Bonus         float64 `json:"bonus"`
	Total         float64 `json:"total"`
}

// SumOrders adds up order totals
func SumOrders(orders []domain.Order) float64 {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(decimal.NewFromFloat(o.Total))
	}
	return sum.InexactFloat64()
}

// SumPayouts adds up payout amounts
func SumPayouts(payouts []domain.Payout) float64 {
	sum := decimal.Zero
	for _, p := range payouts {
		sum = sum.Add(decimal.NewFromFloat(p.Amount))
	}
	return sum.InexactFloat64()
}

// GroupByCategory counts and sums orders per category
func GroupByCategory(orders []domain.Order) map[domain.OrderCategory]Totals {
	sums := make(map[domain.OrderCategory]decimal.Decimal)
	out := make(map[domain.OrderCategory]Totals)
	for _, o := range orders {
		sums[o.Category] = sums[o.Category].Add(decimal.NewFromFloat(o.Total))
		t := out[o.Category]
		t.Count++
		out[o.Category] = t
	}
	for cat, sum := range sums {
		t := out[cat]
		t.Total = sum.InexactFloat64()
		out[cat] = t
	}
	return out
}

// GroupByStaff counts and sums orders per staff name. Orders without staff are skipped.
func GroupByStaff(orders []domain.Order) map[string]StaffTotals {
	sums := make(map[string]decimal.Decimal)
	out := make(map[string]StaffTotals)
	for _, o := range orders {
		name := strings.TrimSpace(o.Staff)
		if name == "" {
			continue
		}
		sums[name] = sums[name].Add(decimal.NewFromFloat(o.Total))
		t := out[name]
		t.Orders++
		out[name] = t
	}
	for name, sum := range sums {
		t := out[name]
		t.Revenue = sum.InexactFloat64()
		out[name] = t
	}
	return out
}

// GroupByPerson splits payouts per person and type. Payouts without a person are skipped.
func GroupByPerson(payouts []domain.Payout) map[string]PersonTotals {
	type split struct{ earning, reimbursement, bonus decimal.Decimal }
	sums := make(map[string]*split)
	for _, p := range payouts {
		name := strings.TrimSpace(p.Person)
		if name == "" {
			continue
		}
		s, ok := sums[name]
		if !ok {
			s = &split{}
			sums[name] = s
		}
		amount := decimal.NewFromFloat(p.Amount)
		switch p.Type {
		case domain.PayoutReimbursement:
			s.reimbursement = s.reimbursement.Add(amount)
		case domain.PayoutBonus:
			s.bonus = s.bonus.Add(amount)
		default:
			s.earning = s.earning.Add(amount)
		}
	}

	out := make(map[string]PersonTotals, len(sums))
	for name, s := range sums {
		out[name] = PersonTotals{
			Earning:       s.earning.InexactFloat64(),
			Reimbursement: s.reimbursement.InexactFloat64(),
			Bonus:         s.bonus.InexactFloat64(),
			Total:         s.earning.Add(s.reimbursement).Add(s.bonus).InexactFloat64(),
		}
	}
	return out
}

// GroupByWeek counts and sums payouts per week-ending date. Undated payouts are skipped.
func GroupByWeek(payouts []domain.Payout) map[string]Totals {
	sums := make(map[string]decimal.Decimal)
	out := make(map[string]Totals)
	for _, p := range payouts {
		if p.Week == nil {
			continue
		}
		key := p.Week.Format(WeekKeyLayout)
		sums[key] = sums[key].Add(decimal.NewFromFloat(p.Amount))
		t := out[key]
		t.Count++
		out[key] = t
	}
	for key, sum := range sums {
		t := out[key]
		t.Total = sum.InexactFloat64()
		out[key] = t
	}
	return out
}

// FilterBySubsidiary keeps the items assigned to sub. An invalid or empty sub
// keeps everything.
func FilterBySubsidiary[T interface{ BelongsTo(domain.Subsidiary) bool }](sub domain.Subsidiary, items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !sub.IsValid() || item.BelongsTo(sub) {
			out = append(out, item)
		}
	}
	return out
}

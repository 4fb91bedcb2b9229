package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fixtures() ([]domain.Order, []domain.Payout, []domain.Staff) {
	orders := []domain.Order{
		{ID: "1", Category: domain.CategoryEngineReplacement, Total: 15000, Staff: "Bob", Subsidiary: domain.SubsidiaryKintsugi},
		{ID: "2", Category: domain.CategoryStandardRepair, Total: 0.1, Staff: "bob ", Subsidiary: domain.SubsidiaryKintsugi},
		{ID: "3", Category: domain.CategoryStandardRepair, Total: 0.2, Staff: "Rin", Subsidiary: domain.SubsidiaryKintsugi},
		{ID: "4", Category: domain.CategoryFoodOrder, Total: 40, Staff: "Kai", Subsidiary: domain.SubsidiaryTakosuya},
		{ID: "5", Category: domain.CategoryOther, Total: 5, Subsidiary: domain.SubsidiaryTakosuya},
	}
	payouts := []domain.Payout{
		{Person: "Bob", Amount: 500, Type: domain.PayoutEarning, Week: date(2024, 5, 5), Subsidiary: domain.SubsidiaryKintsugi},
		{Person: "Bob", Amount: 25.5, Type: domain.PayoutReimbursement, Week: date(2024, 5, 5), Subsidiary: domain.SubsidiaryKintsugi},
		{Person: "Bob", Amount: 100, Type: domain.PayoutBonus, Week: date(2024, 5, 12), Subsidiary: domain.SubsidiaryKintsugi},
		{Person: "Kai", Amount: 80, Type: domain.PayoutEarning, Subsidiary: domain.SubsidiaryTakosuya},
	}
	staff := []domain.Staff{
		{Name: "Bob", StateID: "S-1", Active: true, Subsidiary: domain.SubsidiaryKintsugi},
		{Name: "Rin", Active: true, Subsidiary: domain.SubsidiaryKintsugi},
		{Name: "Kai", StateID: "S-3", Active: true, Subsidiary: domain.SubsidiaryTakosuya},
		{Name: "Old", Active: false, Subsidiary: domain.SubsidiaryTakosuya},
	}
	return orders, payouts, staff
}

func TestSums(t *testing.T) {
	orders, payouts, _ := fixtures()

	assert.Equal(t, 15045.3, SumOrders(orders))
	assert.Equal(t, 0.3, SumOrders(orders[1:3]), "decimal accumulation avoids float drift")
	assert.Equal(t, 705.5, SumPayouts(payouts))
	assert.Equal(t, 0.0, SumOrders(nil))
}

func TestGroupByCategory(t *testing.T) {
	orders, _, _ := fixtures()
	groups := GroupByCategory(orders)

	assert.Equal(t, Totals{Count: 2, Total: 0.3}, groups[domain.CategoryStandardRepair])
	assert.Equal(t, Totals{Count: 1, Total: 15000}, groups[domain.CategoryEngineReplacement])
	assert.Len(t, groups, 4)
}

func TestGroupByStaff(t *testing.T) {
	orders, _, _ := fixtures()
	groups := GroupByStaff(orders)

	assert.Equal(t, StaffTotals{Orders: 1, Revenue: 15000}, groups["Bob"])
	assert.Equal(t, StaffTotals{Orders: 1, Revenue: 0.1}, groups["bob"])
	assert.NotContains(t, groups, "")
}

func TestGroupByPerson(t *testing.T) {
	_, payouts, _ := fixtures()
	groups := GroupByPerson(payouts)

	assert.Equal(t, PersonTotals{Earning: 500, Reimbursement: 25.5, Bonus: 100, Total: 625.5}, groups["Bob"])
	assert.Equal(t, PersonTotals{Earning: 80, Total: 80}, groups["Kai"])
}

func TestGroupByWeek(t *testing.T) {
	_, payouts, _ := fixtures()
	groups := GroupByWeek(payouts)

	require.Len(t, groups, 2)
	assert.Equal(t, Totals{Count: 2, Total: 525.5}, groups["2024-05-05"])
	assert.Equal(t, Totals{Count: 1, Total: 100}, groups["2024-05-12"])
}

func TestCalculateTrend(t *testing.T) {
	zero := 0.0
	hundred := 100.0
	fifty := 50.0

	assert.Equal(t, Trend{Direction: DirectionNeutral, Value: 0}, CalculateTrend(123, nil))
	assert.Equal(t, Trend{Direction: DirectionNeutral, Value: 0}, CalculateTrend(123, &zero))
	assert.Equal(t, Trend{Direction: DirectionNeutral, Value: 0}, CalculateTrend(-5, &zero))
	assert.Equal(t, Trend{Direction: DirectionUp, Value: 50}, CalculateTrend(150, &hundred))
	assert.Equal(t, Trend{Direction: DirectionDown, Value: 50}, CalculateTrend(25, &fifty))
	assert.Equal(t, Trend{Direction: DirectionNeutral, Value: 0}, CalculateTrend(50, &fifty))
}

func TestSubsidiarySummary(t *testing.T) {
	orders, payouts, staff := fixtures()

	k := SubsidiarySummary(domain.SubsidiaryKintsugi, orders, payouts, staff)
	assert.Equal(t, 15000.3, k.Revenue)
	assert.Equal(t, 3, k.OrderCount)
	assert.Equal(t, 625.5, k.PayoutTotal)
	assert.Equal(t, 2, k.ActiveStaff)
	assert.InDelta(t, 5000.1, k.AvgOrderValue, 1e-9)

	tk := SubsidiarySummary(domain.SubsidiaryTakosuya, orders, payouts, staff)
	assert.Equal(t, 45.0, tk.Revenue)
	assert.Equal(t, 1, tk.ActiveStaff)

	empty := SubsidiarySummary(domain.SubsidiaryTakosuya, nil, nil, nil)
	assert.Equal(t, 0.0, empty.AvgOrderValue)
	assert.Equal(t, 0, empty.OrderCount)
}

func TestEndToEndSummary(t *testing.T) {
	orders := []domain.Order{{Category: domain.CategoryEngineReplacement, Total: 15000, Staff: "Bob", Subsidiary: domain.SubsidiaryKintsugi}}

	s := SubsidiarySummary(domain.SubsidiaryKintsugi, orders, nil, nil)

	assert.Equal(t, 15000.0, s.Revenue)
	assert.Equal(t, 1, s.OrderCount)
}

func TestApplyStaffMetrics(t *testing.T) {
	orders, payouts, staff := fixtures()
	staff[2].Metrics.TotalOrders = 99

	ApplyStaffMetrics(staff, orders, payouts)

	assert.Equal(t, domain.StaffMetrics{TotalOrders: 2, TotalRevenue: 15000.1, TotalPayouts: 625.5, AvgOrderValue: 7500.05}, staff[0].Metrics)
	assert.Equal(t, 1, staff[1].Metrics.TotalOrders)
	assert.Equal(t, 0.0, staff[1].Metrics.TotalPayouts)
	assert.Equal(t, 1, staff[2].Metrics.TotalOrders)
	assert.Equal(t, 80.0, staff[2].Metrics.TotalPayouts)
	assert.Equal(t, domain.StaffMetrics{}, staff[3].Metrics)
}

func TestIdentifyAlerts(t *testing.T) {
	_, payouts, staff := fixtures()

	alerts := IdentifyAlerts(staff, payouts)

	require.Len(t, alerts, 2)
	assert.Equal(t, AlertMissingStateID, alerts[0].Type)
	assert.Equal(t, "Rin", alerts[0].Staff)
	assert.Equal(t, AlertNoPayouts, alerts[1].Type)
	assert.Equal(t, "Rin", alerts[1].Staff)

	assert.Empty(t, IdentifyAlerts(nil, nil))
}

func TestIdentifyAlerts_UnnamedPayoutDoesNotCoverUnnamedStaff(t *testing.T) {
	staff := []domain.Staff{{Name: " ", StateID: "S9", Active: true, Subsidiary: domain.SubsidiaryKintsugi}}
	payouts := []domain.Payout{{Person: "", Amount: 100, Subsidiary: domain.SubsidiaryKintsugi}}

	alerts := IdentifyAlerts(staff, payouts)

	require.Len(t, alerts, 1)
	assert.Equal(t, AlertNoPayouts, alerts[0].Type)
}

func TestBuildKPIs(t *testing.T) {
	current := Summary{Revenue: 200, OrderCount: 4, PayoutTotal: 50, ActiveStaff: 2, AvgOrderValue: 50}
	previous := Summary{Revenue: 100, OrderCount: 4, PayoutTotal: 100, ActiveStaff: 0, AvgOrderValue: 25}

	kpis := BuildKPIs(current, &previous)

	assert.Equal(t, KPI{Value: 200, Trend: Trend{Direction: DirectionUp, Value: 100}}, kpis.Revenue)
	assert.Equal(t, DirectionNeutral, kpis.Orders.Trend.Direction)
	assert.Equal(t, Trend{Direction: DirectionDown, Value: 50}, kpis.Payouts.Trend)
	assert.Equal(t, Trend{Direction: DirectionNeutral, Value: 0}, kpis.ActiveStaff.Trend)

	noPrev := BuildKPIs(current, nil)
	assert.Equal(t, DirectionNeutral, noPrev.Revenue.Trend.Direction)
	assert.Equal(t, 200.0, noPrev.Revenue.Value)
}

func TestFilterBySubsidiary(t *testing.T) {
	orders, _, staff := fixtures()

	assert.Len(t, FilterBySubsidiary(domain.SubsidiaryTakosuya, orders), 2)
	assert.Len(t, FilterBySubsidiary(domain.SubsidiaryKintsugi, staff), 2)
	assert.Len(t, FilterBySubsidiary("", orders), len(orders))
}

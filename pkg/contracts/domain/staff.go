package domain

// StaffMetrics holds aggregates merged into a staff record by the aggregation layer
type StaffMetrics struct {
	TotalOrders   int     `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalPayouts  float64 `json:"total_payouts"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// Staff is a normalized staff record
type Staff struct {
	Name       string       `json:"name"`
	StateID    string       `json:"state_id,omitempty"`
	Role       string       `json:"role"`
	Active     bool         `json:"active"`
	Subsidiary Subsidiary   `json:"subsidiary"`
	Metrics    StaffMetrics `json:"metrics"`
	Raw        Row          `json:"raw,omitempty"`
}

// BelongsTo reports whether the staff member is assigned to s
func (s Staff) BelongsTo(sub Subsidiary) bool { return s.Subsidiary == sub }

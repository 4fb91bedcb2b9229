package domain

import "time"

// OrderCategory is the normalized category of an order
type OrderCategory string

const (
	CategoryStandardRepair    OrderCategory = "standard_repair"
	CategoryEngineReplacement OrderCategory = "engine_replacement"
	CategorySpecialWork       OrderCategory = "special_work"
	CategoryFoodOrder         OrderCategory = "food_order"
	CategoryBeverage          OrderCategory = "beverage"
	CategoryOther             OrderCategory = "other"
)

// DefaultOrderStatus is applied when the status column is empty
const DefaultOrderStatus = "completed"

// Order is a normalized order record
type Order struct {
	ID         string        `json:"id"`
	Date       *time.Time    `json:"date"`
	Customer   string        `json:"customer"`
	Category   OrderCategory `json:"category"`
	Total      float64       `json:"total"`
	Status     string        `json:"status"`
	Staff      string        `json:"staff"`
	Subsidiary Subsidiary    `json:"subsidiary"`
	Notes      string        `json:"notes,omitempty"`
	Raw        Row           `json:"raw,omitempty"`
}

// OrderDate returns the order date; used with range filters
func OrderDate(o Order) *time.Time { return o.Date }

// BelongsTo reports whether the order is assigned to s
func (o Order) BelongsTo(s Subsidiary) bool { return o.Subsidiary == s }

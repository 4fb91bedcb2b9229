package domain

import "time"

// PayoutType is the normalized kind of a payout
type PayoutType string

const (
	PayoutEarning       PayoutType = "earning"
	PayoutReimbursement PayoutType = "reimbursement"
	PayoutBonus         PayoutType = "bonus"
)

// Payout is a normalized payout record. Week holds the week-ending date.
type Payout struct {
	Person     string     `json:"person"`
	StateID    string     `json:"state_id,omitempty"`
	Week       *time.Time `json:"week"`
	Amount     float64    `json:"amount"`
	Type       PayoutType `json:"type"`
	Subsidiary Subsidiary `json:"subsidiary"`
	Notes      string     `json:"notes,omitempty"`
	Raw        Row        `json:"raw,omitempty"`
}

// PayoutWeek returns the week-ending date; used with range filters
func PayoutWeek(p Payout) *time.Time { return p.Week }

// BelongsTo reports whether the payout is assigned to s
func (p Payout) BelongsTo(s Subsidiary) bool { return p.Subsidiary == s }

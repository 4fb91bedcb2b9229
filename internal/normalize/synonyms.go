package normalize

import (
	"strings"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

var categorySynonyms = map[string]domain.OrderCategory{
	"repair":             domain.CategoryStandardRepair,
	"standard":           domain.CategoryStandardRepair,
	"standard repair":    domain.CategoryStandardRepair,
	"engine":             domain.CategoryEngineReplacement,
	"engine replacement": domain.CategoryEngineReplacement,
	"engine swap":        domain.CategoryEngineReplacement,
	"special":            domain.CategorySpecialWork,
	"special work":       domain.CategorySpecialWork,
	"custom":             domain.CategorySpecialWork,
	"food":               domain.CategoryFoodOrder,
	"food order":         domain.CategoryFoodOrder,
	"meal":               domain.CategoryFoodOrder,
	"beverage":           domain.CategoryBeverage,
	"drink":              domain.CategoryBeverage,
	"drinks":             domain.CategoryBeverage,
	"other":              domain.CategoryOther,
}

var payoutTypeSynonyms = map[string]domain.PayoutType{
	"earning":       domain.PayoutEarning,
	"earnings":      domain.PayoutEarning,
	"wage":          domain.PayoutEarning,
	"pay":           domain.PayoutEarning,
	"reimbursement": domain.PayoutReimbursement,
	"reimburse":     domain.PayoutReimbursement,
	"expense":       domain.PayoutReimbursement,
	"bonus":         domain.PayoutBonus,
}

// synonymKey lower-cases s, treats underscores and dashes as spaces and
// collapses runs of whitespace
func synonymKey(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCategory maps free text to an order category, falling back to other
func NormalizeCategory(s string) domain.OrderCategory {
	c, _ := lookupCategory(s)
	return c
}

func lookupCategory(s string) (domain.OrderCategory, bool) {
	if c, ok := categorySynonyms[synonymKey(s)]; ok {
		return c, true
	}
	return domain.CategoryOther, false
}

// NormalizePayoutType maps free text to a payout type, falling back to earning
func NormalizePayoutType(s string) domain.PayoutType {
	t, _ := lookupPayoutType(s)
	return t
}

func lookupPayoutType(s string) (domain.PayoutType, bool) {
	if t, ok := payoutTypeSynonyms[synonymKey(s)]; ok {
		return t, true
	}
	return domain.PayoutEarning, false
}

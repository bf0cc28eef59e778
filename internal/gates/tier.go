package gates

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ClassifyTier returns the size tier of sqft.
func (p Policy) ClassifyTier(sqft decimal.Decimal) Tier {
	if p.ShouldAutoTierA(sqft) {
		return TierA
	}
	return TierB
}

// ShouldAutoTierA reports whether sqft reaches the Tier A floor.
func (p Policy) ShouldAutoTierA(sqft decimal.Decimal) bool {
	return sqft.GreaterThanOrEqual(p.TierASquareFeet)
}

// TierUpdate is a lead tier change to persist.
type TierUpdate struct {
	Tier   Tier   `json:"tier"`
	Reason string `json:"reason"`
}

// AutoTierAUpdate returns an upgrade to Tier A when sqft reaches the floor and
// the lead is not already Tier A. It never downgrades.
func (p Policy) AutoTierAUpdate(current Tier, sqft decimal.Decimal) (TierUpdate, bool) {
	if current == TierA || !p.ShouldAutoTierA(sqft) {
		return TierUpdate{}, false
	}
	return TierUpdate{
		Tier:   TierA,
		Reason: fmt.Sprintf("quoted %s sqft reaches the Tier A floor of %s sqft", sqft.String(), p.TierASquareFeet.String()),
	}, true
}

package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// BrooklynTier is the capacity bracket of a Brooklyn dispatch.
type BrooklynTier string

const (
	BrooklynTierA BrooklynTier = "tierA"
	BrooklynTierB BrooklynTier = "tierB"
	BrooklynTierC BrooklynTier = "tierC"
)

// TravelResult is the travel portion of a quote.
type TravelResult struct {
	TravelCost   decimal.Decimal `json:"travelCost"`
	ScanDayFee   decimal.Decimal `json:"scanDayFee"`
	BrooklynTier BrooklynTier    `json:"brooklynTier,omitempty"`
}

// Total is travel cost plus scan-day fee.
func (t TravelResult) Total() decimal.Decimal {
	return t.TravelCost.Add(t.ScanDayFee)
}

// Travel prices crew travel for the whole project.
func (e *Engine) Travel(cfg quote.TravelConfig, totalSqft decimal.Decimal) TravelResult {
	r := e.Rates.Travel
	distance := decimal.Max(cfg.Distance, decimal.Zero)

	switch cfg.DispatchLocation {
	case quote.DispatchBrooklyn:
		tier, base := BrooklynTierC, r.BrooklynTierCFee
		switch {
		case totalSqft.GreaterThanOrEqual(r.BrooklynTierASqft):
			tier, base = BrooklynTierA, r.BrooklynTierAFee
		case totalSqft.GreaterThanOrEqual(r.BrooklynTierBSqft):
			tier, base = BrooklynTierB, r.BrooklynTierBFee
		}
		extraMiles := decimal.Max(decimal.Zero, distance.Sub(r.BrooklynIncludedMiles))
		return TravelResult{
			TravelCost:   base.Add(extraMiles.Mul(r.BrooklynPerMile)),
			ScanDayFee:   decimal.Zero,
			BrooklynTier: tier,
		}
	default:
		fee := decimal.Zero
		if distance.GreaterThanOrEqual(r.ScanDayFeeMinimum) {
			fee = r.ScanDayFee
		}
		return TravelResult{
			TravelCost: distance.Mul(r.PerMile),
			ScanDayFee: fee,
		}
	}
}

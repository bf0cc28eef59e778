package pricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// Totals contains roll-up values of a quote. It is always derived, never a
// source of truth.
type Totals struct {
	AreasTotal      decimal.Decimal `json:"areasTotal"`
	AreasUpteamCost decimal.Decimal `json:"areasUpteamCost"`
	TravelTotal     decimal.Decimal `json:"travelTotal"`
	ServicesTotal   decimal.Decimal `json:"servicesTotal"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	PaymentPremium  decimal.Decimal `json:"paymentPremium"`
	CalculatedTotal decimal.Decimal `json:"calculatedTotal"`
	FinalTotal      decimal.Decimal `json:"finalTotal"`
	HasOverride     bool            `json:"hasOverride"`

	// RiskPercent is display only. Risk is already inside the architecture prices.
	RiskPercent decimal.Decimal `json:"riskPercent"`
}

// Aggregate combines priced areas, travel and services into quote totals.
// The sum over areas does not depend on their order.
func (e *Engine) Aggregate(
	areas []quote.Area,
	travel TravelResult,
	servicesCost decimal.Decimal,
	risks quote.RiskConfig,
	terms quote.PaymentTerms,
	override *decimal.Decimal,
) Totals {
	areasTotal := lo.Reduce(areas, func(acc decimal.Decimal, a quote.Area, _ int) decimal.Decimal {
		return acc.Add(a.ClientPrice)
	}, decimal.Zero)
	areasUpteam := lo.Reduce(areas, func(acc decimal.Decimal, a quote.Area, _ int) decimal.Decimal {
		return acc.Add(a.UpteamCost)
	}, decimal.Zero)

	travelTotal := travel.Total()
	subtotal := areasTotal.Add(travelTotal).Add(servicesCost)
	premium := subtotal.Mul(e.Rates.Payment.For(terms))
	calculated := subtotal.Add(premium)

	final := calculated
	if override != nil {
		final = *override
	}

	return Totals{
		AreasTotal:      areasTotal,
		AreasUpteamCost: areasUpteam,
		TravelTotal:     travelTotal,
		ServicesTotal:   servicesCost,
		Subtotal:        subtotal,
		PaymentPremium:  premium,
		CalculatedTotal: calculated,
		FinalTotal:      final,
		HasOverride:     override != nil,
		RiskPercent:     e.Rates.Risk.Sum(risks).Mul(decimal.NewFromInt(100)),
	}
}

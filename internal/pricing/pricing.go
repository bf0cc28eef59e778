// Package pricing turns a quote configuration into client prices, internal
// costs and totals. It performs no I/O and keeps no state between calls.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// Quote groups the full pricing output of a configuration.
type Quote struct {
	// Config is the resolved configuration with computed area and travel prices.
	Config    quote.Configuration `json:"configuration"`
	Travel    TravelResult        `json:"travel"`
	Services  ServicesResult      `json:"services"`
	Totals    Totals              `json:"totals"`
	Defaulted []quote.Defaulted   `json:"defaulted,omitempty"`
}

// Breakdown is the price/cost pair profitability is judged on.
type Breakdown struct {
	ClientPrice decimal.Decimal `json:"clientPrice"`
	UpteamCost  decimal.Decimal `json:"upteamCost"`
}

// Breakdown returns the final total against the areas' upteam cost.
func (q Quote) Breakdown() Breakdown {
	return q.Totals.Breakdown()
}

// Breakdown returns the final total against the areas' upteam cost.
func (t Totals) Breakdown() Breakdown {
	return Breakdown{ClientPrice: t.FinalTotal, UpteamCost: t.AreasUpteamCost}
}

// Calculate resolves cfg and prices it completely. Every call is a full
// recompute; nothing from earlier calls is reused.
func (e *Engine) Calculate(cfg quote.Configuration) Quote {
	resolved := quote.Resolve(cfg)
	c := resolved.Config

	for i := range c.Areas {
		price := e.PriceArea(c.Areas[i], c.Risks)
		c.Areas[i].ClientPrice = price.ClientPrice
		c.Areas[i].UpteamCost = price.UpteamCost
	}

	totalSqft := c.TotalSquareFeet()
	travel := e.Travel(c.Travel, totalSqft)
	c.Travel.TravelCost = travel.TravelCost
	c.Travel.ScanDayFee = travel.ScanDayFee

	services := e.Services(c.Services, totalSqft)
	totals := e.Aggregate(c.Areas, travel, services.Total, c.Risks, c.PaymentTerms, c.ManualOverride)

	return Quote{
		Config:    c,
		Travel:    travel,
		Services:  services,
		Totals:    totals,
		Defaulted: resolved.Defaulted,
	}
}

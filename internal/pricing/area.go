package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// Engine prices quote configurations against a rate sheet. It holds no state
// besides the sheet and is safe for concurrent use.
type Engine struct {
	Rates Rates
}

// New returns an engine pricing with rates.
func New(rates Rates) *Engine {
	return &Engine{Rates: rates}
}

// NewDefault returns an engine using DefaultRates.
func NewDefault() *Engine {
	return New(DefaultRates())
}

// AreaPrice is the result of pricing one area.
type AreaPrice struct {
	ClientPrice decimal.Decimal `json:"clientPrice"`
	UpteamCost  decimal.Decimal `json:"upteamCost"`
}

// Strategy is how an area is priced. It is one of Landscape, FixedRate or Standard.
type Strategy interface {
	isStrategy()
}

// Landscape prices per acre from the landscape table.
type Landscape struct {
	Kind quote.BuildingType
}

// FixedRate prices effective square footage at a flat rate. Scoped strategies
// also apply the architecture scope portion.
type FixedRate struct {
	Rate   decimal.Decimal
	Scoped bool
}

// Standard prices every enabled discipline.
type Standard struct{}

func (Landscape) isStrategy() {}
func (FixedRate) isStrategy() {}
func (Standard) isStrategy()  {}

// StrategyFor resolves how area is priced. Unrecognised building types are standard.
func (e *Engine) StrategyFor(area quote.Area) Strategy {
	switch area.BuildingType {
	case quote.BuildingTypeBuiltLandscape, quote.BuildingTypeNaturalLandscape:
		return Landscape{Kind: area.BuildingType}
	case quote.BuildingTypeACT:
		return FixedRate{Rate: e.Rates.ACTPerSqft, Scoped: true}
	case quote.BuildingTypeMatterportOnly:
		return FixedRate{Rate: e.Rates.MatterportPerSqft}
	default:
		return Standard{}
	}
}

// PriceArea computes the client price and upteam cost of one area. Risk
// premiums only ever reach the architecture discipline of standard areas.
func (e *Engine) PriceArea(area quote.Area, risks quote.RiskConfig) AreaPrice {
	switch s := e.StrategyFor(area).(type) {
	case Landscape:
		return e.priceLandscape(area, s)
	case FixedRate:
		return e.priceFixedRate(area, s)
	case Standard:
		return e.priceStandard(area, risks)
	default:
		return e.priceStandard(area, risks)
	}
}

// Acres returns the authoritative acreage of a landscape area.
func (e *Engine) Acres(area quote.Area) decimal.Decimal {
	if area.Acres != nil {
		return *area.Acres
	}
	return area.SquareFeet.Div(e.Rates.SquareFeetPerAcre)
}

func (e *Engine) effectiveSquareFeet(area quote.Area) decimal.Decimal {
	return decimal.Max(area.SquareFeet, e.Rates.MinimumSquareFeet)
}

func (e *Engine) withCost(clientPrice decimal.Decimal) AreaPrice {
	return AreaPrice{
		ClientPrice: clientPrice,
		UpteamCost:  clientPrice.Mul(e.Rates.CostMultiplier),
	}
}

func (e *Engine) priceLandscape(area quote.Area, s Landscape) AreaPrice {
	acres := e.Acres(area)
	lod := quote.LOD300
	if arch, ok := area.Discipline(quote.DisciplineArchitecture); ok {
		lod = arch.LOD
	}

	tier := e.Rates.Landscape.Tier(acres)
	rate := e.Rates.Landscape.Rate(s.Kind, tier, lod)
	return e.withCost(acres.Mul(rate))
}

func (e *Engine) priceFixedRate(area quote.Area, s FixedRate) AreaPrice {
	price := e.effectiveSquareFeet(area).Mul(s.Rate)
	if s.Scoped {
		scope := quote.ScopeFull
		if arch, ok := area.Discipline(quote.DisciplineArchitecture); ok {
			scope = arch.Scope
		}
		price = price.Mul(e.Rates.Scope.For(scope))
	}
	return e.withCost(price)
}

func (e *Engine) priceStandard(area quote.Area, risks quote.RiskConfig) AreaPrice {
	sqft := e.effectiveSquareFeet(area)
	riskMultiplier := decimal.NewFromInt(1).Add(e.Rates.Risk.Sum(risks))

	var total AreaPrice
	for _, d := range quote.Disciplines {
		cfg, ok := area.Disciplines[d]
		if !ok || !cfg.Enabled {
			continue
		}
		base, ok := e.Rates.Disciplines.For(d)
		if !ok {
			continue
		}

		price := e.disciplinePrice(sqft, base, cfg, d == quote.DisciplineArchitecture, riskMultiplier)
		total.ClientPrice = total.ClientPrice.Add(price)
		total.UpteamCost = total.UpteamCost.Add(price.Mul(e.Rates.CostMultiplier))
	}
	return total
}

func (e *Engine) disciplinePrice(sqft, base decimal.Decimal, cfg quote.DisciplineConfig, isArch bool, riskMultiplier decimal.Decimal) decimal.Decimal {
	portion := func(lod quote.LOD, share decimal.Decimal) decimal.Decimal {
		p := sqft.Mul(base).Mul(e.Rates.LOD.For(lod)).Mul(share)
		if isArch {
			p = p.Mul(riskMultiplier)
		}
		return p
	}

	if cfg.Scope == quote.ScopeMixed {
		interior := portion(firstLOD(cfg.MixedInteriorLOD, cfg.LOD), e.Rates.Scope.Interior)
		exterior := portion(firstLOD(cfg.MixedExteriorLOD, cfg.LOD), e.Rates.Scope.Exterior)
		return interior.Add(exterior)
	}
	return portion(cfg.LOD, e.Rates.Scope.For(cfg.Scope))
}

func firstLOD(candidates ...quote.LOD) quote.LOD {
	for _, lod := range candidates {
		if lod != "" {
			return lod
		}
	}
	return quote.LOD300
}

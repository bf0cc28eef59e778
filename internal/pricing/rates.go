package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// Rates is the pricing sheet. Every business constant the engine uses lives here.
type Rates struct {
	MinimumSquareFeet decimal.Decimal
	CostMultiplier    decimal.Decimal
	SquareFeetPerAcre decimal.Decimal

	Disciplines DisciplineRates
	LOD         LODMultipliers
	Scope       ScopePortions
	Risk        RiskPremiums

	ACTPerSqft        decimal.Decimal
	MatterportPerSqft decimal.Decimal

	Landscape LandscapeRates
	Travel    TravelRates
	// Elevations are marginal brackets; the last one should be open-ended (UpTo 0).
	Elevations []Bracket
	Payment    PaymentPremiums
}

// DisciplineRates are base $/sqft per discipline.
type DisciplineRates struct {
	Architecture decimal.Decimal
	MEPF         decimal.Decimal
	Structure    decimal.Decimal
	Site         decimal.Decimal
}

// For returns the base rate of d. Unknown disciplines are not priced.
func (r DisciplineRates) For(d quote.Discipline) (decimal.Decimal, bool) {
	switch d {
	case quote.DisciplineArchitecture:
		return r.Architecture, true
	case quote.DisciplineMEPF:
		return r.MEPF, true
	case quote.DisciplineStructure:
		return r.Structure, true
	case quote.DisciplineSite:
		return r.Site, true
	default:
		return decimal.Zero, false
	}
}

// LODMultipliers scale a base rate by modeling detail.
type LODMultipliers struct {
	LOD200 decimal.Decimal
	LOD300 decimal.Decimal
	LOD350 decimal.Decimal
}

// For returns the multiplier of lod. Unknown grades price as LOD 300.
func (m LODMultipliers) For(lod quote.LOD) decimal.Decimal {
	switch lod {
	case quote.LOD200:
		return m.LOD200
	case quote.LOD350:
		return m.LOD350
	case quote.LOD300:
		return m.LOD300
	default:
		return m.LOD300
	}
}

// ScopePortions are the share of a building each scope covers.
type ScopePortions struct {
	Full     decimal.Decimal
	Interior decimal.Decimal
	Exterior decimal.Decimal
}

// For returns the portion of scope. Mixed is priced per part, so it and any
// unknown scope fall back to the full portion here.
func (p ScopePortions) For(scope quote.Scope) decimal.Decimal {
	switch scope {
	case quote.ScopeInterior:
		return p.Interior
	case quote.ScopeExterior:
		return p.Exterior
	case quote.ScopeFull, quote.ScopeMixed:
		return p.Full
	default:
		return p.Full
	}
}

// RiskPremiums are fractional surcharges on the architecture price.
type RiskPremiums struct {
	Occupied  decimal.Decimal
	Hazardous decimal.Decimal
	NoPower   decimal.Decimal
}

// For returns the premium of r.
func (p RiskPremiums) For(r quote.Risk) decimal.Decimal {
	switch r {
	case quote.RiskOccupied:
		return p.Occupied
	case quote.RiskHazardous:
		return p.Hazardous
	case quote.RiskNoPower:
		return p.NoPower
	default:
		return decimal.Zero
	}
}

// Sum returns the total premium of every active risk in rc.
func (p RiskPremiums) Sum(rc quote.RiskConfig) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rc.Active() {
		total = total.Add(p.For(r))
	}
	return total
}

// LODRates are per-acre rates of one acreage tier.
type LODRates struct {
	LOD200 decimal.Decimal
	LOD300 decimal.Decimal
	LOD350 decimal.Decimal
}

// For returns the rate of lod, or false for an unsupported grade.
func (r LODRates) For(lod quote.LOD) (decimal.Decimal, bool) {
	switch lod {
	case quote.LOD200:
		return r.LOD200, true
	case quote.LOD300:
		return r.LOD300, true
	case quote.LOD350:
		return r.LOD350, true
	default:
		return decimal.Zero, false
	}
}

// LandscapeTiers is the number of acreage tiers.
const LandscapeTiers = 5

// LandscapeRates price built and natural landscape per acre.
type LandscapeRates struct {
	// TierFloors are the lower acreage bounds of tiers 1..4; tier 0 starts at 0.
	TierFloors [LandscapeTiers - 1]decimal.Decimal
	Built      [LandscapeTiers]LODRates
	Natural    [LandscapeTiers]LODRates
	Fallback   decimal.Decimal
}

// Tier returns the acreage tier index of acres.
func (l LandscapeRates) Tier(acres decimal.Decimal) int {
	tier := 0
	for i, floor := range l.TierFloors {
		if acres.GreaterThanOrEqual(floor) {
			tier = i + 1
		}
	}
	return tier
}

// Rate returns the per-acre rate, or Fallback when the lookup has no entry.
func (l LandscapeRates) Rate(kind quote.BuildingType, tier int, lod quote.LOD) decimal.Decimal {
	if tier < 0 || tier >= LandscapeTiers {
		return l.Fallback
	}

	var row LODRates
	switch kind {
	case quote.BuildingTypeBuiltLandscape:
		row = l.Built[tier]
	case quote.BuildingTypeNaturalLandscape:
		row = l.Natural[tier]
	default:
		return l.Fallback
	}

	rate, ok := row.For(lod)
	if !ok {
		return l.Fallback
	}
	return rate
}

// TravelRates price crew travel.
type TravelRates struct {
	BrooklynTierASqft     decimal.Decimal
	BrooklynTierBSqft     decimal.Decimal
	BrooklynTierAFee      decimal.Decimal
	BrooklynTierBFee      decimal.Decimal
	BrooklynTierCFee      decimal.Decimal
	BrooklynIncludedMiles decimal.Decimal
	BrooklynPerMile       decimal.Decimal

	PerMile           decimal.Decimal
	ScanDayFeeMinimum decimal.Decimal
	ScanDayFee        decimal.Decimal
}

// Bracket is one marginal pricing band. UpTo is the cumulative upper bound;
// zero means unbounded.
type Bracket struct {
	UpTo int
	Rate decimal.Decimal
}

// PaymentPremiums are fractional surcharges for extended terms.
type PaymentPremiums struct {
	Net30 decimal.Decimal
	Net45 decimal.Decimal
	Net60 decimal.Decimal
	Net90 decimal.Decimal
}

// For returns the premium rate of terms; every other code carries none.
func (p PaymentPremiums) For(terms quote.PaymentTerms) decimal.Decimal {
	switch terms {
	case quote.PaymentTermsNet30:
		return p.Net30
	case quote.PaymentTermsNet45:
		return p.Net45
	case quote.PaymentTermsNet60:
		return p.Net60
	case quote.PaymentTermsNet90:
		return p.Net90
	default:
		return decimal.Zero
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lodRates(l200, l300, l350 string) LODRates {
	return LODRates{LOD200: d(l200), LOD300: d(l300), LOD350: d(l350)}
}

// DefaultRates returns the current pricing sheet.
func DefaultRates() Rates {
	return Rates{
		MinimumSquareFeet: d("3000"),
		CostMultiplier:    d("0.65"),
		SquareFeetPerAcre: d("43560"),

		Disciplines: DisciplineRates{
			Architecture: d("2.50"),
			MEPF:         d("3.00"),
			Structure:    d("2.00"),
			Site:         d("1.50"),
		},
		LOD:   LODMultipliers{LOD200: d("1.0"), LOD300: d("1.3"), LOD350: d("1.5")},
		Scope: ScopePortions{Full: d("1.0"), Interior: d("0.65"), Exterior: d("0.35")},
		Risk:  RiskPremiums{Occupied: d("0.15"), Hazardous: d("0.25"), NoPower: d("0.20")},

		ACTPerSqft:        d("2.00"),
		MatterportPerSqft: d("0.10"),

		Landscape: LandscapeRates{
			TierFloors: [LandscapeTiers - 1]decimal.Decimal{d("5"), d("20"), d("50"), d("100")},
			Built: [LandscapeTiers]LODRates{
				lodRates("875", "1000", "1250"),
				lodRates("625", "750", "950"),
				lodRates("375", "500", "625"),
				lodRates("250", "350", "450"),
				lodRates("160", "225", "300"),
			},
			Natural: [LandscapeTiers]LODRates{
				lodRates("625", "750", "950"),
				lodRates("400", "500", "625"),
				lodRates("250", "325", "425"),
				lodRates("160", "225", "300"),
				lodRates("100", "150", "200"),
			},
			Fallback: d("500"),
		},

		Travel: TravelRates{
			BrooklynTierASqft:     d("50000"),
			BrooklynTierBSqft:     d("10000"),
			BrooklynTierAFee:      d("0"),
			BrooklynTierBFee:      d("300"),
			BrooklynTierCFee:      d("150"),
			BrooklynIncludedMiles: d("20"),
			BrooklynPerMile:       d("4"),
			PerMile:               d("3"),
			ScanDayFeeMinimum:     d("75"),
			ScanDayFee:            d("300"),
		},

		Elevations: []Bracket{
			{UpTo: 10, Rate: d("25")},
			{UpTo: 20, Rate: d("20")},
			{UpTo: 100, Rate: d("15")},
			{UpTo: 300, Rate: d("10")},
			{UpTo: 0, Rate: d("5")},
		},

		Payment: PaymentPremiums{
			Net30: d("0.05"),
			Net45: d("0.07"),
			Net60: d("0.10"),
			Net90: d("0.15"),
		},
	}
}

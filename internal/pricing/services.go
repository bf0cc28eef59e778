package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// ServicesResult is the add-on services portion of a quote.
type ServicesResult struct {
	Matterport decimal.Decimal `json:"matterport"`
	Elevations decimal.Decimal `json:"elevations"`
	Total      decimal.Decimal `json:"total"`
}

// Services prices add-on services.
func (e *Engine) Services(cfg quote.ServicesConfig, totalSqft decimal.Decimal) ServicesResult {
	var out ServicesResult
	if cfg.Matterport {
		sqft := totalSqft
		if cfg.MatterportSqft != nil {
			sqft = *cfg.MatterportSqft
		}
		out.Matterport = decimal.Max(sqft, e.Rates.MinimumSquareFeet).Mul(e.Rates.MatterportPerSqft)
	}
	out.Elevations = e.ElevationsCost(cfg.AdditionalElevations)
	out.Total = out.Matterport.Add(out.Elevations)
	return out
}

// ElevationsCost prices count additional elevations across the marginal brackets.
func (e *Engine) ElevationsCost(count int) decimal.Decimal {
	return tieredCost(count, e.Rates.Elevations)
}

func tieredCost(count int, brackets []Bracket) decimal.Decimal {
	total := decimal.Zero
	remaining := count
	previous := 0

	for _, b := range brackets {
		if remaining <= 0 {
			break
		}
		units := remaining
		if b.UpTo > 0 {
			units = min(remaining, b.UpTo-previous)
			previous = b.UpTo
		}
		total = total.Add(b.Rate.Mul(decimal.NewFromInt(int64(units))))
		remaining -= units
	}
	return total
}

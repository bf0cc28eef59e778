package cpqimport

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// Export writes cfg in the CPQ export format. Computed prices are not part
// of the format; Normalize(Export(cfg)) prices to the same totals.
func Export(cfg quote.Configuration) ([]byte, error) {
	doc := document{
		Areas: make([]areaDoc, 0, len(cfg.Areas)),
		Travel: &travelDoc{
			DispatchLocation: string(cfg.Travel.DispatchLocation),
			Distance:         newNumber(cfg.Travel.Distance),
		},
		Risks: lo.Map(cfg.Risks.Active(), func(r quote.Risk, _ int) string { return string(r) }),
		Services: &servicesDoc{
			Matterport:           cfg.Services.Matterport,
			AdditionalElevations: newNumber(decimal.NewFromInt(int64(cfg.Services.AdditionalElevations))),
		},
		PaymentTerms: string(cfg.PaymentTerms),
	}

	if cfg.Services.MatterportSqft != nil {
		doc.Services.MatterportSqft = newNumber(*cfg.Services.MatterportSqft)
	}
	if cfg.ManualOverride != nil {
		doc.TotalPrice = newNumber(*cfg.ManualOverride)
	}

	for _, a := range cfg.Areas {
		ad := areaDoc{
			ID:           code(a.ID),
			Name:         a.Name,
			BuildingType: code(a.BuildingType),
			SquareFeet:   newNumber(a.SquareFeet),
			Disciplines:  make(map[string]disciplineDoc, len(a.Disciplines)),
		}
		if a.Acres != nil {
			ad.Acres = newNumber(*a.Acres)
		}

		keys := lo.Keys(a.Disciplines)
		slices.Sort(keys)
		for _, d := range keys {
			dc := a.Disciplines[d]
			enabled := dc.Enabled
			ad.Disciplines[string(d)] = disciplineDoc{
				Enabled:          &enabled,
				LOD:              code(dc.LOD),
				Scope:            string(dc.Scope),
				MixedInteriorLOD: code(dc.MixedInteriorLOD),
				MixedExteriorLOD: code(dc.MixedExteriorLOD),
			}
		}
		doc.Areas = append(doc.Areas, ad)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode CPQ export: %w", err)
	}
	return out, nil
}

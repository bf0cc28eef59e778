package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// Summary renders a plain text quote for email bodies and terminals.
func Summary(cfg quote.Configuration, totals Totals) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Total: %s USD\n", money(totals.FinalTotal))
	if totals.HasOverride {
		fmt.Fprintf(&b, "Calculated total: %s USD (manual override applied)\n", money(totals.CalculatedTotal))
	}

	b.WriteString("\nAreas:\n")
	for _, a := range cfg.Areas {
		fmt.Fprintf(&b, "- %s (type %s, %s sqft): %s USD\n", a.Name, a.BuildingType, a.SquareFeet.String(), money(a.ClientPrice))
		for _, d := range quote.Disciplines {
			dc, ok := a.Disciplines[d]
			if !ok || !dc.Enabled {
				continue
			}
			fmt.Fprintf(&b, "    %s LOD %s, %s scope\n", d, dc.LOD, dc.Scope)
		}
	}

	b.WriteString("\nAssumptions:\n")
	fmt.Fprintf(&b, "Dispatch: %s, %s mi\n", cfg.Travel.DispatchLocation, cfg.Travel.Distance.String())
	if active := cfg.Risks.Active(); len(active) > 0 {
		names := make([]string, len(active))
		for i, r := range active {
			names[i] = string(r)
		}
		fmt.Fprintf(&b, "Risks: %s (+%s%% on architecture)\n", strings.Join(names, ", "), totals.RiskPercent.String())
	}
	fmt.Fprintf(&b, "Payment terms: %s\n", cfg.PaymentTerms)

	b.WriteString("\nBreakdown:\n")
	fmt.Fprintf(&b, "Areas: %s\n", money(totals.AreasTotal))
	fmt.Fprintf(&b, "Travel: %s\n", money(totals.TravelTotal))
	fmt.Fprintf(&b, "Services: %s\n", money(totals.ServicesTotal))
	fmt.Fprintf(&b, "Subtotal: %s\n", money(totals.Subtotal))
	fmt.Fprintf(&b, "Payment premium: %s\n", money(totals.PaymentPremium))

	return b.String()
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

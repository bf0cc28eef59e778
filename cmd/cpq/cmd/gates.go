package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/gates"
)

var errGatesBlocked = errors.New("proposal gates blocked")

func (a *app) newGatesCmd() *cobra.Command {
	var (
		leadSource    string
		tier          string
		estimatorCard string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "gates FILE",
		Short: "Run the proposal gates against a CPQ export",
		Long: `Price a CPQ export and run the bundled proposal gates for a lead.

The lead's square footage is the export's total. Exits non-zero when a gate blocks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tier != "" && tier != string(gates.TierA) && tier != string(gates.TierB) {
				return fmt.Errorf("unknown tier %q (want A or B)", tier)
			}

			out, err := a.priced(cmd, args[0])
			if err != nil {
				return err
			}

			lead := gates.Lead{
				LeadSource:       leadSource,
				SquareFeet:       out.Configuration.TotalSquareFeet(),
				Tier:             gates.Tier(tier),
				EstimatorCardRef: estimatorCard,
			}
			if lead.Tier == "" {
				lead.Tier = a.policy.ClassifyTier(lead.SquareFeet)
			}

			result := a.policy.CheckProposalGates(lead, out.Totals.Breakdown())

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				err = writeJSON(w, result)
			case "text":
				err = writeGatesText(w, lead, result)
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
			if err != nil {
				return err
			}

			if !result.AllPassed {
				a.log.Warn("proposal gates blocked", zap.String("margin_percent", result.MarginPercent.StringFixed(2)))
				return errGatesBlocked
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&leadSource, "lead-source", "", "lead source used for attribution")
	cmd.Flags().StringVar(&tier, "tier", "", "lead tier (A or B); derived from square footage when empty")
	cmd.Flags().StringVar(&estimatorCard, "estimator-card", "", "estimator card reference")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	return cmd
}

func writeGatesText(w io.Writer, lead gates.Lead, r gates.ProposalGates) error {
	fmt.Fprintf(w, "Lead: tier %s, %s sqft\n", lead.Tier, lead.SquareFeet.String())
	fmt.Fprintf(w, "Gross margin: %s%%\n\n", r.MarginPercent.StringFixed(2))

	for _, g := range []struct {
		name   string
		result gates.Result
	}{
		{"GM gate", r.GMGate},
		{"Attribution", r.AttributionGate},
		{"Estimator card", r.EstimatorCardGate},
	} {
		fmt.Fprintf(w, "%-15s %s\n", g.name+":", gateStatus(g.result))
		if g.result.Message != "" {
			fmt.Fprintf(w, "  %s\n", g.result.Message)
		}
	}

	verdict := "ready for proposal"
	if !r.AllPassed {
		verdict = "blocked"
	}
	_, err := fmt.Fprintf(w, "\nResult: %s\n", verdict)
	return err
}

func gateStatus(r gates.Result) string {
	switch {
	case !r.Passed:
		return "FAIL " + string(r.Code)
	case r.Code != "":
		return "WARN " + string(r.Code)
	default:
		return "ok"
	}
}


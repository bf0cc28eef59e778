package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/cpqimport"
	"github.com/Simplici0/scanquote/internal/gates"
	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quote"
)

type priceOutput struct {
	Configuration quote.Configuration `json:"configuration"`
	Defaulted     []quote.Defaulted   `json:"defaulted,omitempty"`
	Totals        pricing.Totals      `json:"totals"`
	MarginPercent decimal.Decimal     `json:"marginPercent"`
	GMGate        gates.Result        `json:"gmGate"`
}

// priced loads an export and prices it.
func (a *app) priced(cmd *cobra.Command, path string) (priceOutput, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return priceOutput{}, err
	}

	res, err := cpqimport.Normalize(raw)
	if err != nil {
		return priceOutput{}, err
	}

	q := a.engine.Calculate(res.Config)
	defaulted := append(append([]quote.Defaulted{}, res.Defaulted...), q.Defaulted...)
	for _, d := range defaulted {
		a.log.Debug("field defaulted", zap.Stringer("field", d))
	}

	margin := gates.MarginPercent(q.Breakdown())
	return priceOutput{
		Configuration: q.Config,
		Defaulted:     defaulted,
		Totals:        q.Totals,
		MarginPercent: margin,
		GMGate:        a.policy.CheckGMGate(margin),
	}, nil
}

func (a *app) newPriceCmd() *cobra.Command {
	var (
		format       string
		showDefaults bool
	)

	cmd := &cobra.Command{
		Use:   "price FILE",
		Short: "Price a CPQ export",
		Long: `Normalize a CPQ JSON export and print its totals.

FILE may be "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.priced(cmd, args[0])
			if err != nil {
				return err
			}
			if !showDefaults {
				out.Defaulted = nil
			}

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(w, out)
			case "text":
				return writePriceText(w, out)
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&showDefaults, "show-defaults", false, "list every field that was filled with a default")
	return cmd
}

func writePriceText(w io.Writer, out priceOutput) error {
	if _, err := io.WriteString(w, pricing.Summary(out.Configuration, out.Totals)); err != nil {
		return err
	}

	status := "passed"
	if !out.GMGate.Passed {
		status = "BLOCKED"
	}
	fmt.Fprintf(w, "\nGross margin: %s%% (GM gate %s)\n", out.MarginPercent.StringFixed(2), status)

	if len(out.Defaulted) > 0 {
		fmt.Fprintln(w, "\nDefaulted:")
		for _, d := range out.Defaulted {
			fmt.Fprintf(w, "- %s\n", d)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

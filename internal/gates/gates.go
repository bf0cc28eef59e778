// Package gates holds the profitability and governance checks a quote must
// pass before a lead moves toward a signed proposal. Every check is a pure
// function of its inputs.
package gates

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/pricing"
)

// Code identifies why a gate failed or warned.
type Code string

const (
	CodeGMGateBlocked            Code = "GM_GATE_BLOCKED"
	CodeAttributionRequired      Code = "ATTRIBUTION_REQUIRED"
	CodeEstimatorCardRecommended Code = "ESTIMATOR_CARD_RECOMMENDED"
	CodeQuoteRequired            Code = "QUOTE_REQUIRED"
)

// Result is the outcome of one gate. A passed result may still carry a code
// when it is a soft warning.
type Result struct {
	Passed  bool           `json:"passed"`
	Code    Code           `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Warning reports whether r passed but carries advisory text.
func (r Result) Warning() bool {
	return r.Passed && r.Code != ""
}

func pass() Result {
	return Result{Passed: true}
}

// Tier is the size classification of a lead.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
)

// Stage is a sales pipeline stage.
type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed_won"
	StageClosedLost  Stage = "closed_lost"
)

// Known reports whether s is a pipeline stage.
func (s Stage) Known() bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	default:
		return false
	}
}

// Lead is the subset of lead attributes the gates read.
type Lead struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	LeadSource       string          `json:"leadSource"`
	SquareFeet       decimal.Decimal `json:"squareFeet"`
	Tier             Tier            `json:"tier"`
	EstimatorCardRef string          `json:"estimatorCardRef"`
	Stage            Stage           `json:"stage"`
}

// Policy holds the governance thresholds.
type Policy struct {
	GMFloorPercent  decimal.Decimal
	TierASquareFeet decimal.Decimal
}

// DefaultPolicy returns the current thresholds: 40% gross margin, Tier A from 50,000 sqft.
func DefaultPolicy() Policy {
	return Policy{
		GMFloorPercent:  decimal.NewFromInt(40),
		TierASquareFeet: decimal.NewFromInt(50000),
	}
}

var hundred = decimal.NewFromInt(100)

// MarginPercent returns the gross margin of b in percent, or 0 without a price.
func MarginPercent(b pricing.Breakdown) decimal.Decimal {
	if !b.ClientPrice.IsPositive() {
		return decimal.Zero
	}
	return b.ClientPrice.Sub(b.UpteamCost).Div(b.ClientPrice).Mul(hundred)
}

// CheckGMGate passes when margin reaches the floor; the floor itself passes.
func (p Policy) CheckGMGate(marginPercent decimal.Decimal) Result {
	if marginPercent.GreaterThanOrEqual(p.GMFloorPercent) {
		return pass()
	}
	msg := fmt.Sprintf("Gross margin %s%% is below the required %s%%. Adjust pricing or get an approved override before issuing a proposal.",
		marginPercent.Truncate(2).StringFixed(2), p.GMFloorPercent.String())
	return Result{
		Passed:  false,
		Code:    CodeGMGateBlocked,
		Message: msg,
		Details: map[string]any{
			"marginPercent": marginPercent.InexactFloat64(),
			"required":      p.GMFloorPercent.InexactFloat64(),
		},
	}
}

// CheckAttributionGate fails only when closing a deal won without a lead source.
func CheckAttributionGate(lead Lead, isClosingWon bool) Result {
	if !isClosingWon || strings.TrimSpace(lead.LeadSource) != "" {
		return pass()
	}
	return Result{
		Passed:  false,
		Code:    CodeAttributionRequired,
		Message: "A lead source is required before a deal can be marked Closed Won.",
	}
}

// IsTierA reports whether lead is Tier A by flag or by size.
func (p Policy) IsTierA(lead Lead) bool {
	return lead.Tier == TierA || lead.SquareFeet.GreaterThanOrEqual(p.TierASquareFeet)
}

// CheckEstimatorCardGate always passes; Tier A leads without an estimator
// card get a recommendation.
func (p Policy) CheckEstimatorCardGate(lead Lead) Result {
	if !p.IsTierA(lead) || strings.TrimSpace(lead.EstimatorCardRef) != "" {
		return pass()
	}
	return Result{
		Passed:  true,
		Code:    CodeEstimatorCardRecommended,
		Message: "Tier A project: attaching an estimator card is recommended before sending the proposal.",
	}
}

// ProposalGates is the bundled check run before generating a proposal.
type ProposalGates struct {
	GMGate            Result          `json:"gmGate"`
	AttributionGate   Result          `json:"attributionGate"`
	EstimatorCardGate Result          `json:"estimatorCardGate"`
	MarginPercent     decimal.Decimal `json:"marginPercent"`
	AllPassed         bool            `json:"allPassed"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// CheckProposalGates combines the three gates. Attribution is checked as if
// the deal were closing won so a missing lead source surfaces early, then
// downgraded to a warning; AllPassed depends on the GM and estimator card
// gates alone. CheckStageTransition keeps attribution a hard block.
func (p Policy) CheckProposalGates(lead Lead, b pricing.Breakdown) ProposalGates {
	margin := MarginPercent(b)
	out := ProposalGates{
		GMGate:            p.CheckGMGate(margin),
		AttributionGate:   CheckAttributionGate(lead, true),
		EstimatorCardGate: p.CheckEstimatorCardGate(lead),
		MarginPercent:     margin,
	}

	if !out.AttributionGate.Passed {
		out.Warnings = append(out.Warnings, out.AttributionGate.Message)
		out.AttributionGate.Passed = true
	}
	if out.EstimatorCardGate.Warning() {
		out.Warnings = append(out.Warnings, out.EstimatorCardGate.Message)
	}

	out.AllPassed = out.GMGate.Passed && out.EstimatorCardGate.Passed
	return out
}

// CheckStageTransition is the check behind a direct stage change. Moving to
// Closed Won hard-blocks on missing attribution; moving to Proposal
// hard-blocks on the GM floor, and on a nil breakdown since there is no
// priced quote to judge.
func (p Policy) CheckStageTransition(lead Lead, b *pricing.Breakdown, to Stage) Result {
	switch to {
	case StageClosedWon:
		return CheckAttributionGate(lead, true)
	case StageProposal:
		if b == nil {
			return Result{
				Passed:  false,
				Code:    CodeQuoteRequired,
				Message: "A priced quote is required before a lead can move to Proposal.",
			}
		}
		return p.CheckGMGate(MarginPercent(*b))
	default:
		return pass()
	}
}

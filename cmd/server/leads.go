package main

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/cpqimport"
	"github.com/Simplici0/scanquote/internal/gates"
	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quote"
	"github.com/Simplici0/scanquote/internal/store"
)

type createLeadRequest struct {
	Name             string          `json:"name"`
	LeadSource       string          `json:"leadSource"`
	SquareFeet       decimal.Decimal `json:"squareFeet"`
	Tier             gates.Tier      `json:"tier"`
	EstimatorCardRef string          `json:"estimatorCardRef"`
}

func (req createLeadRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.SquareFeet, validation.By(func(v any) error {
			if v.(decimal.Decimal).IsNegative() {
				return errors.New("must not be negative")
			}
			return nil
		})),
		validation.Field(&req.Tier, validation.In(gates.TierA, gates.TierB)),
	)
}

func (s *server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	tier := req.Tier
	if tier == "" {
		tier = s.policy.ClassifyTier(req.SquareFeet)
	}

	rec, err := s.store.CreateLead(r.Context(), gates.Lead{
		Name:             req.Name,
		LeadSource:       strings.TrimSpace(req.LeadSource),
		SquareFeet:       req.SquareFeet,
		Tier:             tier,
		EstimatorCardRef: strings.TrimSpace(req.EstimatorCardRef),
		Stage:            gates.StageLead,
	})
	if err != nil {
		s.internalError(w, "create lead", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *server) loadLead(w http.ResponseWriter, r *http.Request) (store.LeadRecord, bool) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "id")
		return store.LeadRecord{}, false
	}

	rec, err := s.store.GetLead(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lead not found", "")
		return store.LeadRecord{}, false
	}
	if err != nil {
		s.internalError(w, "load lead", err)
		return store.LeadRecord{}, false
	}
	return rec, true
}

func (s *server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadLead(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// pricingSource names the quote a gate check judges: a saved quote of the
// lead or an unsaved configuration. With neither, the lead's latest saved
// quote is used.
type pricingSource struct {
	QuoteID       *int64               `json:"quoteId"`
	Configuration *quote.Configuration `json:"configuration"`
}

// breakdown resolves src for lead. A nil breakdown with ok means the lead has
// no quote to judge.
func (s *server) breakdown(w http.ResponseWriter, r *http.Request, lead store.LeadRecord, src pricingSource) (*pricing.Breakdown, bool) {
	ctx := r.Context()
	switch {
	case src.QuoteID != nil:
		rec, err := s.store.GetQuote(ctx, *src.QuoteID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "quote not found", "quoteId")
			return nil, false
		}
		if err != nil {
			s.internalError(w, "load quote", err)
			return nil, false
		}
		if rec.LeadID == nil || *rec.LeadID != lead.ID {
			writeError(w, http.StatusBadRequest, "quote does not belong to this lead", "quoteId")
			return nil, false
		}
		b := rec.Totals.Breakdown()
		return &b, true
	case src.Configuration != nil:
		if err := cpqimport.Validate(*src.Configuration); err != nil {
			writeValidationError(w, err)
			return nil, false
		}
		b := s.engine.Calculate(*src.Configuration).Breakdown()
		return &b, true
	default:
		rec, err := s.store.LatestQuoteForLead(ctx, lead.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, true
		}
		if err != nil {
			s.internalError(w, "load latest quote", err)
			return nil, false
		}
		b := rec.Totals.Breakdown()
		return &b, true
	}
}

func (s *server) handleProposalGates(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.loadLead(w, r)
	if !ok {
		return
	}

	var src pricingSource
	if err := parseJSON(r, &src); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	b, ok := s.breakdown(w, r, lead, src)
	if !ok {
		return
	}
	if b == nil {
		writeError(w, http.StatusBadRequest, "lead has no saved quote; send quoteId or configuration", "quoteId")
		return
	}

	result := s.policy.CheckProposalGates(lead.Lead, *b)
	if !result.AllPassed {
		s.log.Warn("proposal gates blocked",
			zap.Int64("lead", lead.ID),
			zap.String("gm_code", string(result.GMGate.Code)),
			zap.String("margin_percent", result.MarginPercent.StringFixed(2)),
		)
	}
	writeJSON(w, http.StatusOK, result)
}

type stageRequest struct {
	Stage gates.Stage `json:"stage"`
	pricingSource
}

type stageResponse struct {
	Lead *store.LeadRecord `json:"lead,omitempty"`
	Gate gates.Result      `json:"gate"`
}

func (s *server) handleStageTransition(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.loadLead(w, r)
	if !ok {
		return
	}

	var req stageRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Stage, validation.Required, validation.By(func(v any) error {
			if !v.(gates.Stage).Known() {
				return errors.New("unknown pipeline stage")
			}
			return nil
		})),
	)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	b, ok := s.breakdown(w, r, lead, req.pricingSource)
	if !ok {
		return
	}

	result := s.policy.CheckStageTransition(lead.Lead, b, req.Stage)
	if !result.Passed {
		s.log.Warn("stage transition blocked",
			zap.Int64("lead", lead.ID),
			zap.String("to", string(req.Stage)),
			zap.String("code", string(result.Code)),
		)
		writeJSON(w, http.StatusForbidden, stageResponse{Gate: result})
		return
	}

	ctx := r.Context()
	if err := s.store.UpdateLeadStage(ctx, lead.ID, req.Stage); err != nil {
		s.internalError(w, "update lead stage", err)
		return
	}
	updated, err := s.store.GetLead(ctx, lead.ID)
	if err != nil {
		s.internalError(w, "load lead", err)
		return
	}
	writeJSON(w, http.StatusOK, stageResponse{Lead: &updated, Gate: result})
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/cpqimport"
	"github.com/Simplici0/scanquote/internal/gates"
	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quote"
	"github.com/Simplici0/scanquote/internal/store"
)

// pricedQuote is a pricing result with its GM gate verdict.
type pricedQuote struct {
	pricing.Quote
	MarginPercent decimal.Decimal `json:"marginPercent"`
	GMGate        gates.Result    `json:"gmGate"`
}

func (s *server) price(cfg quote.Configuration) pricedQuote {
	q := s.engine.Calculate(cfg)
	margin := gates.MarginPercent(q.Breakdown())
	return pricedQuote{
		Quote:         q,
		MarginPercent: margin,
		GMGate:        s.policy.CheckGMGate(margin),
	}
}

// decodeConfiguration reads a configuration body and checks its numeric
// invariants. It writes the error response itself.
func decodeConfiguration(w http.ResponseWriter, raw []byte, cfg *quote.Configuration) bool {
	if err := json.Unmarshal(raw, cfg); err != nil {
		writeError(w, http.StatusBadRequest, "malformed configuration: "+err.Error(), "")
		return false
	}
	if err := cpqimport.Validate(*cfg); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	var cfg quote.Configuration
	if !decodeConfiguration(w, body, &cfg) {
		return
	}
	writeJSON(w, http.StatusOK, s.price(cfg))
}

type importResponse struct {
	Configuration quote.Configuration `json:"configuration"`
	Defaulted     []quote.Defaulted   `json:"defaulted"`
	Quote         pricedQuote         `json:"quote"`
}

func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	res, err := cpqimport.Normalize(body)
	if err != nil {
		if !writeValidationError(w, err) {
			s.log.Error("import failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "import failed", "")
		}
		return
	}

	priced := s.price(res.Config)
	defaulted := append(append([]quote.Defaulted{}, res.Defaulted...), priced.Defaulted...)
	for _, d := range defaulted {
		s.log.Debug("import field defaulted", zap.Stringer("field", d))
	}

	writeJSON(w, http.StatusOK, importResponse{
		Configuration: res.Config,
		Defaulted:     defaulted,
		Quote:         priced,
	})
}

type saveQuoteRequest struct {
	LeadID        *int64               `json:"leadId"`
	Title         string               `json:"title"`
	Notes         string               `json:"notes"`
	Configuration *quote.Configuration `json:"configuration"`
}

func (req saveQuoteRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.LeadID, validation.Min(int64(1))),
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Notes, validation.Length(0, 4000)),
		validation.Field(&req.Configuration, validation.Required),
	)
}

type saveQuoteResponse struct {
	Quote      store.QuoteRecord `json:"quote"`
	GMGate     gates.Result      `json:"gmGate"`
	TierUpdate *gates.TierUpdate `json:"tierUpdate,omitempty"`
}

func (s *server) handleSaveQuote(w http.ResponseWriter, r *http.Request) {
	var req saveQuoteRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}
	if err := cpqimport.Validate(*req.Configuration); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx := r.Context()
	var lead *store.LeadRecord
	if req.LeadID != nil {
		rec, err := s.store.GetLead(ctx, *req.LeadID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found", "leadId")
			return
		}
		if err != nil {
			s.internalError(w, "load lead", err)
			return
		}
		lead = &rec
	}

	priced := s.price(*req.Configuration)
	saved, err := s.store.SaveQuote(ctx, store.NewQuote{
		LeadID:        req.LeadID,
		Title:         req.Title,
		Notes:         req.Notes,
		Config:        priced.Config,
		Totals:        priced.Totals,
		MarginPercent: priced.MarginPercent,
		GMPassed:      priced.GMGate.Passed,
	})
	if err != nil {
		s.internalError(w, "save quote", err)
		return
	}

	resp := saveQuoteResponse{Quote: saved, GMGate: priced.GMGate}
	if lead != nil {
		if update, ok := s.policy.AutoTierAUpdate(lead.Tier, priced.Config.TotalSquareFeet()); ok {
			changed, err := s.store.ApplyTierUpdate(ctx, lead.ID, update)
			if err != nil {
				s.internalError(w, "apply tier update", err)
				return
			}
			if changed {
				s.log.Info("lead upgraded", zap.Int64("lead", lead.ID), zap.String("tier", string(update.Tier)), zap.String("reason", update.Reason))
				resp.TierUpdate = &update
			}
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.ListQuotes(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.internalError(w, "list quotes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (store.QuoteRecord, bool) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "id")
		return store.QuoteRecord{}, false
	}

	rec, err := s.store.GetQuote(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "quote not found", "")
		return store.QuoteRecord{}, false
	}
	if err != nil {
		s.internalError(w, "load quote", err)
		return store.QuoteRecord{}, false
	}
	return rec, true
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s\n\n", rec.Title)
	_, _ = w.Write([]byte(pricing.Summary(rec.Config, rec.Totals)))
}

func (s *server) handleQuoteExport(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	out, err := cpqimport.Export(rec.Config)
	if err != nil {
		s.internalError(w, "export quote", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%d.json"`, rec.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, op+" failed", "")
}

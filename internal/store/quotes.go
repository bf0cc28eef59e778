package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quote"
)

// NewQuote is a priced configuration to snapshot.
type NewQuote struct {
	LeadID        *int64
	Title         string
	Notes         string
	Config        quote.Configuration
	Totals        pricing.Totals
	MarginPercent decimal.Decimal
	GMPassed      bool
}

// QuoteSummary is a row of the saved quotes list.
type QuoteSummary struct {
	ID            int64           `json:"id"`
	LeadID        *int64          `json:"leadId,omitempty"`
	Title         string          `json:"title"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
	FinalTotal    decimal.Decimal `json:"finalTotal"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	GMPassed      bool            `json:"gmPassed"`
}

// QuoteRecord is a saved quote. Config and Totals are the values at save
// time; reading a quote never reprices it.
type QuoteRecord struct {
	QuoteSummary
	Config quote.Configuration `json:"configuration"`
	Totals pricing.Totals      `json:"totals"`
}

// SaveQuote stores a snapshot and returns it.
func (s *Store) SaveQuote(ctx context.Context, q NewQuote) (QuoteRecord, error) {
	configJSON, err := json.Marshal(q.Config)
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("encode quote configuration: %w", err)
	}
	totalsJSON, err := json.Marshal(q.Totals)
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("encode quote totals: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (lead_id, title, notes, created_at, config_json, totals_json, final_total, margin_percent, gm_passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, nullableID(q.LeadID), strings.TrimSpace(q.Title), q.Notes, s.timestamp(),
		string(configJSON), string(totalsJSON), q.Totals.FinalTotal.String(), q.MarginPercent.String(), q.GMPassed)
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("insert quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("read quote id: %w", err)
	}
	return s.GetQuote(ctx, id)
}

// GetQuote loads a saved quote by ID.
func (s *Store) GetQuote(ctx context.Context, id int64) (QuoteRecord, error) {
	rec, err := s.loadQuote(ctx, `WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return QuoteRecord{}, fmt.Errorf("quote %d: %w", id, ErrNotFound)
	}
	return rec, err
}

// LatestQuoteForLead loads the most recently saved quote linked to a lead.
func (s *Store) LatestQuoteForLead(ctx context.Context, leadID int64) (QuoteRecord, error) {
	rec, err := s.loadQuote(ctx, `WHERE lead_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, leadID)
	if errors.Is(err, sql.ErrNoRows) {
		return QuoteRecord{}, fmt.Errorf("quote for lead %d: %w", leadID, ErrNotFound)
	}
	return rec, err
}

func (s *Store) loadQuote(ctx context.Context, where string, args ...any) (QuoteRecord, error) {
	var rec QuoteRecord
	var configJSON, totalsJSON string
	row := s.db.QueryRowContext(ctx, `
		SELECT id, lead_id, title, notes, created_at, final_total, margin_percent, gm_passed, config_json, totals_json
		FROM quotes
		`+where, args...)
	if err := scanSummary(row, &rec.QuoteSummary, &configJSON, &totalsJSON); err != nil {
		return QuoteRecord{}, err
	}

	if err := json.Unmarshal([]byte(configJSON), &rec.Config); err != nil {
		return QuoteRecord{}, fmt.Errorf("decode quote configuration: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &rec.Totals); err != nil {
		return QuoteRecord{}, fmt.Errorf("decode quote totals: %w", err)
	}
	return rec, nil
}

// ListQuotes returns saved quotes newest first. A non-empty query filters on
// title or notes.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]QuoteSummary, error) {
	query = strings.TrimSpace(query)
	search := "%" + escapeLike(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, title, notes, created_at, final_total, margin_percent, gm_passed
		FROM quotes
		WHERE (? = '' OR title LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]QuoteSummary, 0)
	for rows.Next() {
		var item QuoteSummary
		if err := scanSummary(rows, &item); err != nil {
			return nil, err
		}
		quotes = append(quotes, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, out *QuoteSummary, extra ...any) error {
	var leadID sql.NullInt64
	var createdAt, finalTotal, margin string
	dest := append([]any{&out.ID, &leadID, &out.Title, &out.Notes, &createdAt, &finalTotal, &margin, &out.GMPassed}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan quote: %w", err)
	}

	if leadID.Valid {
		id := leadID.Int64
		out.LeadID = &id
	}

	var err error
	if out.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if out.FinalTotal, err = decimal.NewFromString(finalTotal); err != nil {
		return fmt.Errorf("parse quote total: %w", err)
	}
	if out.MarginPercent, err = decimal.NewFromString(margin); err != nil {
		return fmt.Errorf("parse quote margin: %w", err)
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/gates"
)

// LeadRecord is a stored lead.
type LeadRecord struct {
	gates.Lead
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateLead inserts lead and returns it with its new ID. An empty stage is
// stored as "lead".
func (s *Store) CreateLead(ctx context.Context, lead gates.Lead) (LeadRecord, error) {
	if lead.Stage == "" {
		lead.Stage = gates.StageLead
	}
	now := s.timestamp()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (name, lead_source, square_feet, tier, estimator_card_ref, stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, lead.Name, lead.LeadSource, lead.SquareFeet.String(), string(lead.Tier), lead.EstimatorCardRef, string(lead.Stage), now, now)
	if err != nil {
		return LeadRecord{}, fmt.Errorf("insert lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return LeadRecord{}, fmt.Errorf("read lead id: %w", err)
	}
	return s.GetLead(ctx, id)
}

// GetLead loads a lead by ID.
func (s *Store) GetLead(ctx context.Context, id int64) (LeadRecord, error) {
	var rec LeadRecord
	var sqft, tier, stage, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, lead_source, square_feet, tier, estimator_card_ref, stage, created_at, updated_at
		FROM leads
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Name, &rec.LeadSource, &sqft, &tier, &rec.EstimatorCardRef, &stage, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return LeadRecord{}, fmt.Errorf("lead %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return LeadRecord{}, fmt.Errorf("query lead: %w", err)
	}

	if rec.SquareFeet, err = decimal.NewFromString(sqft); err != nil {
		return LeadRecord{}, fmt.Errorf("parse lead square feet: %w", err)
	}
	rec.Tier = gates.Tier(tier)
	rec.Stage = gates.Stage(stage)
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return LeadRecord{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return LeadRecord{}, err
	}
	return rec, nil
}

// UpdateLeadStage moves a lead to stage. Gate checks are the caller's job.
func (s *Store) UpdateLeadStage(ctx context.Context, id int64, stage gates.Stage) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leads SET stage = ?, updated_at = ? WHERE id = ?
	`, string(stage), s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("update lead stage: %w", err)
	}
	return requireRow(res, "lead", id)
}

// ApplyTierUpdate persists an automatic tier upgrade. It reports false when
// the lead already has that tier.
func (s *Store) ApplyTierUpdate(ctx context.Context, id int64, update gates.TierUpdate) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leads SET tier = ?, updated_at = ? WHERE id = ? AND tier <> ?
	`, string(update.Tier), s.timestamp(), id, string(update.Tier))
	if err != nil {
		return false, fmt.Errorf("update lead tier: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	if _, err := s.GetLead(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

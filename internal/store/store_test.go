package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/scanquote/internal/db"
	"github.com/Simplici0/scanquote/internal/gates"
	"github.com/Simplici0/scanquote/internal/migrations"
	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quote"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.Up(ctx, database))

	s := New(database)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestLeads_CreateGetAndStage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateLead(ctx, gates.Lead{
		Name:       "Harbor Point Tower",
		LeadSource: "referral",
		SquareFeet: decimal.NewFromInt(64000),
		Tier:       gates.TierB,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, gates.StageLead, created.Stage)
	assert.True(t, created.SquareFeet.Equal(decimal.NewFromInt(64000)))

	require.NoError(t, s.UpdateLeadStage(ctx, created.ID, gates.StageProposal))

	got, err := s.GetLead(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, gates.StageProposal, got.Stage)
	assert.Equal(t, "referral", got.LeadSource)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestLeads_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetLead(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateLeadStage(ctx, 99, gates.StageQualified), ErrNotFound)

	_, err = s.ApplyTierUpdate(ctx, 99, gates.TierUpdate{Tier: gates.TierA})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeads_ApplyTierUpdateOnlyChangesOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	lead, err := s.CreateLead(ctx, gates.Lead{Name: "Depot", Tier: gates.TierB})
	require.NoError(t, err)

	update := gates.TierUpdate{Tier: gates.TierA, Reason: "quoted 50000 sqft"}
	changed, err := s.ApplyTierUpdate(ctx, lead.ID, update)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.ApplyTierUpdate(ctx, lead.ID, update)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.GetLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, gates.TierA, got.Tier)
}

func savedQuote(t *testing.T, s *Store, leadID *int64, title, notes string) QuoteRecord {
	t.Helper()

	cfg := quote.NewConfiguration()
	cfg.Areas[0].SquareFeet = decimal.NewFromInt(50000)
	q := pricing.NewDefault().Calculate(cfg)
	margin := gates.MarginPercent(q.Breakdown())

	rec, err := s.SaveQuote(context.Background(), NewQuote{
		LeadID:        leadID,
		Title:         title,
		Notes:         notes,
		Config:        q.Config,
		Totals:        q.Totals,
		MarginPercent: margin,
		GMPassed:      true,
	})
	require.NoError(t, err)
	return rec
}

func TestQuotes_SaveAndGetSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	lead, err := s.CreateLead(ctx, gates.Lead{Name: "Campus"})
	require.NoError(t, err)

	saved := savedQuote(t, s, &lead.ID, "  Campus scan  ", "phase 1")
	assert.Equal(t, "Campus scan", saved.Title)
	require.NotNil(t, saved.LeadID)
	assert.Equal(t, lead.ID, *saved.LeadID)

	got, err := s.GetQuote(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.FinalTotal.Equal(decimal.NewFromInt(162500)), got.FinalTotal.String())
	assert.True(t, got.Totals.FinalTotal.Equal(got.FinalTotal))
	assert.True(t, got.MarginPercent.Equal(decimal.NewFromInt(35)), got.MarginPercent.String())
	require.Len(t, got.Config.Areas, 1)
	assert.True(t, got.Config.Areas[0].ClientPrice.Equal(decimal.NewFromInt(162500)))
	assert.Equal(t, quote.LOD300, got.Config.Areas[0].Disciplines[quote.DisciplineArchitecture].LOD)

	_, err = s.GetQuote(ctx, saved.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuotes_ListNewestFirstWithFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := savedQuote(t, s, nil, "Warehouse", "dock doors")
	second := savedQuote(t, s, nil, "Office fit-out", "50%_deposit")
	third := savedQuote(t, s, nil, "Warehouse annex", "")

	all, err := s.ListQuotes(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Nil(t, all[0].LeadID)

	warehouse, err := s.ListQuotes(ctx, "warehouse")
	require.NoError(t, err)
	assert.Len(t, warehouse, 2)

	byNotes, err := s.ListQuotes(ctx, "dock")
	require.NoError(t, err)
	require.Len(t, byNotes, 1)
	assert.Equal(t, first.ID, byNotes[0].ID)

	literal, err := s.ListQuotes(ctx, "50%_")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, second.ID, literal[0].ID)

	none, err := s.ListQuotes(ctx, "_x")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQuotes_LatestQuoteForLead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	lead, err := s.CreateLead(ctx, gates.Lead{Name: "Depot"})
	require.NoError(t, err)
	other, err := s.CreateLead(ctx, gates.Lead{Name: "Marina"})
	require.NoError(t, err)

	_, err = s.LatestQuoteForLead(ctx, lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	savedQuote(t, s, &lead.ID, "Depot v1", "")
	latest := savedQuote(t, s, &lead.ID, "Depot v2", "")
	savedQuote(t, s, &other.ID, "Marina", "")
	savedQuote(t, s, nil, "Unlinked", "")

	got, err := s.LatestQuoteForLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, "Depot v2", got.Title)
	require.Len(t, got.Config.Areas, 1)
}

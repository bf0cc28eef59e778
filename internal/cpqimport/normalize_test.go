package cpqimport

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quote"
)

func defaultedPaths(ds []quote.Defaulted) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Path
	}
	return out
}

func TestNormalize_MalformedJSONIsAValidationError(t *testing.T) {
	for _, raw := range []string{``, `   `, `{"areas": [`, `[1,2]`, `null`, `{"areas": [{"squareFeet": {}}]}`} {
		_, err := Normalize([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, IsValidationError(err), "expected ValidationError for %q, got %v", raw, err)
	}
}

func TestNormalize_EmptyObjectDefaultsEverything(t *testing.T) {
	res, err := Normalize([]byte(`{}`))
	require.NoError(t, err)

	cfg := res.Config
	assert.Empty(t, cfg.Areas)
	assert.Equal(t, quote.DispatchTroy, cfg.Travel.DispatchLocation)
	assert.Equal(t, quote.RiskConfig{}, cfg.Risks)
	assert.Equal(t, 0, cfg.Services.AdditionalElevations)
	assert.Equal(t, quote.PaymentTermsStandard, cfg.PaymentTerms)
	assert.Nil(t, cfg.ManualOverride)

	paths := defaultedPaths(res.Defaulted)
	assert.Contains(t, paths, "areas")
	assert.Contains(t, paths, "travel")
	assert.Contains(t, paths, "risks")
	assert.Contains(t, paths, "services.additionalElevations")
}

func TestNormalize_AreaDefaults(t *testing.T) {
	raw := `{
		"areas": [
			{"squareFeet": 12000},
			{"id": "B", "name": "Annex", "buildingType": 16, "squareFeet": "4,500", "disciplines": {"arch": {"lod": 350, "scope": "Interior"}}}
		],
		"risks": []
	}`

	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, res.Config.Areas, 2)

	first := res.Config.Areas[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Area 1", first.Name)
	assert.Equal(t, quote.BuildingTypeDefault, first.BuildingType)
	assert.Equal(t, quote.DefaultDiscipline(), first.Disciplines[quote.DisciplineArchitecture])

	second := res.Config.Areas[1]
	assert.Equal(t, "B", second.ID)
	assert.Equal(t, quote.BuildingTypeACT, second.BuildingType)
	assert.True(t, second.SquareFeet.Equal(decimal.NewFromInt(4500)))
	arch := second.Disciplines[quote.DisciplineArchitecture]
	assert.True(t, arch.Enabled)
	assert.Equal(t, quote.LOD350, arch.LOD)
	assert.Equal(t, quote.ScopeInterior, arch.Scope)

	paths := defaultedPaths(res.Defaulted)
	assert.Contains(t, paths, "areas[0].id")
	assert.Contains(t, paths, "areas[0].disciplines")
	assert.Contains(t, paths, "areas[1].disciplines.architecture.enabled")
	assert.NotContains(t, paths, "risks")
}

func TestNormalize_RisksServicesTermsAndOverride(t *testing.T) {
	raw := `{
		"areas": [{"id": 7, "buildingType": "4", "squareFeet": 50000}],
		"travel": {"dispatchLocation": "Brooklyn", "distance": 21, "travelCost": 999},
		"risks": ["occupied", "No-Power", "asbestos"],
		"services": {"matterport": true, "additionalElevations": 15},
		"paymentTerms": "NET30",
		"totalPrice": 150000,
		"hubspotId": "ignored"
	}`

	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	cfg := res.Config

	assert.Equal(t, "7", cfg.Areas[0].ID)
	assert.Equal(t, quote.DispatchBrooklyn, cfg.Travel.DispatchLocation)
	assert.True(t, cfg.Travel.Distance.Equal(decimal.NewFromInt(21)))
	assert.Equal(t, quote.RiskConfig{Occupied: true, NoPower: true}, cfg.Risks)
	assert.True(t, cfg.Services.Matterport)
	assert.Equal(t, 15, cfg.Services.AdditionalElevations)
	assert.Equal(t, quote.PaymentTermsNet30, cfg.PaymentTerms)
	require.NotNil(t, cfg.ManualOverride)
	assert.True(t, cfg.ManualOverride.Equal(decimal.NewFromInt(150000)))

	assert.Contains(t, defaultedPaths(res.Defaulted), "risks[2]")

	res, err = Normalize([]byte(`{"services": {"additionalElevations": 2147483647}}`))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, res.Config.Services.AdditionalElevations)
}

func TestNormalize_RejectsNegativeValues(t *testing.T) {
	cases := []struct {
		raw   string
		field string
	}{
		{`{"areas": [{"squareFeet": -1}]}`, "areas[0].squareFeet"},
		{`{"areas": [{"acres": -0.5}]}`, "areas[0].acres"},
		{`{"travel": {"distance": -5}}`, "travel.distance"},
		{`{"services": {"additionalElevations": -2}}`, "services.additionalElevations"},
		{`{"services": {"additionalElevations": 2.5}}`, "services.additionalElevations"},
		{`{"services": {"additionalElevations": 1e20}}`, "services.additionalElevations"},
		{`{"services": {"additionalElevations": "2147483648"}}`, "services.additionalElevations"},
		{`{"services": {"matterport": true, "matterportSqft": -1}}`, "services.matterportSqft"},
		{`{"totalPrice": -10}`, "totalPrice"},
	}
	for _, tc := range cases {
		_, err := Normalize([]byte(tc.raw))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, tc.raw)
		assert.Equal(t, tc.field, ve.Field, tc.raw)
	}
}

func TestExportRoundTrip_ReproducesTotals(t *testing.T) {
	cfg := quote.NewConfiguration().AddArea().AddArea()
	cfg.Areas[0].BuildingType = "4"
	cfg.Areas[0].SquareFeet = decimal.NewFromInt(42000)
	cfg, err := cfg.EnableDiscipline("1", quote.DisciplineMEPF)
	require.NoError(t, err)
	cfg, err = cfg.SetMixedLODs("1", quote.DisciplineArchitecture, quote.LOD350, quote.LOD200)
	require.NoError(t, err)

	acres := decimal.RequireFromString("12.5")
	cfg.Areas[1].BuildingType = quote.BuildingTypeNaturalLandscape
	cfg.Areas[1].Acres = &acres
	cfg.Areas[2].BuildingType = quote.BuildingTypeMatterportOnly
	cfg.Areas[2].SquareFeet = decimal.NewFromInt(8000)
	cfg.Areas[2].Disciplines = map[quote.Discipline]quote.DisciplineConfig{}

	cfg = cfg.SetTravel(quote.DispatchBrooklyn, decimal.NewFromInt(35)).
		SetRisk(quote.RiskHazardous, true).
		SetServices(quote.ServicesConfig{Matterport: true, AdditionalElevations: 27}).
		SetPaymentTerms(quote.PaymentTermsNet60).
		SetOverride(decimal.NewFromInt(250000))

	raw, err := Export(cfg)
	require.NoError(t, err)

	res, err := Normalize(raw)
	require.NoError(t, err)
	assert.Empty(t, res.Defaulted)

	engine := pricing.NewDefault()
	want := engine.Calculate(cfg).Totals
	got := engine.Calculate(res.Config).Totals

	for name, pair := range map[string][2]decimal.Decimal{
		"areasTotal":      {want.AreasTotal, got.AreasTotal},
		"areasUpteamCost": {want.AreasUpteamCost, got.AreasUpteamCost},
		"travelTotal":     {want.TravelTotal, got.TravelTotal},
		"servicesTotal":   {want.ServicesTotal, got.ServicesTotal},
		"subtotal":        {want.Subtotal, got.Subtotal},
		"paymentPremium":  {want.PaymentPremium, got.PaymentPremium},
		"calculatedTotal": {want.CalculatedTotal, got.CalculatedTotal},
		"finalTotal":      {want.FinalTotal, got.FinalTotal},
	} {
		assert.True(t, pair[0].Equal(pair[1]), "%s: want %s, got %s", name, pair[0], pair[1])
	}
	assert.Equal(t, want.HasOverride, got.HasOverride)
}

func TestValidate_AcceptsDefaultConfiguration(t *testing.T) {
	assert.NoError(t, Validate(quote.NewConfiguration()))
}

package quote

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrAreaNotFound is returned by updates addressing an unknown area id.
var ErrAreaNotFound = errors.New("area not found")

// DefaultDiscipline is the discipline setup of a freshly created area.
func DefaultDiscipline() DisciplineConfig {
	return DisciplineConfig{Enabled: true, LOD: LOD300, Scope: ScopeFull}
}

// NewArea returns an area with architecture enabled at LOD 300, full scope.
func NewArea(id string) Area {
	return Area{
		ID:           id,
		Name:         "Area " + id,
		BuildingType: BuildingTypeDefault,
		SquareFeet:   decimal.Zero,
		Disciplines: map[Discipline]DisciplineConfig{
			DisciplineArchitecture: DefaultDiscipline(),
		},
	}
}

// NewConfiguration returns the starting configuration of a new quote.
func NewConfiguration() Configuration {
	return Configuration{
		Areas:        []Area{NewArea("1")},
		Travel:       TravelConfig{DispatchLocation: DispatchTroy, Distance: decimal.Zero},
		PaymentTerms: PaymentTermsStandard,
	}
}

// AddArea appends a default area with the next free numeric id.
func (c Configuration) AddArea() Configuration {
	out := c.Clone()
	next := 1
	for _, a := range out.Areas {
		if n, err := strconv.Atoi(a.ID); err == nil && n >= next {
			next = n + 1
		}
	}
	out.Areas = append(out.Areas, NewArea(strconv.Itoa(next)))
	return out
}

// RemoveArea drops the area with the given id.
func (c Configuration) RemoveArea(id string) (Configuration, error) {
	idx := c.areaIndex(id)
	if idx < 0 {
		return c, ErrAreaNotFound
	}
	out := c.Clone()
	out.Areas = append(out.Areas[:idx], out.Areas[idx+1:]...)
	return out, nil
}

// UpdateArea applies fn to a copy of the area with the given id.
func (c Configuration) UpdateArea(id string, fn func(*Area)) (Configuration, error) {
	idx := c.areaIndex(id)
	if idx < 0 {
		return c, ErrAreaNotFound
	}
	out := c.Clone()
	fn(&out.Areas[idx])
	return out, nil
}

// SetDiscipline replaces the configuration of d in an area.
func (c Configuration) SetDiscipline(areaID string, d Discipline, cfg DisciplineConfig) (Configuration, error) {
	return c.UpdateArea(areaID, func(a *Area) {
		if a.Disciplines == nil {
			a.Disciplines = make(map[Discipline]DisciplineConfig)
		}
		a.Disciplines[d] = cfg
	})
}

// EnableDiscipline turns d on, creating it with defaults when absent.
func (c Configuration) EnableDiscipline(areaID string, d Discipline) (Configuration, error) {
	return c.editDiscipline(areaID, d, func(cfg *DisciplineConfig) { cfg.Enabled = true })
}

// DisableDiscipline turns d off but keeps its settings.
func (c Configuration) DisableDiscipline(areaID string, d Discipline) (Configuration, error) {
	return c.editDiscipline(areaID, d, func(cfg *DisciplineConfig) { cfg.Enabled = false })
}

// SetLOD changes the LOD of d.
func (c Configuration) SetLOD(areaID string, d Discipline, lod LOD) (Configuration, error) {
	return c.editDiscipline(areaID, d, func(cfg *DisciplineConfig) { cfg.LOD = lod })
}

// SetScope changes the scope of d. Leaving mixed scope clears the mixed LODs.
func (c Configuration) SetScope(areaID string, d Discipline, scope Scope) (Configuration, error) {
	return c.editDiscipline(areaID, d, func(cfg *DisciplineConfig) {
		cfg.Scope = scope
		if scope != ScopeMixed {
			cfg.MixedInteriorLOD = ""
			cfg.MixedExteriorLOD = ""
		}
	})
}

// SetMixedLODs sets the interior and exterior LODs of a mixed-scope discipline.
func (c Configuration) SetMixedLODs(areaID string, d Discipline, interior, exterior LOD) (Configuration, error) {
	return c.editDiscipline(areaID, d, func(cfg *DisciplineConfig) {
		cfg.Scope = ScopeMixed
		cfg.MixedInteriorLOD = interior
		cfg.MixedExteriorLOD = exterior
	})
}

func (c Configuration) editDiscipline(areaID string, d Discipline, fn func(*DisciplineConfig)) (Configuration, error) {
	return c.UpdateArea(areaID, func(a *Area) {
		if a.Disciplines == nil {
			a.Disciplines = make(map[Discipline]DisciplineConfig)
		}
		cfg, ok := a.Disciplines[d]
		if !ok {
			cfg = DefaultDiscipline()
		}
		fn(&cfg)
		a.Disciplines[d] = cfg
	})
}

// SetRisk flags or clears a site risk.
func (c Configuration) SetRisk(r Risk, on bool) Configuration {
	out := c.Clone()
	out.Risks = out.Risks.With(r, on)
	return out
}

// SetTravel replaces the dispatch location and distance.
func (c Configuration) SetTravel(loc DispatchLocation, distance decimal.Decimal) Configuration {
	out := c.Clone()
	out.Travel = TravelConfig{DispatchLocation: loc, Distance: distance}
	return out
}

// SetServices replaces the add-on services.
func (c Configuration) SetServices(s ServicesConfig) Configuration {
	out := c.Clone()
	out.Services = s
	out.Services.MatterportSqft = cloneDecimal(s.MatterportSqft)
	return out
}

// SetPaymentTerms changes the payment terms code.
func (c Configuration) SetPaymentTerms(terms PaymentTerms) Configuration {
	out := c.Clone()
	out.PaymentTerms = terms
	return out
}

// SetOverride pins the final total to amount.
func (c Configuration) SetOverride(amount decimal.Decimal) Configuration {
	out := c.Clone()
	out.ManualOverride = &amount
	return out
}

// ClearOverride removes a manual final total.
func (c Configuration) ClearOverride() Configuration {
	out := c.Clone()
	out.ManualOverride = nil
	return out
}

func (c Configuration) areaIndex(id string) int {
	for i, a := range c.Areas {
		if a.ID == id {
			return i
		}
	}
	return -1
}

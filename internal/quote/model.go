// Package quote holds the configuration values a scan quote is priced from.
package quote

import (
	"github.com/shopspring/decimal"
)

// BuildingType is the building classification code of an area.
type BuildingType string

const (
	BuildingTypeDefault          BuildingType = "1"
	BuildingTypeBuiltLandscape   BuildingType = "14"
	BuildingTypeNaturalLandscape BuildingType = "15"
	BuildingTypeACT              BuildingType = "16"
	BuildingTypeMatterportOnly   BuildingType = "17"
)

// IsLandscape reports whether the area is priced per acre.
func (b BuildingType) IsLandscape() bool {
	return b == BuildingTypeBuiltLandscape || b == BuildingTypeNaturalLandscape
}

// Discipline is a modeling trade.
type Discipline string

const (
	DisciplineArchitecture Discipline = "architecture"
	DisciplineMEPF         Discipline = "mepf"
	DisciplineStructure    Discipline = "structure"
	DisciplineSite         Discipline = "site"
)

// Disciplines lists every known discipline in pricing order.
var Disciplines = []Discipline{
	DisciplineArchitecture,
	DisciplineMEPF,
	DisciplineStructure,
	DisciplineSite,
}

// Known reports whether d is one of the priced disciplines.
func (d Discipline) Known() bool {
	switch d {
	case DisciplineArchitecture, DisciplineMEPF, DisciplineStructure, DisciplineSite:
		return true
	default:
		return false
	}
}

// LOD is the level of development grade.
type LOD string

const (
	LOD200 LOD = "200"
	LOD300 LOD = "300"
	LOD350 LOD = "350"
)

// Known reports whether l is a supported grade.
func (l LOD) Known() bool {
	switch l {
	case LOD200, LOD300, LOD350:
		return true
	default:
		return false
	}
}

// Scope is the spatial portion of a building a discipline covers.
type Scope string

const (
	ScopeFull     Scope = "full"
	ScopeInterior Scope = "interior"
	ScopeExterior Scope = "exterior"
	ScopeMixed    Scope = "mixed"
)

// Known reports whether s is a supported scope.
func (s Scope) Known() bool {
	switch s {
	case ScopeFull, ScopeInterior, ScopeExterior, ScopeMixed:
		return true
	default:
		return false
	}
}

// DisciplineConfig describes how one discipline is modeled in an area.
// The mixed LOD fields are only read when Scope is ScopeMixed; empty means unset.
type DisciplineConfig struct {
	Enabled          bool  `json:"enabled"`
	LOD              LOD   `json:"lod"`
	Scope            Scope `json:"scope"`
	MixedInteriorLOD LOD   `json:"mixedInteriorLod,omitempty"`
	MixedExteriorLOD LOD   `json:"mixedExteriorLod,omitempty"`
}

// Area is one priced portion of a project.
type Area struct {
	ID           string                          `json:"id"`
	Name         string                          `json:"name"`
	BuildingType BuildingType                    `json:"buildingType"`
	SquareFeet   decimal.Decimal                 `json:"squareFeet"`
	Acres        *decimal.Decimal                `json:"acres,omitempty"`
	Disciplines  map[Discipline]DisciplineConfig `json:"disciplines"`

	// Computed by the pricing engine.
	ClientPrice decimal.Decimal `json:"clientPrice"`
	UpteamCost  decimal.Decimal `json:"upteamCost"`
}

// Discipline returns the configuration for d and whether it is present.
func (a Area) Discipline(d Discipline) (DisciplineConfig, bool) {
	cfg, ok := a.Disciplines[d]
	return cfg, ok
}

// DispatchLocation is the office a scan crew travels from.
type DispatchLocation string

const (
	DispatchTroy      DispatchLocation = "troy"
	DispatchWoodstock DispatchLocation = "woodstock"
	DispatchBoise     DispatchLocation = "boise"
	DispatchBrooklyn  DispatchLocation = "brooklyn"
	DispatchFlyOut    DispatchLocation = "fly_out"
)

// Known reports whether l is a staffed dispatch location.
func (l DispatchLocation) Known() bool {
	switch l {
	case DispatchTroy, DispatchWoodstock, DispatchBoise, DispatchBrooklyn, DispatchFlyOut:
		return true
	default:
		return false
	}
}

// TravelConfig describes where the crew comes from and how far it travels.
type TravelConfig struct {
	DispatchLocation DispatchLocation `json:"dispatchLocation"`
	Distance         decimal.Decimal  `json:"distance"`

	// Computed by the pricing engine.
	TravelCost decimal.Decimal `json:"travelCost"`
	ScanDayFee decimal.Decimal `json:"scanDayFee"`
}

// Risk names an adverse site condition.
type Risk string

const (
	RiskOccupied  Risk = "occupied"
	RiskHazardous Risk = "hazardous"
	RiskNoPower   Risk = "no_power"
)

// Risks lists every risk in display order.
var Risks = []Risk{RiskOccupied, RiskHazardous, RiskNoPower}

// RiskConfig holds the independent site risk flags.
type RiskConfig struct {
	Occupied  bool `json:"occupied"`
	Hazardous bool `json:"hazardous"`
	NoPower   bool `json:"noPower"`
}

// Has reports whether r is flagged.
func (rc RiskConfig) Has(r Risk) bool {
	switch r {
	case RiskOccupied:
		return rc.Occupied
	case RiskHazardous:
		return rc.Hazardous
	case RiskNoPower:
		return rc.NoPower
	default:
		return false
	}
}

// With returns a copy with r set to on. Unknown risks are ignored.
func (rc RiskConfig) With(r Risk, on bool) RiskConfig {
	switch r {
	case RiskOccupied:
		rc.Occupied = on
	case RiskHazardous:
		rc.Hazardous = on
	case RiskNoPower:
		rc.NoPower = on
	}
	return rc
}

// Active returns the flagged risks in display order.
func (rc RiskConfig) Active() []Risk {
	active := make([]Risk, 0, len(Risks))
	for _, r := range Risks {
		if rc.Has(r) {
			active = append(active, r)
		}
	}
	return active
}

// ServicesConfig holds add-on services.
type ServicesConfig struct {
	Matterport           bool             `json:"matterport"`
	MatterportSqft       *decimal.Decimal `json:"matterportSqft,omitempty"`
	AdditionalElevations int              `json:"additionalElevations"`
}

// PaymentTerms is the payment terms code of a quote.
type PaymentTerms string

const (
	PaymentTermsStandard PaymentTerms = "standard"
	PaymentTermsPartner  PaymentTerms = "partner"
	PaymentTermsOwner    PaymentTerms = "owner"
	PaymentTermsNet15    PaymentTerms = "net15"
	PaymentTermsNet30    PaymentTerms = "net30"
	PaymentTermsNet45    PaymentTerms = "net45"
	PaymentTermsNet60    PaymentTerms = "net60"
	PaymentTermsNet90    PaymentTerms = "net90"
)

// Configuration is the complete input of a quote calculation.
type Configuration struct {
	Areas          []Area           `json:"areas"`
	Travel         TravelConfig     `json:"travel"`
	Risks          RiskConfig       `json:"risks"`
	Services       ServicesConfig   `json:"services"`
	PaymentTerms   PaymentTerms     `json:"paymentTerms"`
	ManualOverride *decimal.Decimal `json:"manualOverride,omitempty"`
}

// TotalSquareFeet sums the raw square footage of every area.
func (c Configuration) TotalSquareFeet() decimal.Decimal {
	total := decimal.Zero
	for _, a := range c.Areas {
		total = total.Add(a.SquareFeet)
	}
	return total
}

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	out := c
	out.Areas = make([]Area, len(c.Areas))
	for i, a := range c.Areas {
		out.Areas[i] = a.clone()
	}
	out.Services.MatterportSqft = cloneDecimal(c.Services.MatterportSqft)
	out.ManualOverride = cloneDecimal(c.ManualOverride)
	return out
}

func (a Area) clone() Area {
	out := a
	out.Acres = cloneDecimal(a.Acres)
	if a.Disciplines != nil {
		out.Disciplines = make(map[Discipline]DisciplineConfig, len(a.Disciplines))
		for k, v := range a.Disciplines {
			out.Disciplines[k] = v
		}
	}
	return out
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

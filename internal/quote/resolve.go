package quote

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Defaulted records one value that was filled in or replaced while resolving.
type Defaulted struct {
	Path string `json:"path"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (d Defaulted) String() string {
	return fmt.Sprintf("%s: %q -> %q", d.Path, d.From, d.To)
}

// Resolved is a configuration with every implicit default materialised.
type Resolved struct {
	Config    Configuration
	Defaulted []Defaulted
}

// Resolve returns a copy of c in which every enum holds a supported value and
// every count is non-negative. Each substitution is reported in Defaulted.
// Pricing always runs on a resolved configuration.
func Resolve(c Configuration) Resolved {
	r := resolver{}
	out := c.Clone()

	for i := range out.Areas {
		r.area(i, &out.Areas[i])
	}

	if !out.Travel.DispatchLocation.Known() {
		r.note("travel.dispatchLocation", string(out.Travel.DispatchLocation), string(DispatchTroy))
		out.Travel.DispatchLocation = DispatchTroy
	}
	if out.Travel.Distance.IsNegative() {
		r.note("travel.distance", out.Travel.Distance.String(), "0")
		out.Travel.Distance = decimal.Zero
	}

	if out.Services.AdditionalElevations < 0 {
		r.note("services.additionalElevations", strconv.Itoa(out.Services.AdditionalElevations), "0")
		out.Services.AdditionalElevations = 0
	}
	if sqft := out.Services.MatterportSqft; sqft != nil && sqft.IsNegative() {
		r.note("services.matterportSqft", sqft.String(), "")
		out.Services.MatterportSqft = nil
	}

	if out.PaymentTerms == "" {
		r.note("paymentTerms", "", string(PaymentTermsStandard))
		out.PaymentTerms = PaymentTermsStandard
	}

	return Resolved{Config: out, Defaulted: r.defaulted}
}

type resolver struct {
	defaulted []Defaulted
}

func (r *resolver) note(path, from, to string) {
	r.defaulted = append(r.defaulted, Defaulted{Path: path, From: from, To: to})
}

func (r *resolver) area(idx int, a *Area) {
	prefix := fmt.Sprintf("areas[%d]", idx)

	if a.ID == "" {
		a.ID = strconv.Itoa(idx + 1)
		r.note(prefix+".id", "", a.ID)
	}
	if a.Name == "" {
		a.Name = "Area " + a.ID
		r.note(prefix+".name", "", a.Name)
	}
	if a.BuildingType == "" {
		a.BuildingType = BuildingTypeDefault
		r.note(prefix+".buildingType", "", string(a.BuildingType))
	}
	if a.SquareFeet.IsNegative() {
		r.note(prefix+".squareFeet", a.SquareFeet.String(), "0")
		a.SquareFeet = decimal.Zero
	}
	if a.Acres != nil && a.Acres.IsNegative() {
		r.note(prefix+".acres", a.Acres.String(), "")
		a.Acres = nil
	}

	keys := lo.Keys(a.Disciplines)
	slices.Sort(keys)
	for _, d := range keys {
		path := fmt.Sprintf("%s.disciplines.%s", prefix, d)
		if !d.Known() {
			r.note(path, string(d), "")
			delete(a.Disciplines, d)
			continue
		}
		a.Disciplines[d] = r.discipline(path, a.Disciplines[d])
	}
}

func (r *resolver) discipline(path string, cfg DisciplineConfig) DisciplineConfig {
	if !cfg.LOD.Known() {
		r.note(path+".lod", string(cfg.LOD), string(LOD300))
		cfg.LOD = LOD300
	}
	if !cfg.Scope.Known() {
		r.note(path+".scope", string(cfg.Scope), string(ScopeFull))
		cfg.Scope = ScopeFull
	}

	if cfg.Scope != ScopeMixed {
		if cfg.MixedInteriorLOD != "" || cfg.MixedExteriorLOD != "" {
			r.note(path+".mixedLod", string(cfg.MixedInteriorLOD)+"/"+string(cfg.MixedExteriorLOD), "")
		}
		cfg.MixedInteriorLOD = ""
		cfg.MixedExteriorLOD = ""
		return cfg
	}

	if !cfg.MixedInteriorLOD.Known() {
		r.note(path+".mixedInteriorLod", string(cfg.MixedInteriorLOD), string(cfg.LOD))
		cfg.MixedInteriorLOD = cfg.LOD
	}
	if !cfg.MixedExteriorLOD.Known() {
		r.note(path+".mixedExteriorLod", string(cfg.MixedExteriorLOD), string(cfg.LOD))
		cfg.MixedExteriorLOD = cfg.LOD
	}
	return cfg
}

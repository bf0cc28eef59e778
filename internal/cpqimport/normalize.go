// Package cpqimport maps external CPQ JSON exports to quote configurations
// and back. It has no side effects; applying a result is up to the caller.
package cpqimport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/quote"
)

// Result is a normalized export.
type Result struct {
	Config    quote.Configuration
	Defaulted []quote.Defaulted
}

var disciplineAliases = map[string]quote.Discipline{
	"arch":         quote.DisciplineArchitecture,
	"architecture": quote.DisciplineArchitecture,
	"mep":          quote.DisciplineMEPF,
	"mepf":         quote.DisciplineMEPF,
	"struct":       quote.DisciplineStructure,
	"structural":   quote.DisciplineStructure,
	"structure":    quote.DisciplineStructure,
	"site":         quote.DisciplineSite,
	"grade":        quote.DisciplineSite,
}

// Normalize parses a CPQ export. Malformed JSON is a *ValidationError; it is
// never defaulted. Every absent optional field is defaulted independently and
// reported in Result.Defaulted.
func Normalize(raw []byte) (Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Result{}, &ValidationError{Reason: "expected a JSON object"}
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Result{}, &ValidationError{Reason: "malformed JSON", Cause: err}
	}

	n := &normalizer{}
	cfg, err := n.configuration(doc)
	if err != nil {
		return Result{}, err
	}
	if err := Validate(cfg); err != nil {
		return Result{}, err
	}
	return Result{Config: cfg, Defaulted: n.defaulted}, nil
}

type normalizer struct {
	defaulted []quote.Defaulted
}

func (n *normalizer) note(path, to string) {
	n.defaulted = append(n.defaulted, quote.Defaulted{Path: path, To: to})
}

func (n *normalizer) configuration(doc document) (quote.Configuration, error) {
	cfg := quote.Configuration{
		Areas: make([]quote.Area, 0, len(doc.Areas)),
	}

	if doc.Areas == nil {
		n.note("areas", "[]")
	}
	for i, ad := range doc.Areas {
		cfg.Areas = append(cfg.Areas, n.area(i, ad))
	}

	cfg.Travel = n.travel(doc.Travel)
	cfg.Risks = n.risks(doc.Risks)

	services, err := n.services(doc.Services)
	if err != nil {
		return quote.Configuration{}, err
	}
	cfg.Services = services

	cfg.PaymentTerms = quote.PaymentTerms(strings.ToLower(strings.TrimSpace(doc.PaymentTerms)))
	if cfg.PaymentTerms == "" {
		cfg.PaymentTerms = quote.PaymentTermsStandard
		n.note("paymentTerms", string(cfg.PaymentTerms))
	}

	if doc.TotalPrice != nil {
		override := doc.TotalPrice.Decimal
		cfg.ManualOverride = &override
	}
	return cfg, nil
}

func (n *normalizer) area(idx int, ad areaDoc) quote.Area {
	prefix := fmt.Sprintf("areas[%d]", idx)
	a := quote.Area{
		ID:           string(ad.ID),
		Name:         strings.TrimSpace(ad.Name),
		BuildingType: quote.BuildingType(ad.BuildingType),
	}

	if a.ID == "" {
		a.ID = strconv.Itoa(idx + 1)
		n.note(prefix+".id", a.ID)
	}
	if a.Name == "" {
		a.Name = "Area " + a.ID
		n.note(prefix+".name", a.Name)
	}
	if a.BuildingType == "" {
		a.BuildingType = quote.BuildingTypeDefault
		n.note(prefix+".buildingType", string(a.BuildingType))
	}

	if ad.SquareFeet != nil {
		a.SquareFeet = ad.SquareFeet.Decimal
	} else {
		n.note(prefix+".squareFeet", "0")
	}
	if ad.Acres != nil {
		acres := ad.Acres.Decimal
		a.Acres = &acres
	}

	if ad.Disciplines == nil {
		a.Disciplines = map[quote.Discipline]quote.DisciplineConfig{
			quote.DisciplineArchitecture: quote.DefaultDiscipline(),
		}
		n.note(prefix+".disciplines", "architecture LOD 300 full")
		return a
	}

	a.Disciplines = make(map[quote.Discipline]quote.DisciplineConfig, len(ad.Disciplines))
	for key, dd := range ad.Disciplines {
		name := strings.ToLower(strings.TrimSpace(key))
		d, ok := disciplineAliases[name]
		if !ok {
			d = quote.Discipline(name)
		}
		a.Disciplines[d] = n.discipline(fmt.Sprintf("%s.disciplines.%s", prefix, d), dd)
	}
	return a
}

func (n *normalizer) discipline(path string, dd disciplineDoc) quote.DisciplineConfig {
	cfg := quote.DisciplineConfig{
		Enabled:          true,
		LOD:              quote.LOD(dd.LOD),
		Scope:            quote.Scope(strings.ToLower(strings.TrimSpace(dd.Scope))),
		MixedInteriorLOD: quote.LOD(dd.MixedInteriorLOD),
		MixedExteriorLOD: quote.LOD(dd.MixedExteriorLOD),
	}
	if dd.Enabled != nil {
		cfg.Enabled = *dd.Enabled
	} else {
		n.note(path+".enabled", "true")
	}
	if cfg.LOD == "" {
		cfg.LOD = quote.LOD300
		n.note(path+".lod", string(cfg.LOD))
	}
	if cfg.Scope == "" {
		cfg.Scope = quote.ScopeFull
		n.note(path+".scope", string(cfg.Scope))
	}
	return cfg
}

func (n *normalizer) travel(td *travelDoc) quote.TravelConfig {
	cfg := quote.TravelConfig{DispatchLocation: quote.DispatchTroy, Distance: decimal.Zero}
	if td == nil {
		n.note("travel", "troy, 0 mi")
		return cfg
	}

	loc := strings.ToLower(strings.TrimSpace(td.DispatchLocation))
	loc = strings.NewReplacer("-", "_", " ", "_").Replace(loc)
	if loc != "" {
		cfg.DispatchLocation = quote.DispatchLocation(loc)
	} else {
		n.note("travel.dispatchLocation", string(cfg.DispatchLocation))
	}

	if td.Distance != nil {
		cfg.Distance = td.Distance.Decimal
	} else {
		n.note("travel.distance", "0")
	}
	return cfg
}

func (n *normalizer) risks(names []string) quote.RiskConfig {
	var rc quote.RiskConfig
	if names == nil {
		n.note("risks", "none")
		return rc
	}
	for i, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		name = strings.NewReplacer("-", "_", " ", "_").Replace(name)
		r := quote.Risk(name)
		switch r {
		case quote.RiskOccupied, quote.RiskHazardous, quote.RiskNoPower:
			rc = rc.With(r, true)
		default:
			n.defaulted = append(n.defaulted, quote.Defaulted{Path: fmt.Sprintf("risks[%d]", i), From: raw})
		}
	}
	return rc
}

func (n *normalizer) services(sd *servicesDoc) (quote.ServicesConfig, error) {
	var cfg quote.ServicesConfig
	if sd == nil {
		n.note("services.additionalElevations", "0")
		return cfg, nil
	}

	cfg.Matterport = sd.Matterport
	if sd.MatterportSqft != nil {
		sqft := sd.MatterportSqft.Decimal
		cfg.MatterportSqft = &sqft
	}

	if sd.AdditionalElevations == nil {
		n.note("services.additionalElevations", "0")
		return cfg, nil
	}
	count := sd.AdditionalElevations.Decimal
	if !count.IsInteger() {
		return cfg, &ValidationError{Field: "services.additionalElevations", Reason: "must be a whole number"}
	}
	if count.GreaterThan(maxElevations) {
		return cfg, &ValidationError{Field: "services.additionalElevations", Reason: "must not exceed " + maxElevations.String()}
	}
	cfg.AdditionalElevations = int(count.IntPart())
	return cfg, nil
}

var maxElevations = decimal.NewFromInt(math.MaxInt32)

var errNegative = errors.New("must not be negative")

func nonNegative(value interface{}) error {
	switch v := value.(type) {
	case decimal.Decimal:
		if v.IsNegative() {
			return errNegative
		}
	case *decimal.Decimal:
		if v != nil && v.IsNegative() {
			return errNegative
		}
	}
	return nil
}

// Validate checks the numeric invariants of a configuration: square footage,
// acreage, distance, elevations, Matterport footage and override are never
// negative. Enum values are not checked; pricing defaults unknown codes.
func Validate(cfg quote.Configuration) error {
	for i := range cfg.Areas {
		a := cfg.Areas[i]
		err := validation.ValidateStruct(&a,
			validation.Field(&a.SquareFeet, validation.By(nonNegative)),
			validation.Field(&a.Acres, validation.By(nonNegative)),
		)
		if err != nil {
			return fromValidation(fmt.Sprintf("areas[%d]", i), err)
		}
	}

	travel := cfg.Travel
	if err := validation.ValidateStruct(&travel,
		validation.Field(&travel.Distance, validation.By(nonNegative)),
	); err != nil {
		return fromValidation("travel", err)
	}

	services := cfg.Services
	if err := validation.ValidateStruct(&services,
		validation.Field(&services.AdditionalElevations, validation.Min(0)),
		validation.Field(&services.MatterportSqft, validation.By(nonNegative)),
	); err != nil {
		return fromValidation("services", err)
	}

	if err := validation.Validate(cfg.ManualOverride, validation.By(nonNegative)); err != nil {
		return &ValidationError{Field: "totalPrice", Reason: err.Error()}
	}
	return nil
}

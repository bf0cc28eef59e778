package cpqimport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// document is the CPQ export wire shape. Pointer and nil-able fields
// distinguish "absent" from "zero".
type document struct {
	Areas        []areaDoc    `json:"areas,omitempty"`
	Travel       *travelDoc   `json:"travel,omitempty"`
	Risks        []string     `json:"risks"`
	Services     *servicesDoc `json:"services,omitempty"`
	PaymentTerms string       `json:"paymentTerms,omitempty"`
	TotalPrice   *number      `json:"totalPrice,omitempty"`
}

type areaDoc struct {
	ID           code                     `json:"id,omitempty"`
	Name         string                   `json:"name,omitempty"`
	BuildingType code                     `json:"buildingType,omitempty"`
	SquareFeet   *number                  `json:"squareFeet,omitempty"`
	Acres        *number                  `json:"acres,omitempty"`
	Disciplines  map[string]disciplineDoc `json:"disciplines"`
}

type disciplineDoc struct {
	Enabled          *bool  `json:"enabled,omitempty"`
	LOD              code   `json:"lod,omitempty"`
	Scope            string `json:"scope,omitempty"`
	MixedInteriorLOD code   `json:"mixedInteriorLod,omitempty"`
	MixedExteriorLOD code   `json:"mixedExteriorLod,omitempty"`
}

type travelDoc struct {
	DispatchLocation string  `json:"dispatchLocation,omitempty"`
	Distance         *number `json:"distance,omitempty"`
}

type servicesDoc struct {
	Matterport           bool    `json:"matterport"`
	MatterportSqft       *number `json:"matterportSqft,omitempty"`
	AdditionalElevations *number `json:"additionalElevations,omitempty"`
}

// number is a decimal that accepts JSON numbers or numeric strings and
// always writes a bare JSON number.
type number struct {
	decimal.Decimal
}

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return fmt.Errorf("expected a number, got %s", b)
	}
	n.Decimal = v
	return nil
}

func newNumber(d decimal.Decimal) *number {
	return &number{Decimal: d}
}

// code is an enum value exported either as a string or a number ("300" or 300).
type code string

func (c *code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = code(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", b)
	}
	*c = code(n.String())
	return nil
}

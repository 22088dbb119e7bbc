// Package sync reconciles catalogue rows from the national Palissy open
// data API with the persisted objets and edifices. Each row yields one
// tagged decision which is applied in its own transaction.
package sync

import (
	"encoding/json"
	"fmt"
	"strings"

	"patrimoine_backend/internal/objets/domain"
	"patrimoine_backend/platform/apperr"
)

// FlexString accepts a JSON string or an array of strings, keeping the
// first element. The catalogue serves INSEE both ways depending on the
// notice's history.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or string array, got %s", data)
	}
	if len(list) > 0 {
		*f = FlexString(list[0])
	} else {
		*f = ""
	}
	return nil
}

// FlexStrings accepts a JSON string or an array of strings as a list.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = nil
		} else {
			*f = FlexStrings{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or string array, got %s", data)
	}
	*f = FlexStrings(list)
	return nil
}

// Row is one catalogue notice in the Palissy field naming.
type Row struct {
	Ref         string      `json:"REF"`
	Tico        string      `json:"TICO"`
	Prot        string      `json:"PROT"`
	Scle        FlexString  `json:"SCLE"`
	Cate        FlexStrings `json:"CATE"`
	Deno        FlexStrings `json:"DENO"`
	Com         string      `json:"COM"`
	Insee       FlexString  `json:"INSEE"`
	Dpt         string      `json:"DPT"`
	Edif        string      `json:"EDIF"`
	Refa        string      `json:"REFA"`
	Empl        string      `json:"EMPL"`
	Coordinates []float64   `json:"POP_COORDONNEES,omitempty"`
	Photos      FlexStrings `json:"VIDEO"`
}

// Validate checks the mandatory identifying field. A row without a REF
// cannot be matched to anything and is fatal for that row.
func (r Row) Validate() error {
	if strings.TrimSpace(r.Ref) == "" {
		return apperr.MalformedInput("catalogue row has no REF")
	}
	return nil
}

// CodeInsee returns the normalized location code, empty when the notice
// carries none.
func (r Row) CodeInsee() string {
	return strings.TrimSpace(string(r.Insee))
}

// OutOfScope reports whether the row's protection status excludes it
// from synchronization.
func (r Row) OutOfScope() bool {
	return domain.OutOfScopeProtection(r.Prot)
}

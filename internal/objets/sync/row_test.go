package sync

import (
	"encoding/json"
	"testing"

	"patrimoine_backend/platform/apperr"
)

func TestRowDecodeInseeVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"scalar", `{"REF":"PM1","INSEE":"51019"}`, "51019"},
		{"array takes first", `{"REF":"PM1","INSEE":["51019","51454"]}`, "51019"},
		{"empty array", `{"REF":"PM1","INSEE":[]}`, ""},
		{"absent", `{"REF":"PM1"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row Row
			if err := json.Unmarshal([]byte(tt.body), &row); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := row.CodeInsee(); got != tt.want {
				t.Errorf("CodeInsee() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowDecodeListVariants(t *testing.T) {
	var row Row
	body := `{"REF":"PM1","CATE":"bois","DENO":["statue","socle"]}`
	if err := json.Unmarshal([]byte(body), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(row.Cate) != 1 || row.Cate[0] != "bois" {
		t.Errorf("Cate = %v, want [bois]", row.Cate)
	}
	if len(row.Deno) != 2 || row.Deno[0] != "statue" {
		t.Errorf("Deno = %v, want [statue socle]", row.Deno)
	}
}

func TestRowDecodeRejectsOtherShapes(t *testing.T) {
	var row Row
	if err := json.Unmarshal([]byte(`{"REF":"PM1","INSEE":51019}`), &row); err == nil {
		t.Error("expected error for numeric INSEE")
	}
}

func TestRowValidate(t *testing.T) {
	if err := (Row{Ref: "PM1"}).Validate(); err != nil {
		t.Errorf("valid row rejected: %v", err)
	}
	err := (Row{Ref: "  "}).Validate()
	if apperr.GetKind(err) != apperr.KindMalformedInput {
		t.Errorf("kind = %v, want KindMalformedInput", apperr.GetKind(err))
	}
}

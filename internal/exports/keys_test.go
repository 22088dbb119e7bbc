package exports

import (
	"strings"
	"testing"

	dashboardrepo "patrimoine_backend/internal/dashboard/repository"
)

func TestGenerateAPIKey(t *testing.T) {
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(plaintext, apiKeyPrefix) {
		t.Errorf("plaintext %q missing prefix %q", plaintext, apiKeyPrefix)
	}
	if prefix != plaintext[:12] {
		t.Errorf("display prefix = %q, want first 12 chars of the key", prefix)
	}
	if hash != HashKey(plaintext) {
		t.Error("stored hash does not match HashKey of the plaintext")
	}
	if hash == plaintext {
		t.Error("hash equals plaintext")
	}
}

func TestGeneratedKeysDiffer(t *testing.T) {
	a, _, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	b, _, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two generated keys are identical")
	}
}

func TestCommuneCSVRow(t *testing.T) {
	status := "submitted"
	row := communeCSV(dashboardrepo.CommuneRow{
		CodeInsee:     "21231",
		Nom:           "Dijon",
		Status:        "completed",
		StatutGlobal:  2,
		ObjetsCount:   14,
		EnPerilCount:  1,
		DisparusCount: 2,
		DossierStatus: &status,
	})
	if len(row) != 10 {
		t.Fatalf("row has %d fields, want 10", len(row))
	}
	if row[0] != "21231" || row[1] != "Dijon" {
		t.Errorf("unexpected identity fields %q %q", row[0], row[1])
	}
	if row[7] != "submitted" {
		t.Errorf("dossier status = %q", row[7])
	}
}

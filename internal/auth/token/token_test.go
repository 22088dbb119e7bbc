package token

import "testing"

func TestGenerateRandomIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateRandom(48)
		if err != nil {
			t.Fatalf("GenerateRandom: %v", err)
		}
		if tok == "" {
			t.Fatal("empty token")
		}
		if seen[tok] {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = true
	}
}

func TestHashSHA256IsStable(t *testing.T) {
	a := HashSHA256("refresh-token")
	b := HashSHA256("refresh-token")
	if a != b {
		t.Error("same input produced different digests")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
	if HashSHA256("other") == a {
		t.Error("different inputs produced the same digest")
	}
}

package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("s3cret-mairie")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret-mairie" {
		t.Fatal("hash equals plaintext")
	}

	if err := Compare(hash, "s3cret-mairie"); err != nil {
		t.Errorf("Compare rejected the correct password: %v", err)
	}
	if err := Compare(hash, "wrong"); err == nil {
		t.Error("Compare accepted a wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := Hash("same-input")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Hash("same-input")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical")
	}
}

package repository

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Every transition touching a commune and its dossier must take the
// commune lock first. Mixed orderings across concurrent transitions on
// the same pair deadlock at the store instead of serializing.
func TestTransitionsLockCommuneBeforeDossier(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve current file path")
	}
	content, err := os.ReadFile(filepath.Join(filepath.Dir(thisFile), "workflow.go"))
	if err != nil {
		t.Fatalf("failed to read workflow.go: %v", err)
	}
	src := string(content)

	for _, name := range []string{
		"Complete",
		"ReturnToStarted",
		"ReturnDossierToConstruction",
		"ArchiveDossier",
		"ArchiveAndReset",
	} {
		body := methodBody(t, src, name)
		communeAt := strings.Index(body, "lockCommune(")
		if communeAt == -1 {
			t.Errorf("%s does not lock the commune row", name)
			continue
		}
		for _, dossierCall := range []string{"lockDossier(", "lockCurrentDossier(", "archiveDossierTx("} {
			if at := strings.Index(body, dossierCall); at != -1 && at < communeAt {
				t.Errorf("%s reaches %s before lockCommune", name, dossierCall)
			}
		}
	}
}

func methodBody(t *testing.T, src, name string) string {
	t.Helper()
	marker := "func (r *Repo) " + name + "("
	start := strings.Index(src, marker)
	if start == -1 {
		t.Fatalf("method %s not found in workflow.go", name)
	}
	rest := src[start+len(marker):]
	if end := strings.Index(rest, "\nfunc "); end != -1 {
		rest = rest[:end]
	}
	return rest
}

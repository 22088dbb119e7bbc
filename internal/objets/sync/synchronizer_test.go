package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"patrimoine_backend/internal/objets/repository"
	"patrimoine_backend/platform/apperr"
	"patrimoine_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	lookup  repository.LookupResult
	applied []repository.Applyable
	reports []repository.SyncReportRecord
	fail    error
}

func (f *fakeRepo) LookupContext(ctx context.Context, palissyRef, merimeeRef, edificeSlug, codeInsee string) (repository.LookupResult, error) {
	if f.fail != nil {
		return repository.LookupResult{}, f.fail
	}
	return f.lookup, nil
}

func (f *fakeRepo) Apply(ctx context.Context, d repository.Applyable) error {
	f.applied = append(f.applied, d)
	return nil
}

func (f *fakeRepo) SaveSyncReport(ctx context.Context, rec repository.SyncReportRecord) (uuid.UUID, error) {
	f.reports = append(f.reports, rec)
	return uuid.New(), nil
}

func testSynchronizer(repo repository.Repository) *Synchronizer {
	return NewSynchronizer(repo, nil, 1, logger.New("development"))
}

func TestReconcileRowCreates(t *testing.T) {
	repo := &fakeRepo{lookup: repository.LookupResult{CommuneExists: true}}
	s := testSynchronizer(repo)

	decision, err := s.ReconcileRow(context.Background(), catalogueRow())
	if err != nil {
		t.Fatalf("ReconcileRow: %v", err)
	}
	if decision.Action != ActionCreate {
		t.Fatalf("action = %s, want %s", decision.Action, ActionCreate)
	}
	if len(repo.applied) != 1 {
		t.Fatalf("applied %d decisions, want 1", len(repo.applied))
	}
	if !repo.applied[0].Creating {
		t.Error("expected a creating applyable")
	}
	if repo.applied[0].PalissyRef != "PM51001253" {
		t.Errorf("ref = %s", repo.applied[0].PalissyRef)
	}
}

func TestReconcileRowNotChangedSkipsWrite(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)
	repo := &fakeRepo{lookup: repository.LookupResult{Persisted: persisted, CommuneExists: true}}
	s := testSynchronizer(repo)

	decision, err := s.ReconcileRow(context.Background(), row)
	if err != nil {
		t.Fatalf("ReconcileRow: %v", err)
	}
	if decision.Action != ActionNotChanged {
		t.Fatalf("action = %s, want %s", decision.Action, ActionNotChanged)
	}
	if len(repo.applied) != 0 {
		t.Errorf("applied %d decisions, want 0", len(repo.applied))
	}
}

func TestReconcileRowRejectsMissingRef(t *testing.T) {
	s := testSynchronizer(&fakeRepo{})
	_, err := s.ReconcileRow(context.Background(), Row{Tico: "statue"})
	if apperr.GetKind(err) != apperr.KindMalformedInput {
		t.Errorf("kind = %v, want KindMalformedInput", apperr.GetKind(err))
	}
}

func TestReconcileRowCascadePassesReason(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)
	row.Insee = "51454"
	row.Com = "Reims"
	repo := &fakeRepo{lookup: repository.LookupResult{Persisted: persisted, CommuneExists: true}}
	s := testSynchronizer(repo)

	decision, err := s.ReconcileRow(context.Background(), row)
	if err != nil {
		t.Fatalf("ReconcileRow: %v", err)
	}
	if decision.Action != ActionUpdateWithCommuneChange {
		t.Fatalf("action = %s", decision.Action)
	}
	if len(repo.applied) != 1 || !repo.applied[0].CascadeDeleteRecensements {
		t.Fatal("expected a cascading applyable")
	}
	if repo.applied[0].CascadeReason == "" {
		t.Error("cascade reason must be recorded on deleted recensements")
	}
	if repo.applied[0].ObjetID != persisted.ID {
		t.Errorf("objet id = %s, want %s", repo.applied[0].ObjetID, persisted.ID)
	}
}

func TestReportCounters(t *testing.T) {
	report := NewReport()
	report.Count(ActionCreate)
	report.Count(ActionCreate)
	report.Count(ActionNotChanged)
	report.CountFailure()

	summary := report.Summarize()
	if summary.Counters[string(ActionCreate)] != 2 {
		t.Errorf("create counter = %d, want 2", summary.Counters[string(ActionCreate)])
	}
	if summary.Failures != 1 {
		t.Errorf("failures = %d, want 1", summary.Failures)
	}
	if summary.Total != 4 {
		t.Errorf("total = %d, want 4", summary.Total)
	}
}

func TestReconcileRowLookupFailureSurfaces(t *testing.T) {
	repo := &fakeRepo{fail: errors.New("store down")}
	s := testSynchronizer(repo)
	if _, err := s.ReconcileRow(context.Background(), catalogueRow()); err == nil {
		t.Fatal("expected lookup error")
	}
}

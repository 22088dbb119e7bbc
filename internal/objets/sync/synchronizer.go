package sync

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"patrimoine_backend/internal/objets/domain"
	"patrimoine_backend/internal/objets/repository"
	"patrimoine_backend/platform/logger"
)

const defaultWorkerCount = 4

// cascadeReason is recorded on recensements soft-deleted because their
// objet moved to another commune.
const cascadeReason = "objet relocated by catalogue synchronization"

// Synchronizer runs batch reconciliation of catalogue rows against the
// store. Each row is decided and applied independently; a failing row is
// counted and never aborts the batch.
type Synchronizer struct {
	repo    repository.Repository
	client  *Client
	log     *logger.Logger
	workers int
}

// NewSynchronizer creates a batch synchronizer with bounded workers.
func NewSynchronizer(repo repository.Repository, client *Client, workers int, log *logger.Logger) *Synchronizer {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	return &Synchronizer{repo: repo, client: client, log: log, workers: workers}
}

// RunDepartement reconciles every catalogue notice of a departement and
// persists the batch summary. Only infrastructure failures (catalogue
// unreachable, context cancelled) abort the run.
func (s *Synchronizer) RunDepartement(ctx context.Context, departementCode string) (Summary, error) {
	report := NewReport()
	rows := make(chan Row)

	group, groupCtx := errgroup.WithContext(ctx)
	for range s.workers {
		group.Go(func() error {
			for row := range rows {
				s.reconcileRow(groupCtx, row, report)
			}
			return nil
		})
	}

	group.Go(func() error {
		defer close(rows)
		return s.client.FetchDepartement(groupCtx, departementCode, func(row Row) error {
			select {
			case rows <- row:
				return nil
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		})
	})

	if err := group.Wait(); err != nil {
		return report.Summarize(), fmt.Errorf("synchronize departement %s: %w", departementCode, err)
	}

	summary := report.Summarize()
	if _, err := s.repo.SaveSyncReport(ctx, repository.SyncReportRecord{
		StartedAt:  summary.StartedAt,
		DurationMS: summary.Duration.Milliseconds(),
		Counters:   summary.Counters,
		Failures:   summary.Failures,
		Total:      summary.Total,
	}); err != nil {
		return summary, err
	}

	s.log.Info("departement synchronized",
		"departement", departementCode, "rows", summary.Total,
		"failures", summary.Failures, "duration_ms", summary.Duration.Milliseconds())
	return summary, nil
}

// ReconcileRow processes a single row end to end. Exposed for the
// one-off runner; batch runs go through RunDepartement.
func (s *Synchronizer) ReconcileRow(ctx context.Context, row Row) (Decision, error) {
	if err := row.Validate(); err != nil {
		return Decision{}, err
	}

	lookup, err := s.repo.LookupContext(ctx, row.Ref, row.Refa, domain.SlugFor(row.Edif), row.CodeInsee())
	if err != nil {
		return Decision{}, err
	}

	decision := Decide(row, Context{
		Persisted:        lookup.Persisted,
		RecensementCount: lookup.RecensementCount,
		EdificeByRef:     lookup.EdificeByRef,
		EdificeBySlug:    lookup.EdificeBySlug,
		CommuneExists:    lookup.CommuneExists,
	})

	if decision.Action.Mutates() {
		applyable := repository.Applyable{
			Creating:                  decision.Action == ActionCreate,
			PalissyRef:                row.Ref,
			Attrs:                     decision.Attrs,
			EdificeID:                 decision.Edifice.ExistingID,
			EdificeToCreate:           decision.Edifice.Create,
			CascadeDeleteRecensements: decision.CascadeDeleteRecensements,
			CascadeReason:             cascadeReason,
		}
		if lookup.Persisted != nil {
			applyable.ObjetID = lookup.Persisted.ID
		}
		if err := s.repo.Apply(ctx, applyable); err != nil {
			return decision, err
		}
	}

	return decision, nil
}

func (s *Synchronizer) reconcileRow(ctx context.Context, row Row, report *Report) {
	decision, err := s.ReconcileRow(ctx, row)
	if err != nil {
		report.CountFailure()
		s.log.Error("row reconciliation failed", "ref", row.Ref, "error", err)
		return
	}
	report.Count(decision.Action)
	s.log.SyncAction(string(decision.Action), row.Ref, decision.Log)
}

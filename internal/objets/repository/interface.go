package repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for objets and edifices, including the
// write side of catalogue reconciliation.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Objet, error)
	GetByPalissyRef(ctx context.Context, ref string) (Objet, error)
	ListByCommune(ctx context.Context, codeInsee string) ([]Objet, error)

	// LookupContext pre-fetches everything a reconciliation decision
	// needs for one row: the persisted objet by ref, its recensement
	// count (soft-deleted included), candidate edifices and whether the
	// row's commune is known.
	LookupContext(ctx context.Context, palissyRef, merimeeRef, edificeSlug, codeInsee string) (LookupResult, error)

	// Apply executes one reconciliation decision in a single
	// transaction: edifice upsert, objet insert or update, recensement
	// cascade.
	Apply(ctx context.Context, d Applyable) error

	SaveSyncReport(ctx context.Context, rec SyncReportRecord) (uuid.UUID, error)
	ListSyncReports(ctx context.Context, limit int) ([]SyncReportRecord, error)
}

// LookupResult carries the pre-fetched store context for one row.
type LookupResult struct {
	Persisted        *Objet
	RecensementCount int
	EdificeByRef     *Edifice
	EdificeBySlug    *Edifice
	CommuneExists    bool
}

// Applyable is the write-side view of a reconciliation decision. It
// lives here so the repository does not depend on the sync package.
type Applyable struct {
	Creating                  bool
	ObjetID                   uuid.UUID
	PalissyRef                string
	Attrs                     Attrs
	EdificeID                 *uuid.UUID
	EdificeToCreate           *EdificeAttrs
	CascadeDeleteRecensements bool
	CascadeReason             string
}

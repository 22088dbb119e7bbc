package repository

import (
	"time"

	"github.com/google/uuid"
)

// Objet is the persisted model of a protected heritage item. Location
// fields mirror the current position known from the catalogue.
type Objet struct {
	ID               uuid.UUID
	PalissyRef       string
	Nom              string
	Categorie        *string
	Protection       *string
	CraftedAt        *string
	Materiaux        []string
	CommuneNom       *string
	CommuneCodeInsee *string
	DepartementCode  *string
	EdificeID        *uuid.UUID
	EdificeNom       *string
	Emplacement      *string
	Photos           []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Attrs is the catalogue-derived attribute set of an objet, split off
// from the persisted model so the synchronizer can diff and apply it.
type Attrs struct {
	Nom              string
	Categorie        *string
	Protection       *string
	CraftedAt        *string
	Materiaux        []string
	CommuneNom       *string
	CommuneCodeInsee *string
	DepartementCode  *string
	EdificeNom       *string
	Emplacement      *string
	Photos           []string
}

// Attrs extracts the catalogue attributes of a persisted objet.
func (o Objet) Attrs() Attrs {
	return Attrs{
		Nom:              o.Nom,
		Categorie:        o.Categorie,
		Protection:       o.Protection,
		CraftedAt:        o.CraftedAt,
		Materiaux:        o.Materiaux,
		CommuneNom:       o.CommuneNom,
		CommuneCodeInsee: o.CommuneCodeInsee,
		DepartementCode:  o.DepartementCode,
		EdificeNom:       o.EdificeNom,
		Emplacement:      o.Emplacement,
		Photos:           o.Photos,
	}
}

// Edifice is a building housing objets. Identified by merimee_ref when
// the catalogue provides one, by (slug, code_insee) otherwise.
type Edifice struct {
	ID         uuid.UUID
	MerimeeRef *string
	Nom        string
	Slug       string
	CodeInsee  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EdificeAttrs describes an edifice to create during reconciliation.
type EdificeAttrs struct {
	MerimeeRef *string
	Nom        string
	Slug       string
	CodeInsee  string
}

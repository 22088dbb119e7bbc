// Package domain holds recensement statuses, sanitary state classification
// and the pure rules governing edits and analysis.
package domain

// Status is the lifecycle state of a recensement.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// IsValid reports whether s is a known recensement status.
func (s Status) IsValid() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// EtatSanitaire is the sanitary state reported for an objet.
type EtatSanitaire string

const (
	EtatBon     EtatSanitaire = "bon"
	EtatMoyen   EtatSanitaire = "moyen"
	EtatMauvais EtatSanitaire = "mauvais"
	EtatPeril   EtatSanitaire = "peril"
	EtatDisparu EtatSanitaire = "disparu"
)

// IsValid reports whether e is a known sanitary state.
func (e EtatSanitaire) IsValid() bool {
	switch e {
	case EtatBon, EtatMoyen, EtatMauvais, EtatPeril, EtatDisparu:
		return true
	}
	return false
}

// Localisation records where the objet was found during the recensement.
type Localisation string

const (
	LocalisationEdificeInitial    Localisation = "edifice_initial"
	LocalisationAutreEdifice      Localisation = "autre_edifice"
	LocalisationDeplaceTemporaire Localisation = "deplacement_temporaire"
	LocalisationAutreCommune      Localisation = "deplacement_autre_commune"
	LocalisationAbsent            Localisation = "absent"
)

// IsValid reports whether l is a known localisation.
func (l Localisation) IsValid() bool {
	switch l {
	case LocalisationEdificeInitial, LocalisationAutreEdifice,
		LocalisationDeplaceTemporaire, LocalisationAutreCommune,
		LocalisationAbsent:
		return true
	}
	return false
}

// Prioritaire reports whether the recensement flags the objet for urgent
// curator review: reported in peril, reported disparu, or not found where
// expected.
func Prioritaire(etat EtatSanitaire, localisation Localisation) bool {
	return etat == EtatPeril || etat == EtatDisparu || localisation == LocalisationAbsent
}

// PrioritaireSQL is the SQL predicate equivalent of Prioritaire. The
// dashboard aggregate embeds it so the in-memory and SQL classifications
// cannot drift apart textually.
const PrioritaireSQL = "(r.etat_sanitaire IN ('peril', 'disparu') OR r.localisation = 'absent')"

// Disparu reports a recensement whose objet is gone: reported disparu,
// or not found where it was expected.
func Disparu(etat EtatSanitaire, localisation Localisation) bool {
	return etat == EtatDisparu || localisation == LocalisationAbsent
}

// EnPeril reports a recensement whose objet was found in peril.
func EnPeril(etat EtatSanitaire) bool {
	return etat == EtatPeril
}

// DisparuSQL and EnPerilSQL are the SQL twins of Disparu and EnPeril on
// alias r. Together they cover Prioritaire.
const (
	DisparuSQL = "(r.etat_sanitaire = 'disparu' OR r.localisation = 'absent')"
	EnPerilSQL = "r.etat_sanitaire = 'peril'"
)

// CountsSQL selects the live disparus_count and en_peril_count over the
// non-deleted recensements of a commune's current dossier. alias names
// the communes table in the enclosing query.
func CountsSQL(alias string) string {
	base := "(SELECT COUNT(*) FROM recensements r WHERE r.dossier_id = " +
		alias + ".dossier_id AND r.deleted_at IS NULL AND "
	return base + DisparuSQL + ") AS disparus_count, " +
		base + EnPerilSQL + ") AS en_peril_count"
}

// Package domain holds the commune and dossier workflow rules.
// Transition functions are pure: they validate an edge and compute the
// target states. The repository applies the resulting writes inside a
// single transaction so linked entities never diverge.
package domain

// CommuneStatus is the inventory progress of a commune.
type CommuneStatus string

const (
	CommuneInactive  CommuneStatus = "inactive"
	CommuneStarted   CommuneStatus = "started"
	CommuneCompleted CommuneStatus = "completed"
)

// DossierStatus is the administrative state of one inventory cycle.
type DossierStatus string

const (
	DossierConstruction DossierStatus = "construction"
	DossierSubmitted    DossierStatus = "submitted"
	DossierAccepted     DossierStatus = "accepted"
	DossierArchived     DossierStatus = "archived"
)

// IsValidCommuneStatus reports whether s is a known commune status.
func IsValidCommuneStatus(s CommuneStatus) bool {
	switch s {
	case CommuneInactive, CommuneStarted, CommuneCompleted:
		return true
	}
	return false
}

// IsValidDossierStatus reports whether s is a known dossier status.
func IsValidDossierStatus(s DossierStatus) bool {
	switch s {
	case DossierConstruction, DossierSubmitted, DossierAccepted, DossierArchived:
		return true
	}
	return false
}

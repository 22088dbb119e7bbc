// Package domain computes the statut_global ordinal summarizing a
// commune's inventory progress for the curator dashboard.
package domain

import (
	communes "patrimoine_backend/internal/communes/domain"
)

// StatutGlobal ranks a commune's overall state. Lower is higher
// priority; consumers sort ascending so urgent communes list first. The
// numeric values are part of the API and must stay stable.
type StatutGlobal int

const (
	StatutAExaminer            StatutGlobal = 1
	StatutEnCoursDExamen       StatutGlobal = 2
	StatutReponseAutomatique   StatutGlobal = 3
	StatutExamine              StatutGlobal = 4
	StatutEnCoursDeRecensement StatutGlobal = 5
	StatutNonRecense           StatutGlobal = 6
)

var statutLabels = map[StatutGlobal]string{
	StatutAExaminer:            "a_examiner",
	StatutEnCoursDExamen:       "en_cours_d_examen",
	StatutReponseAutomatique:   "reponse_automatique",
	StatutExamine:              "examine",
	StatutEnCoursDeRecensement: "en_cours_de_recensement",
	StatutNonRecense:           "non_recense",
}

func (s StatutGlobal) String() string {
	if label, ok := statutLabels[s]; ok {
		return label
	}
	return "unknown"
}

// CommuneFacts is the commune/dossier state feeding the computation.
type CommuneFacts struct {
	CommuneStatus        communes.CommuneStatus
	DossierStatus        communes.DossierStatus
	HasDossier           bool
	RepliedAutomatically bool
}

// RecensementFacts is the per-recensement state feeding the computation.
// Only recensements of the commune's current dossier belong here.
type RecensementFacts struct {
	Deleted     bool
	Prioritaire bool
	Analysed    bool
}

// ComputeStatutGlobal ranks one commune. It must stay in agreement with
// the SQL aggregate backing the dashboard listing; when several
// conditions hold at once the lowest ordinal wins.
func ComputeStatutGlobal(c CommuneFacts, recensements []RecensementFacts) StatutGlobal {
	var pendingPrioritaire, anyAnalysed bool
	for _, r := range recensements {
		if r.Deleted {
			continue
		}
		if r.Prioritaire && !r.Analysed {
			pendingPrioritaire = true
		}
		if r.Analysed {
			anyAnalysed = true
		}
	}

	accepted := c.HasDossier && c.DossierStatus == communes.DossierAccepted

	switch {
	case pendingPrioritaire:
		return StatutAExaminer
	case anyAnalysed && !accepted:
		return StatutEnCoursDExamen
	case c.HasDossier && c.DossierStatus == communes.DossierSubmitted && c.RepliedAutomatically:
		return StatutReponseAutomatique
	case accepted:
		return StatutExamine
	case c.CommuneStatus == communes.CommuneStarted || c.CommuneStatus == communes.CommuneCompleted:
		return StatutEnCoursDeRecensement
	default:
		return StatutNonRecense
	}
}

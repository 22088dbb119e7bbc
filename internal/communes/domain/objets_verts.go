package domain

import "time"

// Minimum age of a submitted dossier before the automatic reply goes out.
const objetsVertsMinAge = 7 * 24 * time.Hour

// ObjetsVertsInput captures everything the automatic-reply decision needs.
type ObjetsVertsInput struct {
	CommuneStatus          CommuneStatus
	DossierStatus          DossierStatus
	SubmittedAt            *time.Time
	RepliedAutomaticallyAt *time.Time
	HasPrioritaires        bool
	UnderExamen            bool
}

// ShallReceiveObjetsVerts reports whether the commune qualifies for the
// automatic "objets verts" reply on sendDate: recensement finished at
// least a week ago, nothing flagged, no analysis started, reply not
// already sent, and a weekday send date.
func ShallReceiveObjetsVerts(in ObjetsVertsInput, sendDate time.Time) bool {
	if in.CommuneStatus != CommuneCompleted || in.DossierStatus != DossierSubmitted {
		return false
	}
	if in.SubmittedAt == nil || sendDate.Sub(*in.SubmittedAt) < objetsVertsMinAge {
		return false
	}
	if wd := sendDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if in.HasPrioritaires || in.UnderExamen {
		return false
	}
	return in.RepliedAutomaticallyAt == nil
}

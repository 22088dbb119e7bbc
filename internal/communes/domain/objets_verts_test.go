package domain

import (
	"testing"
	"time"
)

func TestShallReceiveObjetsVerts(t *testing.T) {
	// 2023-11-13 is a Monday.
	monday := time.Date(2023, 11, 13, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2023, 11, 11, 9, 0, 0, 0, time.UTC)
	oldEnough := time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC)
	tooRecent := time.Date(2023, 11, 9, 0, 0, 0, 0, time.UTC)
	replied := time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC)

	base := ObjetsVertsInput{
		CommuneStatus: CommuneCompleted,
		DossierStatus: DossierSubmitted,
		SubmittedAt:   &oldEnough,
	}

	cases := []struct {
		name     string
		mutate   func(in *ObjetsVertsInput)
		sendDate time.Time
		want     bool
	}{
		{"eligible", func(in *ObjetsVertsInput) {}, monday, true},
		{"commune not completed", func(in *ObjetsVertsInput) { in.CommuneStatus = CommuneStarted }, monday, false},
		{"dossier not submitted", func(in *ObjetsVertsInput) { in.DossierStatus = DossierConstruction }, monday, false},
		{"submitted less than a week ago", func(in *ObjetsVertsInput) { in.SubmittedAt = &tooRecent }, monday, false},
		{"weekend send date", func(in *ObjetsVertsInput) {}, saturday, false},
		{"prioritaire objects present", func(in *ObjetsVertsInput) { in.HasPrioritaires = true }, monday, false},
		{"analysis already started", func(in *ObjetsVertsInput) { in.UnderExamen = true }, monday, false},
		{"already replied", func(in *ObjetsVertsInput) { in.RepliedAutomaticallyAt = &replied }, monday, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			if got := ShallReceiveObjetsVerts(in, tc.sendDate); got != tc.want {
				t.Errorf("ShallReceiveObjetsVerts = %v, want %v", got, tc.want)
			}
		})
	}
}

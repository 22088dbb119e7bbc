package domain

import (
	"testing"
	"time"

	"patrimoine_backend/platform/apperr"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2030-05-10 is a Friday; the spread keeps lancement on a weekday.
func mayDates() Dates {
	return Dates{
		Lancement: day(2030, time.May, 10),
		Relance1:  day(2030, time.May, 15),
		Relance2:  day(2030, time.May, 20),
		Relance3:  day(2030, time.May, 25),
		Fin:       day(2030, time.May, 30),
	}
}

func TestStepForDate(t *testing.T) {
	dates := mayDates()

	tests := []struct {
		date     time.Time
		want     Step
		wantNone bool
	}{
		{day(2030, time.May, 1), "", true},
		{day(2030, time.May, 9), "", true},
		{day(2030, time.May, 10), StepLancement, false},
		{day(2030, time.May, 12), StepLancement, false},
		{day(2030, time.May, 15), StepRelance1, false},
		{day(2030, time.May, 19), StepRelance1, false},
		{day(2030, time.May, 20), StepRelance2, false},
		{day(2030, time.May, 27), StepRelance3, false},
		{day(2030, time.May, 30), StepFin, false},
		{day(2030, time.June, 10), StepFin, false},
	}
	for _, tt := range tests {
		got, found := dates.StepForDate(tt.date)
		if tt.wantNone {
			if found {
				t.Errorf("StepForDate(%s) = %s, want no active step", tt.date.Format("2006-01-02"), got)
			}
			continue
		}
		if !found || got != tt.want {
			t.Errorf("StepForDate(%s) = %s (found=%v), want %s", tt.date.Format("2006-01-02"), got, found, tt.want)
		}
	}
}

func TestStepForDateIgnoresTimeOfDay(t *testing.T) {
	dates := mayDates()
	lateEvening := time.Date(2030, time.May, 10, 23, 30, 0, 0, time.UTC)
	got, found := dates.StepForDate(lateEvening)
	if !found || got != StepLancement {
		t.Errorf("StepForDate(launch day evening) = %s (found=%v), want %s", got, found, StepLancement)
	}
}

func TestPreviousStep(t *testing.T) {
	tests := []struct {
		step     Step
		want     Step
		wantNone bool
	}{
		{StepLancement, "", true},
		{StepRelance1, StepLancement, false},
		{StepRelance2, StepRelance1, false},
		{StepRelance3, StepRelance2, false},
		{StepFin, StepRelance3, false},
		{Step("bogus"), "", true},
	}
	for _, tt := range tests {
		got, ok := PreviousStep(tt.step)
		if tt.wantNone {
			if ok {
				t.Errorf("PreviousStep(%s) = %s, want none", tt.step, got)
			}
			continue
		}
		if !ok || got != tt.want {
			t.Errorf("PreviousStep(%s) = %s (ok=%v), want %s", tt.step, got, ok, tt.want)
		}
	}
}

func TestValidateDates(t *testing.T) {
	now := day(2030, time.January, 1)

	t.Run("valid future weekday launch", func(t *testing.T) {
		if err := mayDates().Validate(StatusDraft, now); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("relance2 not after relance1", func(t *testing.T) {
		dates := mayDates()
		dates.Relance2 = dates.Relance1
		err := dates.Validate(StatusDraft, now)
		assertFieldError(t, err, "date_relance2")
	})

	t.Run("relance2 before relance1", func(t *testing.T) {
		dates := mayDates()
		dates.Relance2 = dates.Relance1.AddDate(0, 0, -1)
		err := dates.Validate(StatusDraft, now)
		assertFieldError(t, err, "date_relance2")
	})

	t.Run("weekend launch", func(t *testing.T) {
		dates := mayDates()
		// 2030-05-11 is a Saturday.
		dates.Lancement = day(2030, time.May, 11)
		err := dates.Validate(StatusDraft, now)
		assertFieldError(t, err, "date_lancement")
	})

	t.Run("past launch invalid for draft and planned", func(t *testing.T) {
		late := day(2030, time.June, 1)
		for _, status := range []Status{StatusDraft, StatusPlanned} {
			err := mayDates().Validate(status, late)
			assertFieldError(t, err, "date_lancement")
		}
	})

	t.Run("past launch accepted for ongoing and finished", func(t *testing.T) {
		late := day(2030, time.June, 1)
		for _, status := range []Status{StatusOngoing, StatusFinished} {
			dates := mayDates()
			// Keep ordering valid, only the launch lies in the past.
			dates.Fin = day(2030, time.July, 1)
			dates.Relance3 = day(2030, time.June, 20)
			dates.Relance2 = day(2030, time.June, 10)
			dates.Relance1 = day(2030, time.June, 5)
			if err := dates.Validate(status, late); err != nil {
				t.Errorf("status %s: unexpected error: %v", status, err)
			}
		}
	})

	t.Run("launch today is not future", func(t *testing.T) {
		err := mayDates().Validate(StatusDraft, day(2030, time.May, 10))
		assertFieldError(t, err, "date_lancement")
	})
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation (err=%v)", apperr.GetKind(err), err)
	}
	for _, fe := range apperr.FieldErrors(err) {
		if fe.Field == field {
			return
		}
	}
	t.Errorf("no field error for %s in %v", field, err)
}

func TestOverlaps(t *testing.T) {
	a := mayDates()

	juneDates := Dates{
		Lancement: day(2030, time.June, 3),
		Relance1:  day(2030, time.June, 10),
		Relance2:  day(2030, time.June, 17),
		Relance3:  day(2030, time.June, 24),
		Fin:       day(2030, time.July, 1),
	}

	if a.Overlaps(juneDates) {
		t.Error("disjoint ranges should not overlap")
	}

	shifted := a
	shifted.Lancement = day(2030, time.May, 28)
	shifted.Fin = day(2030, time.June, 15)
	if !a.Overlaps(shifted) {
		t.Error("intersecting ranges should overlap")
	}

	touching := juneDates
	touching.Lancement = a.Fin
	if !a.Overlaps(touching) {
		t.Error("ranges sharing a boundary day overlap")
	}
}

func TestStatusTransitions(t *testing.T) {
	if s, err := Plan(StatusDraft); err != nil || s != StatusPlanned {
		t.Errorf("Plan(draft) = %s, %v", s, err)
	}
	if _, err := Plan(StatusPlanned); apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Errorf("Plan(planned) kind = %v, want KindInvalidTransition", apperr.GetKind(err))
	}
	if s, err := Start(StatusPlanned); err != nil || s != StatusOngoing {
		t.Errorf("Start(planned) = %s, %v", s, err)
	}
	if _, err := Start(StatusDraft); apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Errorf("Start(draft) kind = %v, want KindInvalidTransition", apperr.GetKind(err))
	}
	if s, err := Finish(StatusOngoing); err != nil || s != StatusFinished {
		t.Errorf("Finish(ongoing) = %s, %v", s, err)
	}
	if _, err := Finish(StatusFinished); apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Errorf("Finish(finished) kind = %v, want KindInvalidTransition", apperr.GetKind(err))
	}
}

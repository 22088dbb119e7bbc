// Package domain holds the campaign timeline rules: milestone steps,
// date validation and status transitions.
package domain

import (
	"fmt"
	"time"

	"patrimoine_backend/platform/apperr"
)

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPlanned  Status = "planned"
	StatusOngoing  Status = "ongoing"
	StatusFinished Status = "finished"
)

// IsValid reports whether s is a known campaign status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPlanned, StatusOngoing, StatusFinished:
		return true
	}
	return false
}

// Step is one outreach milestone of a campaign.
type Step string

const (
	StepLancement Step = "lancement"
	StepRelance1  Step = "relance1"
	StepRelance2  Step = "relance2"
	StepRelance3  Step = "relance3"
	StepFin       Step = "fin"
)

// Steps lists the milestones in timeline order.
var Steps = []Step{StepLancement, StepRelance1, StepRelance2, StepRelance3, StepFin}

// PreviousStep returns the immediate predecessor of a step, false for
// lancement and unknown steps.
func PreviousStep(step Step) (Step, bool) {
	for i, s := range Steps {
		if s == step {
			if i == 0 {
				return "", false
			}
			return Steps[i-1], true
		}
	}
	return "", false
}

// Dates holds the five campaign milestones. Only the calendar day
// matters; times of day are ignored.
type Dates struct {
	Lancement time.Time
	Relance1  time.Time
	Relance2  time.Time
	Relance3  time.Time
	Fin       time.Time
}

func (d Dates) ordered() []time.Time {
	return []time.Time{d.Lancement, d.Relance1, d.Relance2, d.Relance3, d.Fin}
}

// dateOnly truncates to the calendar day in the timestamp's location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StepForDate returns the last milestone at or before date. Dates
// before lancement have no active step; dates at or after fin map to
// fin.
func (d Dates) StepForDate(date time.Time) (Step, bool) {
	day := dateOnly(date)
	milestones := d.ordered()

	var active Step
	found := false
	for i, milestone := range milestones {
		if dateOnly(milestone).After(day) {
			break
		}
		active = Steps[i]
		found = true
	}
	return active, found
}

// Validate checks the milestone invariants. Past launch dates are only
// legal once the campaign is running or archived, so drafts cannot be
// planned retroactively.
func (d Dates) Validate(status Status, now time.Time) error {
	var fields []apperr.FieldError

	names := []string{"date_lancement", "date_relance1", "date_relance2", "date_relance3", "date_fin"}
	milestones := d.ordered()
	for i := 1; i < len(milestones); i++ {
		if !dateOnly(milestones[i]).After(dateOnly(milestones[i-1])) {
			fields = append(fields, apperr.FieldError{
				Field:   names[i],
				Message: fmt.Sprintf("must be after %s", names[i-1]),
			})
		}
	}

	switch d.Lancement.Weekday() {
	case time.Saturday, time.Sunday:
		fields = append(fields, apperr.FieldError{
			Field:   "date_lancement",
			Message: "must fall on a weekday",
		})
	}

	if status != StatusOngoing && status != StatusFinished {
		if !dateOnly(d.Lancement).After(dateOnly(now)) {
			fields = append(fields, apperr.FieldError{
				Field:   "date_lancement",
				Message: "must be in the future",
			})
		}
	}

	if len(fields) > 0 {
		return apperr.Validation("invalid campaign dates", fields...)
	}
	return nil
}

// Overlaps reports whether two [lancement, fin] ranges intersect.
func (d Dates) Overlaps(other Dates) bool {
	return !dateOnly(d.Fin).Before(dateOnly(other.Lancement)) &&
		!dateOnly(other.Fin).Before(dateOnly(d.Lancement))
}

// Plan validates the draft -> planned transition.
func Plan(current Status) (Status, error) {
	if current != StatusDraft {
		return current, apperr.InvalidTransition(
			fmt.Sprintf("cannot plan campaign from status %s", current))
	}
	return StatusPlanned, nil
}

// Start validates the planned -> ongoing transition.
func Start(current Status) (Status, error) {
	if current != StatusPlanned {
		return current, apperr.InvalidTransition(
			fmt.Sprintf("cannot start campaign from status %s", current))
	}
	return StatusOngoing, nil
}

// Finish validates the ongoing -> finished transition.
func Finish(current Status) (Status, error) {
	if current != StatusOngoing {
		return current, apperr.InvalidTransition(
			fmt.Sprintf("cannot finish campaign from status %s", current))
	}
	return StatusFinished, nil
}

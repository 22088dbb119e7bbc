package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestCounterMoves(t *testing.T) {
	aubilly := "51019"
	reims := "51454"

	tests := []struct {
		name          string
		before, after *string
		dec, inc      *string
	}{
		{name: "no commune before or after"},
		{name: "same commune", before: &aubilly, after: &aubilly},
		{name: "first assignment", after: &aubilly, inc: &aubilly},
		{name: "commune cleared", before: &aubilly, dec: &aubilly},
		{name: "relocation", before: &aubilly, after: &reims, dec: &aubilly, inc: &reims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, inc := counterMoves(tt.before, tt.after)
			if !sameCode(dec, tt.dec) {
				t.Errorf("dec = %v, want %v", strPtr(dec), strPtr(tt.dec))
			}
			if !sameCode(inc, tt.inc) {
				t.Errorf("inc = %v, want %v", strPtr(inc), strPtr(tt.inc))
			}
		})
	}
}

func TestBumpObjetsCountSQL(t *testing.T) {
	if !strings.Contains(bumpObjetsCountSQL, "objets_count") {
		t.Error("counter statement does not touch objets_count")
	}
	// A decrement on an already-zero counter must not go negative.
	if !strings.Contains(bumpObjetsCountSQL, "GREATEST(objets_count + $2, 0)") {
		t.Error("counter statement is not clamped at zero")
	}
}

func TestLostMerimeeRefRace(t *testing.T) {
	ref := "PA00078599"
	uniqueViolation := fmt.Errorf("insert edifice: %w", &pgconn.PgError{Code: "23505"})

	tests := []struct {
		name  string
		attrs EdificeAttrs
		err   error
		want  bool
	}{
		{"duplicate ref insert", EdificeAttrs{MerimeeRef: &ref}, uniqueViolation, true},
		{"ref-less insert is arbitrated by ON CONFLICT", EdificeAttrs{}, uniqueViolation, false},
		{"foreign key violation", EdificeAttrs{MerimeeRef: &ref}, &pgconn.PgError{Code: "23503"}, false},
		{"plain error", EdificeAttrs{MerimeeRef: &ref}, errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lostMerimeeRefRace(tt.attrs, tt.err); got != tt.want {
				t.Errorf("lostMerimeeRefRace = %v, want %v", got, tt.want)
			}
		})
	}
}

func sameCode(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtr(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

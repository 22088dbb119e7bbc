package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "statue en bois dore", "statue en bois dore"},
		{"tags stripped", "<b>peril</b> imminent", "peril imminent"},
		{"script removed", `<script>alert(1)</script>notes`, "alert(1)notes"},
		{"encoded tag stripped", "&lt;img src=x&gt;ok", "ok"},
		{"whitespace trimmed", "  fiche  ", "fiche"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Error("TextPtr(nil) should stay nil")
	}
	in := "<i>note</i>"
	out := TextPtr(&in)
	if out == nil || *out != "note" {
		t.Errorf("TextPtr = %v", out)
	}
}

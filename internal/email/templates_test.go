package email

import (
	"strings"
	"testing"
)

func TestRenderCampaignStepTemplates(t *testing.T) {
	for step, subject := range campaignStepSubjects {
		html, err := renderEmailTemplate("campaign_step.html", campaignStepEmailData{
			baseEmailData: baseEmailData{
				Title:    subject,
				Heading:  subject,
				CTALabel: "Accéder au recensement",
				CTAURL:   "https://example.test/communes",
			},
			CommuneNom: "Aubilly",
			Intro:      campaignStepIntros[step],
		})
		if err != nil {
			t.Fatalf("render step %s: %v", step, err)
		}
		if !strings.Contains(html, "Aubilly") {
			t.Errorf("step %s: commune name missing from body", step)
		}
		if !strings.Contains(html, "https://example.test/communes") {
			t.Errorf("step %s: CTA link missing from body", step)
		}
	}
}

func TestRenderDossierTemplates(t *testing.T) {
	for _, name := range []string{"dossier_incomplete.html", "dossier_submitted.html", "dossier_accepted.html", "objets_verts.html"} {
		html, err := renderEmailTemplate(name, dossierEmailData{
			baseEmailData: baseEmailData{Title: "t", Heading: "h"},
			CommuneNom:    "Reims",
		})
		if err != nil {
			t.Fatalf("render %s: %v", name, err)
		}
		if !strings.Contains(html, "Reims") {
			t.Errorf("%s: commune name missing from body", name)
		}
	}
}

func TestEveryStepHasSubjectAndIntro(t *testing.T) {
	for step := range campaignStepSubjects {
		if campaignStepIntros[step] == "" {
			t.Errorf("step %s has a subject but no intro", step)
		}
	}
	for step := range campaignStepIntros {
		if campaignStepSubjects[step] == "" {
			t.Errorf("step %s has an intro but no subject", step)
		}
	}
}

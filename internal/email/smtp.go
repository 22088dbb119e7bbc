package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"patrimoine_backend/platform/config"
)

// SMTPSender delivers mail over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a sender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// Compile-time check that SMTPSender implements Sender.
var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// SendCampaignStep sends the outreach email of one campaign step.
func (s *SMTPSender) SendCampaignStep(ctx context.Context, toEmail, communeNom, step, dashboardURL string) error {
	subject, ok := campaignStepSubjects[step]
	if !ok {
		return fmt.Errorf("unknown campaign step %q", step)
	}
	content, err := renderEmailTemplate("campaign_step.html", campaignStepEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  subject,
			CTALabel: "Accéder au recensement",
			CTAURL:   dashboardURL,
		},
		CommuneNom: communeNom,
		Intro:      campaignStepIntros[step],
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

// SendDossierIncompleteReminder nudges a commune with an unsent dossier.
func (s *SMTPSender) SendDossierIncompleteReminder(ctx context.Context, toEmail, communeNom, dashboardURL string) error {
	content, err := renderEmailTemplate("dossier_incomplete.html", dossierEmailData{
		baseEmailData: baseEmailData{
			Title:    subjectDossierIncomplete,
			Heading:  subjectDossierIncomplete,
			CTALabel: "Reprendre le recensement",
			CTAURL:   dashboardURL,
		},
		CommuneNom: communeNom,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectDossierIncomplete, content)
}

// SendDossierSubmittedNotice notifies the conservateur.
func (s *SMTPSender) SendDossierSubmittedNotice(ctx context.Context, toEmail, communeNom string) error {
	content, err := renderEmailTemplate("dossier_submitted.html", dossierEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectDossierSubmitted,
			Heading: subjectDossierSubmitted,
		},
		CommuneNom: communeNom,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectDossierSubmitted, content)
}

// SendDossierAcceptedNotice tells the commune its dossier was accepted.
func (s *SMTPSender) SendDossierAcceptedNotice(ctx context.Context, toEmail, communeNom, dashboardURL string) error {
	content, err := renderEmailTemplate("dossier_accepted.html", dossierEmailData{
		baseEmailData: baseEmailData{
			Title:    subjectDossierAccepted,
			Heading:  subjectDossierAccepted,
			CTALabel: "Consulter le rapport",
			CTAURL:   dashboardURL,
		},
		CommuneNom: communeNom,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectDossierAccepted, content)
}

// SendObjetsVertsReply sends the automatic all-green reply.
func (s *SMTPSender) SendObjetsVertsReply(ctx context.Context, toEmail, communeNom string) error {
	content, err := renderEmailTemplate("objets_verts.html", dossierEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectObjetsVerts,
			Heading: subjectObjetsVerts,
		},
		CommuneNom: communeNom,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectObjetsVerts, content)
}

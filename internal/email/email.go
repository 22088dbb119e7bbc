// Package email sends transactional mail for the recensement workflow
// and campaign outreach. Notifications are queued through the outbox
// and delivered by the scheduler, never sent inline with a request.
package email

import "context"

// Sender delivers the application's transactional emails.
type Sender interface {
	// SendCampaignStep sends the outreach email of one campaign step to
	// a recipient commune.
	SendCampaignStep(ctx context.Context, toEmail, communeNom, step, dashboardURL string) error
	// SendDossierIncompleteReminder nudges a commune that started a
	// recensement but never submitted its dossier.
	SendDossierIncompleteReminder(ctx context.Context, toEmail, communeNom, dashboardURL string) error
	// SendDossierSubmittedNotice tells the departement conservateur a
	// dossier is ready for examination.
	SendDossierSubmittedNotice(ctx context.Context, toEmail, communeNom string) error
	// SendDossierAcceptedNotice tells the commune its dossier passed
	// examination.
	SendDossierAcceptedNotice(ctx context.Context, toEmail, communeNom, dashboardURL string) error
	// SendObjetsVertsReply sends the automatic reply for dossiers whose
	// objets are all in good condition.
	SendObjetsVertsReply(ctx context.Context, toEmail, communeNom string) error
}

// NopSender drops all mail. Used when EMAIL_ENABLED is off.
type NopSender struct{}

func (NopSender) SendCampaignStep(ctx context.Context, toEmail, communeNom, step, dashboardURL string) error {
	return nil
}

func (NopSender) SendDossierIncompleteReminder(ctx context.Context, toEmail, communeNom, dashboardURL string) error {
	return nil
}

func (NopSender) SendDossierSubmittedNotice(ctx context.Context, toEmail, communeNom string) error {
	return nil
}

func (NopSender) SendDossierAcceptedNotice(ctx context.Context, toEmail, communeNom, dashboardURL string) error {
	return nil
}

func (NopSender) SendObjetsVertsReply(ctx context.Context, toEmail, communeNom string) error {
	return nil
}

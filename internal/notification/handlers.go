// Package notification reacts to domain events by queueing mail
// through the transactional outbox. Delivery itself happens in the
// scheduler worker.
package notification

import (
	"context"
	"fmt"

	communerepo "patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/events"
	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/platform/logger"
)

// Handlers subscribes to workflow events and records the notifications
// they imply.
type Handlers struct {
	communes communerepo.Repository
	outbox   *outbox.Repository
	log      *logger.Logger
}

// NewHandlers creates the event-driven notification handlers.
func NewHandlers(communes communerepo.Repository, outboxRepo *outbox.Repository, log *logger.Logger) *Handlers {
	return &Handlers{communes: communes, outbox: outboxRepo, log: log}
}

// RegisterHandlers wires the handlers onto the event bus.
func (h *Handlers) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.DossierAccepted{}.EventName(), events.HandlerFunc(h.onDossierAccepted))
}

type acceptedPayload struct {
	DossierID string `json:"dossier_id"`
	CommuneID string `json:"commune_id"`
	CodeInsee string `json:"code_insee"`
}

// onDossierAccepted tells the commune its inventory has been reviewed
// and accepted by the conservateur.
func (h *Handlers) onDossierAccepted(ctx context.Context, event events.Event) error {
	accepted, ok := event.(events.DossierAccepted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	commune, err := h.communes.GetByID(ctx, accepted.CommuneID)
	if err != nil {
		return fmt.Errorf("resolve commune for accepted dossier: %w", err)
	}

	_, err = h.outbox.Insert(ctx, outbox.InsertParams{
		Kind:     outbox.KindDossierAcceptedNotice,
		Template: "dossier_accepte",
		Payload: acceptedPayload{
			DossierID: accepted.DossierID.String(),
			CommuneID: accepted.CommuneID.String(),
			CodeInsee: commune.CodeInsee,
		},
	})
	if err != nil {
		return fmt.Errorf("queue accepted notice: %w", err)
	}

	h.log.Info("dossier accepted notice queued",
		"dossier_id", accepted.DossierID, "commune_id", accepted.CommuneID)
	return nil
}

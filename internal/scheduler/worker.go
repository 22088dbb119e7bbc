package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	camprepo "patrimoine_backend/internal/campaigns/repository"
	campservice "patrimoine_backend/internal/campaigns/service"
	commservice "patrimoine_backend/internal/communes/service"
	"patrimoine_backend/internal/email"
	"patrimoine_backend/internal/notification/outbox"
	objetsync "patrimoine_backend/internal/objets/sync"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/logger"
)

const workerConcurrency = 10

// WorkerConfig combines the config interfaces the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
	config.EmailConfig
}

// Worker consumes the background queue: outbox mail, the campaign
// clock, the objets-verts sweep and catalogue synchronization.
type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	outbox       *outbox.Repository
	lookup       *mailLookup
	sender       email.Sender
	campaigns    *campservice.Service
	communes     *commservice.Service
	synchronizer *objetsync.Synchronizer
	appBaseURL   string
	log          *logger.Logger
}

// NewWorker builds the asynq server and registers the task handlers.
func NewWorker(
	cfg WorkerConfig,
	pool *pgxpool.Pool,
	sender email.Sender,
	campaigns *campservice.Service,
	communes *commservice.Service,
	synchronizer *objetsync.Synchronizer,
	log *logger.Logger,
) (*Worker, error) {
	opt, queue, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: workerConcurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:       server,
		mux:          asynq.NewServeMux(),
		outbox:       outbox.New(pool),
		lookup:       &mailLookup{pool: pool},
		sender:       sender,
		campaigns:    campaigns,
		communes:     communes,
		synchronizer: synchronizer,
		appBaseURL:   strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		log:          log,
	}

	w.mux.HandleFunc(TaskNotificationOutboxDue, w.handleOutboxDue)
	w.mux.HandleFunc(TaskCampaignClock, w.handleCampaignClock)
	w.mux.HandleFunc(TaskObjetsVertsSweep, w.handleObjetsVertsSweep)
	w.mux.HandleFunc(TaskCatalogueSync, w.handleCatalogueSync)

	return w, nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleOutboxDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}
	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	rec, err := w.outbox.GetByID(ctx, outboxID)
	if err != nil {
		return err
	}
	if rec.Status == outbox.StatusSucceeded {
		return nil
	}
	if err := w.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	if err := w.deliver(ctx, rec); err != nil {
		_ = w.outbox.MarkFailed(ctx, rec.ID, err.Error())
		return err
	}
	return w.outbox.MarkSucceeded(ctx, rec.ID)
}

// dossierMailPayload mirrors the payload queued by the commune workflow.
type dossierMailPayload struct {
	DossierID uuid.UUID `json:"dossier_id"`
	CommuneID uuid.UUID `json:"commune_id"`
	CodeInsee string    `json:"code_insee"`
}

func (w *Worker) deliver(ctx context.Context, rec outbox.Record) error {
	switch rec.Kind {
	case outbox.KindCampaignStepEmail:
		var p camprepo.StepEmailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", rec.Kind, err)
		}
		toEmail, nom, err := w.lookup.communeRecipient(ctx, p.CommuneID)
		if err != nil {
			return err
		}
		return w.sender.SendCampaignStep(ctx, toEmail, nom, string(p.Step), w.communeURL(p.CodeInsee))

	case outbox.KindDossierIncompleteReminder:
		var p dossierMailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", rec.Kind, err)
		}
		toEmail, nom, err := w.lookup.communeRecipient(ctx, p.CommuneID)
		if err != nil {
			return err
		}
		return w.sender.SendDossierIncompleteReminder(ctx, toEmail, nom, w.communeURL(p.CodeInsee))

	case outbox.KindDossierSubmittedNotice:
		var p dossierMailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", rec.Kind, err)
		}
		toEmail, nom, err := w.lookup.conservateurRecipient(ctx, p.CommuneID)
		if err != nil {
			return err
		}
		return w.sender.SendDossierSubmittedNotice(ctx, toEmail, nom)

	case outbox.KindDossierAcceptedNotice:
		var p dossierMailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", rec.Kind, err)
		}
		toEmail, nom, err := w.lookup.communeRecipient(ctx, p.CommuneID)
		if err != nil {
			return err
		}
		return w.sender.SendDossierAcceptedNotice(ctx, toEmail, nom, w.communeURL(p.CodeInsee))

	case outbox.KindObjetsVertsReply:
		var p dossierMailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", rec.Kind, err)
		}
		toEmail, nom, err := w.lookup.communeRecipient(ctx, p.CommuneID)
		if err != nil {
			return err
		}
		return w.sender.SendObjetsVertsReply(ctx, toEmail, nom)

	default:
		return fmt.Errorf("unknown outbox kind %q", rec.Kind)
	}
}

func (w *Worker) communeURL(codeInsee string) string {
	return w.appBaseURL + "/communes/" + codeInsee
}

func (w *Worker) handleCampaignClock(ctx context.Context, task *asynq.Task) error {
	return w.campaigns.RunScheduled(ctx, time.Now())
}

func (w *Worker) handleObjetsVertsSweep(ctx context.Context, task *asynq.Task) error {
	_, err := w.communes.RunObjetsVertsCheck(ctx, time.Now())
	return err
}

func (w *Worker) handleCatalogueSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCatalogueSyncPayload(task)
	if err != nil {
		return err
	}

	codes := []string{payload.DepartementCode}
	if payload.DepartementCode == "" {
		codes, err = w.lookup.departementCodes(ctx)
		if err != nil {
			return err
		}
	}

	for _, code := range codes {
		if _, err := w.synchronizer.RunDepartement(ctx, code); err != nil {
			w.log.Error("catalogue sync failed", "departement", code, "error", err)
		}
	}
	return nil
}

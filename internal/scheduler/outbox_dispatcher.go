package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/logger"
)

const claimBatchSize = 50

// OutboxDispatcher polls the notification outbox and enqueues one asynq
// task per due record. Claiming flips the record to enqueued, so a
// crashed dispatcher never double-sends; a failed enqueue releases the
// record back to pending.
type OutboxDispatcher struct {
	client   *asynq.Client
	queue    string
	repo     *outbox.Repository
	interval time.Duration
	log      *logger.Logger
}

// NewOutboxDispatcher creates the dispatcher from the scheduler config.
func NewOutboxDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*OutboxDispatcher, error) {
	opt, queue, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetOutboxPollInterval()
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &OutboxDispatcher{
		client:   asynq.NewClient(opt),
		queue:    queue,
		repo:     outbox.New(pool),
		interval: interval,
		log:      log,
	}, nil
}

func (d *OutboxDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

// Run polls until the context is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		records, err := d.repo.ClaimPending(ctx, claimBatchSize)
		if err != nil {
			d.log.Warn("outbox claim failed", "error", err)
			continue
		}

		for _, rec := range records {
			if err := d.enqueue(ctx, rec); err != nil {
				_ = d.repo.Release(ctx, rec.ID, err.Error())
			}
		}
	}
}

func (d *OutboxDispatcher) enqueue(ctx context.Context, rec outbox.Record) error {
	task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
		OutboxID: rec.ID.String(),
	})
	if err != nil {
		return err
	}
	_, err = d.client.EnqueueContext(ctx, task, asynq.ProcessAt(rec.RunAt), asynq.Queue(d.queue))
	return err
}

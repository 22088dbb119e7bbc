package scheduler

import (
	"github.com/hibiken/asynq"

	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/logger"
)

// Periodic registers the recurring tasks on an asynq scheduler: the
// campaign clock and the objets-verts sweep every morning, a full
// catalogue synchronization on the first day of each month.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic builds the cron schedule.
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, queue, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, nil)

	entries := []struct {
		spec string
		task *asynq.Task
	}{
		{"0 8 * * *", asynq.NewTask(TaskCampaignClock, nil)},
		{"0 10 * * *", asynq.NewTask(TaskObjetsVertsSweep, nil)},
		{"0 3 1 * *", asynq.NewTask(TaskCatalogueSync, []byte(`{}`))},
	}
	for _, e := range entries {
		if _, err := scheduler.Register(e.spec, e.task, asynq.Queue(queue)); err != nil {
			return nil, err
		}
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run starts the cron loop and blocks until shutdown.
func (p *Periodic) Run() {
	if p == nil || p.scheduler == nil {
		return
	}
	if err := p.scheduler.Run(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
	}
}

// Shutdown stops the cron loop.
func (p *Periodic) Shutdown() {
	if p != nil && p.scheduler != nil {
		p.scheduler.Shutdown()
	}
}

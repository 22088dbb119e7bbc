// Package scheduler runs the background side of the application: outbox
// mail delivery, the daily campaign clock, the objets-verts sweep and
// catalogue synchronization, all over asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskNotificationOutboxDue delivers one claimed outbox record.
const TaskNotificationOutboxDue = "notification.outbox.due"

// TaskCampaignClock applies the date-driven campaign transitions
// (start, step advance, finish) once per day.
const TaskCampaignClock = "campaigns.clock"

// TaskObjetsVertsSweep evaluates submitted dossiers for the automatic
// all-green reply.
const TaskObjetsVertsSweep = "communes.objets_verts_sweep"

// TaskCatalogueSync reconciles one departement against the national
// catalogue.
const TaskCatalogueSync = "catalogue.sync"

// NotificationOutboxDuePayload identifies the outbox record to deliver.
type NotificationOutboxDuePayload struct {
	OutboxID string `json:"outbox_id"`
}

// CatalogueSyncPayload scopes a synchronization run.
type CatalogueSyncPayload struct {
	DepartementCode string `json:"departement_code"`
}

func NewNotificationOutboxDueTask(payload NotificationOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDue, data), nil
}

func ParseNotificationOutboxDuePayload(task *asynq.Task) (NotificationOutboxDuePayload, error) {
	var payload NotificationOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationOutboxDuePayload{}, err
	}
	return payload, nil
}

func NewCatalogueSyncTask(payload CatalogueSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogueSync, data), nil
}

func ParseCatalogueSyncPayload(task *asynq.Task) (CatalogueSyncPayload, error) {
	var payload CatalogueSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CatalogueSyncPayload{}, err
	}
	return payload, nil
}

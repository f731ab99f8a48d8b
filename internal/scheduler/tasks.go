package scheduler

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskExpirationSweep = "quotes:expiration_sweep"

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

type ExpirationSweepPayload struct {
	UserID      string `json:"userId,omitempty"`
	TriggeredBy string `json:"triggeredBy"`
}

// Scope returns the user the sweep is limited to, or nil for every user.
func (p ExpirationSweepPayload) Scope() (*uuid.UUID, error) {
	if p.UserID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func NewExpirationSweepTask(payload ExpirationSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpirationSweep, data), nil
}

func ParseExpirationSweepPayload(task *asynq.Task) (ExpirationSweepPayload, error) {
	var payload ExpirationSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ExpirationSweepPayload{}, err
	}
	return payload, nil
}

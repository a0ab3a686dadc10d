package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeDispatchTimeout = "dispatch:timeout"

// TimeoutPayload identifies the cascade step a response window was opened for.
type TimeoutPayload struct {
	BookingID    string `json:"bookingId"`
	TechnicianID string `json:"technicianId"`
	Version      int64  `json:"version"`
}

// NewTimeoutTask builds the delayed task that expires a response window.
func NewTimeoutTask(payload TimeoutPayload, window time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDispatchTimeout, b)
	opts := []asynq.Option{asynq.ProcessIn(window)}
	return task, opts, nil
}

// AsynqTimeoutScheduler schedules response windows as delayed asynq tasks.
// Windows are Redis-backed, so they survive a process restart.
type AsynqTimeoutScheduler struct {
	Client *asynq.Client
	Window time.Duration
}

func (s *AsynqTimeoutScheduler) Schedule(ctx context.Context, bookingID, technicianID string, version int64) error {
	task, opts, err := NewTimeoutTask(TimeoutPayload{
		BookingID:    bookingID,
		TechnicianID: technicianID,
		Version:      version,
	}, s.Window)
	if err != nil {
		return err
	}
	_, err = s.Client.EnqueueContext(ctx, task, opts...)
	return err
}

package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"fixline/config"
	"fixline/services/dispatch"

	"github.com/hibiken/asynq"
)

// InitTimeoutWorker runs the async worker consuming expired response windows.
func InitTimeoutWorker(dispatchSvc dispatch.DispatchService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDispatchQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(dispatch.TypeDispatchTimeout, handleTimeoutTask(dispatchSvc))

	go func() {
		log.Println("[TimeoutWorker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[TimeoutWorker] failed to start worker: %v", err)
		}
	}()
}

func handleTimeoutTask(dispatchSvc dispatch.DispatchService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p dispatch.TimeoutPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[TimeoutWorker] invalid payload: %v", err)
			return err
		}

		err := dispatchSvc.OnTimeout(ctx, p.BookingID, p.TechnicianID, p.Version)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, dispatch.ErrStaleResponse), errors.Is(err, dispatch.ErrNotFound):
			// The step already resolved (real response, cancel or delete);
			// the window has nothing left to do.
			return nil
		default:
			// Transient failure: let asynq retry the task.
			return err
		}
	}
}

package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"ourtime-api/core/logger"
)

// Task type names shared between enqueuers and handlers.
const (
	TypeFinalChoiceEmail = "notification:final_choice_email"
	TypeReminderEmail    = "notification:reminder_email"
)

var client *asynq.Client

// InitClient creates the process-wide asynq client.
func InitClient(redisAddr string, redisPassword string, redisDB int) *asynq.Client {
	client = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	logger.Info("Task queue client initialized", "addr", redisAddr)
	return client
}

func GetClient() *asynq.Client {
	return client
}

// RunServer starts the asynq worker server with the given handlers. Blocks
// until the server stops.
func RunServer(redisAddr string, redisPassword string, redisDB int, mux *asynq.ServeMux) error {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Worker:TaskFailed", "type", task.Type(), "error", err)
			}),
		},
	)
	return srv.Run(mux)
}

package notification

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// WorkerConfig collects what the worker needs to start
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Queue       string
	Concurrency int
	Processor   *Processor
	Logger      *zap.Logger
}

// Worker wraps the asynq server
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker builds a worker that consumes the notification queue
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Processor == nil {
		return nil, errors.New("notification worker: processor is required")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Warn("notification task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
	mux := asynq.NewServeMux()
	cfg.Processor.Register(mux)
	return &Worker{server: srv, mux: mux, logger: logger}, nil
}

// Run processes tasks until ctx is cancelled, then drains in-flight tasks
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info("notification worker started")
	<-ctx.Done()
	w.server.Shutdown()
	w.logger.Info("notification worker stopped")
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/event"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/notification"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if !cfg.Redis.Enabled() {
		log.Fatal("Notification worker requires redis; set PROCUREMENT_REDIS_HOST")
	}

	processor := notification.NewProcessor(
		event.NewDomainSerializer(),
		notification.NewFormatter(cfg.Notification.Locale),
		notification.NewLogNotifier(log),
		log,
	)
	worker, err := notification.NewWorker(notification.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Queue:       cfg.Notification.Queue,
		Concurrency: cfg.Notification.Concurrency,
		Processor:   processor,
		Logger:      log,
	})
	if err != nil {
		log.Fatal("Failed to create notification worker", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting notification worker",
		zap.String("queue", cfg.Notification.Queue),
		zap.Int("concurrency", cfg.Notification.Concurrency),
		zap.String("redis", cfg.Redis.Addr()),
	)
	if err := worker.Run(ctx); err != nil {
		log.Fatal("Notification worker failed", zap.Error(err))
	}
}

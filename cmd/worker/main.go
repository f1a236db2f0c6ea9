package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/taskvault/taskvault/internal/app"
	"github.com/taskvault/taskvault/internal/platform/db"
	"github.com/taskvault/taskvault/internal/tasks"
	"github.com/taskvault/taskvault/jobs"
)

func main() {
	purgeNow := flag.Bool("purge-now", false, "enqueue an immediate purge run and exit")
	flag.Parse()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if *purgeNow {
		client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("close queue client", slog.Any("error", err))
			}
		}()
		info, err := client.EnqueuePurgeCompleted(ctx, cfg.CompletedRetention)
		if err != nil {
			logger.Error("enqueue purge", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("purge enqueued", slog.String("task_id", info.ID), slog.String("queue", info.Queue))
		return
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	tasksRepo := tasks.NewRepository(pool)
	tasksService := tasks.NewService(tasksRepo, nil, logger)
	purgeJob := jobs.NewPurgeJob(tasksService, logger)

	purgeTask, err := jobs.NewPurgeCompletedTask(cfg.CompletedRetention)
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPurgeCompleted, Handler: purgeJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.PurgeCronSpec, Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sqs-output/internal/application/buffer"
	"sqs-output/internal/application/controller"
	"sqs-output/internal/application/middleware"
	"sqs-output/internal/application/schedule"
	"sqs-output/internal/domain/usecase/health"
	awsinfra "sqs-output/internal/infra/aws"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"
	"sqs-output/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Accept records over HTTP and flush them to SQS periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, *cfgPath)
			if err != nil {
				return err
			}
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg

	// A resolution failure is cached for the whole session
	if adapter, ok := a.sender.(*awsinfra.SQSSenderAdapter); ok {
		if _, err := adapter.Resolve(ctx); err != nil {
			return err
		}
	}

	// Init buffer and schedules
	chunkBuffer := buffer.NewChunkBuffer(cfg.Buffer)
	flushScheduler := schedule.NewFlushScheduler(a.useCase, chunkBuffer, cfg.Buffer.FlushInterval)
	if err := flushScheduler.InitFlushScheduleTasks(ctx); err != nil {
		return err
	}

	var drainScheduler *schedule.RedisDrainScheduler
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis.RedisConfig())
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Ping(ctx); err != nil {
			return err
		}

		drainScheduler, err = schedule.NewRedisDrainScheduler(client, a.useCase, chunkBuffer, schedule.RedisDrainConfig{
			Key:       cfg.Redis.Key,
			Tag:       cfg.Redis.Tag,
			BatchSize: cfg.Redis.BatchSize,
			Interval:  cfg.Redis.Interval,
		})
		if err != nil {
			return err
		}
		if err := drainScheduler.InitRedisDrainTasks(); err != nil {
			return err
		}
	}

	// Init routes
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	middleware.SetupRequestLogger(e)
	api := e.Group(cfg.Server.ContextPath)

	controller.NewHealthController(api, health.NewHealthUseCase(a.sender, chunkBuffer)).InitHealthRoutes()
	controller.NewIngestController(api, a.useCase, chunkBuffer).InitIngestRoutes()

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Info(msg.GetMessage("app.started", cfg.Server.Port))

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	}

	// Stop accepting records before the final flush
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to stop HTTP server", zap.Error(err))
	}
	if drainScheduler != nil {
		if err := drainScheduler.Stop(); err != nil {
			log.Error("Failed to stop redis drain", zap.Error(err))
		}
	}
	flushScheduler.Stop(shutdownCtx)

	if stats := chunkBuffer.Stats(); stats.QueuedRecords > 0 {
		log.Warn("Records left in buffer at shutdown", zap.Int("records", stats.QueuedRecords))
	}
	log.Info(msg.GetMessage("app.stopped"))
	return runErr
}

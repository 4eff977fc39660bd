package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sqs-output/internal/application/buffer"
	"sqs-output/internal/domain/usecase/forward"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// ListSource pops raw records from a Redis list
type ListSource interface {
	Pop(ctx context.Context, key string, count int) ([]string, error)
	PushFront(ctx context.Context, key string, values ...string) error
}

// RedisDrainConfig holds the Redis list drain settings
type RedisDrainConfig struct {
	Key       string
	Tag       string
	BatchSize int
	Interval  time.Duration
}

// RedisDrainScheduler moves records from a Redis list into the chunk buffer
type RedisDrainScheduler struct {
	scheduler gocron.Scheduler
	source    ListSource
	useCase   forward.UseCase
	buffer    *buffer.ChunkBuffer
	config    RedisDrainConfig
}

func NewRedisDrainScheduler(source ListSource, useCase forward.UseCase, buffer *buffer.ChunkBuffer, config RedisDrainConfig) (*RedisDrainScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create redis drain scheduler: %w", err)
	}

	if config.Tag == "" {
		config.Tag = config.Key
	}

	return &RedisDrainScheduler{
		scheduler: scheduler,
		source:    source,
		useCase:   useCase,
		buffer:    buffer,
		config:    config,
	}, nil
}

// InitRedisDrainTasks registers the drain job and starts the scheduler
func (s *RedisDrainScheduler) InitRedisDrainTasks() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.config.Interval),
		gocron.NewTask(func(ctx context.Context) {
			if _, err := s.Drain(ctx); err != nil {
				log.Error("Failed to drain redis list", zap.String("key", s.config.Key), zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule redis drain: %w", err)
	}

	s.scheduler.Start()
	return nil
}

// Drain pops up to BatchSize records and appends them to the buffer.
// Records the buffer cannot take are pushed back to the head of the list.
func (s *RedisDrainScheduler) Drain(ctx context.Context) (int, error) {
	values, err := s.source.Pop(ctx, s.config.Key, s.config.BatchSize)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	drained := 0
	for i, value := range values {
		var fields map[string]any
		if err := json.Unmarshal([]byte(value), &fields); err != nil {
			log.Warn(msg.GetMessage("redis.decode-failed", s.config.Key), zap.Error(err))
			continue
		}

		body, err := s.useCase.Format(s.config.Tag, fields, now)
		if err != nil {
			log.Warn(msg.GetMessage("redis.decode-failed", s.config.Key), zap.Error(err))
			continue
		}

		if err := s.buffer.Append(body); err != nil {
			if errors.Is(err, buffer.ErrBufferFull) {
				log.Warn(msg.GetMessage("buffer.full"), zap.Int("returned", len(values)-i))
				return drained, s.source.PushFront(ctx, s.config.Key, values[i:]...)
			}
			return drained, err
		}
		drained++
	}

	if drained > 0 {
		log.Debug(msg.GetMessage("redis.drained", drained, s.config.Key))
	}
	return drained, nil
}

// Stop shuts the scheduler down
func (s *RedisDrainScheduler) Stop() error {
	return s.scheduler.Shutdown()
}

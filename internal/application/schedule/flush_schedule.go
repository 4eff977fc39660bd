package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sqs-output/internal/application/buffer"
	"sqs-output/internal/domain/usecase/forward"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"
	"sqs-output/pkg/sqs"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// FlushScheduler periodically writes buffered chunks to the output
type FlushScheduler struct {
	cron     *cron.Cron
	useCase  forward.UseCase
	buffer   *buffer.ChunkBuffer
	interval time.Duration
	ctx      context.Context
}

func NewFlushScheduler(useCase forward.UseCase, buffer *buffer.ChunkBuffer, interval time.Duration) *FlushScheduler {
	return &FlushScheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		useCase:  useCase,
		buffer:   buffer,
		interval: interval,
		ctx:      context.Background(),
	}
}

// InitFlushScheduleTasks registers the flush job and starts the scheduler
func (s *FlushScheduler) InitFlushScheduleTasks(ctx context.Context) error {
	s.ctx = ctx

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.Flush(s.ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule buffer flush: %w", err)
	}

	s.cron.Start()
	return nil
}

// Flush writes every buffered chunk in order.
//
// When a chunk fails on queue resolution or dispatch, it and the chunks after
// it are requeued so the whole chunk is retried on the next flush. Batches of
// that chunk already accepted by SQS are sent again on retry. Any other write
// error drops the chunk.
func (s *FlushScheduler) Flush(ctx context.Context) {
	chunks := s.buffer.Flush()
	if len(chunks) == 0 {
		return
	}

	log.Debug(msg.GetMessage("buffer.flush", len(chunks)))

	for i, chunk := range chunks {
		report, err := s.useCase.Write(ctx, chunk.Records)
		if err != nil {
			if errors.Is(err, sqs.ErrDispatch) || errors.Is(err, sqs.ErrResolution) {
				chunk.Attempts++
				log.Warn(msg.GetMessage("buffer.retry", chunk.Attempts), zap.Int("records", chunk.Len()), zap.Error(err))
				s.buffer.Requeue(chunks[i:])
				return
			}
			chunk.Attempts++
			log.Error(msg.GetMessage("buffer.write-failed", chunk.Len()), zap.Error(err))
			s.buffer.Discard(chunk)
			continue
		}
		s.buffer.MarkFlushed(report.Delivered())
	}
}

// Stop stops the scheduler and writes whatever is still buffered
func (s *FlushScheduler) Stop(ctx context.Context) {
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.Flush(ctx)
}

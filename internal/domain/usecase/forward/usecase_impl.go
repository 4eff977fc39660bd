package forward

import (
	"context"
	"time"

	"sqs-output/internal/domain/gateway/queue"
	"sqs-output/internal/domain/model"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"
	"sqs-output/pkg/record"
	"sqs-output/pkg/sqs"

	"go.uber.org/zap"
)

type forwardUseCase struct {
	sender       queue.Sender
	entryOptions sqs.EntryOptions
	serializer   record.Serializer
}

func NewForwardUseCase(sender queue.Sender, entryOptions sqs.EntryOptions, serializer record.Serializer) UseCase {
	return &forwardUseCase{
		sender:       sender,
		entryOptions: entryOptions,
		serializer:   serializer,
	}
}

func (useCase *forwardUseCase) Format(tag string, fields map[string]any, eventTime time.Time) ([]byte, error) {
	return useCase.serializer.Serialize(record.New(tag, fields, eventTime))
}

// Write drops oversized records with a warning, then sends the remaining
// batches in order. An empty plan returns without touching the queue.
// On a dispatch failure the report still lists the batches sent before it.
func (useCase *forwardUseCase) Write(ctx context.Context, chunk [][]byte) (*model.WriteReport, error) {
	plan := sqs.PlanBatches(chunk, useCase.entryOptions)

	report := &model.WriteReport{
		Records:  len(chunk),
		Batches:  len(plan.Batches),
		Rejected: plan.Rejected,
		Results:  []sqs.BatchResult{},
	}

	for _, rejected := range plan.Rejected {
		log.Warn(msg.GetMessage("output.oversized", sqs.MaxBatchBytes, rejected.Preview),
			zap.Int("record_index", rejected.Index),
			zap.Int("size", rejected.Size),
		)
	}

	if plan.Empty() {
		return report, nil
	}

	results, err := useCase.sender.SendBatches(ctx, plan.Batches)
	report.Results = append(report.Results, results...)
	report.Sent = len(results)

	for _, result := range results {
		if len(result.Failed) == 0 {
			continue
		}
		for _, failed := range result.Failed {
			log.Warn(msg.GetMessage("output.partial-failure", len(result.Failed), result.Index),
				zap.String("entry_id", failed.ID),
				zap.String("code", failed.Code),
				zap.String("reason", failed.Message),
				zap.Bool("sender_fault", failed.SenderFault),
			)
		}
	}

	if err != nil {
		log.Error(msg.GetMessage("output.dispatch-failed", report.Sent), zap.Error(err))
		return report, err
	}

	log.Debug(msg.GetMessage("output.write", len(chunk), report.Batches),
		zap.Int("rejected", report.RejectedCount()),
		zap.Int("failed_entries", report.FailedEntries()),
	)
	return report, nil
}

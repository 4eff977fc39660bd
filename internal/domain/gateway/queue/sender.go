package queue

import (
	"context"

	"sqs-output/internal/domain/model"
	"sqs-output/pkg/sqs"
)

// Sender delivers planned batches to the destination queue
type Sender interface {
	SendBatches(ctx context.Context, batches []sqs.Batch) ([]sqs.BatchResult, error)
	Health() model.ComponentHealthStatus
}

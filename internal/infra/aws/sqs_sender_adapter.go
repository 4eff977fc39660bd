package aws

import (
	"context"

	"sqs-output/internal/domain/gateway/queue"
	"sqs-output/internal/domain/model"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"
	"sqs-output/pkg/sqs"

	"go.uber.org/zap"
)

// SQSSenderAdapter adapts pkg/sqs to the domain queue.Sender interface.
// It owns the per-session queue resolution.
type SQSSenderAdapter struct {
	resolver *sqs.QueueResolver
	sender   *sqs.Sender
}

// NewSQSSenderAdapter creates a new SQS sender adapter that implements domain interface
func NewSQSSenderAdapter(sqsClient sqs.SQSClient, resolverConfig sqs.ResolverConfig) queue.Sender {
	return &SQSSenderAdapter{
		resolver: sqs.NewQueueResolver(sqsClient, resolverConfig),
		sender:   sqs.NewSender(sqsClient),
	}
}

// Resolve resolves the destination queue once and returns the cached handle afterwards
func (adapter *SQSSenderAdapter) Resolve(ctx context.Context) (sqs.QueueHandle, error) {
	resolved, _, _ := adapter.resolver.Status()
	handle, err := adapter.resolver.Resolve(ctx)
	if err == nil && !resolved {
		log.Info(msg.GetMessage("output.queue-resolved", handle.URL), zap.String("queue_url", handle.URL))
	}
	return handle, err
}

// SendBatches implements the domain interface
func (adapter *SQSSenderAdapter) SendBatches(ctx context.Context, batches []sqs.Batch) ([]sqs.BatchResult, error) {
	handle, err := adapter.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return adapter.sender.Dispatch(ctx, handle, batches)
}

// Health reports the queue resolution state
func (adapter *SQSSenderAdapter) Health() model.ComponentHealthStatus {
	resolved, handle, err := adapter.resolver.Status()

	switch {
	case !resolved:
		return model.ComponentHealthStatus{
			Status:  model.StatusUnknown,
			Details: map[string]string{"message": "queue not resolved yet"},
		}
	case err != nil:
		return model.ComponentHealthStatus{
			Status:  model.StatusDown,
			Details: map[string]string{"error": err.Error()},
		}
	default:
		details := map[string]string{"queue_url": handle.URL}
		if handle.FIFO() {
			details["fifo"] = "true"
		}
		return model.ComponentHealthStatus{
			Status:  model.StatusUp,
			Details: details,
		}
	}
}

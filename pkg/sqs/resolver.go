package sqs

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// QueueHandle identifies a provisioned queue
type QueueHandle struct {
	Name string
	URL  string
}

// FIFO reports whether the handle designates a FIFO queue
func (h QueueHandle) FIFO() bool {
	return IsFIFO(h.Name) || IsFIFO(h.URL)
}

// ResolverConfig defines how the destination queue is located
type ResolverConfig struct {
	QueueName   string
	QueueURL    string
	CreateQueue bool
}

// QueueResolver resolves the destination queue at most once per session
type QueueResolver struct {
	sqsClient SQSClient
	config    ResolverConfig

	once sync.Once

	mu       sync.RWMutex
	resolved bool
	handle   QueueHandle
	err      error
}

// NewQueueResolver creates a resolver for the given queue configuration
func NewQueueResolver(sqsClient SQSClient, config ResolverConfig) *QueueResolver {
	return &QueueResolver{
		sqsClient: sqsClient,
		config:    config,
	}
}

// Resolve returns the cached queue handle, resolving it on the first call.
//
// Resolution order:
//   - CreateQueue with QueueName, when CreateQueue is set and a name is configured
//   - QueueURL as is, when configured
//   - GetQueueUrl by QueueName
//
// The outcome of the first call, including a failure, is kept for the life of the resolver.
func (r *QueueResolver) Resolve(ctx context.Context) (QueueHandle, error) {
	r.once.Do(func() {
		handle, err := r.resolve(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.handle, r.err, r.resolved = handle, err, true
	})

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handle, r.err
}

// Status returns whether resolution has completed and its outcome, without triggering it
func (r *QueueResolver) Status() (resolved bool, handle QueueHandle, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved, r.handle, r.err
}

func (r *QueueResolver) resolve(ctx context.Context) (QueueHandle, error) {
	cfg := r.config

	switch {
	case cfg.CreateQueue && cfg.QueueName != "":
		input := &sqs.CreateQueueInput{QueueName: aws.String(cfg.QueueName)}
		if IsFIFO(cfg.QueueName) {
			input.Attributes = map[string]string{
				string(types.QueueAttributeNameFifoQueue): "true",
			}
		}
		output, err := r.sqsClient.CreateQueue(ctx, input)
		if err != nil {
			return QueueHandle{}, &ResolutionError{Queue: cfg.QueueName, Err: fmt.Errorf("failed to create queue: %w", err)}
		}
		if output.QueueUrl == nil {
			return QueueHandle{}, &ResolutionError{Queue: cfg.QueueName, Err: fmt.Errorf("queue URL is nil")}
		}
		return QueueHandle{Name: cfg.QueueName, URL: *output.QueueUrl}, nil

	case cfg.QueueURL != "":
		return QueueHandle{Name: cfg.QueueName, URL: cfg.QueueURL}, nil

	case cfg.QueueName != "":
		output, err := r.sqsClient.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(cfg.QueueName)})
		if err != nil {
			return QueueHandle{}, &ResolutionError{Queue: cfg.QueueName, Err: fmt.Errorf("failed to get queue URL: %w", err)}
		}
		if output.QueueUrl == nil {
			return QueueHandle{}, &ResolutionError{Queue: cfg.QueueName, Err: fmt.Errorf("queue URL is nil")}
		}
		return QueueHandle{Name: cfg.QueueName, URL: *output.QueueUrl}, nil

	default:
		return QueueHandle{}, &ResolutionError{Queue: "<unset>", Err: fmt.Errorf("neither queue name nor queue URL configured")}
	}
}

package sqs

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
)

// SQSClient defines the interface for SQS operations
type SQSClient interface {
	CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// EntryFailure describes an entry rejected by SQS inside an otherwise successful call
type EntryFailure struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	SenderFault bool   `json:"senderFault"`
}

// BatchResult represents the result of sending one planned batch
type BatchResult struct {
	// Index is the position of the batch in the dispatched plan
	Index int `json:"index"`
	// Calls is the number of SendMessageBatch requests issued for the batch
	Calls      int            `json:"calls"`
	Successful []string       `json:"successful"`
	Failed     []EntryFailure `json:"failed"`
}

// Sender dispatches planned batches to a SQS queue
type Sender struct {
	sqsClient SQSClient
}

// NewSender creates and returns a new Sender
func NewSender(sqsClient SQSClient) *Sender {
	return &Sender{
		sqsClient: sqsClient,
	}
}

// Dispatch sends every batch to the queue sequentially, in order.
//
// Batches holding more than MaxBatchEntries entries are split into several
// requests. When a request fails as a whole, Dispatch stops and returns the
// results gathered so far together with a *DispatchError; batches already
// sent are not resent. A batch whose earlier requests went through before
// the failure is returned with the outcome of those requests. Entries rejected individually by SQS are reported in
// BatchResult.Failed and do not stop the dispatch.
func (s *Sender) Dispatch(ctx context.Context, queue QueueHandle, batches []Batch) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(batches))

	for i, batch := range batches {
		result := BatchResult{
			Index:      i,
			Successful: []string{},
			Failed:     []EntryFailure{},
		}

		for start := 0; start < len(batch.Entries); start += MaxBatchEntries {
			end := start + MaxBatchEntries
			if end > len(batch.Entries) {
				end = len(batch.Entries)
			}

			result.Calls++
			if err := s.sendBatch(ctx, queue.URL, batch.Entries[start:end], &result); err != nil {
				dispatchErr := &DispatchError{BatchIndex: i, Sent: i, Accepted: start, Err: err}
				var apiErr smithy.APIError
				if errors.As(err, &apiErr) {
					dispatchErr.Code = apiErr.ErrorCode()
				}
				if start > 0 {
					results = append(results, result)
				}
				return results, dispatchErr
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// sendBatch sends a single request of up to 10 entries and records its outcome
func (s *Sender) sendBatch(ctx context.Context, queueURL string, entries []SendEntry, result *BatchResult) error {
	if len(entries) > MaxBatchEntries {
		return fmt.Errorf("batch size cannot exceed %d messages, got %d", MaxBatchEntries, len(entries))
	}

	requestEntries := make([]types.SendMessageBatchRequestEntry, 0, len(entries))
	for _, entry := range entries {
		requestEntry := types.SendMessageBatchRequestEntry{
			Id:           aws.String(entry.ID),
			MessageBody:  aws.String(string(entry.Body)),
			DelaySeconds: entry.DelaySeconds,
		}
		if entry.HasGroup() {
			requestEntry.MessageGroupId = aws.String(entry.GroupID)
		}
		requestEntries = append(requestEntries, requestEntry)
	}

	output, err := s.sqsClient.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(queueURL),
		Entries:  requestEntries,
	})
	if err != nil {
		return fmt.Errorf("failed to send message batch: %w", err)
	}

	for _, success := range output.Successful {
		if success.Id != nil {
			result.Successful = append(result.Successful, *success.Id)
		}
	}

	for _, failed := range output.Failed {
		result.Failed = append(result.Failed, EntryFailure{
			ID:          aws.ToString(failed.Id),
			Code:        aws.ToString(failed.Code),
			Message:     aws.ToString(failed.Message),
			SenderFault: failed.SenderFault,
		})
	}

	return nil
}

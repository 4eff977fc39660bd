package sqs

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// fakeSQSClient records every call and answers from its configured fields
type fakeSQSClient struct {
	mu sync.Mutex

	createCalls []*sqs.CreateQueueInput
	getURLCalls []*sqs.GetQueueUrlInput
	sendCalls   []*sqs.SendMessageBatchInput

	queueURL  string
	createErr error
	getURLErr error

	// sendErrAt fails the send call with the given index (0 based) when sendErr is set
	sendErrAt int
	sendErr   error
	// failIDs lists entry ids reported back as failed
	failIDs map[string]bool
}

func newFakeSQSClient() *fakeSQSClient {
	return &fakeSQSClient{
		queueURL:  "https://sqs.ap-northeast-1.amazonaws.com/000000000000/test-queue",
		sendErrAt: -1,
		failIDs:   map[string]bool{},
	}
}

func (f *fakeSQSClient) CreateQueue(_ context.Context, params *sqs.CreateQueueInput, _ ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &sqs.CreateQueueOutput{QueueUrl: aws.String(f.queueURL)}, nil
}

func (f *fakeSQSClient) GetQueueUrl(_ context.Context, params *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getURLCalls = append(f.getURLCalls, params)
	if f.getURLErr != nil {
		return nil, f.getURLErr
	}
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String(f.queueURL)}, nil
}

func (f *fakeSQSClient) SendMessageBatch(_ context.Context, params *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.sendCalls)
	f.sendCalls = append(f.sendCalls, params)
	if f.sendErr != nil && call == f.sendErrAt {
		return nil, f.sendErr
	}

	output := &sqs.SendMessageBatchOutput{}
	for _, entry := range params.Entries {
		id := aws.ToString(entry.Id)
		if f.failIDs[id] {
			output.Failed = append(output.Failed, types.BatchResultErrorEntry{
				Id:          entry.Id,
				Code:        aws.String("InvalidParameterValue"),
				Message:     aws.String("rejected by test"),
				SenderFault: true,
			})
			continue
		}
		output.Successful = append(output.Successful, types.SendMessageBatchResultEntry{Id: entry.Id})
	}
	return output, nil
}

func (f *fakeSQSClient) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sendCalls)
}

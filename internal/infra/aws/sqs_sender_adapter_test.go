package aws

import (
	"context"
	"errors"
	"testing"

	"sqs-output/internal/domain/model"
	"sqs-output/pkg/sqs"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSQSClient struct {
	createCalls int
	getURLCalls int
	sendCalls   int
	getURLErr   error
}

func (s *stubSQSClient) CreateQueue(_ context.Context, params *awssqs.CreateQueueInput, _ ...func(*awssqs.Options)) (*awssqs.CreateQueueOutput, error) {
	s.createCalls++
	return &awssqs.CreateQueueOutput{QueueUrl: aws.String("https://sqs.local/1/" + aws.ToString(params.QueueName))}, nil
}

func (s *stubSQSClient) GetQueueUrl(_ context.Context, params *awssqs.GetQueueUrlInput, _ ...func(*awssqs.Options)) (*awssqs.GetQueueUrlOutput, error) {
	s.getURLCalls++
	if s.getURLErr != nil {
		return nil, s.getURLErr
	}
	return &awssqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/1/" + aws.ToString(params.QueueName))}, nil
}

func (s *stubSQSClient) SendMessageBatch(_ context.Context, params *awssqs.SendMessageBatchInput, _ ...func(*awssqs.Options)) (*awssqs.SendMessageBatchOutput, error) {
	s.sendCalls++
	output := &awssqs.SendMessageBatchOutput{}
	for _, entry := range params.Entries {
		output.Successful = append(output.Successful, types.SendMessageBatchResultEntry{Id: entry.Id})
	}
	return output, nil
}

func TestSQSSenderAdapter_ResolvesOnceAcrossChunks(t *testing.T) {
	client := &stubSQSClient{}
	adapter := NewSQSSenderAdapter(client, sqs.ResolverConfig{QueueName: "logs", CreateQueue: true})
	plan := sqs.PlanBatches([][]byte{[]byte("a"), []byte("b")}, sqs.EntryOptions{})

	assert.Equal(t, model.StatusUnknown, adapter.Health().Status)

	for i := 0; i < 3; i++ {
		results, err := adapter.SendBatches(context.Background(), plan.Batches)
		require.NoError(t, err)
		require.Len(t, results, 1)
	}

	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, 3, client.sendCalls)

	health := adapter.Health()
	assert.Equal(t, model.StatusUp, health.Status)
	assert.Equal(t, "https://sqs.local/1/logs", health.Details["queue_url"])
}

func TestSQSSenderAdapter_ResolutionFailure(t *testing.T) {
	client := &stubSQSClient{getURLErr: errors.New("not found")}
	adapter := NewSQSSenderAdapter(client, sqs.ResolverConfig{QueueName: "logs"})
	plan := sqs.PlanBatches([][]byte{[]byte("a")}, sqs.EntryOptions{})

	_, err := adapter.SendBatches(context.Background(), plan.Batches)

	require.Error(t, err)
	assert.True(t, errors.Is(err, sqs.ErrResolution))
	assert.Zero(t, client.sendCalls)
	assert.Equal(t, model.StatusDown, adapter.Health().Status)
}

func TestNewSqsClient_Endpoint(t *testing.T) {
	client := NewSqsClient(aws.Config{Region: "us-east-1"}, "http://localhost:4566")

	assert.Equal(t, "http://localhost:4566", aws.ToString(client.Options().BaseEndpoint))
	assert.Equal(t, "us-east-1", client.Options().Region)
}

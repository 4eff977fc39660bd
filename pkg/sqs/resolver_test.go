package sqs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueResolver_CreatesQueue(t *testing.T) {
	client := newFakeSQSClient()
	resolver := NewQueueResolver(client, ResolverConfig{QueueName: "QUEUE_NAME", CreateQueue: true})

	handle, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, QueueHandle{Name: "QUEUE_NAME", URL: client.queueURL}, handle)
	require.Len(t, client.createCalls, 1)
	assert.Equal(t, "QUEUE_NAME", aws.ToString(client.createCalls[0].QueueName))
	assert.Empty(t, client.createCalls[0].Attributes)
	assert.Empty(t, client.getURLCalls)
}

func TestQueueResolver_CreatesFIFOQueue(t *testing.T) {
	client := newFakeSQSClient()
	resolver := NewQueueResolver(client, ResolverConfig{QueueName: "QUEUE_NAME.fifo", CreateQueue: true})

	handle, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.True(t, handle.FIFO())
	require.Len(t, client.createCalls, 1)
	assert.Equal(t, "true", client.createCalls[0].Attributes["FifoQueue"])
}

func TestQueueResolver_UsesURL(t *testing.T) {
	client := newFakeSQSClient()
	resolver := NewQueueResolver(client, ResolverConfig{QueueName: "QUEUE_NAME", QueueURL: "SQS_URL"})

	handle, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "SQS_URL", handle.URL)
	assert.Empty(t, client.createCalls)
	assert.Empty(t, client.getURLCalls)
}

func TestQueueResolver_LooksUpByName(t *testing.T) {
	client := newFakeSQSClient()
	resolver := NewQueueResolver(client, ResolverConfig{QueueName: "QUEUE_NAME"})

	handle, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, client.queueURL, handle.URL)
	require.Len(t, client.getURLCalls, 1)
	assert.Equal(t, "QUEUE_NAME", aws.ToString(client.getURLCalls[0].QueueName))
	assert.Empty(t, client.createCalls)
}

func TestQueueResolver_CreateWithoutNameFallsBackToURL(t *testing.T) {
	client := newFakeSQSClient()
	resolver := NewQueueResolver(client, ResolverConfig{QueueURL: "SQS_URL", CreateQueue: true})

	handle, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "SQS_URL", handle.URL)
	assert.Empty(t, client.createCalls)
}

func TestQueueResolver_ResolvesOnce(t *testing.T) {
	client := newFakeSQSClient()
	resolver := NewQueueResolver(client, ResolverConfig{QueueName: "QUEUE_NAME", CreateQueue: true})

	resolved, _, _ := resolver.Status()
	assert.False(t, resolved)

	var wg sync.WaitGroup
	handles := make([]QueueHandle, 20)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], _ = resolver.Resolve(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Len(t, client.createCalls, 1)
	for _, handle := range handles {
		assert.Equal(t, client.queueURL, handle.URL)
	}

	resolved, handle, err := resolver.Status()
	assert.True(t, resolved)
	assert.Equal(t, client.queueURL, handle.URL)
	assert.NoError(t, err)
}

func TestQueueResolver_CachesFailure(t *testing.T) {
	client := newFakeSQSClient()
	client.getURLErr = errors.New("AWS.SimpleQueueService.NonExistentQueue")
	resolver := NewQueueResolver(client, ResolverConfig{QueueName: "missing"})

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResolution))

	var resolutionErr *ResolutionError
	require.True(t, errors.As(err, &resolutionErr))
	assert.Equal(t, "missing", resolutionErr.Queue)

	client.getURLErr = nil
	_, err = resolver.Resolve(context.Background())
	assert.True(t, errors.Is(err, ErrResolution))
	assert.Len(t, client.getURLCalls, 1)
}

func TestQueueResolver_NothingConfigured(t *testing.T) {
	_, err := NewQueueResolver(newFakeSQSClient(), ResolverConfig{}).Resolve(context.Background())

	assert.True(t, errors.Is(err, ErrResolution))
}

func TestValidateGroupID(t *testing.T) {
	tests := []struct {
		name      string
		queueName string
		queueURL  string
		groupID   string
		wantErr   bool
	}{
		{"standard queue", "QUEUE_NAME", "", "", false},
		{"fifo name with group", "QUEUE_NAME.fifo", "", "MESSAGE_GROUP_ID", false},
		{"fifo name without group", "QUEUE_NAME.fifo", "", "", true},
		{"fifo url without group", "", "https://sqs.local/1/q.fifo", "", true},
		{"fifo url with group", "", "https://sqs.local/1/q.fifo", "g", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroupID(tt.queueName, tt.queueURL, tt.groupID)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			var configErr *ConfigError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, "message-group-id", configErr.Field)
		})
	}
}

package msg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMessage_FormatsArguments(t *testing.T) {
	got := GetMessage("output.oversized", 262144, "{\"a\":1}")

	assert.Equal(t, "Could not push message to SQS, payload exceeds 262144 bytes. (Truncated message: {\"a\":1})", got)
}

func TestGetMessage_NonPrimitiveArguments(t *testing.T) {
	assert.Equal(t, "Chunk dropped after [1,2] failed attempts", GetMessage("buffer.dropped", []int{1, 2}))
	assert.Contains(t, GetMessage("app.req-fail", "GET", "/x", 500, time.Second, "id", errors.New("boom")), "failed: boom")
}

func TestGetMessage_UnknownKey(t *testing.T) {
	assert.Equal(t, "Message not found: nope", GetMessage("nope"))
}

func TestInit_OverridesMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yml")
	require.NoError(t, os.WriteFile(path, []byte("custom:\n  hello: \"hi {0}\"\n"), 0644))

	require.NoError(t, Init(path))

	assert.Equal(t, "hi there", GetMessage("custom.hello", "there"))
	assert.Equal(t, "Starting sqs-output", GetMessage("app.start"))
}

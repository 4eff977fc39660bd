package record

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestSerializer_DefaultsAddTagAndTime(t *testing.T) {
	rec := New("app.access", map[string]any{"message": "hello"}, eventTime)

	body, err := DefaultSerializer().Serialize(rec)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"message": "hello",
		"__tag":   "app.access",
		"time":    "2024-03-01T12:30:00Z",
	}, decode(t, body))
}

func TestSerializer_CustomFieldNames(t *testing.T) {
	s := Serializer{IncludeTag: true, TagField: "TAG_PROPERTY_NAME", IncludeTime: true, TimeField: "ts"}

	body, err := s.Serialize(New("t", map[string]any{}, eventTime))

	require.NoError(t, err)
	fields := decode(t, body)
	assert.Equal(t, "t", fields["TAG_PROPERTY_NAME"])
	assert.Equal(t, "2024-03-01T12:30:00Z", fields["ts"])
}

func TestSerializer_Disabled(t *testing.T) {
	s := Serializer{}

	body, err := s.Serialize(New("t", map[string]any{"a": 1.0}, eventTime))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, decode(t, body))
}

func TestSerializer_TagOverridesField(t *testing.T) {
	body, err := DefaultSerializer().Serialize(New("real", map[string]any{"__tag": "spoofed"}, time.Time{}))

	require.NoError(t, err)
	fields := decode(t, body)
	assert.Equal(t, "real", fields["__tag"])
	assert.NotContains(t, fields, "time")
}

func TestSerializer_DoesNotMutateRecord(t *testing.T) {
	fields := map[string]any{"a": "b"}

	_, err := DefaultSerializer().Serialize(New("t", fields, eventTime))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b"}, fields)
}

func TestSerializer_UnsupportedValue(t *testing.T) {
	_, err := DefaultSerializer().Serialize(New("t", map[string]any{"bad": math.Inf(1)}, eventTime))

	assert.Error(t, err)
}

package record

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DefaultTagField is the property holding the source tag
	DefaultTagField = "__tag"
	// DefaultTimeField is the property holding the event time
	DefaultTimeField = "time"
)

// Record is a structured event waiting to be serialized
type Record struct {
	Fields map[string]any
	Tag    string
	Time   time.Time
}

// New creates a Record from decoded fields
func New(tag string, fields map[string]any, eventTime time.Time) Record {
	return Record{Fields: fields, Tag: tag, Time: eventTime}
}

// Serializer turns records into message bodies
type Serializer struct {
	IncludeTag  bool
	TagField    string
	IncludeTime bool
	TimeField   string
}

// DefaultSerializer returns a Serializer that adds both the tag and the time
func DefaultSerializer() Serializer {
	return Serializer{
		IncludeTag:  true,
		TagField:    DefaultTagField,
		IncludeTime: true,
		TimeField:   DefaultTimeField,
	}
}

// Serialize merges the configured properties into the record fields and encodes them as JSON.
// The record itself is left untouched.
func (s Serializer) Serialize(r Record) ([]byte, error) {
	merged := make(map[string]any, len(r.Fields)+2)
	for key, value := range r.Fields {
		merged[key] = value
	}

	if s.IncludeTime && !r.Time.IsZero() {
		merged[fieldOrDefault(s.TimeField, DefaultTimeField)] = r.Time.UTC().Format(time.RFC3339)
	}
	if s.IncludeTag {
		merged[fieldOrDefault(s.TagField, DefaultTagField)] = r.Tag
	}

	body, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize record with tag %q: %w", r.Tag, err)
	}
	return body, nil
}

func fieldOrDefault(field, fallback string) string {
	if field == "" {
		return fallback
	}
	return field
}

package sqs

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxBatchEntries is the maximum number of entries accepted by a single SendMessageBatch call
	MaxBatchEntries = 10
	// MaxBatchBytes is the maximum cumulative payload size of a single SendMessageBatch call
	MaxBatchBytes = 262144
	// FIFOSuffix marks queue names and URLs of FIFO (ordered/grouped) queues
	FIFOSuffix = ".fifo"

	previewBytes = 200
	maxIDPrefix  = 48
)

// SendEntry represents a single message submitted inside a batch
type SendEntry struct {
	ID           string
	Body         []byte
	DelaySeconds int32
	GroupID      string
}

// HasGroup reports whether the entry carries a message group id
func (e SendEntry) HasGroup() bool {
	return e.GroupID != ""
}

// Batch is an ordered, non-empty group of entries that fits in one SendMessageBatch call
type Batch struct {
	Entries []SendEntry
	Bytes   int
}

// Len returns the number of entries in the batch
func (b Batch) Len() int {
	return len(b.Entries)
}

// IDs returns the entry ids in batch order
func (b Batch) IDs() []string {
	ids := make([]string, len(b.Entries))
	for i, entry := range b.Entries {
		ids[i] = entry.ID
	}
	return ids
}

// EntryOptions holds the per-queue values stamped on every planned entry
type EntryOptions struct {
	// IDPrefix is prepended to every generated entry id
	IDPrefix string
	// DelaySeconds is the delivery delay applied to every entry
	DelaySeconds int32
	// GroupID is the message group id, set only for FIFO queues
	GroupID string
}

// IsFIFO reports whether a queue name or URL designates a FIFO queue
func IsFIFO(queue string) bool {
	return strings.HasSuffix(queue, FIFOSuffix)
}

// newEntryID returns a prefix followed by 32 random hex characters.
// SQS only accepts alphanumerics, hyphens and underscores, up to 80 characters.
func newEntryID(prefix string) string {
	id := uuid.New()
	return sanitizeIDPrefix(prefix) + strings.ReplaceAll(id.String(), "-", "")
}

func sanitizeIDPrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if b.Len() >= maxIDPrefix {
			break
		}
		if r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// preview truncates a payload for diagnostics
func preview(body []byte) string {
	if len(body) <= previewBytes {
		return string(body)
	}
	return string(body[:previewBytes])
}

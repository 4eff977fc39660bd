package buffer

import (
	"errors"
	"strconv"
	"sync"

	"sqs-output/internal/config"
	"sqs-output/internal/domain/model"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"

	"go.uber.org/zap"
)

// ErrBufferFull is returned by Append when no more chunks can be queued
var ErrBufferFull = errors.New("buffer: full")

// Chunk is a finite, ordered group of serialized records handed to the output in one write
type Chunk struct {
	Records  [][]byte
	Bytes    int
	Attempts int
}

// Len returns the number of records in the chunk
func (c *Chunk) Len() int {
	return len(c.Records)
}

// Stats is a point-in-time view of the buffer
type Stats struct {
	QueuedChunks  int   `json:"queuedChunks"`
	QueuedRecords int   `json:"queuedRecords"`
	QueuedBytes   int   `json:"queuedBytes"`
	Appended      int64 `json:"appended"`
	Flushed       int64 `json:"flushed"`
	Dropped       int64 `json:"dropped"`
}

// ChunkBuffer accumulates records into size-bounded chunks until they are flushed
type ChunkBuffer struct {
	mu sync.Mutex

	chunkRecords int
	chunkBytes   int
	maxChunks    int
	retryLimit   int

	open   *Chunk
	closed []*Chunk

	appended int64
	flushed  int64
	dropped  int64
}

// NewChunkBuffer creates a buffer with the given limits
func NewChunkBuffer(cfg config.BufferConfig) *ChunkBuffer {
	return &ChunkBuffer{
		chunkRecords: cfg.ChunkRecords,
		chunkBytes:   cfg.ChunkBytes,
		maxChunks:    cfg.MaxChunks,
		retryLimit:   cfg.RetryLimit,
		open:         &Chunk{},
	}
}

// Append adds a serialized record to the open chunk, closing it first when
// the record would exceed the chunk limits.
func (b *ChunkBuffer) Append(body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open.Len() > 0 && (b.open.Len()+1 > b.chunkRecords || b.open.Bytes+len(body) > b.chunkBytes) {
		if b.full() {
			return ErrBufferFull
		}
		b.closed = append(b.closed, b.open)
		b.open = &Chunk{}
	}

	b.open.Records = append(b.open.Records, body)
	b.open.Bytes += len(body)
	b.appended++
	return nil
}

// full reports whether no more chunks can be closed. Callers hold mu.
func (b *ChunkBuffer) full() bool {
	return len(b.closed) >= b.maxChunks
}

// Flush closes the open chunk and removes every queued chunk from the buffer, oldest first
func (b *ChunkBuffer) Flush() []*Chunk {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open.Len() > 0 {
		b.closed = append(b.closed, b.open)
		b.open = &Chunk{}
	}

	chunks := b.closed
	b.closed = nil
	return chunks
}

// Requeue puts chunks back at the head of the queue, keeping their order.
// Chunks that already failed more than the retry limit are dropped.
func (b *ChunkBuffer) Requeue(chunks []*Chunk) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]*Chunk, 0, len(chunks)+len(b.closed))
	for _, chunk := range chunks {
		if chunk.Attempts > b.retryLimit {
			b.dropChunk(chunk)
			continue
		}
		kept = append(kept, chunk)
	}
	b.closed = append(kept, b.closed...)
}

// Discard drops a chunk that cannot be delivered
func (b *ChunkBuffer) Discard(chunk *Chunk) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropChunk(chunk)
}

// dropChunk counts and logs a dropped chunk. Callers hold mu.
func (b *ChunkBuffer) dropChunk(chunk *Chunk) {
	b.dropped += int64(chunk.Len())
	log.Error(msg.GetMessage("buffer.dropped", chunk.Attempts),
		zap.Int("records", chunk.Len()),
		zap.Int("bytes", chunk.Bytes),
	)
}

// MarkFlushed records the number of records delivered from flushed chunks
func (b *ChunkBuffer) MarkFlushed(records int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushed += int64(records)
}

// Stats returns the buffer counters
func (b *ChunkBuffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := Stats{
		QueuedChunks:  len(b.closed),
		QueuedRecords: b.open.Len(),
		QueuedBytes:   b.open.Bytes,
		Appended:      b.appended,
		Flushed:       b.flushed,
		Dropped:       b.dropped,
	}
	if b.open.Len() > 0 {
		stats.QueuedChunks++
	}
	for _, chunk := range b.closed {
		stats.QueuedRecords += chunk.Len()
		stats.QueuedBytes += chunk.Bytes
	}
	return stats
}

// Health reports DOWN when the buffer cannot take new chunks
func (b *ChunkBuffer) Health() model.ComponentHealthStatus {
	stats := b.Stats()

	b.mu.Lock()
	full := b.full()
	b.mu.Unlock()

	status := model.StatusUp
	if full {
		status = model.StatusDown
	}

	return model.ComponentHealthStatus{
		Status: status,
		Details: map[string]string{
			"queued_chunks":  strconv.Itoa(stats.QueuedChunks),
			"queued_records": strconv.Itoa(stats.QueuedRecords),
			"queued_bytes":   strconv.Itoa(stats.QueuedBytes),
			"appended":       strconv.FormatInt(stats.Appended, 10),
			"flushed":        strconv.FormatInt(stats.Flushed, 10),
			"dropped":        strconv.FormatInt(stats.Dropped, 10),
		},
	}
}

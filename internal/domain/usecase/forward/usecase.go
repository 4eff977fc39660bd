package forward

import (
	"context"
	"time"

	"sqs-output/internal/domain/model"
)

type UseCase interface {
	// Format serializes a structured record into a message body
	Format(tag string, fields map[string]any, eventTime time.Time) ([]byte, error)
	// Write plans a chunk of serialized records into batches and sends them
	Write(ctx context.Context, chunk [][]byte) (*model.WriteReport, error)
}

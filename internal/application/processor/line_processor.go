package processor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"sqs-output/internal/domain/model"
	"sqs-output/internal/domain/usecase/forward"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"

	"go.uber.org/zap"
)

// maxLineBytes bounds a single input line
const maxLineBytes = 1 << 20

// Summary totals a processed input
type Summary struct {
	Lines     int `json:"lines"`
	Skipped   int `json:"skipped"`
	Chunks    int `json:"chunks"`
	Delivered int `json:"delivered"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
}

func (s *Summary) add(report *model.WriteReport) {
	if report == nil {
		return
	}
	s.Chunks++
	s.Delivered += report.Delivered()
	s.Rejected += report.RejectedCount()
	s.Failed += report.FailedEntries()
}

// LineProcessor forwards newline-delimited JSON objects to the output
type LineProcessor struct {
	useCase      forward.UseCase
	tag          string
	chunkRecords int
	now          func() time.Time
}

func NewLineProcessor(useCase forward.UseCase, tag string, chunkRecords int) *LineProcessor {
	if chunkRecords <= 0 {
		chunkRecords = 1
	}
	return &LineProcessor{
		useCase:      useCase,
		tag:          tag,
		chunkRecords: chunkRecords,
		now:          time.Now,
	}
}

// Process reads every line of r and writes the records in chunks of chunkRecords.
// Blank and undecodable lines are skipped. The first failed write stops processing.
func (p *LineProcessor) Process(ctx context.Context, r io.Reader) (*Summary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	summary := &Summary{}
	chunk := make([][]byte, 0, p.chunkRecords)

	for scanner.Scan() {
		summary.Lines++
		line := scanner.Bytes()
		if len(line) == 0 {
			summary.Skipped++
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil || fields == nil {
			summary.Skipped++
			log.Warn(msg.GetMessage("pipe.decode-failed", summary.Lines), zap.Error(err))
			continue
		}

		body, err := p.useCase.Format(p.tag, fields, p.now())
		if err != nil {
			summary.Skipped++
			log.Warn(msg.GetMessage("pipe.decode-failed", summary.Lines), zap.Error(err))
			continue
		}

		chunk = append(chunk, body)
		if len(chunk) == p.chunkRecords {
			if err := p.write(ctx, chunk, summary); err != nil {
				return summary, err
			}
			chunk = make([][]byte, 0, p.chunkRecords)
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read input: %w", err)
	}

	if len(chunk) > 0 {
		if err := p.write(ctx, chunk, summary); err != nil {
			return summary, err
		}
	}

	log.Info(msg.GetMessage("pipe.done", summary.Delivered),
		zap.Int("lines", summary.Lines),
		zap.Int("skipped", summary.Skipped),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (p *LineProcessor) write(ctx context.Context, chunk [][]byte, summary *Summary) error {
	report, err := p.useCase.Write(ctx, chunk)
	summary.add(report)
	return err
}

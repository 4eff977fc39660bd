package processor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"sqs-output/internal/domain/model"
	"sqs-output/pkg/sqs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUseCase struct {
	chunks [][][]byte
	err    error
}

func (m *mockUseCase) Format(tag string, fields map[string]any, _ time.Time) ([]byte, error) {
	fields["__tag"] = tag
	return json.Marshal(fields)
}

func (m *mockUseCase) Write(_ context.Context, chunk [][]byte) (*model.WriteReport, error) {
	m.chunks = append(m.chunks, chunk)
	if m.err != nil {
		return &model.WriteReport{Records: len(chunk)}, m.err
	}
	return &model.WriteReport{
		Records: len(chunk),
		Results: []sqs.BatchResult{{Successful: make([]string, len(chunk))}},
	}, nil
}

func TestLineProcessor_ChunksRecords(t *testing.T) {
	useCase := &mockUseCase{}
	input := strings.Join([]string{`{"n":1}`, ``, `{"n":2}`, `oops`, `{"n":3}`}, "\n")

	summary, err := NewLineProcessor(useCase, "app", 2).Process(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, useCase.chunks, 2)
	assert.Len(t, useCase.chunks[0], 2)
	assert.Len(t, useCase.chunks[1], 1)
	assert.JSONEq(t, `{"n":3,"__tag":"app"}`, string(useCase.chunks[1][0]))
	assert.Equal(t, &Summary{Lines: 5, Skipped: 2, Chunks: 2, Delivered: 3}, summary)
}

func TestLineProcessor_SkipsNonObjects(t *testing.T) {
	useCase := &mockUseCase{}

	summary, err := NewLineProcessor(useCase, "app", 10).Process(context.Background(), strings.NewReader("[1,2]\nnull\n\"text\"\n"))

	require.NoError(t, err)
	assert.Empty(t, useCase.chunks)
	assert.Equal(t, 3, summary.Skipped)
}

func TestLineProcessor_StopsOnWriteFailure(t *testing.T) {
	useCase := &mockUseCase{err: &sqs.DispatchError{Err: errors.New("boom")}}
	input := "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n"

	summary, err := NewLineProcessor(useCase, "app", 1).Process(context.Background(), strings.NewReader(input))

	require.ErrorIs(t, err, sqs.ErrDispatch)
	assert.Len(t, useCase.chunks, 1)
	assert.Equal(t, 1, summary.Chunks)
	assert.Zero(t, summary.Delivered)
}

func TestLineProcessor_NonPositiveChunkSize(t *testing.T) {
	useCase := &mockUseCase{}

	_, err := NewLineProcessor(useCase, "app", 0).Process(context.Background(), strings.NewReader("{}\n{}\n"))

	require.NoError(t, err)
	assert.Len(t, useCase.chunks, 2)
}

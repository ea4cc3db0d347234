package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerIngestsBatch(t *testing.T) {
	fx := newPipelineFixture(t, WithChunking(10, 2))

	runner, err := NewRunner(fx.pipeline, 4)
	require.NoError(t, err)
	defer runner.Release()

	ids := []string{"ep-001", "ep-002", "ep-003"}
	reports, err := runner.IngestAll(context.Background(), ids, nil)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	for i, report := range reports {
		assert.Equal(t, ids[i], report.ItemID)
		require.NoError(t, report.Err)
		assert.Positive(t, report.Result.SegmentsCreated)
	}

	items, err := fx.items.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRunnerReportsPerItemFailures(t *testing.T) {
	fx := newPipelineFixture(t, WithChunking(10, 2))
	fx.fetcher.shouldError = true

	runner, err := NewRunner(fx.pipeline, 2)
	require.NoError(t, err)
	defer runner.Release()

	reports, err := runner.IngestAll(context.Background(), []string{"ep-001", "ep-002"}, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	for _, report := range reports {
		var stageErr *StageError
		require.ErrorAs(t, report.Err, &stageErr)
		assert.Equal(t, StageAcquireContent, stageErr.Stage)
	}
}

func TestRunnerReleased(t *testing.T) {
	fx := newPipelineFixture(t)

	runner, err := NewRunner(fx.pipeline, 1)
	require.NoError(t, err)
	runner.Release()

	_, err = runner.IngestAll(context.Background(), []string{"ep-001"}, nil)
	assert.ErrorIs(t, err, ErrRunnerReleased)
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(nil, 1)
	assert.ErrorIs(t, err, ErrPipelineRequired)
}

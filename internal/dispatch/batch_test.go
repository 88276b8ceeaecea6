package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

func TestProcessEvent_AllSucceed(t *testing.T) {
	env := newTestEnv(t,
		identity(1, "budi@gmail.com", "Budi", "budi", "male"),
		identity(2, "sari@gmail.com", "Sari", "sari", "female"),
	)

	results := env.coordinator.ProcessEvent(context.Background(), jobEvent())

	assert.Equal(t, map[string]bool{
		"budi@gmail.com": true,
		"sari@gmail.com": true,
	}, results)
	assert.Equal(t, int64(1), env.stats.Snapshot().Processed)
}

func TestProcessEvent_OneTransportFailureIsIsolated(t *testing.T) {
	env := newTestEnv(t,
		identity(1, "budi@gmail.com", "Budi", "budi", "male"),
		identity(2, "sari@gmail.com", "Sari", "sari", "female"),
		identity(3, "andi@gmail.com", "Andi", "andi", "male"),
	)
	env.transport.failFor["sari@gmail.com"] = errors.New("connection reset")

	results := env.coordinator.ProcessEvent(context.Background(), jobEvent())

	assert.Equal(t, map[string]bool{
		"budi@gmail.com": true,
		"sari@gmail.com": false,
		"andi@gmail.com": true,
	}, results)
}

func TestProcessEvent_DedupAcrossIdentities(t *testing.T) {
	env := newTestEnv(t,
		identity(1, "budi@gmail.com", "Budi", "budi", "male"),
		identity(2, "sari@gmail.com", "Sari", "sari", "female"),
	)

	// budi already emailed this target; only sari succeeds.
	_, err := env.sentLog.RecordBatch(context.Background(),
		[]model.SentPair{{Target: "hr@x.com", Sender: "budi@gmail.com"}})
	require.NoError(t, err)

	results := env.coordinator.ProcessEvent(context.Background(), jobEvent())

	assert.Equal(t, map[string]bool{
		"budi@gmail.com": false,
		"sari@gmail.com": true,
	}, results)
	assert.Equal(t, int64(1), env.stats.Snapshot().SkippedDuplicate)
}

func TestProcessEvent_ProcessedCountedOncePerEvent(t *testing.T) {
	env := newTestEnv(t,
		identity(1, "budi@gmail.com", "Budi", "budi", "male"),
		identity(2, "sari@gmail.com", "Sari", "sari", "female"),
		identity(3, "andi@gmail.com", "Andi", "andi", "male"),
	)

	env.coordinator.ProcessEvent(context.Background(), jobEvent())
	env.coordinator.ProcessEvent(context.Background(), jobEvent())

	assert.Equal(t, int64(2), env.stats.Snapshot().Processed)
}

func TestRecordBatch_SecondCallInsertsNothing(t *testing.T) {
	env := newTestEnv(t)
	pairs := []model.SentPair{{Target: "hr@x.com", Sender: "budi@gmail.com"}}

	first, err := env.sentLog.RecordBatch(context.Background(), pairs)
	require.NoError(t, err)
	second, err := env.sentLog.RecordBatch(context.Background(), pairs)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Zero(t, second)
}

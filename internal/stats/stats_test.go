package stats_test

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobseek-id/auto-emailer/internal/stats"
)

func TestCounters(t *testing.T) {
	s := stats.New()
	s.IncProcessed()
	s.AddSent(3)
	s.IncFailed()
	s.IncSkippedGender()
	s.IncSkippedBlocked()
	s.IncSkippedDuplicate()
	s.IncSkippedDuplicate()

	snap := s.Snapshot()
	assert.Equal(t, int64(1), snap.Processed)
	assert.Equal(t, int64(3), snap.Sent)
	assert.Equal(t, int64(1), snap.Failed)
	assert.Equal(t, int64(1), snap.SkippedGender)
	assert.Equal(t, int64(1), snap.SkippedBlocked)
	assert.Equal(t, int64(2), snap.SkippedDuplicate)
}

func TestReset(t *testing.T) {
	s := stats.New()
	s.IncProcessed()
	s.AddSent(5)
	s.Reset()

	snap := s.Snapshot()
	assert.Zero(t, snap.Processed)
	assert.Zero(t, snap.Sent)
}

func TestConcurrentUpdates(t *testing.T) {
	s := stats.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.IncProcessed()
			s.AddSent(2)
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, int64(50), snap.Processed)
	assert.Equal(t, int64(100), snap.Sent)
}

func TestCollector(t *testing.T) {
	s := stats.New()
	s.IncProcessed()
	s.AddSent(2)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(s))

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			byName[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), byName["auto_emailer_events_processed_total"])
	assert.Equal(t, float64(2), byName["auto_emailer_emails_sent_total"])
}

func TestSummaryContainsCounts(t *testing.T) {
	s := stats.New()
	s.IncProcessed()
	out := s.Summary()
	assert.Contains(t, out, "Jobs processed")
	assert.Contains(t, out, "Skipped (duplicate)")
}

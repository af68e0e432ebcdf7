package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttestationCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewAttestationCollector(registry)

	collector.TaskCreated(3)
	collector.TaskCreated(3)
	collector.TaskRateLimited()
	collector.VoteAccepted(true)
	collector.VoteRejected(ReasonDuplicateVote)
	collector.TaskFinalized(true, false)
	collector.TaskFinalized(false, true)
	collector.ReconciliationCompleted(time.Millisecond, 2, 1)
	collector.RateCountersPruned(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.tasksCreated.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.tasksRateLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.votesRejected.WithLabelValues(ReasonDuplicateVote)))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.reconcileRepaired))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.reconcileFailed))
	assert.Equal(t, 5.0, testutil.ToFloat64(collector.countersPruned))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.tasksFinalized))

	// registering a second collector on the same registry is a programming error
	require.Panics(t, func() {
		NewAttestationCollector(registry)
	})
}

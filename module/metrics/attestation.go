package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onflow/flow-attestation/module"
)

// AttestationCollector reports the metrics of an attestation node to prometheus.
type AttestationCollector struct {
	cacheEntries  *prometheus.GaugeVec
	cacheHits     *prometheus.CounterVec
	cacheNotFound *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec

	tasksCreated     *prometheus.CounterVec
	tasksRateLimited prometheus.Counter

	votesAccepted  *prometheus.CounterVec
	votesRejected  *prometheus.CounterVec
	tasksFinalized *prometheus.CounterVec
	applyFailures  prometheus.Counter

	itemTransitions  *prometheus.CounterVec
	issuanceDuration prometheus.Histogram
	issuanceFailures prometheus.Counter

	reconcileDuration prometheus.Histogram
	reconcileRepaired prometheus.Counter
	reconcileFailed   prometheus.Counter
	countersPruned    prometheus.Counter
}

var _ module.AttestationMetrics = (*AttestationCollector)(nil)

func NewAttestationCollector(registerer prometheus.Registerer) *AttestationCollector {
	ac := &AttestationCollector{
		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "entries_total",
			Help:      "the number of entries in the storage cache",
		}, []string{LabelResource}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "hits_total",
			Help:      "the number of hits for the storage cache",
		}, []string{LabelResource}),
		cacheNotFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "notfounds_total",
			Help:      "the number of times the queried item was not found in either cache or database",
		}, []string{LabelResource}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "misses_total",
			Help:      "the number of times the queried item was not found in the cache but in the database",
		}, []string{LabelResource}),

		tasksCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemRegistry,
			Name:      "tasks_created_total",
			Help:      "the number of tasks opened in the registry",
		}, []string{LabelCategory}),
		tasksRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemRegistry,
			Name:      "tasks_rate_limited_total",
			Help:      "the number of task creations refused by the rate limiter",
		}),

		votesAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemConsensus,
			Name:      "votes_accepted_total",
			Help:      "the number of recorded responses by declared outcome",
		}, []string{LabelOutcome}),
		votesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemConsensus,
			Name:      "votes_rejected_total",
			Help:      "the number of refused responses by reason",
		}, []string{LabelReason}),
		tasksFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemConsensus,
			Name:      "tasks_finalized_total",
			Help:      "the number of finalized tasks by outcome and source",
		}, []string{LabelOutcome, LabelSource}),
		applyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemConsensus,
			Name:      "downstream_apply_failures_total",
			Help:      "the number of finalized tasks whose lifecycle transition failed",
		}),

		itemTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemLifecycle,
			Name:      "item_transitions_total",
			Help:      "the number of item status transitions by target status",
		}, []string{LabelStatus}),
		issuanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemLifecycle,
			Name:      "artifact_issuance_duration_seconds",
			Help:      "the duration of successful artifact issuance calls",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		issuanceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemLifecycle,
			Name:      "artifact_issuance_failures_total",
			Help:      "the number of failed artifact issuance calls",
		}),

		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemReconciler,
			Name:      "pass_duration_seconds",
			Help:      "the duration of a reconciliation pass",
		}),
		reconcileRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemReconciler,
			Name:      "repaired_total",
			Help:      "the number of tasks and items repaired by reconciliation",
		}),
		reconcileFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemReconciler,
			Name:      "failed_total",
			Help:      "the number of repairs that failed and will be retried in a later pass",
		}),
		countersPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceAttestation,
			Subsystem: subsystemReconciler,
			Name:      "rate_counters_pruned_total",
			Help:      "the number of expired rate limit counters removed",
		}),
	}

	registerer.MustRegister(
		ac.cacheEntries, ac.cacheHits, ac.cacheNotFound, ac.cacheMisses,
		ac.tasksCreated, ac.tasksRateLimited,
		ac.votesAccepted, ac.votesRejected, ac.tasksFinalized, ac.applyFailures,
		ac.itemTransitions, ac.issuanceDuration, ac.issuanceFailures,
		ac.reconcileDuration, ac.reconcileRepaired, ac.reconcileFailed, ac.countersPruned,
	)

	return ac
}

func (ac *AttestationCollector) CacheEntries(resource string, entries uint) {
	ac.cacheEntries.WithLabelValues(resource).Set(float64(entries))
}

func (ac *AttestationCollector) CacheHit(resource string) {
	ac.cacheHits.WithLabelValues(resource).Inc()
}

func (ac *AttestationCollector) CacheNotFound(resource string) {
	ac.cacheNotFound.WithLabelValues(resource).Inc()
}

func (ac *AttestationCollector) CacheMiss(resource string) {
	ac.cacheMisses.WithLabelValues(resource).Inc()
}

func (ac *AttestationCollector) TaskCreated(category uint8) {
	ac.tasksCreated.WithLabelValues(strconv.Itoa(int(category))).Inc()
}

func (ac *AttestationCollector) TaskRateLimited() {
	ac.tasksRateLimited.Inc()
}

func (ac *AttestationCollector) VoteAccepted(outcome bool) {
	ac.votesAccepted.WithLabelValues(strconv.FormatBool(outcome)).Inc()
}

func (ac *AttestationCollector) VoteRejected(reason string) {
	ac.votesRejected.WithLabelValues(reason).Inc()
}

// TaskFinalized counts finalizations by outcome, labelled with whether quorum
// or an admin override committed the result.
func (ac *AttestationCollector) TaskFinalized(outcome bool, overridden bool) {
	source := "quorum"
	if overridden {
		source = "override"
	}
	ac.tasksFinalized.WithLabelValues(strconv.FormatBool(outcome), source).Inc()
}

func (ac *AttestationCollector) DownstreamApplyFailed() {
	ac.applyFailures.Inc()
}

func (ac *AttestationCollector) ItemTransitioned(status string) {
	ac.itemTransitions.WithLabelValues(status).Inc()
}

func (ac *AttestationCollector) ArtifactIssued(duration time.Duration) {
	ac.issuanceDuration.Observe(duration.Seconds())
}

func (ac *AttestationCollector) ArtifactIssuanceFailed() {
	ac.issuanceFailures.Inc()
}

func (ac *AttestationCollector) ReconciliationCompleted(duration time.Duration, repaired int, failed int) {
	ac.reconcileDuration.Observe(duration.Seconds())
	ac.reconcileRepaired.Add(float64(repaired))
	ac.reconcileFailed.Add(float64(failed))
}

func (ac *AttestationCollector) RateCountersPruned(count int) {
	ac.countersPruned.Add(float64(count))
}

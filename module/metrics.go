package module

import (
	"time"
)

// CacheMetrics report the behaviour of the read caches in front of the database.
type CacheMetrics interface {
	// CacheEntries report the total number of cached items
	CacheEntries(resource string, entries uint)
	// CacheHit report the number of times the queried item is found in the cache
	CacheHit(resource string)
	// CacheNotFound records the number of times the queried item was not found in either cache or database.
	CacheNotFound(resource string)
	// CacheMiss report the number of times the queried item is not found in the cache, but found in the database.
	CacheMiss(resource string)
}

// RegistryMetrics report task creation.
type RegistryMetrics interface {
	// TaskCreated is called once per task opened in the registry.
	TaskCreated(category uint8)
	// TaskRateLimited is called whenever a creator was refused by the rate limiter.
	TaskRateLimited()
}

// ConsensusMetrics report vote processing and finalization.
type ConsensusMetrics interface {
	// VoteAccepted is called for every response that was recorded.
	VoteAccepted(outcome bool)
	// VoteRejected is called for every response that was refused, labelled by reason.
	VoteRejected(reason string)
	// TaskFinalized is called exactly once per task when consensus is committed.
	TaskFinalized(outcome bool, overridden bool)
	// DownstreamApplyFailed is called when the lifecycle transition after finalization failed.
	DownstreamApplyFailed()
}

// LifecycleMetrics report item transitions and artifact issuance.
type LifecycleMetrics interface {
	// ItemTransitioned is called whenever an item changes status.
	ItemTransitioned(status string)
	// ArtifactIssued reports a successful issuance and how long it took.
	ArtifactIssued(duration time.Duration)
	// ArtifactIssuanceFailed is called when the issuer returned an error.
	ArtifactIssuanceFailed()
}

// ReconcilerMetrics report the housekeeping worker.
type ReconcilerMetrics interface {
	// ReconciliationCompleted reports one pass with the number of repaired entities.
	ReconciliationCompleted(duration time.Duration, repaired int, failed int)
	// RateCountersPruned reports how many expired counters were removed.
	RateCountersPruned(count int)
}

// AttestationMetrics is the union of all metrics reported by an attestation node.
type AttestationMetrics interface {
	CacheMetrics
	RegistryMetrics
	ConsensusMetrics
	LifecycleMetrics
	ReconcilerMetrics
}

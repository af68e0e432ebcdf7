package metrics

import (
	"time"

	"github.com/onflow/flow-attestation/module"
)

type NoopCollector struct{}

var _ module.AttestationMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) CacheEntries(resource string, entries uint)                           {}
func (nc *NoopCollector) CacheHit(resource string)                                             {}
func (nc *NoopCollector) CacheNotFound(resource string)                                        {}
func (nc *NoopCollector) CacheMiss(resource string)                                            {}
func (nc *NoopCollector) TaskCreated(category uint8)                                           {}
func (nc *NoopCollector) TaskRateLimited()                                                     {}
func (nc *NoopCollector) VoteAccepted(outcome bool)                                            {}
func (nc *NoopCollector) VoteRejected(reason string)                                           {}
func (nc *NoopCollector) TaskFinalized(outcome bool, overridden bool)                          {}
func (nc *NoopCollector) DownstreamApplyFailed()                                               {}
func (nc *NoopCollector) ItemTransitioned(status string)                                       {}
func (nc *NoopCollector) ArtifactIssued(duration time.Duration)                                {}
func (nc *NoopCollector) ArtifactIssuanceFailed()                                              {}
func (nc *NoopCollector) ReconciliationCompleted(duration time.Duration, repaired, failed int) {}
func (nc *NoopCollector) RateCountersPruned(count int)                                         {}

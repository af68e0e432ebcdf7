package reconciler

import (
	"time"

	"github.com/onflow/flow-attestation/model/attestation"
)

type Config struct {
	// Interval between two reconciliation passes.
	Interval time.Duration
	// Workers is the number of entities repaired concurrently.
	Workers int
	// RetryBase is the initial backoff between attempts on one entity.
	RetryBase time.Duration
	// RetryMax is the number of retries per entity and pass.
	RetryMax uint64
	// RetentionPeriods is the number of past rate limit periods whose
	// counters are kept.
	RetentionPeriods uint64
}

func DefaultConfig() Config {
	return Config{
		Interval:         30 * time.Second,
		Workers:          4,
		RetryBase:        100 * time.Millisecond,
		RetryMax:         3,
		RetentionPeriods: 2,
	}
}

func (c Config) Validate() error {
	if c.Interval <= 0 {
		return attestation.NewConfigurationErrorf("interval must be positive, got %s", c.Interval)
	}
	if c.Workers < 1 {
		return attestation.NewConfigurationErrorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.RetryBase <= 0 {
		return attestation.NewConfigurationErrorf("retry base must be positive, got %s", c.RetryBase)
	}
	return nil
}

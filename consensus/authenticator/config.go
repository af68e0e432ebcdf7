package authenticator

import (
	"github.com/onflow/flow-attestation/model/attestation"
)

const (
	// MinConfidenceThreshold is the lowest confidence threshold a node may be configured with.
	MinConfidenceThreshold = 50
	// MaxConfidenceThreshold is the highest confidence threshold a node may be configured with.
	MaxConfidenceThreshold = attestation.MaxScore
)

// Config holds the consensus parameters. They are fixed for the lifetime of
// the authenticator.
type Config struct {
	// ConfidenceThreshold is the lowest score a vote must declare to be counted.
	ConfidenceThreshold uint8
	// RequiredQuorum is the number of counted votes that finalizes a task.
	RequiredQuorum uint32
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 75,
		RequiredQuorum:      3,
	}
}

// Validate returns an attestation.ConfigurationError if a parameter is out of range.
func (c Config) Validate() error {
	if c.ConfidenceThreshold < MinConfidenceThreshold || c.ConfidenceThreshold > MaxConfidenceThreshold {
		return attestation.NewConfigurationErrorf("confidence threshold must be within [%d, %d], got %d",
			MinConfidenceThreshold, MaxConfidenceThreshold, c.ConfidenceThreshold)
	}
	if c.RequiredQuorum < 1 {
		return attestation.NewConfigurationErrorf("required quorum must be at least 1")
	}
	return nil
}

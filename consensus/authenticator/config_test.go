package authenticator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onflow/flow-attestation/model/attestation"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{ConfidenceThreshold: 50, RequiredQuorum: 1}.Validate())
	assert.NoError(t, Config{ConfidenceThreshold: 100, RequiredQuorum: 1}.Validate())

	invalid := []Config{
		{ConfidenceThreshold: 49, RequiredQuorum: 1},
		{ConfidenceThreshold: 101, RequiredQuorum: 1},
		{ConfidenceThreshold: 75, RequiredQuorum: 0},
	}
	for _, config := range invalid {
		err := config.Validate()
		assert.True(t, attestation.IsConfigurationError(err), "config %+v", config)
	}
}

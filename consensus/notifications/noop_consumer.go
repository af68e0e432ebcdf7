package notifications

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/consensus"
	"github.com/onflow/flow-attestation/model/attestation"
)

// NoopConsumer is an implementation of the notifications consumer that
// doesn't do anything.
type NoopConsumer struct {
	NoopRegistryConsumer
	NoopVoteConsumer
	NoopFinalizationConsumer
	NoopLifecycleConsumer
}

var _ consensus.Consumer = (*NoopConsumer)(nil)

func NewNoopConsumer() *NoopConsumer {
	nc := &NoopConsumer{}
	return nc
}

// no-op implementation of consensus.RegistryConsumer

type NoopRegistryConsumer struct{}

var _ consensus.RegistryConsumer = (*NoopRegistryConsumer)(nil)

func (*NoopRegistryConsumer) OnTaskCreated(*attestation.Task, common.Address) {}

// no-op implementation of consensus.VoteConsumer

type NoopVoteConsumer struct{}

var _ consensus.VoteConsumer = (*NoopVoteConsumer)(nil)

func (*NoopVoteConsumer) OnVoteAccepted(*attestation.Response, *attestation.ConsensusStatus) {}

func (*NoopVoteConsumer) OnVoteRejected(uint64, common.Address, error) {}

// no-op implementation of consensus.FinalizationConsumer

type NoopFinalizationConsumer struct{}

var _ consensus.FinalizationConsumer = (*NoopFinalizationConsumer)(nil)

func (*NoopFinalizationConsumer) OnTaskFinalized(*attestation.ConsensusStatus, bool) {}

func (*NoopFinalizationConsumer) OnDownstreamApplyFailed(uint64, bool, error) {}

// no-op implementation of consensus.LifecycleConsumer

type NoopLifecycleConsumer struct{}

var _ consensus.LifecycleConsumer = (*NoopLifecycleConsumer)(nil)

func (*NoopLifecycleConsumer) OnItemTransitioned(*attestation.Item) {}

func (*NoopLifecycleConsumer) OnArtifactIssued(*attestation.Item) {}

func (*NoopLifecycleConsumer) OnIssuanceFailed(uint64, error) {}

package consensus

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/model/attestation"
)

// RegistryConsumer consumes events emitted by the task registry.
// Implementations must be non-blocking and concurrency safe.
type RegistryConsumer interface {
	// OnTaskCreated notifications are produced once per task, after the task
	// and its commitment were persisted.
	OnTaskCreated(task *attestation.Task, creator common.Address)
}

// VoteConsumer consumes events about individual responses.
// Implementations must be non-blocking and concurrency safe.
type VoteConsumer interface {
	// OnVoteAccepted notifications are produced for every recorded response,
	// including responses arriving after finalization.
	OnVoteAccepted(response *attestation.Response, status *attestation.ConsensusStatus)

	// OnVoteRejected notifications are produced whenever a response was
	// refused. The error describes the reason.
	OnVoteRejected(taskID uint64, voter common.Address, err error)
}

// FinalizationConsumer consumes finalization events of the consensus authenticator.
// Implementations must be non-blocking and concurrency safe.
type FinalizationConsumer interface {
	// OnTaskFinalized notifications are produced exactly once per task.
	// Overridden is set if an admin committed the result.
	OnTaskFinalized(status *attestation.ConsensusStatus, overridden bool)

	// OnDownstreamApplyFailed notifications are produced when the lifecycle
	// transition of a finalized task failed. The transition will be retried.
	OnDownstreamApplyFailed(taskID uint64, outcome bool, err error)
}

// LifecycleConsumer consumes item lifecycle events.
// Implementations must be non-blocking and concurrency safe.
type LifecycleConsumer interface {
	// OnItemTransitioned notifications are produced whenever an item changed status.
	OnItemTransitioned(item *attestation.Item)

	// OnArtifactIssued notifications are produced once per item, after the
	// artifact id was recorded.
	OnArtifactIssued(item *attestation.Item)

	// OnIssuanceFailed notifications are produced whenever the artifact issuer
	// failed for an authenticated item.
	OnIssuanceFailed(itemID uint64, err error)
}

// Consumer consumes all events of an attestation node.
type Consumer interface {
	RegistryConsumer
	VoteConsumer
	FinalizationConsumer
	LifecycleConsumer
}

package notifications

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/consensus"
	"github.com/onflow/flow-attestation/model/attestation"
)

// LogConsumer is an implementation of the notifications consumer that logs a
// message for each event.
type LogConsumer struct {
	log zerolog.Logger
}

var _ consensus.Consumer = (*LogConsumer)(nil)

func NewLogConsumer(log zerolog.Logger) *LogConsumer {
	lc := &LogConsumer{
		log: log,
	}
	return lc
}

func (lc *LogConsumer) OnTaskCreated(task *attestation.Task, creator common.Address) {
	lc.log.Info().
		Uint64("task_id", task.ID).
		Hex("content_hash", task.ContentHash[:]).
		Hex("aux_hash", task.AuxHash[:]).
		Uint8("category", task.Category).
		Uint64("period", task.CreatedAt).
		Str("creator", creator.Hex()).
		Msg("task created")
}

func (lc *LogConsumer) OnVoteAccepted(response *attestation.Response, status *attestation.ConsensusStatus) {
	lc.log.Debug().
		Uint64("task_id", response.TaskID).
		Str("voter", response.Voter.Hex()).
		Bool("outcome", response.Outcome).
		Uint8("score", response.Score).
		Uint32("positive_votes", status.PositiveVotes).
		Uint32("negative_votes", status.NegativeVotes).
		Bool("finalized", status.Finalized).
		Msg("vote accepted")
}

func (lc *LogConsumer) OnVoteRejected(taskID uint64, voter common.Address, err error) {
	lc.log.Warn().
		Uint64("task_id", taskID).
		Str("voter", voter.Hex()).
		Err(err).
		Msg("vote rejected")
}

func (lc *LogConsumer) OnTaskFinalized(status *attestation.ConsensusStatus, overridden bool) {
	lc.log.Info().
		Uint64("task_id", status.TaskID).
		Bool("final_outcome", status.FinalOutcome).
		Uint32("positive_votes", status.PositiveVotes).
		Uint32("negative_votes", status.NegativeVotes).
		Bool("overridden", overridden).
		Msg("task finalized")
}

func (lc *LogConsumer) OnDownstreamApplyFailed(taskID uint64, outcome bool, err error) {
	lc.log.Error().
		Uint64("task_id", taskID).
		Bool("outcome", outcome).
		Err(err).
		Msg("downstream apply failed")
}

func (lc *LogConsumer) OnItemTransitioned(item *attestation.Item) {
	lc.log.Info().
		Uint64("item_id", item.ID).
		Uint64("task_id", item.TaskID).
		Str("status", item.Status.String()).
		Msg("item transitioned")
}

func (lc *LogConsumer) OnArtifactIssued(item *attestation.Item) {
	lc.log.Info().
		Uint64("item_id", item.ID).
		Uint64("artifact_id", item.ArtifactID).
		Str("owner", item.Owner.Hex()).
		Msg("artifact issued")
}

func (lc *LogConsumer) OnIssuanceFailed(itemID uint64, err error) {
	lc.log.Error().
		Uint64("item_id", itemID).
		Err(err).
		Msg("artifact issuance failed")
}

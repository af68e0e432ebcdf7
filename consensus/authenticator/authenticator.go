package authenticator

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/consensus"
	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/module/locks"
	"github.com/onflow/flow-attestation/module/metrics"
	"github.com/onflow/flow-attestation/module/signature"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/storage/badger/operation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// Notifier is the subset of consensus.Consumer the authenticator emits to.
type Notifier interface {
	consensus.VoteConsumer
	consensus.FinalizationConsumer
}

// Authenticator collects signed responses per task and commits the majority
// outcome once the quorum is reached. Each task moves from open to finalized
// exactly once. The finalized outcome is handed to the ResultApplier after the
// finalizing transaction committed; a failed apply leaves the task marked as
// unapplied until RetryApply succeeds.
type Authenticator struct {
	log        zerolog.Logger
	db         *badger.DB
	registry   module.TaskRegistry
	verifier   module.SignatureVerifier
	access     module.AccessControl
	applier    module.ResultApplier
	responses  storage.Responses
	records    storage.ConsensusRecords
	metrics    module.ConsensusMetrics
	notifier   Notifier
	applyLocks *locks.KeyedMutex[uint64]
	config     Config
}

// New creates a consensus authenticator.
// Returns an attestation.ConfigurationError if the config is invalid.
func New(
	log zerolog.Logger,
	db *badger.DB,
	registry module.TaskRegistry,
	verifier module.SignatureVerifier,
	access module.AccessControl,
	applier module.ResultApplier,
	responses storage.Responses,
	records storage.ConsensusRecords,
	metrics module.ConsensusMetrics,
	notifier Notifier,
	config Config,
) (*Authenticator, error) {
	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid consensus config: %w", err)
	}

	return &Authenticator{
		log:        log.With().Str("component", "consensus_authenticator").Logger(),
		db:         db,
		registry:   registry,
		verifier:   verifier,
		access:     access,
		applier:    applier,
		responses:  responses,
		records:    records,
		metrics:    metrics,
		notifier:   notifier,
		applyLocks: locks.NewKeyedMutex[uint64](),
		config:     config,
	}, nil
}

// SubmitResponse records the voter's response for the task and returns the
// resulting consensus status. Checks are applied in order: voter
// authorization, task payload against its commitment, score range and
// confidence, uniqueness of the vote and finally the signature. The vote that
// reaches the quorum finalizes the task and triggers the downstream apply.
// Responses arriving after finalization are recorded, but the tally stays
// frozen.
//
// Expected errors during normal operations:
//   - attestation.NotAuthorizedError if the voter is not an authorized attestor
//   - attestation.TaskMismatchError if the task payload does not match its commitment
//   - attestation.InvalidInputError if the score exceeds attestation.MaxScore
//   - attestation.InsufficientConfidenceError if the score is below the threshold
//   - attestation.DuplicateVoteError if the voter already responded
//   - attestation.InvalidSignatureError if the signature is not the voter's
//   - attestation.DownstreamApplyFailedError if the vote was accepted and
//     finalized the task, but the apply failed. The status is returned as well.
func (a *Authenticator) SubmitResponse(
	ctx context.Context,
	taskID uint64,
	task *attestation.Task,
	sig []byte,
	outcome bool,
	score uint8,
	voter common.Address,
) (*attestation.ConsensusStatus, error) {

	if !a.access.IsAuthorizedVoter(voter) {
		return nil, a.reject(taskID, voter, metrics.ReasonNotAuthorized,
			attestation.NotAuthorizedError{Actor: voter, Capability: module.CapabilityVoter})
	}

	if task == nil {
		return nil, a.reject(taskID, voter, metrics.ReasonTaskMismatch,
			attestation.NewTaskMismatchErrorf(taskID, "no task payload supplied"))
	}
	if task.ID != taskID {
		return nil, a.reject(taskID, voter, metrics.ReasonTaskMismatch,
			attestation.NewTaskMismatchErrorf(taskID, "payload is for task %d", task.ID))
	}
	matches, err := a.registry.VerifyCommitment(task)
	if err != nil {
		return nil, fmt.Errorf("could not verify commitment of task %d: %w", taskID, err)
	}
	if !matches {
		return nil, a.reject(taskID, voter, metrics.ReasonTaskMismatch,
			attestation.NewTaskMismatchErrorf(taskID, "payload differs from stored commitment"))
	}

	if score > attestation.MaxScore {
		return nil, a.reject(taskID, voter, metrics.ReasonInvalidInput,
			attestation.NewInvalidInputErrorf("score %d exceeds maximum %d", score, attestation.MaxScore))
	}
	if score < a.config.ConfidenceThreshold {
		return nil, a.reject(taskID, voter, metrics.ReasonInsufficientConfidence,
			attestation.InsufficientConfidenceError{Score: score, Threshold: a.config.ConfidenceThreshold})
	}

	// the signature check is pure, so it runs outside of the transaction; its
	// result is only reported once the vote is known not to be a duplicate
	validSignature := a.verifier.Verify(signature.TaskMessage(task), sig, voter)

	response := &attestation.Response{
		TaskID:    taskID,
		Voter:     voter,
		Signature: sig,
		Outcome:   outcome,
		Score:     score,
	}

	var status *attestation.ConsensusStatus
	var finalized bool
	err = operation.RetryOnConflictTx(a.db, transaction.Update, func(tx *transaction.Tx) error {
		finalized = false

		var first attestation.Response
		err := operation.RetrieveResponse(taskID, voter, &first)(tx.DBTxn)
		if err == nil {
			return attestation.DuplicateVoteError{TaskID: taskID, FirstVote: &first}
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("could not check for previous response: %w", err)
		}

		if !validSignature {
			return attestation.InvalidSignatureError{TaskID: taskID, Voter: voter}
		}

		err = operation.InsertResponse(response)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not insert response: %w", err)
		}

		record, err := retrieveRecord(tx.DBTxn, taskID)
		if err != nil {
			return err
		}
		if !record.Finalized {
			record.Count(outcome)
			if record.TotalVotes() >= a.config.RequiredQuorum {
				record.Finalized = true
				record.FinalOutcome = record.Majority()
				finalized = true
				err = operation.IndexUnappliedTask(taskID)(tx.DBTxn)
				if err != nil {
					return fmt.Errorf("could not index unapplied task: %w", err)
				}
			}
			err = operation.UpsertConsensusRecord(record)(tx.DBTxn)
			if err != nil {
				return fmt.Errorf("could not update consensus record: %w", err)
			}
		}

		status = record.Status()
		return nil
	})
	if attestation.IsDuplicateVoteError(err) {
		return nil, a.reject(taskID, voter, metrics.ReasonDuplicateVote, err)
	}
	if attestation.IsInvalidSignatureError(err) {
		return nil, a.reject(taskID, voter, metrics.ReasonInvalidSignature, err)
	}
	if err != nil {
		return nil, fmt.Errorf("could not record response of %s for task %d: %w", voter.Hex(), taskID, err)
	}

	a.metrics.VoteAccepted(outcome)
	a.notifier.OnVoteAccepted(response, status)

	if !finalized {
		return status, nil
	}

	a.metrics.TaskFinalized(status.FinalOutcome, false)
	a.notifier.OnTaskFinalized(status, false)

	err = a.apply(ctx, taskID, status.FinalOutcome)
	if err != nil {
		return status, err
	}
	return status, nil
}

// ManualOverride finalizes an open task with the given outcome regardless of
// the current tally, and triggers the downstream apply.
//
// Expected errors during normal operations:
//   - attestation.NotAuthorizedError if the actor is not an admin
//   - attestation.NotFoundError if the task does not exist
//   - attestation.AlreadyFinalizedError if the task is already finalized
//   - attestation.DownstreamApplyFailedError if the task was finalized but the
//     apply failed. The status is returned as well.
func (a *Authenticator) ManualOverride(ctx context.Context, taskID uint64, outcome bool, admin common.Address) (*attestation.ConsensusStatus, error) {
	if !a.access.IsAdmin(admin) {
		return nil, attestation.NotAuthorizedError{Actor: admin, Capability: module.CapabilityAdmin}
	}

	_, err := a.registry.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("could not override task %d: %w", taskID, err)
	}

	var status *attestation.ConsensusStatus
	err = operation.RetryOnConflictTx(a.db, transaction.Update, func(tx *transaction.Tx) error {
		record, err := retrieveRecord(tx.DBTxn, taskID)
		if err != nil {
			return err
		}
		if record.Finalized {
			return attestation.AlreadyFinalizedError{TaskID: taskID}
		}

		record.Finalized = true
		record.FinalOutcome = outcome
		record.Overridden = true

		err = operation.UpsertConsensusRecord(record)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not update consensus record: %w", err)
		}
		err = operation.IndexUnappliedTask(taskID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not index unapplied task: %w", err)
		}

		status = record.Status()
		return nil
	})
	if attestation.IsAlreadyFinalizedError(err) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("could not override task %d: %w", taskID, err)
	}

	a.log.Warn().
		Uint64("task_id", taskID).
		Bool("outcome", outcome).
		Str("admin", admin.Hex()).
		Msg("consensus manually overridden")

	a.metrics.TaskFinalized(outcome, true)
	a.notifier.OnTaskFinalized(status, true)

	err = a.apply(ctx, taskID, outcome)
	if err != nil {
		return status, err
	}
	return status, nil
}

// GetStatus returns the consensus status of the task. Tasks without any
// counted vote report a zero tally.
// Expected errors during normal operations:
//   - attestation.NotFoundError if the task does not exist
func (a *Authenticator) GetStatus(taskID uint64) (*attestation.ConsensusStatus, error) {
	_, err := a.registry.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get status of task %d: %w", taskID, err)
	}

	record, err := a.records.ByTaskID(taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return &attestation.ConsensusStatus{TaskID: taskID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not get status of task %d: %w", taskID, err)
	}
	return record.Status(), nil
}

// Responses returns all recorded responses of the task, ordered by voter.
func (a *Authenticator) Responses(taskID uint64) ([]*attestation.Response, error) {
	return a.responses.ByTaskID(taskID)
}

// HasVoted returns true if a response of the voter is recorded for the task.
func (a *Authenticator) HasVoted(taskID uint64, voter common.Address) (bool, error) {
	_, err := a.responses.ByTaskAndVoter(taskID, voter)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Unapplied returns the finalized tasks whose downstream apply has not
// succeeded yet.
func (a *Authenticator) Unapplied() ([]uint64, error) {
	return a.records.Unapplied()
}

// RetryApply re-runs the downstream apply of a finalized task. It is a no-op
// for tasks that were already applied.
// Expected errors during normal operations:
//   - attestation.NotFoundError if the task has no finalized consensus
//   - attestation.DownstreamApplyFailedError if the apply failed again
func (a *Authenticator) RetryApply(ctx context.Context, taskID uint64) error {
	record, err := a.records.ByTaskID(taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return attestation.NotFoundError{Entity: "consensus", ID: taskID}
	}
	if err != nil {
		return fmt.Errorf("could not retrieve consensus record of task %d: %w", taskID, err)
	}
	if !record.Finalized {
		return attestation.NotFoundError{Entity: "consensus", ID: taskID}
	}
	return a.apply(ctx, taskID, record.FinalOutcome)
}

// apply hands the finalized outcome to the applier and marks the task as
// applied once it succeeded. Applies of the same task are serialized, and a
// task is never applied again after it was marked.
func (a *Authenticator) apply(ctx context.Context, taskID uint64, outcome bool) error {
	unlock := a.applyLocks.Lock(taskID)
	defer unlock()

	record, err := a.records.ByTaskID(taskID)
	if err != nil {
		return fmt.Errorf("could not retrieve consensus record of task %d: %w", taskID, err)
	}
	if record.Applied {
		return nil
	}

	err = a.applier.ApplyResult(ctx, taskID, outcome)
	if err != nil {
		a.metrics.DownstreamApplyFailed()
		a.notifier.OnDownstreamApplyFailed(taskID, outcome, err)
		return attestation.NewDownstreamApplyFailedError(taskID, outcome, err)
	}

	err = operation.RetryOnConflictTx(a.db, transaction.Update, func(tx *transaction.Tx) error {
		record, err := retrieveRecord(tx.DBTxn, taskID)
		if err != nil {
			return err
		}
		record.Applied = true
		err = operation.UpsertConsensusRecord(record)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not update consensus record: %w", err)
		}
		return operation.RemoveUnappliedTask(taskID)(tx.DBTxn)
	})
	if err != nil {
		return fmt.Errorf("could not mark task %d as applied: %w", taskID, err)
	}
	return nil
}

// reject reports a refused response and returns the reason unchanged.
func (a *Authenticator) reject(taskID uint64, voter common.Address, reason string, err error) error {
	a.metrics.VoteRejected(reason)
	a.notifier.OnVoteRejected(taskID, voter, err)
	return err
}

// retrieveRecord returns the consensus record of the task, or a fresh empty
// record if no vote was counted yet.
func retrieveRecord(tx *badger.Txn, taskID uint64) (*attestation.ConsensusRecord, error) {
	var record attestation.ConsensusRecord
	err := operation.RetrieveConsensusRecord(taskID, &record)(tx)
	if errors.Is(err, storage.ErrNotFound) {
		return &attestation.ConsensusRecord{TaskID: taskID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not retrieve consensus record: %w", err)
	}
	return &record, nil
}

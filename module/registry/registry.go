package registry

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/consensus"
	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/module/ratelimit"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/storage/badger/operation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// Registry opens tasks and keeps their commitments. Task ids are assigned
// sequentially starting at 1. A task exists if and only if its commitment
// exists, since both are written in the same transaction.
type Registry struct {
	log          zerolog.Logger
	db           *badger.DB
	tasks        storage.Tasks
	limiter      *ratelimit.Limiter
	periods      ratelimit.PeriodSource
	access       module.AccessControl
	metrics      module.RegistryMetrics
	notifier     consensus.RegistryConsumer
	maxPerPeriod uint64
}

var _ module.TaskRegistry = (*Registry)(nil)

func New(
	log zerolog.Logger,
	db *badger.DB,
	tasks storage.Tasks,
	limiter *ratelimit.Limiter,
	periods ratelimit.PeriodSource,
	access module.AccessControl,
	metrics module.RegistryMetrics,
	notifier consensus.RegistryConsumer,
	maxPerPeriod uint64,
) *Registry {
	return &Registry{
		log:          log.With().Str("component", "task_registry").Logger(),
		db:           db,
		tasks:        tasks,
		limiter:      limiter,
		periods:      periods,
		access:       access,
		metrics:      metrics,
		notifier:     notifier,
		maxPerPeriod: maxPerPeriod,
	}
}

// CreateTask opens a new task for the given content. The consumed rate limit
// slot, the task and its commitment are committed atomically.
// Expected errors during normal operations:
//   - attestation.InvalidInputError if a digest is zero
//   - attestation.NotAuthorizedError if the creator may not open tasks
//   - attestation.RateLimitedError if the creator exhausted its allowance for the current period
func (r *Registry) CreateTask(contentHash attestation.Digest, auxHash attestation.Digest, category uint8, creator common.Address) (*attestation.Task, error) {
	if contentHash.IsZero() {
		return nil, attestation.NewInvalidInputErrorf("content hash must not be empty")
	}
	if auxHash.IsZero() {
		return nil, attestation.NewInvalidInputErrorf("aux hash must not be empty")
	}
	if !r.access.IsTaskCreator(creator) {
		return nil, attestation.NotAuthorizedError{Actor: creator, Capability: module.CapabilityTaskCreator}
	}

	period := r.periods.Current()
	var task *attestation.Task
	err := operation.RetryOnConflictTx(r.db, transaction.Update, func(tx *transaction.Tx) error {
		err := r.limiter.ConsumeTx(creator, period, r.maxPerPeriod)(tx)
		if err != nil {
			return err
		}

		var latest uint64
		err = operation.RetrieveLatestTaskID(&latest)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve latest task id: %w", err)
		}

		task = &attestation.Task{
			ID:          latest + 1,
			ContentHash: contentHash,
			AuxHash:     auxHash,
			Category:    category,
			CreatedAt:   period,
		}

		err = operation.UpdateLatestTaskID(task.ID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not update latest task id: %w", err)
		}
		return r.tasks.StoreTx(task)(tx)
	})
	if attestation.IsRateLimitedError(err) {
		r.metrics.TaskRateLimited()
		r.log.Debug().
			Str("creator", creator.Hex()).
			Uint64("period", period).
			Msg("task creation rate limited")
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("could not create task: %w", err)
	}

	r.metrics.TaskCreated(category)
	r.notifier.OnTaskCreated(task, creator)

	return task, nil
}

// GetTask returns the task with the given id.
// Expected errors during normal operations:
//   - attestation.NotFoundError if no task exists for the id
func (r *Registry) GetTask(taskID uint64) (*attestation.Task, error) {
	task, err := r.tasks.ByID(taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, attestation.NotFoundError{Entity: "task", ID: taskID}
		}
		return nil, fmt.Errorf("could not retrieve task %d: %w", taskID, err)
	}
	return task, nil
}

// VerifyCommitment recomputes the commitment of the supplied task and
// compares it to the one stored at creation. Unknown task ids yield false.
// No errors are expected during normal operation.
func (r *Registry) VerifyCommitment(task *attestation.Task) (bool, error) {
	if task == nil {
		return false, nil
	}
	stored, err := r.tasks.Commitment(task.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not retrieve commitment of task %d: %w", task.ID, err)
	}
	return stored == task.Commitment(), nil
}

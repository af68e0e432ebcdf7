package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/consensus"
	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/module/locks"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/storage/badger/operation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// StateMachine owns the status of subject items. An item is Pending until
// the consensus of its current task is applied, which moves it to
// Authenticated or Rejected. Rejected items may request a new task,
// Authenticated items are final and receive exactly one artifact.
//
// All operations on the same item are serialized, operations on different
// items run concurrently.
type StateMachine struct {
	log       zerolog.Logger
	db        *badger.DB
	items     storage.Items
	registry  module.TaskRegistry
	issuer    module.ArtifactIssuer
	metrics   module.LifecycleMetrics
	notifier  consensus.LifecycleConsumer
	identity  common.Address
	itemLocks *locks.KeyedMutex[uint64]
}

var _ module.ResultApplier = (*StateMachine)(nil)

// New creates the lifecycle state machine. The identity is the creator the
// state machine opens tasks with, it must hold the task creator capability.
func New(
	log zerolog.Logger,
	db *badger.DB,
	items storage.Items,
	registry module.TaskRegistry,
	issuer module.ArtifactIssuer,
	metrics module.LifecycleMetrics,
	notifier consensus.LifecycleConsumer,
	identity common.Address,
) *StateMachine {
	return &StateMachine{
		log:       log.With().Str("component", "lifecycle").Logger(),
		db:        db,
		items:     items,
		registry:  registry,
		issuer:    issuer,
		metrics:   metrics,
		notifier:  notifier,
		identity:  identity,
		itemLocks: locks.NewKeyedMutex[uint64](),
	}
}

// RegisterItem stores a new pending item for the owner.
// Expected errors during normal operations:
//   - attestation.InvalidInputError if a digest or the owner is empty
func (s *StateMachine) RegisterItem(owner common.Address, contentHash attestation.Digest, auxHash attestation.Digest, category uint8, metadataRef string) (*attestation.Item, error) {
	if owner == (common.Address{}) {
		return nil, attestation.NewInvalidInputErrorf("owner must not be empty")
	}
	if contentHash.IsZero() {
		return nil, attestation.NewInvalidInputErrorf("content hash must not be empty")
	}
	if auxHash.IsZero() {
		return nil, attestation.NewInvalidInputErrorf("aux hash must not be empty")
	}

	var item *attestation.Item
	err := operation.RetryOnConflictTx(s.db, transaction.Update, func(tx *transaction.Tx) error {
		var latest uint64
		err := operation.RetrieveLatestItemID(&latest)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve latest item id: %w", err)
		}

		item = &attestation.Item{
			ID:          latest + 1,
			Owner:       owner,
			ContentHash: contentHash,
			AuxHash:     auxHash,
			Category:    category,
			MetadataRef: metadataRef,
			Status:      attestation.StatusPending,
		}

		err = operation.UpdateLatestItemID(item.ID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not update latest item id: %w", err)
		}
		err = operation.InsertItem(item)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not insert item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not register item: %w", err)
	}

	s.log.Debug().
		Uint64("item_id", item.ID).
		Str("owner", owner.Hex()).
		Msg("item registered")

	return item, nil
}

// RequestAuthentication opens a new task for the item and makes it the
// item's current task. Any earlier task of the item is superseded. If the
// task cannot be created the item is left unchanged and the request may be
// repeated.
// Expected errors during normal operations:
//   - attestation.NotFoundError if the item does not exist
//   - attestation.NotAuthorizedError if the requester does not own the item
//   - attestation.InvalidStateError if the item is already authenticated
//   - errors of module.TaskRegistry.CreateTask
func (s *StateMachine) RequestAuthentication(ctx context.Context, itemID uint64, requester common.Address) (uint64, error) {
	unlock := s.itemLocks.Lock(itemID)
	defer unlock()

	item, err := s.Item(itemID)
	if err != nil {
		return 0, err
	}
	if item.Owner != requester {
		return 0, attestation.NotAuthorizedError{Actor: requester, Capability: module.CapabilityOwner}
	}
	if item.Status == attestation.StatusAuthenticated {
		return 0, attestation.NewInvalidStateErrorf(item, "authenticated items cannot be authenticated again")
	}

	task, err := s.registry.CreateTask(item.ContentHash, item.AuxHash, item.Category, s.identity)
	if err != nil {
		return 0, fmt.Errorf("could not create task for item %d: %w", itemID, err)
	}

	err = operation.RetryOnConflictTx(s.db, transaction.Update, func(tx *transaction.Tx) error {
		var current attestation.Item
		err := operation.RetrieveItem(itemID, &current)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve item: %w", err)
		}

		err = operation.IndexTaskItem(task.ID, itemID)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not index task: %w", err)
		}

		current.TaskID = task.ID
		current.Status = attestation.StatusPending
		item = &current
		return operation.UpdateItem(&current)(tx.DBTxn)
	})
	if err != nil {
		// the task exists without being mapped, its result will be reported as unmapped
		return 0, fmt.Errorf("could not map task %d to item %d: %w", task.ID, itemID, err)
	}

	s.log.Info().
		Uint64("item_id", itemID).
		Uint64("task_id", task.ID).
		Msg("authentication requested")

	s.metrics.ItemTransitioned(item.Status.String())
	s.notifier.OnItemTransitioned(item)

	return task.ID, nil
}

// Apply moves the item of the task to the status given by the consensus
// outcome and, for authenticated items, issues the artifact unless one was
// already issued. Results of superseded tasks are ignored. Apply is
// idempotent: repeating it returns the stored item without issuing again.
// Expected errors during normal operations:
//   - attestation.UnmappedTaskError if no item requested the task
//   - attestation.InvalidStateError if the item already has a conflicting status for the task
//   - attestation.IssuanceFailedError if the item was authenticated but the
//     artifact could not be issued. The item stays authenticated and unlinked.
func (s *StateMachine) Apply(ctx context.Context, taskID uint64, outcome bool) (*attestation.Item, error) {
	itemID, err := s.items.ItemIDByTask(taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, attestation.UnmappedTaskError{TaskID: taskID}
	}
	if err != nil {
		return nil, fmt.Errorf("could not look up item of task %d: %w", taskID, err)
	}

	unlock := s.itemLocks.Lock(itemID)
	defer unlock()

	item, err := s.Item(itemID)
	if err != nil {
		return nil, err
	}

	if item.TaskID != taskID {
		s.log.Info().
			Uint64("item_id", itemID).
			Uint64("task_id", taskID).
			Uint64("current_task_id", item.TaskID).
			Msg("ignoring result of superseded task")
		return item, nil
	}

	target := attestation.StatusRejected
	if outcome {
		target = attestation.StatusAuthenticated
	}

	if item.Status != target {
		if item.Status != attestation.StatusPending {
			return nil, attestation.NewInvalidStateErrorf(item, "cannot apply outcome %t of task %d", outcome, taskID)
		}

		item.Status = target
		err = operation.RetryOnConflictTx(s.db, transaction.Update, func(tx *transaction.Tx) error {
			err := operation.UpdateItem(item)(tx.DBTxn)
			if err != nil {
				return fmt.Errorf("could not update item: %w", err)
			}
			if target == attestation.StatusAuthenticated && !item.Linked() {
				return operation.IndexUnlinkedItem(item.ID)(tx.DBTxn)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("could not apply outcome of task %d to item %d: %w", taskID, itemID, err)
		}

		s.metrics.ItemTransitioned(target.String())
		s.notifier.OnItemTransitioned(item)
	}

	if item.Status == attestation.StatusAuthenticated && !item.Linked() {
		return s.issue(ctx, item)
	}
	return item, nil
}

// ApplyResult applies a finalized consensus result.
func (s *StateMachine) ApplyResult(ctx context.Context, taskID uint64, outcome bool) error {
	_, err := s.Apply(ctx, taskID, outcome)
	return err
}

// RetryIssuance issues the artifact of an authenticated item that has none yet.
// It is a no-op for items that already carry an artifact.
// Expected errors during normal operations:
//   - attestation.NotFoundError if the item does not exist
//   - attestation.InvalidStateError if the item is not authenticated
//   - attestation.IssuanceFailedError if the issuer failed again
func (s *StateMachine) RetryIssuance(ctx context.Context, itemID uint64) (*attestation.Item, error) {
	unlock := s.itemLocks.Lock(itemID)
	defer unlock()

	item, err := s.Item(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != attestation.StatusAuthenticated {
		return nil, attestation.NewInvalidStateErrorf(item, "only authenticated items receive an artifact")
	}
	if item.Linked() {
		return item, nil
	}
	return s.issue(ctx, item)
}

// Item returns the item with the given id.
// Expected errors during normal operations:
//   - attestation.NotFoundError if the item does not exist
func (s *StateMachine) Item(itemID uint64) (*attestation.Item, error) {
	item, err := s.items.ByID(itemID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, attestation.NotFoundError{Entity: "item", ID: itemID}
	}
	if err != nil {
		return nil, fmt.Errorf("could not retrieve item %d: %w", itemID, err)
	}
	return item, nil
}

// ItemByTask returns the item that requested the task.
// Expected errors during normal operations:
//   - attestation.UnmappedTaskError if no item requested the task
func (s *StateMachine) ItemByTask(taskID uint64) (*attestation.Item, error) {
	itemID, err := s.items.ItemIDByTask(taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, attestation.UnmappedTaskError{TaskID: taskID}
	}
	if err != nil {
		return nil, fmt.Errorf("could not look up item of task %d: %w", taskID, err)
	}
	return s.Item(itemID)
}

// Unlinked returns the authenticated items without artifact.
func (s *StateMachine) Unlinked() ([]uint64, error) {
	return s.items.Unlinked()
}

// issue calls the artifact issuer for the item and records the artifact id.
// The caller must hold the item lock.
func (s *StateMachine) issue(ctx context.Context, item *attestation.Item) (*attestation.Item, error) {
	start := time.Now()
	artifactID, err := s.issuer.IssueArtifact(ctx, item.Owner, item.MetadataRef)
	if err == nil && artifactID == 0 {
		err = fmt.Errorf("issuer returned empty artifact id")
	}
	if err != nil {
		s.metrics.ArtifactIssuanceFailed()
		s.notifier.OnIssuanceFailed(item.ID, err)
		return item, attestation.NewIssuanceFailedError(item.ID, err)
	}
	duration := time.Since(start)

	item.ArtifactID = artifactID
	err = operation.RetryOnConflictTx(s.db, transaction.Update, func(tx *transaction.Tx) error {
		err := operation.UpdateItem(item)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not update item: %w", err)
		}
		return operation.RemoveUnlinkedItem(item.ID)(tx.DBTxn)
	})
	if err != nil {
		// the artifact exists but is not recorded; this cannot be repaired automatically
		return nil, fmt.Errorf("could not record artifact %d of item %d: %w", artifactID, item.ID, err)
	}

	s.log.Info().
		Uint64("item_id", item.ID).
		Uint64("artifact_id", artifactID).
		Dur("duration", duration).
		Msg("artifact issued")

	s.metrics.ArtifactIssued(duration)
	s.notifier.OnArtifactIssued(item)

	return item, nil
}

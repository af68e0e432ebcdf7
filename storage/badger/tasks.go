package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/module/metrics"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/storage/badger/operation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// Tasks implements persistent storage for tasks. Tasks and their commitments
// never change after creation, so both are served from read caches.
type Tasks struct {
	db          *badger.DB
	cache       *Cache[uint64, *attestation.Task]
	commitments *Cache[uint64, attestation.Digest]
}

var _ storage.Tasks = (*Tasks)(nil)

func NewTasks(collector module.CacheMetrics, db *badger.DB) *Tasks {

	store := func(taskID uint64, task *attestation.Task) func(*transaction.Tx) error {
		return func(tx *transaction.Tx) error {
			err := operation.InsertTask(task)(tx.DBTxn)
			if err != nil {
				return fmt.Errorf("could not insert task %d: %w", taskID, err)
			}
			err = operation.InsertTaskCommitment(taskID, task.Commitment())(tx.DBTxn)
			if err != nil {
				return fmt.Errorf("could not insert commitment of task %d: %w", taskID, err)
			}
			return nil
		}
	}

	retrieve := func(taskID uint64) func(*badger.Txn) (*attestation.Task, error) {
		return func(tx *badger.Txn) (*attestation.Task, error) {
			var task attestation.Task
			err := operation.RetrieveTask(taskID, &task)(tx)
			return &task, err
		}
	}

	retrieveCommitment := func(taskID uint64) func(*badger.Txn) (attestation.Digest, error) {
		return func(tx *badger.Txn) (attestation.Digest, error) {
			var commitment attestation.Digest
			err := operation.RetrieveTaskCommitment(taskID, &commitment)(tx)
			return commitment, err
		}
	}

	return &Tasks{
		db: db,
		cache: newCache[uint64, *attestation.Task](collector, metrics.ResourceTask,
			withLimit[uint64, *attestation.Task](1000),
			withStore(store),
			withRetrieve(retrieve),
		),
		commitments: newCache[uint64, attestation.Digest](collector, metrics.ResourceCommit,
			withLimit[uint64, attestation.Digest](1000),
			withRetrieve(retrieveCommitment),
		),
	}
}

// StoreTx returns an operation inserting the task and its commitment. The
// caches are populated once the surrounding transaction committed.
func (t *Tasks) StoreTx(task *attestation.Task) func(*transaction.Tx) error {
	put := t.cache.PutTx(task.ID, task)
	return func(tx *transaction.Tx) error {
		err := put(tx)
		if err != nil {
			return err
		}
		commitment := task.Commitment()
		tx.OnSucceed(func() {
			t.commitments.Insert(task.ID, commitment)
		})
		return nil
	}
}

func (t *Tasks) ByID(taskID uint64) (*attestation.Task, error) {
	tx := t.db.NewTransaction(false)
	defer tx.Discard()
	return t.cache.Get(taskID)(tx)
}

func (t *Tasks) Commitment(taskID uint64) (attestation.Digest, error) {
	tx := t.db.NewTransaction(false)
	defer tx.Discard()
	return t.commitments.Get(taskID)(tx)
}

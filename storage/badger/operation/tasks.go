package operation

import (
	"errors"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/storage"
)

// InsertTask inserts a task by its id.
// Returns storage.ErrAlreadyExists if a task with the same id was stored before.
func InsertTask(task *attestation.Task) func(*badger.Txn) error {
	return insert(makePrefix(codeTask, task.ID), task)
}

// RetrieveTask retrieves a task by id.
// Returns storage.ErrNotFound if no task is stored under the id.
func RetrieveTask(taskID uint64, task *attestation.Task) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTask, taskID), task)
}

// InsertTaskCommitment stores the commitment digest of a task.
// Returns storage.ErrAlreadyExists if the task already has a commitment.
func InsertTaskCommitment(taskID uint64, commitment attestation.Digest) func(*badger.Txn) error {
	return insert(makePrefix(codeTaskCommitment, taskID), commitment)
}

// RetrieveTaskCommitment retrieves the commitment digest of a task.
// Returns storage.ErrNotFound if the task has no commitment.
func RetrieveTaskCommitment(taskID uint64, commitment *attestation.Digest) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTaskCommitment, taskID), commitment)
}

// RetrieveLatestTaskID retrieves the highest task id assigned so far, zero if
// no task was ever created.
func RetrieveLatestTaskID(taskID *uint64) func(*badger.Txn) error {
	return retrieveOrZero(makePrefix(codeLatestTaskID), taskID)
}

// UpdateLatestTaskID records the highest task id assigned so far.
func UpdateLatestTaskID(taskID uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeLatestTaskID), taskID)
}

// retrieveOrZero behaves like retrieve, but leaves the zero value in place
// instead of failing when the key is absent.
func retrieveOrZero(key []byte, value *uint64) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := retrieve(key, value)(tx)
		if errors.Is(err, storage.ErrNotFound) {
			*value = 0
			return nil
		}
		return err
	}
}

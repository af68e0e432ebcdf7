package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/model/attestation"
)

// UpsertConsensusRecord writes the tally of a task.
func UpsertConsensusRecord(record *attestation.ConsensusRecord) func(*badger.Txn) error {
	return upsert(makePrefix(codeConsensusRecord, record.TaskID), record)
}

// RetrieveConsensusRecord retrieves the tally of a task.
// Returns storage.ErrNotFound if no vote was counted for the task yet.
func RetrieveConsensusRecord(taskID uint64, record *attestation.ConsensusRecord) func(*badger.Txn) error {
	return retrieve(makePrefix(codeConsensusRecord, taskID), record)
}

// IndexUnappliedTask marks a finalized task as awaiting its downstream apply.
func IndexUnappliedTask(taskID uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeUnappliedTask, taskID), taskID)
}

// RemoveUnappliedTask clears the mark set by IndexUnappliedTask.
func RemoveUnappliedTask(taskID uint64) func(*badger.Txn) error {
	return remove(makePrefix(codeUnappliedTask, taskID))
}

// LookupUnappliedTasks retrieves the ids of all finalized but unapplied tasks
// in ascending order.
func LookupUnappliedTasks(taskIDs *[]uint64) func(*badger.Txn) error {
	return lookupIDs(makePrefix(codeUnappliedTask), taskIDs)
}

// lookupIDs collects the uint64 values stored under the prefix.
func lookupIDs(prefix []byte, ids *[]uint64) func(*badger.Txn) error {
	*ids = make([]uint64, 0)
	return traverse(prefix, func() (checkFunc, createFunc, handleFunc) {
		check := func(key []byte) bool {
			return true
		}
		var id uint64
		create := func() interface{} {
			return &id
		}
		handle := func() error {
			*ids = append(*ids, id)
			return nil
		}
		return check, create, handle
	})
}

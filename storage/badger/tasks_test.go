package badger_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module/metrics"
	"github.com/onflow/flow-attestation/storage"
	badgerstorage "github.com/onflow/flow-attestation/storage/badger"
	"github.com/onflow/flow-attestation/storage/badger/operation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
	"github.com/onflow/flow-attestation/utils/unittest"
)

func TestTasks_StoreAndRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tasks := badgerstorage.NewTasks(metrics.NewNoopCollector(), db)
		task := unittest.TaskFixture(unittest.WithTaskID(3))

		require.NoError(t, transaction.Update(db, tasks.StoreTx(task)))

		retrieved, err := tasks.ByID(task.ID)
		require.NoError(t, err)
		assert.Equal(t, task, retrieved)

		commitment, err := tasks.Commitment(task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Commitment(), commitment)

		err = transaction.Update(db, tasks.StoreTx(task))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		_, err = tasks.ByID(4)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = tasks.Commitment(4)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

// A task written by an aborted transaction is neither persisted nor cached.
func TestTasks_AbortedTransaction(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tasks := badgerstorage.NewTasks(metrics.NewNoopCollector(), db)
		task := unittest.TaskFixture(unittest.WithTaskID(9))
		abort := errors.New("abort")

		err := transaction.Update(db, func(tx *transaction.Tx) error {
			err := tasks.StoreTx(task)(tx)
			require.NoError(t, err)
			return abort
		})
		require.ErrorIs(t, err, abort)

		_, err = tasks.ByID(task.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = tasks.Commitment(task.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

// Reads are served from the cache once the task was stored.
func TestTasks_ReadThroughCache(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		task := unittest.TaskFixture(unittest.WithTaskID(5))
		require.NoError(t, db.Update(operation.InsertTask(task)))
		require.NoError(t, db.Update(operation.InsertTaskCommitment(task.ID, task.Commitment())))

		// a fresh store has nothing cached and loads from the database
		tasks := badgerstorage.NewTasks(metrics.NewNoopCollector(), db)
		first, err := tasks.ByID(task.ID)
		require.NoError(t, err)

		second, err := tasks.ByID(task.ID)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})
}

func TestStores(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		all := badgerstorage.InitAll(metrics.NewNoopCollector(), db)

		record := &attestation.ConsensusRecord{TaskID: 2, PositiveVotes: 1, Finalized: true, FinalOutcome: true}
		require.NoError(t, db.Update(operation.UpsertConsensusRecord(record)))
		require.NoError(t, db.Update(operation.IndexUnappliedTask(2)))

		retrievedRecord, err := all.ConsensusRecords.ByTaskID(2)
		require.NoError(t, err)
		assert.Equal(t, record, retrievedRecord)
		_, err = all.ConsensusRecords.ByTaskID(3)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		unapplied, err := all.ConsensusRecords.Unapplied()
		require.NoError(t, err)
		assert.Equal(t, []uint64{2}, unapplied)

		voter := unittest.AddressFixture()
		response := &attestation.Response{TaskID: 2, Voter: voter, Signature: []byte{9}, Outcome: true, Score: 80}
		require.NoError(t, db.Update(operation.InsertResponse(response)))
		retrievedResponse, err := all.Responses.ByTaskAndVoter(2, voter)
		require.NoError(t, err)
		assert.Equal(t, response, retrievedResponse)
		_, err = all.Responses.ByTaskAndVoter(2, unittest.AddressFixture())
		assert.ErrorIs(t, err, storage.ErrNotFound)
		responses, err := all.Responses.ByTaskID(2)
		require.NoError(t, err)
		assert.Equal(t, []*attestation.Response{response}, responses)

		item := unittest.ItemFixture()
		require.NoError(t, db.Update(operation.InsertItem(item)))
		require.NoError(t, db.Update(operation.IndexTaskItem(2, item.ID)))
		retrievedItem, err := all.Items.ByID(item.ID)
		require.NoError(t, err)
		assert.Equal(t, item, retrievedItem)
		itemID, err := all.Items.ItemIDByTask(2)
		require.NoError(t, err)
		assert.Equal(t, item.ID, itemID)
		_, err = all.Items.ItemIDByTask(3)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		unlinked, err := all.Items.Unlinked()
		require.NoError(t, err)
		assert.Empty(t, unlinked)
	})
}

package operation

import (
	"bytes"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/utils/unittest"
)

func TestTask_InsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		task := unittest.TaskFixture(unittest.WithTaskID(7))

		require.NoError(t, db.Update(InsertTask(task)))
		require.NoError(t, db.Update(InsertTaskCommitment(task.ID, task.Commitment())))

		var retrieved attestation.Task
		require.NoError(t, db.View(RetrieveTask(task.ID, &retrieved)))
		assert.Equal(t, *task, retrieved)

		var commitment attestation.Digest
		require.NoError(t, db.View(RetrieveTaskCommitment(task.ID, &commitment)))
		assert.Equal(t, task.Commitment(), commitment)

		err := db.Update(InsertTask(task))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		err = db.View(RetrieveTask(8, &retrieved))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestLatestTaskID(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		var latest uint64
		require.NoError(t, db.View(RetrieveLatestTaskID(&latest)))
		assert.Zero(t, latest)

		require.NoError(t, db.Update(UpdateLatestTaskID(12)))
		require.NoError(t, db.View(RetrieveLatestTaskID(&latest)))
		assert.Equal(t, uint64(12), latest)
	})
}

func TestResponses_OrderedByVoter(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		voters := unittest.AddressListFixture(5)
		for _, voter := range voters {
			response := &attestation.Response{TaskID: 1, Voter: voter, Signature: []byte{1, 2, 3}, Outcome: true, Score: 90}
			require.NoError(t, db.Update(InsertResponse(response)))
		}
		// responses of another task are not returned
		other := &attestation.Response{TaskID: 2, Voter: voters[0], Score: 60}
		require.NoError(t, db.Update(InsertResponse(other)))

		err := db.Update(InsertResponse(&attestation.Response{TaskID: 1, Voter: voters[3]}))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		var responses []*attestation.Response
		require.NoError(t, db.View(LookupResponses(1, &responses)))
		require.Len(t, responses, len(voters))
		for i := 1; i < len(responses); i++ {
			assert.Negative(t, bytes.Compare(responses[i-1].Voter.Bytes(), responses[i].Voter.Bytes()))
		}
		assert.Equal(t, []byte{1, 2, 3}, responses[0].Signature)

		var single attestation.Response
		require.NoError(t, db.View(RetrieveResponse(2, voters[0], &single)))
		assert.Equal(t, uint8(60), single.Score)

		require.NoError(t, db.View(LookupResponses(3, &responses)))
		assert.Empty(t, responses)
	})
}

func TestUnappliedTasks(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		for _, taskID := range []uint64{300, 2, 70000} {
			require.NoError(t, db.Update(IndexUnappliedTask(taskID)))
		}
		require.NoError(t, db.Update(RemoveUnappliedTask(300)))
		// removing an absent mark is a no-op
		require.NoError(t, db.Update(RemoveUnappliedTask(5)))

		var taskIDs []uint64
		require.NoError(t, db.View(LookupUnappliedTasks(&taskIDs)))
		assert.Equal(t, []uint64{2, 70000}, taskIDs)
	})
}

func TestItems(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		item := unittest.ItemFixture()
		require.NoError(t, db.Update(InsertItem(item)))
		assert.ErrorIs(t, db.Update(InsertItem(item)), storage.ErrAlreadyExists)

		item.Status = attestation.StatusAuthenticated
		item.TaskID = 4
		require.NoError(t, db.Update(UpdateItem(item)))

		var retrieved attestation.Item
		require.NoError(t, db.View(RetrieveItem(item.ID, &retrieved)))
		assert.Equal(t, *item, retrieved)

		missing := unittest.ItemFixture()
		missing.ID = 99
		assert.ErrorIs(t, db.Update(UpdateItem(missing)), storage.ErrNotFound)

		require.NoError(t, db.Update(IndexTaskItem(4, item.ID)))
		assert.ErrorIs(t, db.Update(IndexTaskItem(4, 2)), storage.ErrAlreadyExists)
		var itemID uint64
		require.NoError(t, db.View(LookupTaskItem(4, &itemID)))
		assert.Equal(t, item.ID, itemID)
		assert.ErrorIs(t, db.View(LookupTaskItem(5, &itemID)), storage.ErrNotFound)

		require.NoError(t, db.Update(IndexUnlinkedItem(item.ID)))
		var unlinked []uint64
		require.NoError(t, db.View(LookupUnlinkedItems(&unlinked)))
		assert.Equal(t, []uint64{item.ID}, unlinked)
		require.NoError(t, db.Update(RemoveUnlinkedItem(item.ID)))
		require.NoError(t, db.View(LookupUnlinkedItems(&unlinked)))
		assert.Empty(t, unlinked)
	})
}

func TestPruneRateCounters(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		actors := unittest.AddressListFixture(3)
		for period := uint64(1); period <= 4; period++ {
			for _, actor := range actors {
				require.NoError(t, db.Update(UpsertRateCounter(period, actor, period)))
			}
		}

		// limit bounds a single batch
		var removed int
		require.NoError(t, db.Update(PruneRateCounters(3, 4, &removed)))
		assert.Equal(t, 4, removed)
		require.NoError(t, db.Update(PruneRateCounters(3, 4, &removed)))
		assert.Equal(t, 2, removed)
		require.NoError(t, db.Update(PruneRateCounters(3, 4, &removed)))
		assert.Zero(t, removed)

		for _, actor := range actors {
			var count uint64
			require.NoError(t, db.View(RetrieveRateCounter(2, actor, &count)))
			assert.Zero(t, count)
			require.NoError(t, db.View(RetrieveRateCounter(3, actor, &count)))
			assert.Equal(t, uint64(3), count)
		}
	})
}

func TestCodec_CompressionToggle(t *testing.T) {
	defer func() { compressEnabled = true }()

	task := unittest.TaskFixture()
	compressed, err := encodeEntity(task)
	require.NoError(t, err)

	compressEnabled = false
	plain, err := encodeEntity(task)
	require.NoError(t, err)

	var decoded attestation.Task
	require.NoError(t, decodeValue(plain, &decoded))
	assert.Equal(t, *task, decoded)

	assert.NotEqual(t, compressed, plain)
}

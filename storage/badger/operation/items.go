package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/model/attestation"
)

// InsertItem inserts a new item.
// Returns storage.ErrAlreadyExists if the item id is taken.
func InsertItem(item *attestation.Item) func(*badger.Txn) error {
	return insert(makePrefix(codeItem, item.ID), item)
}

// UpdateItem overwrites an existing item.
// Returns storage.ErrNotFound if the item does not exist.
func UpdateItem(item *attestation.Item) func(*badger.Txn) error {
	return update(makePrefix(codeItem, item.ID), item)
}

// RetrieveItem retrieves an item by id.
// Returns storage.ErrNotFound if the item is unknown.
func RetrieveItem(itemID uint64, item *attestation.Item) func(*badger.Txn) error {
	return retrieve(makePrefix(codeItem, itemID), item)
}

// RetrieveLatestItemID retrieves the highest item id assigned so far.
func RetrieveLatestItemID(itemID *uint64) func(*badger.Txn) error {
	return retrieveOrZero(makePrefix(codeLatestItemID), itemID)
}

// UpdateLatestItemID records the highest item id assigned so far.
func UpdateLatestItemID(itemID uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeLatestItemID), itemID)
}

// IndexTaskItem maps a task to the item that requested it.
// Returns storage.ErrAlreadyExists if the task is already mapped.
func IndexTaskItem(taskID uint64, itemID uint64) func(*badger.Txn) error {
	return insert(makePrefix(codeTaskToItem, taskID), itemID)
}

// LookupTaskItem retrieves the item mapped to a task.
// Returns storage.ErrNotFound if the task is not mapped.
func LookupTaskItem(taskID uint64, itemID *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTaskToItem, taskID), itemID)
}

// IndexUnlinkedItem marks an authenticated item whose artifact is not issued yet.
func IndexUnlinkedItem(itemID uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeUnlinkedItem, itemID), itemID)
}

// RemoveUnlinkedItem clears the mark set by IndexUnlinkedItem.
func RemoveUnlinkedItem(itemID uint64) func(*badger.Txn) error {
	return remove(makePrefix(codeUnlinkedItem, itemID))
}

// LookupUnlinkedItems retrieves all authenticated items without artifact.
func LookupUnlinkedItems(itemIDs *[]uint64) func(*badger.Txn) error {
	return lookupIDs(makePrefix(codeUnlinkedItem), itemIDs)
}

// RetrieveLatestArtifactID retrieves the highest artifact id issued locally.
func RetrieveLatestArtifactID(artifactID *uint64) func(*badger.Txn) error {
	return retrieveOrZero(makePrefix(codeLatestArtifactID), artifactID)
}

// UpdateLatestArtifactID records the highest artifact id issued locally.
func UpdateLatestArtifactID(artifactID uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeLatestArtifactID), artifactID)
}

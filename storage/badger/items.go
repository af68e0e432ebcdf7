package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/storage/badger/operation"
)

// Items implements read access to subject items. Items are mutated by the
// lifecycle state machine only.
type Items struct {
	db *badger.DB
}

var _ storage.Items = (*Items)(nil)

func NewItems(db *badger.DB) *Items {
	return &Items{db: db}
}

func (i *Items) ByID(itemID uint64) (*attestation.Item, error) {
	var item attestation.Item
	err := i.db.View(operation.RetrieveItem(itemID, &item))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve item %d: %w", itemID, err)
	}
	return &item, nil
}

func (i *Items) ItemIDByTask(taskID uint64) (uint64, error) {
	var itemID uint64
	err := i.db.View(operation.LookupTaskItem(taskID, &itemID))
	if err != nil {
		return 0, fmt.Errorf("could not look up item of task %d: %w", taskID, err)
	}
	return itemID, nil
}

func (i *Items) Unlinked() ([]uint64, error) {
	var itemIDs []uint64
	err := i.db.View(operation.LookupUnlinkedItems(&itemIDs))
	if err != nil {
		return nil, fmt.Errorf("could not look up unlinked items: %w", err)
	}
	return itemIDs, nil
}

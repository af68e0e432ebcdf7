package storage

import (
	"github.com/onflow/flow-attestation/model/attestation"
)

// Items represents persistent storage for subject items.
type Items interface {

	// ByID returns the item with the given id.
	// Returns storage.ErrNotFound if the item is unknown.
	ByID(itemID uint64) (*attestation.Item, error)

	// ItemIDByTask returns the item that requested the given task.
	// Returns storage.ErrNotFound if no item is mapped to the task.
	ItemIDByTask(taskID uint64) (uint64, error)

	// Unlinked returns the ids of authenticated items without artifact.
	Unlinked() ([]uint64, error)
}

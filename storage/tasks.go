package storage

import (
	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// Tasks represents persistent storage for tasks and their commitments.
type Tasks interface {

	// StoreTx returns an operation inserting the task together with its
	// commitment. Returns storage.ErrAlreadyExists if the task id is taken.
	StoreTx(task *attestation.Task) func(*transaction.Tx) error

	// ByID returns the task with the given id.
	// Returns storage.ErrNotFound if no task was stored under the id.
	ByID(taskID uint64) (*attestation.Task, error)

	// Commitment returns the commitment stored when the task was created.
	// Returns storage.ErrNotFound if no commitment exists for the id.
	Commitment(taskID uint64) (attestation.Digest, error)
}

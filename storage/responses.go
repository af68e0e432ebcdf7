package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/model/attestation"
)

// Responses represents persistent storage for accepted voter responses.
// Writes happen inside the consensus transaction, see operation.InsertResponse.
type Responses interface {

	// ByTaskAndVoter returns the response of the voter for the task.
	// Returns storage.ErrNotFound if the voter did not vote on the task.
	ByTaskAndVoter(taskID uint64, voter common.Address) (*attestation.Response, error)

	// ByTaskID returns all responses for the task ordered by voter address.
	ByTaskID(taskID uint64) ([]*attestation.Response, error)
}

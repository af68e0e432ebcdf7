package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/storage/badger/operation"
)

// Responses implements read access to the responses recorded by the
// consensus authenticator.
type Responses struct {
	db *badger.DB
}

var _ storage.Responses = (*Responses)(nil)

func NewResponses(db *badger.DB) *Responses {
	return &Responses{db: db}
}

func (r *Responses) ByTaskAndVoter(taskID uint64, voter common.Address) (*attestation.Response, error) {
	var response attestation.Response
	err := r.db.View(operation.RetrieveResponse(taskID, voter, &response))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve response of %s for task %d: %w", voter, taskID, err)
	}
	return &response, nil
}

func (r *Responses) ByTaskID(taskID uint64) ([]*attestation.Response, error) {
	var responses []*attestation.Response
	err := r.db.View(operation.LookupResponses(taskID, &responses))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve responses for task %d: %w", taskID, err)
	}
	return responses, nil
}

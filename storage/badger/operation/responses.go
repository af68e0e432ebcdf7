package operation

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/model/attestation"
)

// InsertResponse stores the response of a voter for a task.
// Returns storage.ErrAlreadyExists if the voter already responded.
func InsertResponse(response *attestation.Response) func(*badger.Txn) error {
	return insert(makePrefix(codeResponse, response.TaskID, response.Voter.Bytes()), response)
}

// RetrieveResponse retrieves the response of a voter for a task.
// Returns storage.ErrNotFound if the voter did not respond.
func RetrieveResponse(taskID uint64, voter common.Address, response *attestation.Response) func(*badger.Txn) error {
	return retrieve(makePrefix(codeResponse, taskID, voter.Bytes()), response)
}

// LookupResponses retrieves all responses for a task, ordered by voter address.
func LookupResponses(taskID uint64, responses *[]*attestation.Response) func(*badger.Txn) error {
	*responses = make([]*attestation.Response, 0)
	return traverse(makePrefix(codeResponse, taskID), func() (checkFunc, createFunc, handleFunc) {
		check := func(key []byte) bool {
			return true
		}
		var response attestation.Response
		create := func() interface{} {
			return &response
		}
		handle := func() error {
			*responses = append(*responses, &response)
			return nil
		}
		return check, create, handle
	})
}

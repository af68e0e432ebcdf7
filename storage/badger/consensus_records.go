package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/storage"
	"github.com/onflow/flow-attestation/storage/badger/operation"
)

// ConsensusRecords implements read access to the vote tallies. Tallies change
// with every vote, so they are not cached.
type ConsensusRecords struct {
	db *badger.DB
}

var _ storage.ConsensusRecords = (*ConsensusRecords)(nil)

func NewConsensusRecords(db *badger.DB) *ConsensusRecords {
	return &ConsensusRecords{db: db}
}

func (c *ConsensusRecords) ByTaskID(taskID uint64) (*attestation.ConsensusRecord, error) {
	var record attestation.ConsensusRecord
	err := c.db.View(operation.RetrieveConsensusRecord(taskID, &record))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve consensus record for task %d: %w", taskID, err)
	}
	return &record, nil
}

func (c *ConsensusRecords) Unapplied() ([]uint64, error) {
	var taskIDs []uint64
	err := c.db.View(operation.LookupUnappliedTasks(&taskIDs))
	if err != nil {
		return nil, fmt.Errorf("could not look up unapplied tasks: %w", err)
	}
	return taskIDs, nil
}

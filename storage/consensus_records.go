package storage

import (
	"github.com/onflow/flow-attestation/model/attestation"
)

// ConsensusRecords represents persistent storage for per-task vote tallies.
type ConsensusRecords interface {

	// ByTaskID returns the tally of the task.
	// Returns storage.ErrNotFound if no vote was counted for the task yet.
	ByTaskID(taskID uint64) (*attestation.ConsensusRecord, error)

	// Unapplied returns the ids of finalized tasks whose downstream apply
	// has not succeeded yet, in ascending order.
	Unapplied() ([]uint64, error)
}

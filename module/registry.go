package module

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/model/attestation"
)

// TaskRegistry opens tasks and guards their content against tampering.
type TaskRegistry interface {
	// CreateTask opens a task for the given content on behalf of the creator.
	// Expected errors during normal operations:
	//   - attestation.InvalidInputError if a digest is zero
	//   - attestation.NotAuthorizedError if the creator may not open tasks
	//   - attestation.RateLimitedError if the creator exhausted its allowance
	CreateTask(contentHash attestation.Digest, auxHash attestation.Digest, category uint8, creator common.Address) (*attestation.Task, error)

	// GetTask returns the task with the given id.
	// Expected errors during normal operations:
	//   - attestation.NotFoundError if no task exists for the id
	GetTask(taskID uint64) (*attestation.Task, error)

	// VerifyCommitment returns true if the supplied task matches the
	// commitment stored at creation. Unknown tasks yield false.
	VerifyCommitment(task *attestation.Task) (bool, error)
}

// ResultApplier reacts to finalized consensus results. ApplyResult must be
// idempotent, as it is retried until it succeeded once.
type ResultApplier interface {
	ApplyResult(ctx context.Context, taskID uint64, outcome bool) error
}

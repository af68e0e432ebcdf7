package module

import (
	"github.com/ethereum/go-ethereum/common"
)

// Capability names reported in attestation.NotAuthorizedError.
const (
	CapabilityTaskCreator = "task_creator"
	CapabilityVoter       = "voter"
	CapabilityAdmin       = "admin"
	CapabilityOwner       = "owner"
)

// AccessControl is the external collaborator deciding which actors hold
// which capability. Implementations must be safe for concurrent use.
type AccessControl interface {
	// IsTaskCreator returns true if the actor may open tasks in the registry.
	IsTaskCreator(actor common.Address) bool

	// IsAuthorizedVoter returns true if the actor belongs to the closed set of attestors.
	IsAuthorizedVoter(actor common.Address) bool

	// IsAdmin returns true if the actor may override consensus for dispute resolution.
	IsAdmin(actor common.Address) bool
}

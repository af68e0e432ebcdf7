package access

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/module"
)

// StaticAccessControl holds the capability sets in memory. The sets are
// loaded from configuration and may be changed at runtime by an operator.
type StaticAccessControl struct {
	mu      sync.RWMutex
	members map[string]map[common.Address]struct{}
}

var _ module.AccessControl = (*StaticAccessControl)(nil)

func NewStaticAccessControl(creators []common.Address, voters []common.Address, admins []common.Address) *StaticAccessControl {
	ac := &StaticAccessControl{
		members: map[string]map[common.Address]struct{}{
			module.CapabilityTaskCreator: {},
			module.CapabilityVoter:       {},
			module.CapabilityAdmin:       {},
		},
	}
	for _, actor := range creators {
		ac.members[module.CapabilityTaskCreator][actor] = struct{}{}
	}
	for _, actor := range voters {
		ac.members[module.CapabilityVoter][actor] = struct{}{}
	}
	for _, actor := range admins {
		ac.members[module.CapabilityAdmin][actor] = struct{}{}
	}
	return ac
}

func (ac *StaticAccessControl) IsTaskCreator(actor common.Address) bool {
	return ac.has(module.CapabilityTaskCreator, actor)
}

func (ac *StaticAccessControl) IsAuthorizedVoter(actor common.Address) bool {
	return ac.has(module.CapabilityVoter, actor)
}

func (ac *StaticAccessControl) IsAdmin(actor common.Address) bool {
	return ac.has(module.CapabilityAdmin, actor)
}

// Grant adds the actor to the capability set.
func (ac *StaticAccessControl) Grant(capability string, actor common.Address) error {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	set, ok := ac.members[capability]
	if !ok {
		return fmt.Errorf("unknown capability %q", capability)
	}
	set[actor] = struct{}{}
	return nil
}

// Revoke removes the actor from the capability set.
func (ac *StaticAccessControl) Revoke(capability string, actor common.Address) error {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	set, ok := ac.members[capability]
	if !ok {
		return fmt.Errorf("unknown capability %q", capability)
	}
	delete(set, actor)
	return nil
}

func (ac *StaticAccessControl) has(capability string, actor common.Address) bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	_, ok := ac.members[capability][actor]
	return ok
}

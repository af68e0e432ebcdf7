package pubsub

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/consensus"
	"github.com/onflow/flow-attestation/model/attestation"
)

type OnTaskCreatedConsumer = func(task *attestation.Task, creator common.Address)
type OnTaskFinalizedConsumer = func(status *attestation.ConsensusStatus, overridden bool)

// Distributor distributes notifications to a list of subscribers (event consumers).
//
// It allows thread-safe subscription of multiple consumers to events.
type Distributor struct {
	consumers              []consensus.Consumer
	taskCreatedConsumers   []OnTaskCreatedConsumer
	taskFinalizedConsumers []OnTaskFinalizedConsumer
	lock                   sync.RWMutex
}

var _ consensus.Consumer = (*Distributor)(nil)

func NewDistributor() *Distributor {
	return &Distributor{}
}

// AddConsumer adds an event consumer to the Distributor
func (p *Distributor) AddConsumer(consumer consensus.Consumer) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.consumers = append(p.consumers, consumer)
}

// AddOnTaskCreatedConsumer subscribes a function to task creation only.
func (p *Distributor) AddOnTaskCreatedConsumer(consumer OnTaskCreatedConsumer) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.taskCreatedConsumers = append(p.taskCreatedConsumers, consumer)
}

// AddOnTaskFinalizedConsumer subscribes a function to finalization only.
func (p *Distributor) AddOnTaskFinalizedConsumer(consumer OnTaskFinalizedConsumer) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.taskFinalizedConsumers = append(p.taskFinalizedConsumers, consumer)
}

func (p *Distributor) OnTaskCreated(task *attestation.Task, creator common.Address) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, consumer := range p.taskCreatedConsumers {
		consumer(task, creator)
	}
	for _, subscriber := range p.consumers {
		subscriber.OnTaskCreated(task, creator)
	}
}

func (p *Distributor) OnVoteAccepted(response *attestation.Response, status *attestation.ConsensusStatus) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, subscriber := range p.consumers {
		subscriber.OnVoteAccepted(response, status)
	}
}

func (p *Distributor) OnVoteRejected(taskID uint64, voter common.Address, err error) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, subscriber := range p.consumers {
		subscriber.OnVoteRejected(taskID, voter, err)
	}
}

func (p *Distributor) OnTaskFinalized(status *attestation.ConsensusStatus, overridden bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, consumer := range p.taskFinalizedConsumers {
		consumer(status, overridden)
	}
	for _, subscriber := range p.consumers {
		subscriber.OnTaskFinalized(status, overridden)
	}
}

func (p *Distributor) OnDownstreamApplyFailed(taskID uint64, outcome bool, err error) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, subscriber := range p.consumers {
		subscriber.OnDownstreamApplyFailed(taskID, outcome, err)
	}
}

func (p *Distributor) OnItemTransitioned(item *attestation.Item) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, subscriber := range p.consumers {
		subscriber.OnItemTransitioned(item)
	}
}

func (p *Distributor) OnArtifactIssued(item *attestation.Item) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, subscriber := range p.consumers {
		subscriber.OnArtifactIssued(item)
	}
}

func (p *Distributor) OnIssuanceFailed(itemID uint64, err error) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	for _, subscriber := range p.consumers {
		subscriber.OnIssuanceFailed(itemID, err)
	}
}

package pubsub

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/onflow/flow-attestation/consensus/notifications"
	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/utils/unittest"
)

type recordingConsumer struct {
	notifications.NoopConsumer
	created   []uint64
	finalized []uint64
	failed    []uint64
}

func (r *recordingConsumer) OnTaskCreated(task *attestation.Task, _ common.Address) {
	r.created = append(r.created, task.ID)
}

func (r *recordingConsumer) OnTaskFinalized(status *attestation.ConsensusStatus, _ bool) {
	r.finalized = append(r.finalized, status.TaskID)
}

func (r *recordingConsumer) OnDownstreamApplyFailed(taskID uint64, _ bool, _ error) {
	r.failed = append(r.failed, taskID)
}

func TestDistributor(t *testing.T) {
	distributor := NewDistributor()
	first := &recordingConsumer{}
	second := &recordingConsumer{}
	distributor.AddConsumer(first)
	distributor.AddConsumer(second)

	var finalized []bool
	distributor.AddOnTaskFinalizedConsumer(func(status *attestation.ConsensusStatus, overridden bool) {
		finalized = append(finalized, overridden)
	})

	task := unittest.TaskFixture(unittest.WithTaskID(4))
	distributor.OnTaskCreated(task, unittest.AddressFixture())
	distributor.OnTaskFinalized(&attestation.ConsensusStatus{TaskID: 4, Finalized: true}, true)
	distributor.OnDownstreamApplyFailed(4, true, errors.New("boom"))

	for _, consumer := range []*recordingConsumer{first, second} {
		assert.Equal(t, []uint64{4}, consumer.created)
		assert.Equal(t, []uint64{4}, consumer.finalized)
		assert.Equal(t, []uint64{4}, consumer.failed)
	}
	assert.Equal(t, []bool{true}, finalized)
}

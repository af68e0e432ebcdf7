package attestation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/onflow/flow-attestation/model/attestation"
)

func digestGen() *rapid.Generator[attestation.Digest] {
	return rapid.Custom(func(t *rapid.T) attestation.Digest {
		var d attestation.Digest
		copy(d[:], rapid.SliceOfN(rapid.Byte(), attestation.DigestLen, attestation.DigestLen).Draw(t, "digest"))
		return d
	})
}

func taskGen() *rapid.Generator[*attestation.Task] {
	return rapid.Custom(func(t *rapid.T) *attestation.Task {
		return &attestation.Task{
			ID:          rapid.Uint64().Draw(t, "id"),
			ContentHash: digestGen().Draw(t, "content"),
			AuxHash:     digestGen().Draw(t, "aux"),
			Category:    rapid.Uint8().Draw(t, "category"),
			CreatedAt:   rapid.Uint64().Draw(t, "created"),
		}
	})
}

func TestTask_CommitmentDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		task := taskGen().Draw(t, "task")
		clone := *task
		assert.Equal(t, task.Commitment(), clone.Commitment())
		assert.False(t, task.Commitment().IsZero())
	})
}

// Changing any single field of a task changes its commitment.
func TestTask_CommitmentBindsEveryField(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		task := taskGen().Draw(t, "task")
		changed := *task
		switch rapid.IntRange(0, 4).Draw(t, "field") {
		case 0:
			changed.ID++
		case 1:
			changed.ContentHash[0] ^= 0xff
		case 2:
			changed.AuxHash[attestation.DigestLen-1] ^= 0x01
		case 3:
			changed.Category++
		case 4:
			changed.CreatedAt++
		}
		assert.NotEqual(t, task.Commitment(), changed.Commitment())
	})
}

// Content and aux hash are not interchangeable.
func TestTask_CommitmentFieldOrder(t *testing.T) {
	a := attestation.Keccak256Digest([]byte("a"))
	b := attestation.Keccak256Digest([]byte("b"))
	task := attestation.Task{ID: 1, ContentHash: a, AuxHash: b, Category: 1, CreatedAt: 7}
	swapped := attestation.Task{ID: 1, ContentHash: b, AuxHash: a, Category: 1, CreatedAt: 7}
	require.NotEqual(t, task.Commitment(), swapped.Commitment())
}

package unittest

import (
	"crypto/ecdsa"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-attestation/model/attestation"
)

// DigestFixture returns a random non-zero digest.
func DigestFixture() attestation.Digest {
	var digest attestation.Digest
	_, _ = rand.Read(digest[:])
	if digest.IsZero() {
		digest[0] = 1
	}
	return digest
}

// AddressFixture returns a random non-zero address.
func AddressFixture() common.Address {
	var address common.Address
	_, _ = rand.Read(address[:])
	if address == (common.Address{}) {
		address[0] = 1
	}
	return address
}

// AddressListFixture returns n random addresses.
func AddressListFixture(n int) []common.Address {
	addresses := make([]common.Address, 0, n)
	for i := 0; i < n; i++ {
		addresses = append(addresses, AddressFixture())
	}
	return addresses
}

// PrivateKeyFixture returns a fresh secp256k1 key.
func PrivateKeyFixture(t testing.TB) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func WithTaskID(id uint64) func(*attestation.Task) {
	return func(task *attestation.Task) {
		task.ID = id
	}
}

func WithCategory(category uint8) func(*attestation.Task) {
	return func(task *attestation.Task) {
		task.Category = category
	}
}

// TaskFixture returns a task with random digests.
func TaskFixture(opts ...func(*attestation.Task)) *attestation.Task {
	task := &attestation.Task{
		ID:          1,
		ContentHash: DigestFixture(),
		AuxHash:     DigestFixture(),
		Category:    1,
		CreatedAt:   1,
	}
	for _, opt := range opts {
		opt(task)
	}
	return task
}

func WithOwner(owner common.Address) func(*attestation.Item) {
	return func(item *attestation.Item) {
		item.Owner = owner
	}
}

func WithStatus(status attestation.Status) func(*attestation.Item) {
	return func(item *attestation.Item) {
		item.Status = status
	}
}

// ItemFixture returns a pending item without task.
func ItemFixture(opts ...func(*attestation.Item)) *attestation.Item {
	item := &attestation.Item{
		ID:          1,
		Owner:       AddressFixture(),
		ContentHash: DigestFixture(),
		AuxHash:     DigestFixture(),
		Category:    1,
		MetadataRef: "ipfs://" + uuid.NewString(),
		Status:      attestation.StatusPending,
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

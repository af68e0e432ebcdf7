package signature

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-attestation/utils/unittest"
)

func TestMessage_Layout(t *testing.T) {
	task := unittest.TaskFixture()
	message := TaskMessage(task)
	require.Len(t, message, MessageLen)

	assert.Equal(t, task.ContentHash[:], message[:32])
	assert.Equal(t, task.AuxHash[:], message[32:64])
	assert.Equal(t, task.Category, message[95])
	assert.Equal(t, make([]byte, 31), message[64:95])
}

// The canonical message only depends on task content.
func TestMessage_IgnoresIDAndPeriod(t *testing.T) {
	task := unittest.TaskFixture()
	other := *task
	other.ID = task.ID + 10
	other.CreatedAt = task.CreatedAt + 10
	assert.Equal(t, TaskMessage(task), TaskMessage(&other))
}

func TestVerify(t *testing.T) {
	verifier := NewVerifier()
	signer := NewLocalSigner(unittest.PrivateKeyFixture(t))
	task := unittest.TaskFixture()
	message := TaskMessage(task)

	sig, err := signer.SignTask(task)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLen)

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, verifier.Verify(message, sig, signer.Address()))
	})

	t.Run("raw recovery id", func(t *testing.T) {
		raw := append([]byte(nil), sig...)
		raw[64] -= 27
		assert.True(t, verifier.Verify(message, raw, signer.Address()))
	})

	t.Run("other voter", func(t *testing.T) {
		assert.False(t, verifier.Verify(message, sig, unittest.AddressFixture()))
	})

	t.Run("altered content", func(t *testing.T) {
		altered := *task
		altered.Category++
		assert.False(t, verifier.Verify(TaskMessage(&altered), sig, signer.Address()))
	})

	t.Run("other byte layout", func(t *testing.T) {
		assert.False(t, verifier.Verify(message[:MessageLen-1], sig, signer.Address()))
		assert.False(t, verifier.Verify(append(message, 0), sig, signer.Address()))
	})

	t.Run("truncated signature", func(t *testing.T) {
		assert.False(t, verifier.Verify(message, sig[:64], signer.Address()))
		assert.False(t, verifier.Verify(message, nil, signer.Address()))
	})

	t.Run("unknown recovery id", func(t *testing.T) {
		bad := append([]byte(nil), sig...)
		bad[64] = 29
		assert.False(t, verifier.Verify(message, bad, signer.Address()))
	})

	t.Run("high s", func(t *testing.T) {
		// (r, n-s) with flipped recovery id is a valid but malleable signature
		// for the same key
		n := crypto.S256().Params().N
		s := new(big.Int).SetBytes(sig[32:64])
		highS := new(big.Int).Sub(n, s)

		malleable := append([]byte(nil), sig...)
		highS.FillBytes(malleable[32:64])
		malleable[64] = 27 + (1 - (sig[64] - 27))
		assert.False(t, verifier.Verify(message, malleable, signer.Address()))
	})

	t.Run("zero voter", func(t *testing.T) {
		assert.False(t, verifier.Verify(message, sig, common.Address{}))
	})
}

func TestNewLocalSignerFromHex(t *testing.T) {
	key := unittest.PrivateKeyFixture(t)
	signer, err := NewLocalSignerFromHex(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer.Address())

	_, err = NewLocalSignerFromHex("zz")
	assert.Error(t, err)
}

package attestation

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// DigestLen is the byte length of a Digest.
const DigestLen = 32

// Digest is an opaque fixed-width value produced by a content-hashing
// collaborator (over images, documents, ...) or by the commitment scheme.
// The core never interprets its payload, it only compares digests.
type Digest [DigestLen]byte

// ZeroDigest is the empty digest. It is never a valid content digest.
var ZeroDigest Digest

// IsZero returns true if all bytes of the digest are zero.
func (d Digest) IsZero() bool {
	return d == ZeroDigest
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText encodes the digest as lower-case hex without prefix.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a hex digest, with or without 0x prefix.
func (d *Digest) UnmarshalText(text []byte) error {
	digest, err := HexStringToDigest(string(text))
	if err != nil {
		return err
	}
	*d = digest
	return nil
}

// HexStringToDigest converts a hex string (optionally 0x-prefixed) to a digest.
func HexStringToDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(strings.TrimPrefix(hexString, "0x"))
	if err != nil {
		return digest, fmt.Errorf("malformed digest %q: %w", hexString, err)
	}
	return BytesToDigest(decoded)
}

// BytesToDigest copies exactly DigestLen bytes into a digest.
func BytesToDigest(b []byte) (Digest, error) {
	var digest Digest
	if len(b) != DigestLen {
		return digest, fmt.Errorf("digest must be %d bytes, got %d", DigestLen, len(b))
	}
	copy(digest[:], b)
	return digest, nil
}

// Keccak256Digest hashes the given data with keccak256.
func Keccak256Digest(data ...[]byte) Digest {
	return Digest(crypto.Keccak256Hash(data...))
}

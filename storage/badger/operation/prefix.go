package operation

import (
	"encoding/binary"
)

const (

	// codes for sequences and counters
	codeLatestTaskID     = 1
	codeLatestItemID     = 2
	codeLatestArtifactID = 3

	// codes for task registry
	codeTask           = 10
	codeTaskCommitment = 11

	// codes for consensus state
	codeResponse        = 20
	codeConsensusRecord = 21
	codeUnappliedTask   = 22

	// codes for lifecycle state
	codeItem         = 30
	codeTaskToItem   = 31
	codeUnlinkedItem = 32

	// codes for rate limiting
	codeRateCounter = 40
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}

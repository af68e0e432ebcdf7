package operation

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v4"

	"github.com/onflow/flow-attestation/module/irrecoverable"
)

var errUncompressedValue = errors.New("could not uncompress data")

var compressEnabled = true

// encodeEntity encodes the given entity using msgpack and then compress the
// value depending on the global flag.
// possible error to return is irrecoverable.exception
func encodeEntity(entity interface{}) ([]byte, error) {
	val, err := msgpack.Marshal(entity)
	if err != nil {
		return nil, irrecoverable.NewExceptionf("could not encode entity: %w", err)
	}
	if !compressEnabled {
		return val, nil
	}
	return snappy.Encode(nil, val), nil
}

// decodeValue decodes the given value into the given entity using msgpack.
// possible error to return is irrecoverable.exception
func decodeValue(val []byte, entity interface{}) error {
	if compressEnabled {
		uncompressed, err := snappy.Decode(nil, val)
		if err != nil {
			return irrecoverable.NewExceptionf("%s: %w", err, errUncompressedValue)
		}
		val = uncompressed
	}

	err := msgpack.Unmarshal(val, entity)
	if err != nil {
		return irrecoverable.NewExceptionf("could not decode entity: %w", err)
	}
	return nil
}

// b converts key parts into their canonical byte encoding.
func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint64:
		return encodeUint64(i)
	case []byte:
		return i
	case fmt.Stringer:
		return []byte(i.String())
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}

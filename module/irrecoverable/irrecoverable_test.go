package irrecoverable

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestException(t *testing.T) {
	err := NewExceptionf("could not store task: %w", errSentinel)
	assert.True(t, IsException(err))
	assert.True(t, IsException(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, errSentinel)

	assert.False(t, IsException(errSentinel))
	assert.False(t, IsException(nil))
}

func TestSignalerContext_FirstErrorWins(t *testing.T) {
	ctx, errChan := WithSignalerContext(context.Background())

	first := errors.New("first")
	for _, err := range []error{first, errors.New("second")} {
		done := make(chan struct{})
		go func(err error) {
			defer close(done)
			ctx.Throw(err)
			t.Error("throw returned")
		}(err)
		<-done
	}

	select {
	case err := <-errChan:
		require.Equal(t, first, err)
	default:
		t.Fatal("no error delivered")
	}
}

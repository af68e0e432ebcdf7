package irrecoverable

import (
	"context"
	"runtime"
)

// Signaler sends the error out
type Signaler struct {
	errors chan<- error
}

func NewSignaler(errors chan<- error) *Signaler {
	return &Signaler{errors}
}

// Throw is a narrow drop-in replacement for panic, log.Fatal, log.Panic, etc
// anywhere there's something connected to the error channel. It terminates
// the calling goroutine. Only the first error is delivered, later errors
// are dropped.
func (e *Signaler) Throw(err error) {
	select {
	case e.errors <- err:
	default:
	}
	runtime.Goexit()
}

// SignalerContext is a constrained interface to provide a drop-in replacement for
// context.Context including in interfaces that compose it.
type SignalerContext interface {
	context.Context
	Throw(err error) // delegates to the signaler
	sealed()         // private, to constrain builder to using WithSignaler
}

// private, to force context derivation / WithSignaler
type signalerCtxt struct {
	context.Context
	signaler *Signaler
}

func (sc signalerCtxt) sealed() {}

// Throw delegates to the signaler of the context.
func (sc signalerCtxt) Throw(err error) {
	sc.signaler.Throw(err)
}

// WithSignaler is the One True Way of getting a SignalerContext.
func WithSignaler(ctx context.Context, sig *Signaler) SignalerContext {
	return signalerCtxt{ctx, sig}
}

// WithSignalerContext wraps ctx and returns the channel on which thrown
// errors are delivered.
func WithSignalerContext(ctx context.Context) (SignalerContext, <-chan error) {
	errChan := make(chan error, 1)
	return WithSignaler(ctx, NewSignaler(errChan)), errChan
}

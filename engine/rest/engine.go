package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/module/component"
	"github.com/onflow/flow-attestation/module/irrecoverable"
)

const shutdownTimeout = 10 * time.Second

// Engine runs the REST API server as a component.
type Engine struct {
	component.Component
	cm *component.ComponentManager

	log    zerolog.Logger
	server *http.Server

	addrLock sync.RWMutex
	address  net.Addr
}

func NewEngine(log zerolog.Logger, server *http.Server) *Engine {
	e := &Engine{
		log:    log.With().Str("component", "rest_engine").Logger(),
		server: server,
	}
	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.serveWorker).
		AddWorker(e.shutdownWorker).
		Build()
	e.Component = e.cm

	return e
}

// serveWorker binds the listen address, signals ready and serves until the
// server is shut down.
func (e *Engine) serveWorker(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	e.log.Info().Str("address", e.server.Addr).Msg("starting rest server")

	l, err := net.Listen("tcp", e.server.Addr)
	if err != nil {
		e.log.Err(err).Msg("failed to start the rest server")
		ctx.Throw(err)
		return
	}

	e.addrLock.Lock()
	e.address = l.Addr()
	e.addrLock.Unlock()
	e.log.Debug().Str("address", l.Addr().String()).Msg("listening on port")
	ready()

	err = e.server.Serve(l)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.log.Err(err).Msg("fatal error in rest server")
		ctx.Throw(err)
	}
}

func (e *Engine) shutdownWorker(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := e.server.Shutdown(shutdownCtx)
	if err != nil {
		e.log.Err(err).Msg("error stopping rest server")
	}
}

// Address returns the listen address of the server.
// Guaranteed to be non-nil after Ready is closed.
func (e *Engine) Address() net.Addr {
	e.addrLock.RLock()
	defer e.addrLock.RUnlock()
	return e.address
}

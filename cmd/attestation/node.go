package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/config"
	"github.com/onflow/flow-attestation/consensus"
	"github.com/onflow/flow-attestation/consensus/authenticator"
	"github.com/onflow/flow-attestation/consensus/notifications"
	"github.com/onflow/flow-attestation/consensus/notifications/pubsub"
	"github.com/onflow/flow-attestation/engine/reconciler"
	"github.com/onflow/flow-attestation/engine/rest"
	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/module/access"
	"github.com/onflow/flow-attestation/module/component"
	"github.com/onflow/flow-attestation/module/irrecoverable"
	"github.com/onflow/flow-attestation/module/issuer"
	"github.com/onflow/flow-attestation/module/metrics"
	"github.com/onflow/flow-attestation/module/ratelimit"
	"github.com/onflow/flow-attestation/module/registry"
	"github.com/onflow/flow-attestation/module/signature"
	"github.com/onflow/flow-attestation/state/lifecycle"
	bstorage "github.com/onflow/flow-attestation/storage/badger"
)

var _ component.Component = (*Node)(nil)

// Node wires the attestation core to storage, the REST API and the
// reconciler, and runs the long-lived components.
type Node struct {
	*component.ComponentManager
	log zerolog.Logger
	db  *badger.DB
}

// createNotifier fans protocol events out to the log.
func createNotifier(log zerolog.Logger) consensus.Consumer {
	dis := pubsub.NewDistributor()
	dis.AddConsumer(notifications.NewLogConsumer(log))
	return dis
}

func NewNode(cfg *config.Config, log zerolog.Logger) (*Node, error) {
	db, err := badger.Open(badger.DefaultOptions(cfg.Storage.DataDir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("could not open database in %s: %w", cfg.Storage.DataDir, err)
	}

	node, err := build(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return node, nil
}

func build(cfg *config.Config, log zerolog.Logger, db *badger.DB) (*Node, error) {
	registerer := prometheus.NewRegistry()
	registerer.MustRegister(collectors.NewGoCollector())
	registerer.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewAttestationCollector(registerer)

	stores := bstorage.InitAll(collector, db)
	notifier := createNotifier(log)

	identity := common.HexToAddress(cfg.Lifecycle.Identity)
	creators := append(config.Addresses(cfg.Access.Creators), identity)
	acl := access.NewStaticAccessControl(creators, config.Addresses(cfg.Access.Voters), config.Addresses(cfg.Access.Admins))

	periods := ratelimit.NewWindowPeriods(cfg.RateLimit.Period)
	limiter := ratelimit.NewLimiter(log, db)
	reg := registry.New(log, db, stores.Tasks, limiter, periods, acl, collector, notifier, cfg.RateLimit.MaxTasksPerPeriod)

	var artifactIssuer module.ArtifactIssuer
	if cfg.Issuer.Endpoint != "" {
		artifactIssuer = issuer.NewHTTPIssuer(log, cfg.HTTPIssuerConfig())
	} else {
		log.Warn().Msg("no issuer endpoint configured, numbering artifacts locally")
		artifactIssuer = issuer.NewLocalIssuer(log, db)
	}

	machine := lifecycle.New(log, db, stores.Items, reg, artifactIssuer, collector, notifier, identity)

	auth, err := authenticator.New(log, db, reg, signature.NewVerifier(), acl, machine,
		stores.Responses, stores.ConsensusRecords, collector, notifier, cfg.AuthenticatorConfig())
	if err != nil {
		return nil, fmt.Errorf("could not create consensus authenticator: %w", err)
	}

	rec, err := reconciler.New(log, auth, machine, limiter, periods, collector, cfg.ReconcilerConfig())
	if err != nil {
		return nil, fmt.Errorf("could not create reconciler: %w", err)
	}

	server := rest.NewServer(rest.API{Registry: reg, Consensus: auth, Lifecycle: machine}, cfg.RESTConfig(), log, registerer)
	restEngine := rest.NewEngine(log, server)

	node := &Node{
		log: log,
		db:  db,
	}
	node.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(componentWorker(rec)).
		AddWorker(componentWorker(restEngine)).
		Build()

	log.Info().
		Str("identity", identity.Hex()).
		Int("creators", len(creators)).
		Int("voters", len(cfg.Access.Voters)).
		Int("admins", len(cfg.Access.Admins)).
		Uint8("confidence_threshold", cfg.Consensus.ConfidenceThreshold).
		Uint32("required_quorum", cfg.Consensus.RequiredQuorum).
		Msg("attestation node initialized")

	return node, nil
}

// componentWorker runs c as a worker of the node's component manager.
func componentWorker(c component.Component) component.ComponentWorker {
	return func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
		c.Start(ctx)
		select {
		case <-c.Ready():
			ready()
		case <-ctx.Done():
		}
		<-c.Done()
	}
}

// Run starts all components and blocks until SIGINT or SIGTERM is received or
// a component threw an irrecoverable error. A second signal aborts the
// graceful shutdown.
func (node *Node) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignalerContext(ctx)
	node.Start(signalerCtx)

	go func() {
		select {
		case <-node.Ready():
			node.log.Info().Msg("attestation node startup complete")
		case <-ctx.Done():
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	var runErr error
	select {
	case runErr = <-errChan:
		node.log.Error().Err(runErr).Msg("unhandled irrecoverable error")
	case <-signalChan:
	}

	node.log.Info().Msg("attestation node shutting down")
	cancel()

	select {
	case <-node.Done():
	case err := <-errChan:
		return multierror.Append(runErr, fmt.Errorf("irrecoverable error during shutdown: %w", err))
	case <-signalChan:
		return multierror.Append(runErr, errors.New("node shutdown aborted"))
	}

	err := node.db.Close()
	if err != nil {
		return multierror.Append(runErr, fmt.Errorf("could not close database: %w", err))
	}

	node.log.Info().Msg("attestation node shutdown complete")
	return runErr
}

// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/blinklabs-io/vaultgov"
	"github.com/blinklabs-io/vaultgov/api"
	"github.com/blinklabs-io/vaultgov/event"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/internal/config"
	"github.com/blinklabs-io/vaultgov/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Node wires the engine, its ledger, the REST API and the metrics listener
type Node struct {
	cfg           *config.Config
	logger        *slog.Logger
	registry      *prometheus.Registry
	ledger        *ledger.MemoryLedger
	engine        *vaultgov.Engine
	api           *api.Server
	metricsServer *http.Server
	subscriptions []event.EventSubscriberId
}

// New builds a node from cfg. Metrics are registered on registry, which is
// also what the metrics listener serves
func New(
	cfg *config.Config,
	logger *slog.Logger,
	registry *prometheus.Registry,
) (*Node, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	l := ledger.NewMemoryLedger(
		ledger.WithLogger(logger),
		ledger.WithPromRegistry(registry),
	)
	if err := creditGenesis(l, cfg.Genesis); err != nil {
		return nil, err
	}
	engine, err := vaultgov.New(
		vaultgov.NewConfig(
			vaultgov.WithLogger(logger),
			vaultgov.WithPrometheusRegistry(registry),
			vaultgov.WithLedger(l),
			vaultgov.WithDatabasePath(cfg.DatabasePath),
			vaultgov.WithBlobCacheSize(cfg.BlobCacheSize),
			vaultgov.WithVault(governance.Identity(cfg.Vault)),
			vaultgov.WithTracing(cfg.Tracing),
			vaultgov.WithTracingStdout(cfg.TracingStdout),
		),
	)
	if err != nil {
		return nil, err
	}
	apiCfg := api.Config{
		ListenAddress: cfg.ListenAddress,
		DevMode:       cfg.RunMode.IsDevMode(),
	}
	if apiCfg.DevMode {
		apiCfg.Funder = l
	}
	return &Node{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		ledger:   l,
		engine:   engine,
		api:      api.New(apiCfg, engine, logger),
	}, nil
}

// creditGenesis mints configured balances in a stable order
func creditGenesis(l *ledger.MemoryLedger, genesis map[string]uint64) error {
	accounts := make([]string, 0, len(genesis))
	for account := range genesis {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	for _, account := range accounts {
		if err := l.Credit(governance.Identity(account), genesis[account]); err != nil {
			return fmt.Errorf("genesis balance for %q: %w", account, err)
		}
	}
	return nil
}

func (n *Node) Engine() *vaultgov.Engine {
	return n.engine
}

func (n *Node) Ledger() *ledger.MemoryLedger {
	return n.ledger
}

// Start brings up the node. In dev mode a configured admin initializes the
// engine if nobody has yet
func (n *Node) Start(ctx context.Context) error {
	if n.cfg.RunMode.IsDevMode() && n.cfg.Admin != "" {
		err := n.engine.Initialize(
			ctx,
			governance.Identity(n.cfg.Admin),
			governance.Identity(n.cfg.Sponsor),
		)
		switch {
		case err == nil:
			n.logger.Info(
				"initialized governance state",
				"component", "node",
				"admin", n.cfg.Admin,
			)
		case errors.Is(err, governance.ErrAlreadyInitialized):
		default:
			return fmt.Errorf("failed to initialize: %w", err)
		}
	}
	n.subscribeEventLog()
	if err := n.api.Start(ctx); err != nil {
		return err
	}
	if n.cfg.MetricsPort > 0 {
		if err := n.startMetrics(); err != nil {
			return err
		}
	}
	return nil
}

// subscribeEventLog logs every committed governance event
func (n *Node) subscribeEventLog() {
	bus := n.engine.EventBus()
	for _, eventType := range event.AllEventTypes {
		subId := bus.SubscribeFunc(eventType, func(evt event.Event) {
			n.logger.Info(
				"governance event",
				"component", "node",
				"type", string(evt.Type),
				"data", fmt.Sprintf("%+v", evt.Data),
			)
		})
		n.subscriptions = append(n.subscriptions, subId)
	}
}

func (n *Node) startMetrics() error {
	addr := fmt.Sprintf("%s:%d", n.cfg.BindAddr, n.cfg.MetricsPort)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(n.registry, promhttp.HandlerOpts{}))
	n.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics: %w", err)
	}
	n.logger.Info(
		"serving prometheus metrics on "+addr,
		"component", "node",
	)
	srv := n.metricsServer
	go func() {
		if err := srv.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			n.logger.Error(
				fmt.Sprintf("metrics listener failed: %s", err),
				"component", "node",
			)
		}
	}()
	return nil
}

// Stop shuts down listeners first, then the engine
func (n *Node) Stop(ctx context.Context) error {
	var err error
	if stopErr := n.api.Stop(ctx); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	if n.metricsServer != nil {
		if stopErr := n.metricsServer.Shutdown(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("metrics server shutdown: %w", stopErr))
		}
		n.metricsServer = nil
	}
	bus := n.engine.EventBus()
	for i, subId := range n.subscriptions {
		bus.Unsubscribe(event.AllEventTypes[i], subId)
	}
	n.subscriptions = nil
	if closeErr := n.engine.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("engine close: %w", closeErr))
	}
	return err
}

// Run starts a node and blocks until SIGINT or SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	n, err := New(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	if err := n.Start(signalCtx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.ShutdownDuration(),
		)
		defer cancel()
		if stopErr := n.Stop(shutdownCtx); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error", stopErr,
			)
		}
		return err
	}

	<-signalCtx.Done()
	logger.Info("signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.ShutdownDuration(),
	)
	defer cancel()
	if err := n.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

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

// Package vaultgov is a governance and access policy engine for a
// token-gated application: paid access passes, balance-weighted DAO
// proposals, a time-locked multi-signature emergency vault release and
// batched prize distributions
package vaultgov

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/vaultgov/access"
	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/blinklabs-io/vaultgov/emergency"
	"github.com/blinklabs-io/vaultgov/event"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/ledger"
	"github.com/blinklabs-io/vaultgov/prize"
	"github.com/blinklabs-io/vaultgov/proposal"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the single entry point for governance operations. Mutating
// calls are serialized and each runs in its own database transaction, so a
// failed call leaves no trace in state, journal or ledger
type Engine struct {
	config        Config
	db            *database.Database
	ownsDb        bool
	ledger        ledger.Ledger
	eventBus      *event.EventBus
	ownsEventBus  bool
	access        *access.Registry
	proposals     *proposal.Store
	emergency     *emergency.Coordinator
	prizes        *prize.Ledger
	metrics       *engineMetrics
	tracer        trace.Tracer
	shutdownFuncs []func(context.Context) error
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// New opens storage and builds an engine from cfg. The returned engine must
// be initialized once with Initialize before any other call
func New(cfg Config) (*Engine, error) {
	e := &Engine{
		config:   cfg,
		ledger:   cfg.ledger,
		eventBus: cfg.eventBus,
		db:       cfg.database,
	}
	if err := e.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := e.setupTracing(); err != nil {
		return nil, err
	}
	if e.db == nil {
		db, err := database.New(&database.Config{
			DataDir:       cfg.dataDir,
			Logger:        cfg.logger,
			PromRegistry:  cfg.promRegistry,
			BlobCacheSize: cfg.blobCacheSize,
			Now:           cfg.clock.Now,
		})
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			e.runShutdownFuncs(context.Background())
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		e.db = db
		e.ownsDb = true
	}
	if e.ledger == nil {
		e.ledger = ledger.NewMemoryLedger(
			ledger.WithLogger(cfg.logger),
			ledger.WithPromRegistry(cfg.promRegistry),
		)
	}
	if e.eventBus == nil {
		e.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
		e.ownsEventBus = true
	}
	e.metrics = newEngineMetrics(cfg.promRegistry)
	e.access = access.NewRegistry(e.db, e.ledger, cfg.vault, cfg.logger)
	e.proposals = proposal.NewStore(e.db, e.ledger, e.access, cfg.logger)
	e.emergency = emergency.NewCoordinator(e.db, e.ledger, cfg.vault, cfg.logger)
	e.prizes = prize.NewLedger(e.db, e.ledger, cfg.vault, cfg.logger)
	if cfg.promRegistry != nil {
		e.metrics.registerVaultGauge(cfg.promRegistry, e.vaultBalance)
	}
	return e, nil
}

func (e *Engine) configValidate() error {
	if e.config.logger == nil {
		return errors.New("no logger configured")
	}
	if e.config.clock == nil {
		return errors.New("no clock configured")
	}
	if !e.config.vault.Valid() {
		return errors.New("vault identity must not be empty")
	}
	if e.config.database != nil && e.config.dataDir != "" {
		return errors.New("database and database path are mutually exclusive")
	}
	return nil
}

// Close releases resources the engine opened itself
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.ownsEventBus {
			e.eventBus.Close()
		}
		if e.ownsDb {
			if closeErr := e.db.Close(); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = errors.Join(err, e.runShutdownFuncs(ctx))
	})
	return err
}

func (e *Engine) runShutdownFuncs(ctx context.Context) error {
	var err error
	for _, fn := range e.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	e.shutdownFuncs = nil
	return err
}

// EventBus returns the bus that committed operations are published on
func (e *Engine) EventBus() *event.EventBus {
	return e.eventBus
}

// Ledger returns the token ledger the engine settles against
func (e *Engine) Ledger() ledger.Ledger {
	return e.ledger
}

// Vault returns the vault account identity
func (e *Engine) Vault() governance.Identity {
	return e.config.vault
}

// Now returns the current time of the engine clock
func (e *Engine) Now() time.Time {
	return e.config.clock.Now()
}

func (e *Engine) vaultBalance() float64 {
	balance, err := e.ledger.Balance(context.Background(), e.config.vault)
	if err != nil {
		return 0
	}
	return float64(balance)
}

// pendingEvent is published once the surrounding call has committed
type pendingEvent struct {
	eventType event.EventType
	data      event.GovernanceEvent
}

// mutate runs fn in a read-write transaction while holding the engine lock.
// fn returns the event to publish after a successful commit. Ledger
// settlements made by fn are reversed if the transaction does not commit
func (e *Engine) mutate(
	ctx context.Context,
	op string,
	fn func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error),
) error {
	ctx, span := e.tracer.Start(ctx, op)
	defer span.End()
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()
	now := e.config.clock.Now()
	var evt *pendingEvent
	err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		if op != opInitialize {
			if err := e.requireInitialized(txn); err != nil {
				return err
			}
		}
		var err error
		evt, err = fn(ctx, txn, now)
		return err
	})
	e.metrics.observe(op, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, governance.CodeOf(err))
		e.config.logger.Debug(
			"operation rejected",
			"component", "engine",
			"operation", op,
			"code", governance.CodeOf(err),
			"error", err,
		)
		return err
	}
	if evt != nil {
		e.eventBus.Publish(evt.eventType, event.NewEvent(evt.eventType, evt.data))
	}
	return nil
}

// query runs fn in a read-only transaction
func (e *Engine) query(
	ctx context.Context,
	op string,
	fn func(ctx context.Context, txn *database.Txn, now time.Time) error,
) error {
	ctx, span := e.tracer.Start(ctx, op)
	defer span.End()
	e.mu.RLock()
	defer e.mu.RUnlock()
	txn := e.db.Transaction(false)
	defer txn.Release()
	if err := e.requireInitialized(txn); err != nil {
		return err
	}
	if err := fn(ctx, txn, e.config.clock.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, governance.CodeOf(err))
		return err
	}
	return nil
}

// globalConfig loads the global config, mapping a missing row to
// governance.ErrNotInitialized
func (e *Engine) globalConfig(txn *database.Txn) (*models.GlobalConfig, error) {
	cfg, err := e.db.GetGlobalConfig(txn)
	if err != nil {
		if errors.Is(err, models.ErrGlobalConfigNotFound) {
			return nil, governance.ErrNotInitialized
		}
		return nil, err
	}
	return cfg, nil
}

func (e *Engine) requireInitialized(txn *database.Txn) error {
	_, err := e.globalConfig(txn)
	return err
}

// Initialize creates the global, emergency and prize configuration. It
// succeeds exactly once per database
func (e *Engine) Initialize(
	ctx context.Context,
	admin governance.Identity,
	sponsor governance.Identity,
) error {
	return e.mutate(ctx, opInitialize, func(_ context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		if !admin.Valid() {
			return nil, governance.ErrInvalidIdentity
		}
		_, err := e.globalConfig(txn)
		if err == nil {
			return nil, governance.ErrAlreadyInitialized
		}
		if !errors.Is(err, governance.ErrNotInitialized) {
			return nil, err
		}
		if err := e.db.SetGlobalConfig(&models.GlobalConfig{
			Admin:          admin.String(),
			Sponsor:        sponsor.String(),
			AccessCost:     types.Uint64(governance.DefaultAccessCost),
			FeeMode:        uint8(governance.FeeModeSponsorPays),
			NextProposalId: governance.FirstProposalId,
			InitializedAt:  now.Unix(),
		}, txn); err != nil {
			return nil, err
		}
		if err := e.db.SetEmergencyConfig(emergency.NewConfig(admin, now), txn); err != nil {
			return nil, err
		}
		if err := e.db.SetPrizeConfig(prize.NewConfig(admin, now), txn); err != nil {
			return nil, err
		}
		if _, err := e.db.AppendJournal(&models.JournalEntry{
			Time:         now.Unix(),
			Operation:    opInitialize,
			Caller:       admin.String(),
			Counterparty: sponsor.String(),
		}, txn); err != nil {
			return nil, err
		}
		e.config.logger.Info(
			"governance initialized",
			"component", "engine",
			"admin", admin.String(),
			"sponsor", sponsor.String(),
		)
		return &pendingEvent{
			eventType: event.InitializedEventType,
			data:      event.GovernanceEvent{Caller: admin.String()},
		}, nil
	})
}

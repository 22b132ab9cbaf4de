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

package vaultgov

import (
	"io"
	"log/slog"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/event"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultVault is the ledger account that receives access fees and funds
// emergency unlocks and prize distributions
const DefaultVault governance.Identity = "vault"

type Config struct {
	logger        *slog.Logger
	promRegistry  prometheus.Registerer
	clock         governance.Clock
	ledger        ledger.Ledger
	database      *database.Database
	eventBus      *event.EventBus
	dataDir       string
	vault         governance.Identity
	blobCacheSize uint64
	tracing       bool
	tracingStdout bool
}

// ConfigOptionFunc is a type that represents functions that modify the engine config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new engine config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:  governance.SystemClock(),
		vault:  DefaultVault,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithClock specifies the time source. This defaults to the system clock
func WithClock(clock governance.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithLedger specifies the token ledger used for balances and transfers. The
// default is an empty in-memory ledger
func WithLedger(l ledger.Ledger) ConfigOptionFunc {
	return func(c *Config) {
		c.ledger = l
	}
}

// WithDatabase specifies an already opened database. The engine does not
// close a database it did not open
func WithDatabase(db *database.Database) ConfigOptionFunc {
	return func(c *Config) {
		c.database = db
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobCacheSize sets the journal store block cache size in bytes
func WithBlobCacheSize(size uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.blobCacheSize = size
	}
}

// WithVault specifies the ledger account acting as the vault
func WithVault(vault governance.Identity) ConfigOptionFunc {
	return func(c *Config) {
		c.vault = vault
	}
}

// WithEventBus specifies the event bus that committed operations are
// published on. The default is a private bus
func WithEventBus(bus *event.EventBus) ConfigOptionFunc {
	return func(c *Config) {
		c.eventBus = bus
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) OTLP collector at localhost:4318,
// using the OTEL_EXPORTER_OTLP_* env vars for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "vaultgov.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultListenAddress   = ":8080"
	DefaultBindAddr        = "0.0.0.0"
	DefaultMetricsPort     = 12798
	DefaultDatabasePath    = ".vaultgov"
	DefaultVault           = "vault"

	envPrefix = "VAULTGOV"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// RunMode represents the operational mode of the server
type RunMode string

const (
	RunModeServe RunMode = "serve" // Persistent state, external ledger funding (default)
	RunModeDev   RunMode = "dev"   // Genesis balances, funding endpoint, auto-initialize
)

// Valid returns true if the RunMode is a known valid mode
func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

type Config struct {
	DatabasePath    string  `yaml:"databasePath"    split_words:"true"`
	BlobCacheSize   uint64  `yaml:"blobCacheSize"   split_words:"true"`
	ListenAddress   string  `yaml:"listenAddress"   split_words:"true"`
	BindAddr        string  `yaml:"bindAddr"        split_words:"true"`
	MetricsPort     uint    `yaml:"metricsPort"     split_words:"true"`
	ShutdownTimeout string  `yaml:"shutdownTimeout" split_words:"true"`
	RunMode         RunMode `yaml:"runMode"         split_words:"true"`
	// Vault is the ledger account holding burned and distributable tokens
	Vault   string `yaml:"vault"`
	Admin   string `yaml:"admin"`
	Sponsor string `yaml:"sponsor"`
	// Genesis balances are credited to the in-memory ledger in dev mode
	Genesis       map[string]uint64 `yaml:"genesis"`
	Tracing       bool              `yaml:"tracing"`
	TracingStdout bool              `yaml:"tracingStdout"   split_words:"true"`
}

// DefaultConfig returns a fresh copy of the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    DefaultDatabasePath,
		ListenAddress:   DefaultListenAddress,
		BindAddr:        DefaultBindAddr,
		MetricsPort:     DefaultMetricsPort,
		ShutdownTimeout: DefaultShutdownTimeout,
		RunMode:         RunModeServe,
		Vault:           DefaultVault,
	}
}

var globalConfig = DefaultConfig()

// ShutdownDuration parses ShutdownTimeout, falling back to the default
func (c *Config) ShutdownDuration() time.Duration {
	if d, err := time.ParseDuration(c.ShutdownTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultShutdownTimeout)
	return d
}

func (c *Config) validate() error {
	if !c.RunMode.Valid() {
		return fmt.Errorf(
			"invalid runMode: %q (must be 'serve' or 'dev')",
			c.RunMode,
		)
	}
	if c.RunMode == "" {
		c.RunMode = RunModeServe
	}
	if c.Vault == "" {
		return errors.New("vault account must not be empty")
	}
	if c.Admin != "" && c.Admin == c.Vault {
		return errors.New("admin and vault must be different accounts")
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdownTimeout: %w", err)
	}
	return nil
}

// findConfigFile returns ~/.vaultgov/vaultgov.yaml or
// /etc/vaultgov/vaultgov.yaml, whichever exists first
func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".vaultgov", "vaultgov.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/vaultgov/vaultgov.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

// LoadConfig builds the process configuration from defaults, then the YAML
// config file, then VAULTGOV_* environment variables
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

func GetConfig() *Config {
	return globalConfig
}

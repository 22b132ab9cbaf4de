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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaultgov.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Same(t, cfg, GetConfig())
}

func TestLoad_CompareFullStruct(t *testing.T) {
	path := writeConfigFile(t, `
databasePath: "/var/lib/vaultgov"
blobCacheSize: 8388608
listenAddress: "127.0.0.1:9000"
bindAddr: "127.0.0.1"
metricsPort: 8088
shutdownTimeout: "10s"
runMode: dev
vault: treasury
admin: alice
sponsor: bob
genesis:
  alice: 20000000000
  bob: 500000000
tracing: true
tracingStdout: true
`)

	expected := &Config{
		DatabasePath:    "/var/lib/vaultgov",
		BlobCacheSize:   8388608,
		ListenAddress:   "127.0.0.1:9000",
		BindAddr:        "127.0.0.1",
		MetricsPort:     8088,
		ShutdownTimeout: "10s",
		RunMode:         RunModeDev,
		Vault:           "treasury",
		Admin:           "alice",
		Sponsor:         "bob",
		Genesis: map[string]uint64{
			"alice": 20_000_000_000,
			"bob":   500_000_000,
		},
		Tracing:       true,
		TracingStdout: true,
	}

	actual, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.True(t, actual.RunMode.IsDevMode())
	assert.Equal(t, 10*time.Second, actual.ShutdownDuration())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
admin: alice
listenAddress: ":9000"
`)
	t.Setenv("VAULTGOV_ADMIN", "carol")
	t.Setenv("VAULTGOV_LISTEN_ADDRESS", ":9100")
	t.Setenv("VAULTGOV_RUN_MODE", "dev")
	t.Setenv("VAULTGOV_GENESIS", "dave:42")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", cfg.Admin)
	assert.Equal(t, ":9100", cfg.ListenAddress)
	assert.Equal(t, RunModeDev, cfg.RunMode)
	assert.Equal(t, map[string]uint64{"dave": 42}, cfg.Genesis)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "run mode", content: "runMode: load\n", errMsg: "invalid runMode"},
		{name: "empty vault", content: "vault: \"\"\n", errMsg: "vault account"},
		{name: "admin is vault", content: "admin: vault\n", errMsg: "different accounts"},
		{name: "shutdown timeout", content: "shutdownTimeout: soon\n", errMsg: "shutdownTimeout"},
		{name: "malformed", content: "admin: [\n", errMsg: "error parsing config file"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, test.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestRunModeValid(t *testing.T) {
	assert.True(t, RunModeServe.Valid())
	assert.True(t, RunModeDev.Valid())
	assert.True(t, RunMode("").Valid())
	assert.False(t, RunMode("load").Valid())
	assert.False(t, RunModeServe.IsDevMode())
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := DefaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}

func TestShutdownDurationFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShutdownTimeout = "-5s"
	assert.Equal(t, 30*time.Second, cfg.ShutdownDuration())
}

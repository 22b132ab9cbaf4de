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

package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/blinklabs-io/vaultgov"
	"github.com/blinklabs-io/vaultgov/api"
	"github.com/blinklabs-io/vaultgov/internal/config"
	"github.com/blinklabs-io/vaultgov/internal/version"
	"github.com/blinklabs-io/vaultgov/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	engine, err := vaultgov.New(vaultgov.NewConfig(
		vaultgov.WithLedger(ledger.NewMemoryLedger()),
	))
	require.NoError(t, err)
	srv := httptest.NewServer(api.New(api.Config{}, engine, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, engine.Close())
	})
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAPIURL(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "http://127.0.0.1:8080", apiURL(cfg))
	cfg.ListenAddress = "10.0.0.1:9000"
	assert.Equal(t, "http://10.0.0.1:9000", apiURL(cfg))
}

func TestInitAndStatsCommands(t *testing.T) {
	srv := newTestAPI(t)

	_, err := execute(t, "stats", "--api-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotInitialized")

	out, err := execute(t, "init", "--api-url", srv.URL, "--admin", "admin", "--sponsor", "sponsor")
	require.NoError(t, err)
	var cfg api.GlobalConfigResponse
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "admin", cfg.Admin)

	_, err = execute(t, "init", "--api-url", srv.URL, "--admin", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AlreadyInitialized")

	out, err = execute(t, "stats", "--api-url", srv.URL)
	require.NoError(t, err)
	var stats api.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, "0.000000", stats.TotalBurnedDisplay)
	assert.Equal(t, uint64(1), stats.CurrentSeason)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.GetVersionString())
}
